package controller

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolstaff_backend/internals/constants"
	"schoolstaff_backend/internals/features/staff/homeworks/dto"
	"schoolstaff_backend/internals/features/staff/homeworks/model"
	"schoolstaff_backend/internals/features/staff/homeworks/service"
	mastersService "schoolstaff_backend/internals/features/staff/masters/service"
	helper "schoolstaff_backend/internals/helpers"
	"schoolstaff_backend/internals/helpers/filestore"
)

type HomeworkController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Store    filestore.Store
}

func NewHomeworkController(db *gorm.DB, store filestore.Store) *HomeworkController {
	return &HomeworkController{DB: db, Validate: helper.NewValidator(), Store: store}
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Assignments", func(db *gorm.DB) *gorm.DB { return db.Order("student_id") }).
		Preload("Assignments.Student").
		Preload("Class").
		Preload("Subject")
}

func (ctl *HomeworkController) load(c *fiber.Ctx, id uint) (*model.HomeworkModel, error) {
	var hw model.HomeworkModel
	if err := ctl.DB.WithContext(helper.ReqCtx(c)).Scopes(withDetails).First(&hw, id).Error; err != nil {
		return nil, errors.Wrap(err, "reload homework")
	}
	return &hw, nil
}

/* ============================ CREATE ============================ */

// POST /homework (JSON or multipart with optional "file")
func (ctl *HomeworkController) Create(c *fiber.Ctx) error {
	var req dto.CreateHomeworkRequest
	if err := helper.ParseBody(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.FormJSON(c, "assignments", &req.Assignments); err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.ValidateStruct(ctl.Validate, &req); err != nil {
		return helper.FromError(c, err)
	}
	hw, err := req.ToModel()
	if err != nil {
		return helper.FromError(c, err)
	}

	ctx := helper.ReqCtx(c)
	staged, err := filestore.StageOptional(ctx, ctl.Store, helper.OptionalFile(c, "file"), constants.FolderHomeworks)
	if err != nil {
		return helper.FromError(c, err)
	}
	if name := staged.StoredName(); name != "" {
		hw.File = &name
	}

	var existing *model.HomeworkModel
	err = ctl.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dup, err := service.FindDuplicate(ctx, tx, hw)
		if err != nil {
			return err
		}
		if dup != nil {
			existing = dup
			return nil
		}
		if err := mastersService.RequireStudents(ctx, tx, hw.SchoolID, req.StudentIDs()); err != nil {
			return err
		}
		return tx.Create(hw).Error
	})
	if err != nil || existing != nil {
		staged.Discard(ctx)
	}
	if err != nil {
		return helper.FromError(c, err)
	}

	if existing != nil {
		out, err := ctl.load(c, existing.ID)
		if err != nil {
			return helper.FromError(c, err)
		}
		return helper.JsonOK(c, "Homework already exists", out)
	}

	_ = filestore.CommitAll(ctx, staged)
	log.Printf("[Homework.Create] homework=%d teacher=%d assignments=%d", hw.ID, hw.TeacherID, len(hw.Assignments))
	return helper.JsonCreated(c, "Homework and assignments created", hw)
}

/* ============================ READ ============================ */

// GET /homework
func (ctl *HomeworkController) List(c *fiber.Ctx) error {
	var q dto.ListHomeworkQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	view := helper.ParseTrashView(c)
	p := helper.ResolvePaging(c, helper.DefaultPerPage, helper.MaxPerPage)

	base := func() *gorm.DB {
		return q.Apply(ctl.DB.WithContext(helper.ReqCtx(c)).
			Model(&model.HomeworkModel{}).
			Scopes(helper.TrashScope(view, "")))
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return helper.FromError(c, errors.Wrap(err, "count homework"))
	}
	var rows []model.HomeworkModel
	if err := base().
		Scopes(withDetails).
		Order("created_at DESC, id DESC").
		Scopes(helper.Paginate(p)).
		Find(&rows).Error; err != nil {
		return helper.FromError(c, errors.Wrap(err, "list homework"))
	}
	return helper.JsonList(c, "ok", rows, p.Build(total))
}

// GET /homework/:id
func (ctl *HomeworkController) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var hw model.HomeworkModel
	db := ctl.DB.WithContext(helper.ReqCtx(c)).Scopes(withDetails)
	if err := helper.FirstInView(db, helper.ParseTrashView(c), &hw, id, "homework"); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", hw)
}

// GET /homework/assignments/:id
func (ctl *HomeworkController) GetAssignment(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var a model.HomeworkAssignmentModel
	err = ctl.DB.WithContext(helper.ReqCtx(c)).Preload("Student").First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.FromError(c, helper.NotFound("assignment %d not found", id))
	}
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", a)
}

/* ============================ UPDATE ============================ */

// PATCH /homework/:id (JSON or multipart; a new "file" replaces the old one)
func (ctl *HomeworkController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateHomeworkRequest
	if err := helper.ParseBody(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.ValidateStruct(ctl.Validate, &req); err != nil {
		return helper.FromError(c, err)
	}
	changes, err := req.Changes()
	if err != nil {
		return helper.FromError(c, err)
	}

	ctx := helper.ReqCtx(c)
	staged, err := filestore.StageOptional(ctx, ctl.Store, helper.OptionalFile(c, "file"), constants.FolderHomeworks)
	if err != nil {
		return helper.FromError(c, err)
	}
	if name := staged.StoredName(); name != "" {
		changes["file"] = name
	}

	var replaced string
	err = ctl.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var hw model.HomeworkModel
		if err := helper.FirstActive(tx.Clauses(clause.Locking{Strength: "UPDATE"}), &hw, id, "homework"); err != nil {
			return err
		}
		if staged != nil && hw.File != nil {
			replaced = *hw.File
		}
		if len(changes) == 0 {
			return nil
		}
		return tx.Model(&hw).Updates(changes).Error
	})
	if err != nil {
		staged.Discard(ctx)
		return helper.FromError(c, err)
	}
	_ = filestore.CommitAll(ctx, staged)
	filestore.DeleteQuiet(ctx, ctl.Store, constants.FolderHomeworks, replaced)

	hw, err := ctl.load(c, id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Homework updated", hw)
}

// PATCH /homework/assignments/:id (optional "solved_file")
func (ctl *HomeworkController) UpdateAssignment(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateAssignmentRequest
	if err := helper.ParseBody(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.ValidateStruct(ctl.Validate, &req); err != nil {
		return helper.FromError(c, err)
	}
	changes := req.Changes()

	ctx := helper.ReqCtx(c)
	staged, err := filestore.StageOptional(ctx, ctl.Store, helper.OptionalFile(c, "solved_file", "file"), constants.FolderSolvedHomeworks)
	if err != nil {
		return helper.FromError(c, err)
	}
	if name := staged.StoredName(); name != "" {
		changes["solved_file"] = name
	}

	var a model.HomeworkAssignmentModel
	var replaced string
	err = ctl.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.NotFound("assignment %d not found", id)
			}
			return err
		}
		var hw model.HomeworkModel
		if err := helper.FirstActive(tx, &hw, a.HomeworkID, "homework"); err != nil {
			return err
		}
		if staged != nil && a.SolvedFile != nil {
			replaced = *a.SolvedFile
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&a).Updates(changes).Error; err != nil {
			return err
		}
		return tx.Preload("Student").First(&a, id).Error
	})
	if err != nil {
		staged.Discard(ctx)
		return helper.FromError(c, err)
	}
	_ = filestore.CommitAll(ctx, staged)
	filestore.DeleteQuiet(ctx, ctl.Store, constants.FolderSolvedHomeworks, replaced)

	return helper.JsonUpdated(c, "Assignment updated", a)
}

// PATCH /homework/:id/assignments
func (ctl *HomeworkController) BulkUpdateAssignments(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.BulkAssignmentRequest
	if err := helper.ParseBody(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.ValidateStruct(ctl.Validate, &req); err != nil {
		return helper.FromError(c, err)
	}

	ctx := helper.ReqCtx(c)
	var updated int
	err = ctl.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := service.BulkUpdateAssignments(ctx, tx, id, req.Updates)
		updated = n
		return err
	})
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Homework assignments updated", fiber.Map{"homework_id": id, "updated": updated})
}

/* ============================ LIFECYCLE ============================ */

// DELETE /homework/:id
func (ctl *HomeworkController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.SetTrash(helper.ReqCtx(c), ctl.DB, &model.HomeworkModel{}, id, true); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "Homework moved to trash", fiber.Map{"id": id})
}

// POST /homework/:id/restore
func (ctl *HomeworkController) Restore(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.SetTrash(helper.ReqCtx(c), ctl.DB, &model.HomeworkModel{}, id, false); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Homework restored", fiber.Map{"id": id})
}

// DELETE /homework/:id/permanent
func (ctl *HomeworkController) Purge(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}

	ctx := helper.ReqCtx(c)
	var file string
	var solved []string
	var removed int64
	err = ctl.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var hw model.HomeworkModel
		if err := helper.LoadTrashed(tx, &hw, id); err != nil {
			return err
		}
		if hw.File != nil {
			file = *hw.File
		}
		if err := tx.Model(&model.HomeworkAssignmentModel{}).
			Where("homework_id = ? AND solved_file IS NOT NULL", hw.ID).
			Pluck("solved_file", &solved).Error; err != nil {
			return err
		}
		res := tx.Where("homework_id = ?", hw.ID).Delete(&model.HomeworkAssignmentModel{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return tx.Delete(&hw).Error
	})
	if err != nil {
		return helper.FromError(c, err)
	}

	filestore.DeleteQuiet(ctx, ctl.Store, constants.FolderHomeworks, file)
	filestore.DeleteQuiet(ctx, ctl.Store, constants.FolderSolvedHomeworks, solved...)
	log.Printf("[Homework.Purge] homework=%d assignments=%d files=%d", id, removed, len(solved))
	return helper.JsonDeleted(c, "Homework permanently deleted", fiber.Map{"id": id, "assignments_deleted": removed})
}
