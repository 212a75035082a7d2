package controller

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"schoolstaff_backend/internals/constants"
	"schoolstaff_backend/internals/features/staff/achievements/dto"
	"schoolstaff_backend/internals/features/staff/achievements/model"
	"schoolstaff_backend/internals/features/staff/achievements/service"
	mastersService "schoolstaff_backend/internals/features/staff/masters/service"
	helper "schoolstaff_backend/internals/helpers"
	"schoolstaff_backend/internals/helpers/filestore"
)

type AchievementController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Store    filestore.Store
}

func NewAchievementController(db *gorm.DB, store filestore.Store) *AchievementController {
	return &AchievementController{DB: db, Validate: helper.NewValidator(), Store: store}
}

func withStudents(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Students", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Students.Student.Class")
}

/* ============================ CREATE ============================ */

// POST /achievements
func (ctl *AchievementController) Create(c *fiber.Ctx) error {
	var req dto.CreateAchievementRequest
	if err := helper.ParseBody(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.FormJSON(c, "students", &req.Students); err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.ValidateStruct(ctl.Validate, &req); err != nil {
		return helper.FromError(c, err)
	}
	files := helper.FormFiles(c, "files")
	if len(files) > len(req.Students) {
		return helper.FromError(c, helper.InvalidArgument("%d proof files sent for %d students", len(files), len(req.Students)))
	}

	ctx := helper.ReqCtx(c)
	staged, err := filestore.StageAll(ctx, ctl.Store, constants.FolderAchievementProofs, files...)
	if err != nil {
		return helper.FromError(c, err)
	}
	proofs := make([]string, len(staged))
	for i, sf := range staged {
		proofs[i] = sf.StoredName()
	}
	a, err := req.ToModel(proofs)
	if err != nil {
		filestore.DiscardAll(ctx, staged...)
		return helper.FromError(c, err)
	}

	err = ctl.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := service.EnsureUniqueTitle(ctx, tx, a); err != nil {
			return err
		}
		if err := mastersService.RequireStudents(ctx, tx, a.SchoolID, req.StudentIDs()); err != nil {
			return err
		}
		return tx.Create(a).Error
	})
	if err != nil {
		filestore.DiscardAll(ctx, staged...)
		return helper.FromError(c, err)
	}
	_ = filestore.CommitAll(ctx, staged...)

	log.Printf("[Achievements.Create] achievement=%d recorded_by=%d students=%d proofs=%d", a.ID, a.RecordedBy, len(a.Students), len(files))
	return helper.JsonCreated(c, "Achievement with students saved", a)
}

/* ============================ READ ============================ */

// GET /achievements/staff/:id
func (ctl *AchievementController) ListByStaff(c *fiber.Ctx) error {
	staffID, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var q dto.ListAchievementQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	view := helper.ParseTrashView(c)
	p := helper.ResolvePaging(c, helper.DefaultPerPage, helper.MaxPerPage)

	base := func() *gorm.DB {
		return q.Apply(ctl.DB.WithContext(helper.ReqCtx(c)).
			Model(&model.AchievementModel{}).
			Scopes(service.RecordedBy(staffID), helper.TrashScope(view, "")))
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return helper.FromError(c, errors.Wrap(err, "count achievements"))
	}
	var rows []model.AchievementModel
	if err := base().
		Scopes(withStudents).
		Order("date DESC, id DESC").
		Scopes(helper.Paginate(p)).
		Find(&rows).Error; err != nil {
		return helper.FromError(c, errors.Wrap(err, "list achievements"))
	}
	return helper.JsonList(c, "ok", rows, p.Build(total))
}

// GET /achievements/:id
func (ctl *AchievementController) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var a model.AchievementModel
	db := ctl.DB.WithContext(helper.ReqCtx(c)).Scopes(withStudents)
	if err := helper.FirstInView(db, helper.ParseTrashView(c), &a, id, "achievement"); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", a)
}

/* ============================ UPDATE ============================ */

// PATCH /achievements/:id?staff_id=
func (ctl *AchievementController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	staffID, err := helper.RequireUserID(c, "staff_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateAchievementRequest
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
	err = ctl.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a model.AchievementModel
		if err := helper.FirstActive(tx.Scopes(service.RecordedBy(staffID)), &a, id, "achievement"); err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		// uq_achievement_title turns a clashing rename into Conflict
		return tx.Model(&a).Updates(changes).Error
	})
	if err != nil {
		return helper.FromError(c, err)
	}

	var a model.AchievementModel
	if err := ctl.DB.WithContext(ctx).Scopes(withStudents).First(&a, id).Error; err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Achievement updated", a)
}

// PATCH /achievements/students/:id?staff_id= (optional "proof_document" file)
func (ctl *AchievementController) UpdateStudent(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	staffID, err := helper.RequireUserID(c, "staff_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateStudentAchievementRequest
	if err := helper.ParseBody(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.ValidateStruct(ctl.Validate, &req); err != nil {
		return helper.FromError(c, err)
	}

	ctx := helper.ReqCtx(c)
	staged, err := filestore.StageOptional(ctx, ctl.Store, helper.OptionalFile(c, "proof_document", "file"), constants.FolderAchievementProofs)
	if err != nil {
		return helper.FromError(c, err)
	}
	changes := map[string]any{"status": req.Status}
	if req.Remarks != nil {
		changes["remarks"] = *req.Remarks
	}
	if name := staged.StoredName(); name != "" {
		changes["proof_document"] = name
	}

	var out model.StudentAchievementModel
	var replaced string
	err = ctl.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sa, err := service.OwnedStudentAchievement(ctx, tx, id, staffID)
		if err != nil {
			return err
		}
		if staged != nil && sa.ProofDocument != nil {
			replaced = *sa.ProofDocument
		}
		if err := tx.Model(&model.StudentAchievementModel{ID: sa.ID}).Updates(changes).Error; err != nil {
			return err
		}
		return tx.Preload("Student").First(&out, sa.ID).Error
	})
	if err != nil {
		staged.Discard(ctx)
		return helper.FromError(c, err)
	}
	_ = filestore.CommitAll(ctx, staged)
	filestore.DeleteQuiet(ctx, ctl.Store, constants.FolderAchievementProofs, replaced)

	return helper.JsonUpdated(c, "Student achievement updated", out)
}

/* ============================ LIFECYCLE ============================ */

// DELETE /achievements/:id[?staff_id=]
func (ctl *AchievementController) Delete(c *fiber.Ctx) error {
	return ctl.setTrash(c, true, "Achievement moved to trash")
}

// POST /achievements/:id/restore[?staff_id=]
func (ctl *AchievementController) Restore(c *fiber.Ctx) error {
	return ctl.setTrash(c, false, "Achievement restored")
}

func (ctl *AchievementController) setTrash(c *fiber.Ctx, trash bool, msg string) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	staffID, err := helper.ResolveUserID(c, "staff_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.SetTrash(helper.ReqCtx(c), ctl.DB, &model.AchievementModel{}, id, trash, service.RecordedBy(staffID)); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, msg, fiber.Map{"id": id})
}

// DELETE /achievements/:id/permanent[?staff_id=]
func (ctl *AchievementController) Purge(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	staffID, err := helper.ResolveUserID(c, "staff_id")
	if err != nil {
		return helper.FromError(c, err)
	}

	ctx := helper.ReqCtx(c)
	var proofs []string
	var removed int64
	err = ctl.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a model.AchievementModel
		if err := helper.LoadTrashed(tx, &a, id, service.RecordedBy(staffID)); err != nil {
			return err
		}
		if err := tx.Model(&model.StudentAchievementModel{}).
			Where("achievement_id = ? AND proof_document IS NOT NULL", a.ID).
			Pluck("proof_document", &proofs).Error; err != nil {
			return err
		}
		res := tx.Where("achievement_id = ?", a.ID).Delete(&model.StudentAchievementModel{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return tx.Delete(&a).Error
	})
	if err != nil {
		return helper.FromError(c, err)
	}

	filestore.DeleteQuiet(ctx, ctl.Store, constants.FolderAchievementProofs, proofs...)
	log.Printf("[Achievements.Purge] achievement=%d students=%d proofs=%d", id, removed, len(proofs))
	return helper.JsonDeleted(c, "Achievement permanently deleted", fiber.Map{"id": id, "students_deleted": removed})
}
