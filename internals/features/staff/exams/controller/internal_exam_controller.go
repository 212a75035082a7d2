package controller

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"schoolstaff_backend/internals/features/staff/exams/dto"
	"schoolstaff_backend/internals/features/staff/exams/model"
	mastersService "schoolstaff_backend/internals/features/staff/masters/service"
	helper "schoolstaff_backend/internals/helpers"
)

type ExamController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewExamController(db *gorm.DB) *ExamController {
	return &ExamController{DB: db, Validate: helper.NewValidator()}
}

/* ============================ CREATE ============================ */

// POST /exams
func (ctl *ExamController) Create(c *fiber.Ctx) error {
	var req dto.CreateExamRequest
	if err := helper.ParseBody(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.ValidateStruct(ctl.Validate, &req); err != nil {
		return helper.FromError(c, err)
	}
	exam, err := req.ToModel()
	if err != nil {
		return helper.FromError(c, err)
	}

	ctx := helper.ReqCtx(c)
	err = ctl.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mastersService.RequireStudents(ctx, tx, req.SchoolID, req.StudentIDs()); err != nil {
			return err
		}
		return tx.Create(exam).Error
	})
	if err != nil {
		return helper.FromError(c, err)
	}

	log.Printf("[Exams.Create] exam=%d school=%d marks=%d", exam.ID, exam.SchoolID, len(exam.Marks))
	return helper.JsonCreated(c, "Internal exam and marks created", exam)
}

/* ============================ READ ============================ */

// GET /exams
func (ctl *ExamController) List(c *fiber.Ctx) error {
	var q dto.ListExamQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	if err := helper.ValidateStruct(ctl.Validate, &q); err != nil {
		return helper.FromError(c, err)
	}
	view := helper.ParseTrashView(c)
	p := helper.ResolvePaging(c, helper.DefaultPerPage, helper.MaxPerPage)

	base := func() *gorm.DB {
		return q.Apply(ctl.DB.WithContext(helper.ReqCtx(c)).
			Model(&model.InternalExamModel{}).
			Scopes(helper.TrashScope(view, "")))
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return helper.FromError(c, errors.Wrap(err, "count exams"))
	}
	var rows []model.InternalExamModel
	if err := base().
		Preload("Marks.Student").
		Preload("School").
		Preload("Class").
		Preload("Subject").
		Order("date DESC, id DESC").
		Scopes(helper.Paginate(p)).
		Find(&rows).Error; err != nil {
		return helper.FromError(c, errors.Wrap(err, "list exams"))
	}
	return helper.JsonList(c, "ok", rows, p.Build(total))
}

// GET /exams/:id
func (ctl *ExamController) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var exam model.InternalExamModel
	db := ctl.DB.WithContext(helper.ReqCtx(c)).
		Preload("Marks.Student").
		Preload("School").
		Preload("Class").
		Preload("Subject")
	if err := helper.FirstInView(db, helper.ParseTrashView(c), &exam, id, "exam"); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", exam)
}

/* ============================ UPDATE ============================ */

// PATCH /exams/:id
func (ctl *ExamController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateExamRequest
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

	var exam model.InternalExamModel
	err = ctl.DB.WithContext(helper.ReqCtx(c)).Transaction(func(tx *gorm.DB) error {
		if err := helper.FirstActive(tx, &exam, id, "exam"); err != nil {
			return err
		}
		if req.MaxMarks != nil {
			var highest float64
			if err := tx.Model(&model.MarkModel{}).
				Where("internal_id = ?", exam.ID).
				Select("COALESCE(MAX(marks_obtained), 0)").
				Scan(&highest).Error; err != nil {
				return errors.Wrap(err, "check marks")
			}
			if highest > *req.MaxMarks {
				return helper.InvalidArgument("max_marks %.2f is below an existing mark of %.2f", *req.MaxMarks, highest)
			}
		}
		if len(changes) == 0 {
			return nil
		}
		return tx.Model(&exam).Updates(changes).Error
	})
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := ctl.DB.WithContext(helper.ReqCtx(c)).First(&exam, id).Error; err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Exam updated", exam)
}

// PATCH /exams/marks/:mark_id
func (ctl *ExamController) UpdateMark(c *fiber.Ctx) error {
	markID, err := helper.ParseUintParam(c, "mark_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateMarkRequest
	if err := helper.ParseBody(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.ValidateStruct(ctl.Validate, &req); err != nil {
		return helper.FromError(c, err)
	}

	var mark model.MarkModel
	err = ctl.DB.WithContext(helper.ReqCtx(c)).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&mark, markID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.NotFound("mark %d not found", markID)
			}
			return err
		}
		var exam model.InternalExamModel
		if err := helper.FirstActive(tx, &exam, mark.InternalID, "exam"); err != nil {
			return err
		}
		if *req.MarksObtained > exam.MaxMarks {
			return helper.InvalidArgument("marks_obtained must be between 0 and %.2f", exam.MaxMarks)
		}
		mark.MarksObtained = *req.MarksObtained
		return tx.Model(&mark).Update("marks_obtained", mark.MarksObtained).Error
	})
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Mark updated", mark)
}

/* ============================ LIFECYCLE ============================ */

// DELETE /exams/:id
func (ctl *ExamController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.SetTrash(helper.ReqCtx(c), ctl.DB, &model.InternalExamModel{}, id, true); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "Exam moved to trash", fiber.Map{"id": id})
}

// POST /exams/:id/restore
func (ctl *ExamController) Restore(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.SetTrash(helper.ReqCtx(c), ctl.DB, &model.InternalExamModel{}, id, false); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Exam restored", fiber.Map{"id": id})
}

// DELETE /exams/:id/permanent
func (ctl *ExamController) Purge(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var removedMarks int64
	err = ctl.DB.WithContext(helper.ReqCtx(c)).Transaction(func(tx *gorm.DB) error {
		var exam model.InternalExamModel
		if err := helper.LoadTrashed(tx, &exam, id); err != nil {
			return err
		}
		res := tx.Where("internal_id = ?", exam.ID).Delete(&model.MarkModel{})
		if res.Error != nil {
			return res.Error
		}
		removedMarks = res.RowsAffected
		return tx.Delete(&exam).Error
	})
	if err != nil {
		return helper.FromError(c, err)
	}
	log.Printf("[Exams.Purge] exam=%d marks=%d", id, removedMarks)
	return helper.JsonDeleted(c, "Exam permanently deleted", fiber.Map{"id": id, "marks_deleted": removedMarks})
}
