package controller

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"schoolstaff_backend/internals/features/staff/attendances/dto"
	"schoolstaff_backend/internals/features/staff/attendances/model"
	"schoolstaff_backend/internals/features/staff/attendances/service"
	mastersService "schoolstaff_backend/internals/features/staff/masters/service"
	helper "schoolstaff_backend/internals/helpers"
	"schoolstaff_backend/internals/helpers/dbtime"
)

type AttendanceController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewAttendanceController(db *gorm.DB) *AttendanceController {
	return &AttendanceController{DB: db, Validate: helper.NewValidator()}
}

func withMarks(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Marks", func(db *gorm.DB) *gorm.DB { return db.Order("student_id") }).
		Preload("Marks.Student").
		Preload("Class")
}

/* ============================ MARK SESSION ============================ */

// POST /attendance
func (ctl *AttendanceController) Create(c *fiber.Ctx) error {
	var req dto.CreateAttendanceRequest
	if err := helper.ParseBody(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.ValidateStruct(ctl.Validate, &req); err != nil {
		return helper.FromError(c, err)
	}
	slot, err := req.Slot()
	if err != nil {
		return helper.FromError(c, err)
	}

	ctx := helper.ReqCtx(c)
	var (
		session  *model.AttendanceModel
		created  bool
		upserted int
		skipped  []uint
	)
	err = ctl.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mastersService.RequireStudents(ctx, tx, req.SchoolID, dto.StudentIDs(req.Students)); err != nil {
			return err
		}
		onLeave, err := service.StudentsOnLeave(ctx, tx, req.SchoolID, slot.Date)
		if err != nil {
			return err
		}
		session, created, err = service.EnsureSession(ctx, tx, slot, service.SessionDefaults{
			TeacherID: req.TeacherID,
			SubjectID: req.SubjectID,
		})
		if err != nil {
			return err
		}
		if !created {
			cols := map[string]any{"teacher_id": req.TeacherID}
			if req.SubjectID != nil {
				cols["subject_id"] = *req.SubjectID
			}
			if err := tx.Model(session).Updates(cols).Error; err != nil {
				return errors.Wrap(err, "update attendance session")
			}
		}
		var marks []service.MarkInput
		marks, skipped = dto.SplitOnLeave(req.Students, onLeave)
		upserted, err = service.UpsertMarks(ctx, tx, session.ID, marks)
		return err
	})
	if err != nil {
		return helper.FromError(c, err)
	}

	log.Printf("[Attendance.Create] attendance=%d created=%t upserted=%d skipped=%d", session.ID, created, upserted, len(skipped))
	data := fiber.Map{
		"attendance_id": session.ID,
		"created":       created,
		"upserted":      upserted,
		"skipped":       skipped,
	}
	if created {
		return helper.JsonCreated(c, "Attendance created", data)
	}
	return helper.JsonOK(c, "Attendance updated", data)
}

/* ============================ READ ============================ */

// GET /attendance
func (ctl *AttendanceController) List(c *fiber.Ctx) error {
	var q dto.ListAttendanceQuery
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
			Model(&model.AttendanceModel{}).
			Scopes(helper.TrashScope(view, "")))
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return helper.FromError(c, errors.Wrap(err, "count attendance"))
	}
	var rows []model.AttendanceModel
	if err := base().
		Scopes(withMarks).
		Order("date DESC, period ASC, id DESC").
		Scopes(helper.Paginate(p)).
		Find(&rows).Error; err != nil {
		return helper.FromError(c, errors.Wrap(err, "list attendance"))
	}
	return helper.JsonList(c, "ok", rows, p.Build(total))
}

// GET /attendance/:id
func (ctl *AttendanceController) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var row model.AttendanceModel
	db := ctl.DB.WithContext(helper.ReqCtx(c)).Scopes(withMarks)
	if err := helper.FirstInView(db, helper.ParseTrashView(c), &row, id, "attendance"); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", row)
}

// GET /attendance/check?school_id=&class_id=&date=&period=
// An unmarked slot answers 200 with null data.
func (ctl *AttendanceController) Check(c *fiber.Ctx) error {
	var q dto.CheckQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	if q.SchoolID == 0 {
		id, err := helper.ResolveSchoolID(c)
		if err != nil {
			return helper.FromError(c, err)
		}
		q.SchoolID = id
	}
	if err := helper.ValidateStruct(ctl.Validate, &q); err != nil {
		return helper.FromError(c, err)
	}

	ctx := helper.ReqCtx(c)
	row, err := service.FindSession(ctx, withMarks(ctl.DB.WithContext(ctx)), q.Slot(dbtime.Today(c)))
	if err != nil {
		return helper.FromError(c, err)
	}
	if row == nil {
		return helper.JsonOK(c, "checked", nil)
	}
	return helper.JsonOK(c, "checked", row)
}

/* ============================ UPDATE ============================ */

// PATCH /attendance/:id
func (ctl *AttendanceController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateAttendanceRequest
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
		var row model.AttendanceModel
		if err := helper.FirstActive(tx, &row, id, "attendance"); err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		return tx.Model(&row).Updates(changes).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return helper.FromError(c, helper.Conflict("another attendance session already uses that class, date and period"))
		}
		return helper.FromError(c, err)
	}

	var row model.AttendanceModel
	if err := ctl.DB.WithContext(ctx).Scopes(withMarks).First(&row, id).Error; err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Attendance updated", row)
}

// PATCH /attendance/marks/:id
func (ctl *AttendanceController) UpdateMark(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
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
	changes := req.Changes()

	var mark model.AttendanceMarkedModel
	err = ctl.DB.WithContext(helper.ReqCtx(c)).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&mark, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.NotFound("attendance mark %d not found", id)
			}
			return err
		}
		var session model.AttendanceModel
		if err := helper.FirstActive(tx, &session, mark.AttendanceID, "attendance"); err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&mark).Updates(changes).Error; err != nil {
			return err
		}
		return tx.First(&mark, id).Error
	})
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Attendance mark updated", mark)
}

// PUT /attendance/:id/marks
// Upserts one mark per student; students on approved leave that day are skipped.
func (ctl *AttendanceController) UpsertMarks(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.BulkMarksRequest
	if err := helper.ParseBody(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.ValidateStruct(ctl.Validate, &req); err != nil {
		return helper.FromError(c, err)
	}

	ctx := helper.ReqCtx(c)
	var upserted int
	var skipped []uint
	err = ctl.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session model.AttendanceModel
		if err := helper.FirstActive(tx, &session, id, "attendance"); err != nil {
			return err
		}
		if err := mastersService.RequireStudents(ctx, tx, session.SchoolID, dto.StudentIDs(req.Data)); err != nil {
			return err
		}
		onLeave, err := service.StudentsOnLeave(ctx, tx, session.SchoolID, session.Date)
		if err != nil {
			return err
		}
		var marks []service.MarkInput
		marks, skipped = dto.SplitOnLeave(req.Data, onLeave)
		upserted, err = service.UpsertMarks(ctx, tx, session.ID, marks)
		return err
	})
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Attendance marks updated", fiber.Map{
		"attendance_id": id,
		"upserted":      upserted,
		"skipped":       skipped,
	})
}

/* ============================ LIFECYCLE ============================ */

// DELETE /attendance/:id
func (ctl *AttendanceController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.SetTrash(helper.ReqCtx(c), ctl.DB, &model.AttendanceModel{}, id, true); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "Attendance moved to trash", fiber.Map{"id": id})
}

// POST /attendance/:id/restore
func (ctl *AttendanceController) Restore(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.SetTrash(helper.ReqCtx(c), ctl.DB, &model.AttendanceModel{}, id, false); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Attendance restored", fiber.Map{"id": id})
}

// DELETE /attendance/:id/permanent
func (ctl *AttendanceController) Purge(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var removed int64
	err = ctl.DB.WithContext(helper.ReqCtx(c)).Transaction(func(tx *gorm.DB) error {
		var row model.AttendanceModel
		if err := helper.LoadTrashed(tx, &row, id); err != nil {
			return err
		}
		res := tx.Where("attendance_id = ?", row.ID).Delete(&model.AttendanceMarkedModel{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return tx.Delete(&row).Error
	})
	if err != nil {
		return helper.FromError(c, err)
	}
	log.Printf("[Attendance.Purge] attendance=%d marks=%d", id, removed)
	return helper.JsonDeleted(c, "Attendance permanently deleted", fiber.Map{"id": id, "marks_deleted": removed})
}
