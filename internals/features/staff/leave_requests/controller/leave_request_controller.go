package controller

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolstaff_backend/internals/constants"
	"schoolstaff_backend/internals/features/staff/leave_requests/dto"
	"schoolstaff_backend/internals/features/staff/leave_requests/model"
	"schoolstaff_backend/internals/features/staff/leave_requests/service"
	mastersService "schoolstaff_backend/internals/features/staff/masters/service"
	helper "schoolstaff_backend/internals/helpers"
	"schoolstaff_backend/internals/helpers/filestore"
)

type LeaveRequestController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Store    filestore.Store
	Decider  *service.LeaveDecisionService
}

func NewLeaveRequestController(db *gorm.DB, store filestore.Store) *LeaveRequestController {
	return &LeaveRequestController{
		DB:       db,
		Validate: helper.NewValidator(),
		Store:    store,
		Decider:  service.NewLeaveDecisionService(db),
	}
}

/* ============================ CREATE ============================ */

// POST /leave-requests
func (ctl *LeaveRequestController) CreateStaff(c *fiber.Ctx) error {
	return ctl.create(c, false)
}

// POST /leave-requests/students
func (ctl *LeaveRequestController) CreateStudent(c *fiber.Ctx) error {
	return ctl.create(c, true)
}

func (ctl *LeaveRequestController) create(c *fiber.Ctx, forStudent bool) error {
	var req dto.CreateLeaveRequest
	if err := helper.ParseBody(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.ValidateStruct(ctl.Validate, &req); err != nil {
		return helper.FromError(c, err)
	}
	leave, err := req.ToModel(forStudent)
	if err != nil {
		return helper.FromError(c, err)
	}
	if _, err := service.CheckRange(leave, ctl.Decider.MaxRangeDays); err != nil {
		return helper.FromError(c, err)
	}

	ctx := helper.ReqCtx(c)
	staged, err := filestore.StageOptional(ctx, ctl.Store, helper.OptionalFile(c, "attachment", "file"), constants.FolderLeaveRequests)
	if err != nil {
		return helper.FromError(c, err)
	}
	if name := staged.StoredName(); name != "" {
		leave.Attachment = &name
	}

	err = ctl.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if leave.IsStudentLeave() {
			if err := mastersService.RequireStudents(ctx, tx, leave.SchoolID, []uint{*leave.StudentID}); err != nil {
				return err
			}
		}
		if err := service.EnsureNoDuplicate(ctx, tx, leave, 0); err != nil {
			return err
		}
		return tx.Create(leave).Error
	})
	if err != nil {
		staged.Discard(ctx)
		return helper.FromError(c, err)
	}
	_ = filestore.CommitAll(ctx, staged)

	log.Printf("[LeaveRequests.Create] leave=%d user=%d role=%s", leave.ID, leave.UserID, leave.Role)
	return helper.JsonCreated(c, "Leave request created", leave)
}

/* ============================ READ ============================ */

// GET /leave-requests?user_id=
func (ctl *LeaveRequestController) List(c *fiber.Ctx) error {
	userID, err := helper.RequireUserID(c, "user_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var q dto.ListLeaveQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	view := helper.ParseTrashView(c)
	p := helper.ResolvePaging(c, helper.DefaultPerPage, helper.MaxPerPage)

	filtered, err := q.Apply(ctl.DB.WithContext(helper.ReqCtx(c)).
		Model(&model.LeaveRequestModel{}).
		Scopes(service.OwnedBy(userID), helper.TrashScope(view, "")))
	if err != nil {
		return helper.FromError(c, err)
	}

	var total int64
	if err := filtered.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.FromError(c, errors.Wrap(err, "count leave requests"))
	}
	var rows []model.LeaveRequestModel
	if err := filtered.Session(&gorm.Session{}).
		Preload("User").
		Preload("Student").
		Order("from_date DESC, id DESC").
		Scopes(helper.Paginate(p)).
		Find(&rows).Error; err != nil {
		return helper.FromError(c, errors.Wrap(err, "list leave requests"))
	}
	return helper.JsonList(c, "ok", rows, p.Build(total))
}

// GET /leave-requests/:id?user_id=
func (ctl *LeaveRequestController) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	userID, err := helper.RequireUserID(c, "user_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var leave model.LeaveRequestModel
	db := ctl.DB.WithContext(helper.ReqCtx(c)).Scopes(service.OwnedBy(userID)).Preload("User").Preload("Student")
	if err := helper.FirstInView(db, helper.ParseTrashView(c), &leave, id, "leave request"); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", leave)
}

/* ============================ UPDATE ============================ */

// PATCH /leave-requests/:id?user_id=
func (ctl *LeaveRequestController) UpdateStaff(c *fiber.Ctx) error {
	return ctl.update(c, false)
}

// PATCH /leave-requests/students/:id?user_id=
func (ctl *LeaveRequestController) UpdateStudent(c *fiber.Ctx) error {
	return ctl.update(c, true)
}

func (ctl *LeaveRequestController) update(c *fiber.Ctx, forStudent bool) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	userID, err := helper.RequireUserID(c, "user_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateLeaveRequest
	if err := helper.ParseBody(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.ValidateStruct(ctl.Validate, &req); err != nil {
		return helper.FromError(c, err)
	}

	ctx := helper.ReqCtx(c)
	staged, err := filestore.StageOptional(ctx, ctl.Store, helper.OptionalFile(c, "attachment", "file"), constants.FolderLeaveRequests)
	if err != nil {
		return helper.FromError(c, err)
	}

	var leave model.LeaveRequestModel
	var replaced string
	err = ctl.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := helper.FirstActive(
			tx.Clauses(clause.Locking{Strength: "UPDATE"}).Scopes(service.OwnedBy(userID), service.StudentLeaves(forStudent)),
			&leave, id, "leave request"); err != nil {
			return err
		}
		if leave.Status != constants.LeavePending {
			return helper.InvalidArgument("leave request is already %s", leave.Status)
		}
		cols, err := req.ApplyTo(&leave, forStudent)
		if err != nil {
			return err
		}
		if name := staged.StoredName(); name != "" {
			if leave.Attachment != nil {
				replaced = *leave.Attachment
			}
			leave.Attachment = &name
			cols = append(cols, "attachment")
		}
		if len(cols) == 0 {
			return nil
		}
		if _, err := service.CheckRange(&leave, ctl.Decider.MaxRangeDays); err != nil {
			return err
		}
		if forStudent {
			if err := mastersService.RequireStudents(ctx, tx, leave.SchoolID, []uint{*leave.StudentID}); err != nil {
				return err
			}
		}
		if err := service.EnsureNoDuplicate(ctx, tx, &leave, leave.ID); err != nil {
			return err
		}
		return tx.Model(&leave).Select(append(cols, "updated_at")).Updates(&leave).Error
	})
	if err != nil {
		staged.Discard(ctx)
		return helper.FromError(c, err)
	}
	_ = filestore.CommitAll(ctx, staged)
	filestore.DeleteQuiet(ctx, ctl.Store, constants.FolderLeaveRequests, replaced)

	return helper.JsonUpdated(c, "Leave request updated", leave)
}

// PATCH /leave-requests/:id/decision?status=&user_id=&admin_remarks=
func (ctl *LeaveRequestController) Decide(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	approverID, err := helper.RequireUserID(c, "user_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var q dto.DecisionQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	leave, err := ctl.Decider.Decide(helper.ReqCtx(c), service.DecisionInput{
		LeaveID:      id,
		ApproverID:   approverID,
		Status:       q.Status,
		AdminRemarks: q.AdminRemarks,
	})
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Leave request "+leave.Status, leave)
}

/* ============================ LIFECYCLE ============================ */

// DELETE /leave-requests/:id?user_id=
func (ctl *LeaveRequestController) Delete(c *fiber.Ctx) error {
	return ctl.setTrash(c, true, "Leave request moved to trash")
}

// POST /leave-requests/:id/restore?user_id=
func (ctl *LeaveRequestController) Restore(c *fiber.Ctx) error {
	return ctl.setTrash(c, false, "Leave request restored")
}

func (ctl *LeaveRequestController) setTrash(c *fiber.Ctx, trash bool, msg string) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	userID, err := helper.RequireUserID(c, "user_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.SetTrash(helper.ReqCtx(c), ctl.DB, &model.LeaveRequestModel{}, id, trash, service.OwnedBy(userID)); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, msg, fiber.Map{"id": id})
}

// DELETE /leave-requests/:id/permanent?user_id=
func (ctl *LeaveRequestController) Purge(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	userID, err := helper.RequireUserID(c, "user_id")
	if err != nil {
		return helper.FromError(c, err)
	}

	ctx := helper.ReqCtx(c)
	var leave model.LeaveRequestModel
	err = ctl.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := helper.LoadTrashed(tx, &leave, id, service.OwnedBy(userID)); err != nil {
			return err
		}
		return tx.Delete(&leave).Error
	})
	if err != nil {
		return helper.FromError(c, err)
	}
	if leave.Attachment != nil {
		filestore.DeleteQuiet(ctx, ctl.Store, constants.FolderLeaveRequests, *leave.Attachment)
	}

	log.Printf("[LeaveRequests.Purge] leave=%d user=%d", id, userID)
	return helper.JsonDeleted(c, "Leave request permanently deleted", fiber.Map{"id": id})
}
