package controller

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"schoolstaff_backend/internals/constants"
	"schoolstaff_backend/internals/features/staff/duties/dto"
	"schoolstaff_backend/internals/features/staff/duties/model"
	helper "schoolstaff_backend/internals/helpers"
	"schoolstaff_backend/internals/helpers/filestore"
)

type DutyController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Store    filestore.Store
}

func NewDutyController(db *gorm.DB, store filestore.Store) *DutyController {
	return &DutyController{DB: db, Validate: helper.NewValidator(), Store: store}
}

// assigned scopes duty_assignments to one staff member and to live duties.
func assigned(staffID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN duties ON duties.id = duty_assignments.duty_id").
			Where("duty_assignments.staff_id = ?", staffID).
			Scopes(helper.ActiveOnly("duties"))
	}
}

func (ctl *DutyController) find(tx *gorm.DB, id, staffID uint) (*model.DutyAssignmentModel, error) {
	var a model.DutyAssignmentModel
	err := tx.Scopes(assigned(staffID)).
		Preload("Duty").
		Where("duty_assignments.id = ?", id).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, helper.NotFound("duty %d not found for staff %d", id, staffID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "load duty assignment")
	}
	return &a, nil
}

// GET /duties?staff_id=
func (ctl *DutyController) List(c *fiber.Ctx) error {
	staffID, err := helper.RequireUserID(c, "staff_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var q dto.ListDutyQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	if err := helper.ValidateStruct(ctl.Validate, &q); err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ResolvePaging(c, helper.DefaultPerPage, helper.MaxPerPage)

	base := func() *gorm.DB {
		return q.Apply(ctl.DB.WithContext(helper.ReqCtx(c)).
			Model(&model.DutyAssignmentModel{}).
			Scopes(assigned(staffID)))
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return helper.FromError(c, errors.Wrap(err, "count duties"))
	}
	var rows []model.DutyAssignmentModel
	if err := base().
		Preload("Duty").
		Order("duties.deadline ASC, duty_assignments.id DESC").
		Scopes(helper.Paginate(p)).
		Find(&rows).Error; err != nil {
		return helper.FromError(c, errors.Wrap(err, "list duties"))
	}
	return helper.JsonList(c, "ok", rows, p.Build(total))
}

// GET /duties/:id?staff_id=
func (ctl *DutyController) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	staffID, err := helper.RequireUserID(c, "staff_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	a, err := ctl.find(ctl.DB.WithContext(helper.ReqCtx(c)), id, staffID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", a)
}

// PATCH /duties/:id (JSON or multipart; a new "solved_file" replaces the old one)
func (ctl *DutyController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateDutyRequest
	if err := helper.ParseBody(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	if err := helper.ValidateStruct(ctl.Validate, &req); err != nil {
		return helper.FromError(c, err)
	}
	if req.StaffID == 0 {
		if req.StaffID, err = helper.RequireUserID(c, "staff_id"); err != nil {
			return helper.FromError(c, err)
		}
	}
	changes := req.Changes()

	ctx := helper.ReqCtx(c)
	staged, err := filestore.StageOptional(ctx, ctl.Store, helper.OptionalFile(c, "solved_file", "file"), constants.FolderSolvedDuties)
	if err != nil {
		return helper.FromError(c, err)
	}
	if name := staged.StoredName(); name != "" {
		changes["solved_file"] = name
	}

	var out *model.DutyAssignmentModel
	var replaced string
	err = ctl.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := ctl.find(tx, id, req.StaffID)
		if err != nil {
			return err
		}
		if staged != nil && a.SolvedFile != nil {
			replaced = *a.SolvedFile
		}
		if len(changes) > 0 {
			if err := tx.Model(&model.DutyAssignmentModel{ID: a.ID}).Updates(changes).Error; err != nil {
				return err
			}
		}
		out, err = ctl.find(tx, id, req.StaffID)
		return err
	})
	if err != nil {
		staged.Discard(ctx)
		return helper.FromError(c, err)
	}
	_ = filestore.CommitAll(ctx, staged)
	filestore.DeleteQuiet(ctx, ctl.Store, constants.FolderSolvedDuties, replaced)

	log.Printf("[Duties.Update] assignment=%d staff=%d status=%s", out.ID, out.StaffID, out.Status)
	return helper.JsonUpdated(c, "Duty updated", out)
}
