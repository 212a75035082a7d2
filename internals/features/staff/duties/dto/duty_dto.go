package dto

import (
	"gorm.io/gorm"

	helper "schoolstaff_backend/internals/helpers"
	"schoolstaff_backend/internals/helpers/dbtime"
)

type ListDutyQuery struct {
	Q        string `query:"q"`
	Deadline string `query:"deadline" json:"deadline" validate:"omitempty,ymd"`
}

// Apply expects duty_assignments joined to duties.
func (q *ListDutyQuery) Apply(db *gorm.DB) *gorm.DB {
	if d, err := dbtime.ParseOptionalDate(q.Deadline); err == nil && d != nil {
		db = db.Where("duties.deadline = ?", *d)
	}
	return db.Scopes(helper.SearchScope(q.Q, "duties.title", "duties.description"))
}

// UpdateDutyRequest arrives as JSON or multipart with an optional "solved_file".
type UpdateDutyRequest struct {
	StaffID uint    `json:"staff_id" form:"staff_id"`
	Status  *string `json:"status" form:"status" validate:"omitempty,oneof=pending in_progress completed"`
	Remarks *string `json:"remarks" form:"remarks" validate:"omitempty,max=1000"`
}

func (r *UpdateDutyRequest) Changes() map[string]any {
	out := map[string]any{}
	if r.Status != nil {
		out["status"] = *r.Status
	}
	if r.Remarks != nil {
		out["remarks"] = *r.Remarks
	}
	return out
}
