package dto

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"schoolstaff_backend/internals/constants"
	"schoolstaff_backend/internals/features/staff/attendances/service"
	helper "schoolstaff_backend/internals/helpers"
	"schoolstaff_backend/internals/helpers/dbtime"
)

type MarkRequest struct {
	StudentID uint    `json:"student_id" validate:"required"`
	Status    string  `json:"status" validate:"required,oneof=present absent leave late"`
	Remarks   *string `json:"remarks" validate:"omitempty,max=500"`
}

func toInputs(in []MarkRequest) []service.MarkInput {
	out := make([]service.MarkInput, 0, len(in))
	for _, m := range in {
		out = append(out, service.MarkInput{StudentID: m.StudentID, Status: m.Status, Remarks: m.Remarks})
	}
	return out
}

// SplitOnLeave drops marks for students in onLeave and returns the skipped ids.
func SplitOnLeave(marks []MarkRequest, onLeave []uint) ([]service.MarkInput, []uint) {
	away := make(map[uint]bool, len(onLeave))
	for _, id := range onLeave {
		away[id] = true
	}
	keep := make([]MarkRequest, 0, len(marks))
	skipped := []uint{}
	for _, m := range marks {
		if away[m.StudentID] {
			skipped = append(skipped, m.StudentID)
			continue
		}
		keep = append(keep, m)
	}
	return toInputs(keep), skipped
}

func StudentIDs(marks []MarkRequest) []uint {
	ids := make([]uint, 0, len(marks))
	for _, m := range marks {
		ids = append(ids, m.StudentID)
	}
	return ids
}

/* =========================================================
   CREATE / MARK SESSION
========================================================= */

type CreateAttendanceRequest struct {
	SchoolID  uint          `json:"school_id" validate:"required"`
	ClassID   uint          `json:"class_id" validate:"required"`
	TeacherID uint          `json:"teacher_id" validate:"required"`
	SubjectID *uint         `json:"subject_id" validate:"omitempty,gt=0"`
	Period    int           `json:"period" validate:"gte=0,lte=12"`
	Date      string        `json:"date" validate:"required,ymd"`
	Students  []MarkRequest `json:"students" validate:"required,dive"`
}

func (r *CreateAttendanceRequest) Slot() (service.Slot, error) {
	d, err := dbtime.ParseDate(r.Date)
	if err != nil {
		return service.Slot{}, helper.InvalidArgument("date must be YYYY-MM-DD")
	}
	period := r.Period
	if period == 0 {
		period = constants.DefaultPeriod
	}
	return service.Slot{SchoolID: r.SchoolID, ClassID: r.ClassID, Date: d, Period: period}, nil
}

/* =========================================================
   UPDATE
========================================================= */

type UpdateAttendanceRequest struct {
	TeacherID *uint   `json:"teacher_id" validate:"omitempty,gt=0"`
	ClassID   *uint   `json:"class_id" validate:"omitempty,gt=0"`
	SubjectID *uint   `json:"subject_id" validate:"omitempty,gt=0"`
	Period    *int    `json:"period" validate:"omitempty,gte=1,lte=12"`
	Date      *string `json:"date" validate:"omitempty,ymd"`
}

func (r *UpdateAttendanceRequest) Changes() (map[string]any, error) {
	out := map[string]any{}
	if r.TeacherID != nil {
		out["teacher_id"] = *r.TeacherID
	}
	if r.ClassID != nil {
		out["class_id"] = *r.ClassID
	}
	if r.SubjectID != nil {
		out["subject_id"] = *r.SubjectID
	}
	if r.Period != nil {
		out["period"] = *r.Period
	}
	if r.Date != nil {
		d, err := dbtime.ParseDate(*r.Date)
		if err != nil {
			return nil, helper.InvalidArgument("date must be YYYY-MM-DD")
		}
		out["date"] = d
	}
	return out, nil
}

type UpdateMarkRequest struct {
	Status  *string `json:"status" validate:"omitempty,oneof=present absent leave late"`
	Remarks *string `json:"remarks" validate:"omitempty,max=500"`
}

func (r *UpdateMarkRequest) Changes() map[string]any {
	out := map[string]any{}
	if r.Status != nil {
		out["status"] = *r.Status
	}
	if r.Remarks != nil {
		out["remarks"] = *r.Remarks
	}
	return out
}

type BulkMarksRequest struct {
	Data []MarkRequest `json:"data" validate:"required,min=1,dive"`
}

/* =========================================================
   QUERIES
========================================================= */

type ListAttendanceQuery struct {
	Date      string `query:"date" json:"date" validate:"omitempty,ymd"`
	SchoolID  uint   `query:"school_id"`
	TeacherID uint   `query:"teacher_id"`
	ClassID   uint   `query:"class_id"`
}

func (q *ListAttendanceQuery) Apply(db *gorm.DB) *gorm.DB {
	if q.SchoolID != 0 {
		db = db.Where("school_id = ?", q.SchoolID)
	}
	if q.TeacherID != 0 {
		db = db.Where("teacher_id = ?", q.TeacherID)
	}
	if q.ClassID != 0 {
		db = db.Where("class_id = ?", q.ClassID)
	}
	if d, err := dbtime.ParseOptionalDate(q.Date); err == nil && d != nil {
		db = db.Where("date = ?", *d)
	}
	return db
}

// CheckQuery: date defaults to today in the school's zone, period to 1.
type CheckQuery struct {
	SchoolID uint   `query:"school_id" json:"school_id" validate:"required"`
	ClassID  uint   `query:"class_id" json:"class_id" validate:"required"`
	Date     string `query:"date" json:"date" validate:"omitempty,ymd"`
	Period   int    `query:"period" json:"period" validate:"gte=0"`
}

func (q *CheckQuery) Slot(today datatypes.Date) service.Slot {
	date := today
	if d, err := dbtime.ParseOptionalDate(q.Date); err == nil && d != nil {
		date = *d
	}
	period := q.Period
	if period == 0 {
		period = constants.DefaultPeriod
	}
	return service.Slot{SchoolID: q.SchoolID, ClassID: q.ClassID, Date: date, Period: period}
}
