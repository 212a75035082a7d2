package dto

import (
	"strings"

	"gorm.io/gorm"

	"schoolstaff_backend/internals/constants"
	"schoolstaff_backend/internals/features/staff/homeworks/model"
	helper "schoolstaff_backend/internals/helpers"
	"schoolstaff_backend/internals/helpers/dbtime"
)

/* =========================================================
   CREATE
========================================================= */

type AssignmentInput struct {
	StudentID uint     `json:"student_id" validate:"required"`
	Status    string   `json:"status" validate:"omitempty,oneof=pending submitted completed"`
	Points    *float64 `json:"points" validate:"omitempty,gte=0"`
}

// CreateHomeworkRequest arrives as JSON or multipart; in multipart the
// assignments field carries a JSON array.
type CreateHomeworkRequest struct {
	SchoolID    uint              `json:"school_id" form:"school_id" validate:"required"`
	TeacherID   uint              `json:"teacher_id" form:"teacher_id" validate:"required"`
	ClassID     uint              `json:"class_id" form:"class_id" validate:"required"`
	SubjectID   uint              `json:"subject_id" form:"subject_id" validate:"required"`
	Description string            `json:"description" form:"description" validate:"required"`
	DueDate     string            `json:"due_date" form:"due_date" validate:"omitempty,ymd"`
	Assignments []AssignmentInput `json:"assignments" form:"-" validate:"dive"`
}

func (r *CreateHomeworkRequest) ToModel() (*model.HomeworkModel, error) {
	due, err := dbtime.ParseOptionalDate(r.DueDate)
	if err != nil {
		return nil, helper.InvalidArgument("due_date must be YYYY-MM-DD")
	}
	hw := &model.HomeworkModel{
		SchoolID:    r.SchoolID,
		TeacherID:   r.TeacherID,
		ClassID:     r.ClassID,
		SubjectID:   r.SubjectID,
		Description: strings.TrimSpace(r.Description),
		DueDate:     due,
	}
	seen := make(map[uint]bool, len(r.Assignments))
	for _, a := range r.Assignments {
		if seen[a.StudentID] {
			return nil, helper.InvalidArgument("student %d is assigned twice", a.StudentID)
		}
		seen[a.StudentID] = true
		status := a.Status
		if status == "" {
			status = constants.HomeworkPending
		}
		hw.Assignments = append(hw.Assignments, model.HomeworkAssignmentModel{
			StudentID: a.StudentID,
			Status:    status,
			Points:    a.Points,
		})
	}
	return hw, nil
}

func (r *CreateHomeworkRequest) StudentIDs() []uint {
	ids := make([]uint, 0, len(r.Assignments))
	for _, a := range r.Assignments {
		ids = append(ids, a.StudentID)
	}
	return ids
}

/* =========================================================
   UPDATE
========================================================= */

// UpdateHomeworkRequest: nil fields are left untouched; an empty due_date clears it.
type UpdateHomeworkRequest struct {
	ClassID     *uint   `json:"class_id" form:"class_id" validate:"omitempty,gt=0"`
	SubjectID   *uint   `json:"subject_id" form:"subject_id" validate:"omitempty,gt=0"`
	Description *string `json:"description" form:"description"`
	DueDate     *string `json:"due_date" form:"due_date" validate:"omitempty,ymd"`
}

func (r *UpdateHomeworkRequest) Changes() (map[string]any, error) {
	out := map[string]any{}
	if r.ClassID != nil {
		out["class_id"] = *r.ClassID
	}
	if r.SubjectID != nil {
		out["subject_id"] = *r.SubjectID
	}
	if r.Description != nil {
		d := strings.TrimSpace(*r.Description)
		if d == "" {
			return nil, helper.InvalidArgument("description cannot be empty")
		}
		out["description"] = d
	}
	if r.DueDate != nil {
		due, err := dbtime.ParseOptionalDate(*r.DueDate)
		if err != nil {
			return nil, helper.InvalidArgument("due_date must be YYYY-MM-DD")
		}
		out["due_date"] = due
	}
	return out, nil
}

type UpdateAssignmentRequest struct {
	Status *string  `json:"status" form:"status" validate:"omitempty,oneof=pending submitted completed"`
	Points *float64 `json:"points" form:"points" validate:"omitempty,gte=0"`
}

func (r *UpdateAssignmentRequest) Changes() map[string]any {
	out := map[string]any{}
	if r.Status != nil {
		out["status"] = *r.Status
	}
	if r.Points != nil {
		out["points"] = *r.Points
	}
	return out
}

type AssignmentUpdate struct {
	StudentID uint     `json:"student_id" validate:"required"`
	Status    string   `json:"status" validate:"required,oneof=pending submitted completed"`
	Points    *float64 `json:"points" validate:"omitempty,gte=0"`
}

type BulkAssignmentRequest struct {
	Updates []AssignmentUpdate `json:"updates" validate:"required,min=1,dive"`
}

/* =========================================================
   LIST QUERY
========================================================= */

type ListHomeworkQuery struct {
	Q         string `query:"q"`
	TeacherID uint   `query:"teacher_id"`
	ClassID   uint   `query:"class_id"`
	SubjectID uint   `query:"subject_id"`
}

func (q *ListHomeworkQuery) Apply(db *gorm.DB) *gorm.DB {
	if q.TeacherID != 0 {
		db = db.Where("teacher_id = ?", q.TeacherID)
	}
	if q.ClassID != 0 {
		db = db.Where("class_id = ?", q.ClassID)
	}
	if q.SubjectID != 0 {
		db = db.Where("subject_id = ?", q.SubjectID)
	}
	return db.Scopes(helper.SearchScope(q.Q, "description"))
}
