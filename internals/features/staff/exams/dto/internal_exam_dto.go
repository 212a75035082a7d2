package dto

import (
	"strings"

	"gorm.io/gorm"

	"schoolstaff_backend/internals/features/staff/exams/model"
	helper "schoolstaff_backend/internals/helpers"
	"schoolstaff_backend/internals/helpers/dbtime"
)

/* =========================================================
   REQUESTS
========================================================= */

type MarkEntry struct {
	StudentID     uint    `json:"student_id" validate:"required"`
	MarksObtained float64 `json:"marks_obtained" validate:"gte=0"`
}

type CreateExamRequest struct {
	SchoolID     uint        `json:"school_id" validate:"required"`
	ClassID      uint        `json:"class_id" validate:"required"`
	SubjectID    uint        `json:"subject_id" validate:"required"`
	InternalName string      `json:"internal_name" validate:"required,max=200"`
	MaxMarks     float64     `json:"max_marks" validate:"required,gt=0"`
	Date         string      `json:"date" validate:"required,ymd"`
	Marks        []MarkEntry `json:"marks" validate:"dive"`
}

func (r *CreateExamRequest) ToModel() (*model.InternalExamModel, error) {
	date, err := dbtime.ParseDate(r.Date)
	if err != nil {
		return nil, helper.InvalidArgument("date must be YYYY-MM-DD")
	}
	exam := &model.InternalExamModel{
		SchoolID:     r.SchoolID,
		ClassID:      r.ClassID,
		SubjectID:    r.SubjectID,
		InternalName: strings.TrimSpace(r.InternalName),
		MaxMarks:     r.MaxMarks,
		Date:         date,
	}
	for _, m := range r.Marks {
		if m.MarksObtained > r.MaxMarks {
			return nil, helper.InvalidArgument("marks for student %d exceed max_marks %.2f", m.StudentID, r.MaxMarks)
		}
		exam.Marks = append(exam.Marks, model.MarkModel{StudentID: m.StudentID, MarksObtained: m.MarksObtained})
	}
	return exam, nil
}

func (r *CreateExamRequest) StudentIDs() []uint {
	ids := make([]uint, 0, len(r.Marks))
	for _, m := range r.Marks {
		ids = append(ids, m.StudentID)
	}
	return ids
}

// UpdateExamRequest: nil fields are left untouched.
type UpdateExamRequest struct {
	ClassID      *uint    `json:"class_id" validate:"omitempty,gt=0"`
	SubjectID    *uint    `json:"subject_id" validate:"omitempty,gt=0"`
	InternalName *string  `json:"internal_name" validate:"omitempty,max=200"`
	MaxMarks     *float64 `json:"max_marks" validate:"omitempty,gt=0"`
	Date         *string  `json:"date" validate:"omitempty,ymd"`
}

// Changes builds the column map for Updates.
func (r *UpdateExamRequest) Changes() (map[string]any, error) {
	out := map[string]any{}
	if r.ClassID != nil {
		out["class_id"] = *r.ClassID
	}
	if r.SubjectID != nil {
		out["subject_id"] = *r.SubjectID
	}
	if r.InternalName != nil {
		name := strings.TrimSpace(*r.InternalName)
		if name == "" {
			return nil, helper.InvalidArgument("internal_name cannot be empty")
		}
		out["internal_name"] = name
	}
	if r.MaxMarks != nil {
		out["max_marks"] = *r.MaxMarks
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
	MarksObtained *float64 `json:"marks_obtained" validate:"required,gte=0"`
}

/* =========================================================
   LIST QUERY
========================================================= */

type ListExamQuery struct {
	Q         string `query:"q"`
	ClassID   uint   `query:"class_id"`
	SubjectID uint   `query:"subject_id"`
	Date      string `query:"date" validate:"omitempty,ymd"`
}

// Apply adds the filters: q searches internal_name, or matches the exam date when it parses as one.
func (q *ListExamQuery) Apply(db *gorm.DB) *gorm.DB {
	if q.ClassID != 0 {
		db = db.Where("class_id = ?", q.ClassID)
	}
	if q.SubjectID != 0 {
		db = db.Where("subject_id = ?", q.SubjectID)
	}
	if d, err := dbtime.ParseOptionalDate(q.Date); err == nil && d != nil {
		db = db.Where("date = ?", *d)
	}
	term := strings.TrimSpace(q.Q)
	if d, err := dbtime.ParseDate(term); err == nil {
		return db.Where("(LOWER(internal_name) LIKE LOWER(?) OR date = ?)", "%"+term+"%", d)
	}
	return db.Scopes(helper.SearchScope(term, "internal_name"))
}
