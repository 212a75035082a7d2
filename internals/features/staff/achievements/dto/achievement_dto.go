package dto

import (
	"strings"

	"gorm.io/gorm"

	"schoolstaff_backend/internals/constants"
	"schoolstaff_backend/internals/features/staff/achievements/model"
	helper "schoolstaff_backend/internals/helpers"
	"schoolstaff_backend/internals/helpers/dbtime"
)

type StudentEntry struct {
	StudentID uint    `json:"student_id" validate:"required"`
	Status    string  `json:"status" validate:"required,oneof='1st prize' '2nd prize' '3rd prize' participant other"`
	Remarks   *string `json:"remarks" validate:"omitempty,max=500"`
}

// CreateAchievementRequest arrives as multipart (students as a JSON field,
// proofs under "files" in the same order) or as plain JSON without proofs.
type CreateAchievementRequest struct {
	SchoolID     uint           `json:"school_id" form:"school_id" validate:"required"`
	Title        string         `json:"title" form:"title" validate:"required,max=200"`
	Description  *string        `json:"description" form:"description"`
	Category     *string        `json:"category" form:"category" validate:"omitempty,max=100"`
	Date         string         `json:"date" form:"date" validate:"required,ymd"`
	AwardingBody *string        `json:"awarding_body" form:"awarding_body" validate:"omitempty,max=200"`
	RecordedBy   uint           `json:"recorded_by" form:"recorded_by" validate:"required"`
	Students     []StudentEntry `json:"students" form:"-" validate:"required,min=1,dive"`
}

// ToModel builds the achievement; proofs[i] (may be "") belongs to Students[i].
func (r *CreateAchievementRequest) ToModel(proofs []string) (*model.AchievementModel, error) {
	d, err := dbtime.ParseDate(r.Date)
	if err != nil {
		return nil, helper.InvalidArgument("date must be YYYY-MM-DD")
	}
	a := &model.AchievementModel{
		SchoolID:     r.SchoolID,
		Title:        strings.TrimSpace(r.Title),
		Description:  r.Description,
		Category:     r.Category,
		Level:        constants.AchievementLevelClass,
		Date:         d,
		AwardingBody: r.AwardingBody,
		RecordedBy:   r.RecordedBy,
	}
	for i, s := range r.Students {
		row := model.StudentAchievementModel{StudentID: s.StudentID, Status: s.Status, Remarks: s.Remarks}
		if i < len(proofs) && proofs[i] != "" {
			name := proofs[i]
			row.ProofDocument = &name
		}
		a.Students = append(a.Students, row)
	}
	return a, nil
}

func (r *CreateAchievementRequest) StudentIDs() []uint {
	ids := make([]uint, 0, len(r.Students))
	for _, s := range r.Students {
		ids = append(ids, s.StudentID)
	}
	return ids
}

/* =========================================================
   UPDATE
========================================================= */

type UpdateAchievementRequest struct {
	Title        *string `json:"title" validate:"omitempty,max=200"`
	Description  *string `json:"description"`
	Category     *string `json:"category" validate:"omitempty,max=100"`
	Level        *string `json:"level" validate:"omitempty,max=30"`
	Date         *string `json:"date" validate:"omitempty,ymd"`
	AwardingBody *string `json:"awarding_body" validate:"omitempty,max=200"`
}

func (r *UpdateAchievementRequest) Changes() (map[string]any, error) {
	out := map[string]any{}
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		if t == "" {
			return nil, helper.InvalidArgument("title cannot be empty")
		}
		out["title"] = t
	}
	if r.Description != nil {
		out["description"] = *r.Description
	}
	if r.Category != nil {
		out["category"] = *r.Category
	}
	if r.Level != nil {
		out["level"] = strings.TrimSpace(*r.Level)
	}
	if r.AwardingBody != nil {
		out["awarding_body"] = *r.AwardingBody
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

// UpdateStudentAchievementRequest: a new "proof_document" file replaces the old proof.
type UpdateStudentAchievementRequest struct {
	Status  string  `json:"status" form:"status" validate:"required,oneof='1st prize' '2nd prize' '3rd prize' participant other"`
	Remarks *string `json:"remarks" form:"remarks" validate:"omitempty,max=500"`
}

/* =========================================================
   LIST QUERY
========================================================= */

type ListAchievementQuery struct {
	Q        string `query:"q"`
	Category string `query:"category"`
	Level    string `query:"level"`
}

func (q *ListAchievementQuery) Apply(db *gorm.DB) *gorm.DB {
	if c := strings.TrimSpace(q.Category); c != "" {
		db = db.Where("category = ?", c)
	}
	if l := strings.TrimSpace(q.Level); l != "" {
		db = db.Where("level = ?", l)
	}
	return db.Scopes(helper.SearchScope(q.Q, "title", "description"))
}
