package dto

import (
	"strings"

	"gorm.io/gorm"

	"schoolstaff_backend/internals/constants"
	"schoolstaff_backend/internals/features/staff/leave_requests/model"
	helper "schoolstaff_backend/internals/helpers"
	"schoolstaff_backend/internals/helpers/dbtime"
)

/* =========================================================
   CREATE
========================================================= */

// CreateLeaveRequest is shared by staff and student leave; the route decides
// whether student_id is required.
type CreateLeaveRequest struct {
	SchoolID  uint    `json:"school_id" form:"school_id" validate:"required"`
	UserID    uint    `json:"user_id" form:"user_id" validate:"required"`
	StudentID *uint   `json:"student_id" form:"student_id"`
	FromDate  string  `json:"from_date" form:"from_date" validate:"required,ymd"`
	ToDate    string  `json:"to_date" form:"to_date" validate:"required,ymd"`
	LeaveType string  `json:"leave_type" form:"leave_type" validate:"required,max=50"`
	Reason    string  `json:"reason" form:"reason" validate:"required"`
	Duration  *string `json:"leave_duration" form:"leave_duration" validate:"omitempty,max=50"`
}

func (r *CreateLeaveRequest) ToModel(forStudent bool) (*model.LeaveRequestModel, error) {
	from, err := dbtime.ParseDate(r.FromDate)
	if err != nil {
		return nil, helper.InvalidArgument("from_date must be YYYY-MM-DD")
	}
	to, err := dbtime.ParseDate(r.ToDate)
	if err != nil {
		return nil, helper.InvalidArgument("to_date must be YYYY-MM-DD")
	}
	m := &model.LeaveRequestModel{
		SchoolID:  r.SchoolID,
		UserID:    r.UserID,
		Role:      constants.LeaveRoleStaff,
		FromDate:  from,
		ToDate:    to,
		LeaveType: strings.TrimSpace(r.LeaveType),
		Reason:    strings.TrimSpace(r.Reason),
		Duration:  r.Duration,
		Status:    constants.LeavePending,
	}
	if forStudent {
		if r.StudentID == nil || *r.StudentID == 0 {
			return nil, helper.InvalidArgument("student_id is required")
		}
		sid := *r.StudentID
		m.StudentID = &sid
		m.Role = constants.LeaveRoleStudent
	}
	if m.LeaveType == "" || m.Reason == "" {
		return nil, helper.InvalidArgument("leave_type and reason cannot be blank")
	}
	return m, nil
}

/* =========================================================
   UPDATE
========================================================= */

// UpdateLeaveRequest patches a pending request; student_id is honoured on the
// student route only.
type UpdateLeaveRequest struct {
	StudentID *uint   `json:"student_id" form:"student_id"`
	FromDate  *string `json:"from_date" form:"from_date" validate:"omitempty,ymd"`
	ToDate    *string `json:"to_date" form:"to_date" validate:"omitempty,ymd"`
	LeaveType *string `json:"leave_type" form:"leave_type" validate:"omitempty,max=50"`
	Reason    *string `json:"reason" form:"reason"`
	Duration  *string `json:"leave_duration" form:"leave_duration" validate:"omitempty,max=50"`
}

// ApplyTo writes the patch onto m and returns the touched columns.
func (r *UpdateLeaveRequest) ApplyTo(m *model.LeaveRequestModel, forStudent bool) ([]string, error) {
	var cols []string
	if r.FromDate != nil {
		d, err := dbtime.ParseDate(*r.FromDate)
		if err != nil {
			return nil, helper.InvalidArgument("from_date must be YYYY-MM-DD")
		}
		m.FromDate = d
		cols = append(cols, "from_date")
	}
	if r.ToDate != nil {
		d, err := dbtime.ParseDate(*r.ToDate)
		if err != nil {
			return nil, helper.InvalidArgument("to_date must be YYYY-MM-DD")
		}
		m.ToDate = d
		cols = append(cols, "to_date")
	}
	if r.LeaveType != nil {
		t := strings.TrimSpace(*r.LeaveType)
		if t == "" {
			return nil, helper.InvalidArgument("leave_type cannot be empty")
		}
		m.LeaveType = t
		cols = append(cols, "leave_type")
	}
	if r.Reason != nil {
		t := strings.TrimSpace(*r.Reason)
		if t == "" {
			return nil, helper.InvalidArgument("reason cannot be empty")
		}
		m.Reason = t
		cols = append(cols, "reason")
	}
	if r.Duration != nil {
		m.Duration = r.Duration
		cols = append(cols, "leave_duration")
	}
	if forStudent && r.StudentID != nil {
		if *r.StudentID == 0 {
			return nil, helper.InvalidArgument("student_id cannot be empty")
		}
		sid := *r.StudentID
		m.StudentID = &sid
		cols = append(cols, "student_id")
	}
	return cols, nil
}

/* =========================================================
   LIST / DECISION QUERIES
========================================================= */

type ListLeaveQuery struct {
	Q      string `query:"q"`
	Date   string `query:"date"`
	Status string `query:"status"`
}

// Apply filters on reason, status and a date the leave covers.
func (q *ListLeaveQuery) Apply(db *gorm.DB) (*gorm.DB, error) {
	if d := strings.TrimSpace(q.Date); d != "" {
		day, err := dbtime.ParseDate(d)
		if err != nil {
			return nil, helper.InvalidArgument("date must be YYYY-MM-DD")
		}
		db = db.Where("from_date <= ? AND to_date >= ?", day, day)
	}
	if s := strings.ToLower(strings.TrimSpace(q.Status)); s != "" {
		db = db.Where("status = ?", s)
	}
	return db.Scopes(helper.SearchScope(q.Q, "reason")), nil
}

type DecisionQuery struct {
	Status       string  `query:"status"`
	AdminRemarks *string `query:"admin_remarks"`
}
