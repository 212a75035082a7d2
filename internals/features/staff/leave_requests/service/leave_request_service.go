package service

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"schoolstaff_backend/internals/features/staff/leave_requests/model"
	helper "schoolstaff_backend/internals/helpers"
)

// EnsureNoDuplicate rejects a second live request for the same requester,
// student and range. exceptID skips the row being edited.
func EnsureNoDuplicate(ctx context.Context, tx *gorm.DB, m *model.LeaveRequestModel, exceptID uint) error {
	q := tx.WithContext(ctx).
		Model(&model.LeaveRequestModel{}).
		Where("school_id = ? AND user_id = ? AND from_date = ? AND to_date = ?", m.SchoolID, m.UserID, m.FromDate, m.ToDate).
		Scopes(helper.ActiveOnly(""))
	if m.IsStudentLeave() {
		q = q.Where("student_id = ?", *m.StudentID)
	} else {
		q = q.Where("student_id IS NULL")
	}
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return errors.Wrap(err, "check duplicate leave request")
	}
	if n > 0 {
		return helper.Conflict("Leave request already exists")
	}
	return nil
}

// OwnedBy narrows leave queries to one requester.
func OwnedBy(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// StudentLeaves selects student leave (true) or staff leave (false).
func StudentLeaves(student bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if student {
			return db.Where("student_id IS NOT NULL")
		}
		return db.Where("student_id IS NULL")
	}
}
