package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolstaff_backend/internals/constants"
	"schoolstaff_backend/internals/features/staff/attendances/model"
	leaveModel "schoolstaff_backend/internals/features/staff/leave_requests/model"
	helper "schoolstaff_backend/internals/helpers"
)

// Slot identifies one attendance session.
type Slot struct {
	SchoolID uint
	ClassID  uint
	Date     datatypes.Date
	Period   int
}

// SessionDefaults are only applied when the session row is created.
type SessionDefaults struct {
	TeacherID uint
	SubjectID *uint
}

type MarkInput struct {
	StudentID uint
	Status    string
	Remarks   *string
}

func slotWhere(s Slot) map[string]any {
	return map[string]any{
		"school_id": s.SchoolID,
		"class_id":  s.ClassID,
		"date":      s.Date,
		"period":    s.Period,
	}
}

// EnsureSession finds or creates the session for slot. The insert is
// ON CONFLICT DO NOTHING on uq_attendance_slot, so concurrent callers converge on
// one row. A trashed row at the slot is revived. created reports whether this
// call inserted the row.
func EnsureSession(ctx context.Context, tx *gorm.DB, slot Slot, def SessionDefaults) (*model.AttendanceModel, bool, error) {
	if slot.Period <= 0 {
		slot.Period = constants.DefaultPeriod
	}
	row := model.AttendanceModel{
		SchoolID:  slot.SchoolID,
		ClassID:   slot.ClassID,
		Date:      slot.Date,
		Period:    slot.Period,
		TeacherID: def.TeacherID,
		SubjectID: def.SubjectID,
	}
	res := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "school_id"}, {Name: "class_id"}, {Name: "date"}, {Name: "period"}},
			DoNothing: true,
		}).
		Create(&row)
	if res.Error != nil {
		return nil, false, errors.Wrap(res.Error, "insert attendance session")
	}
	created := res.RowsAffected == 1

	var got model.AttendanceModel
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(slotWhere(slot)).
		First(&got).Error; err != nil {
		return nil, false, errors.Wrap(err, "reload attendance session")
	}
	if got.Trash {
		if err := tx.WithContext(ctx).Model(&got).
			Updates(map[string]any{"trash": false, "updated_at": time.Now().UTC()}).Error; err != nil {
			return nil, false, errors.Wrap(err, "revive attendance session")
		}
		got.Trash = false
	}
	return &got, created, nil
}

// FindSession returns the active session at slot, or nil. db may carry preloads.
func FindSession(ctx context.Context, db *gorm.DB, slot Slot) (*model.AttendanceModel, error) {
	if slot.Period <= 0 {
		slot.Period = constants.DefaultPeriod
	}
	var got model.AttendanceModel
	err := db.WithContext(ctx).
		Scopes(helper.ActiveOnly("")).
		Where(slotWhere(slot)).
		First(&got).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find attendance session")
	}
	return &got, nil
}

// UpsertMarks writes one mark per student for the session; an existing mark is
// overwritten whatever its previous status. Returns the number of rows written.
func UpsertMarks(ctx context.Context, tx *gorm.DB, attendanceID uint, marks []MarkInput) (int, error) {
	if len(marks) == 0 {
		return 0, nil
	}
	// last entry wins when a student appears twice
	byStudent := make(map[uint]int, len(marks))
	rows := make([]model.AttendanceMarkedModel, 0, len(marks))
	for _, m := range marks {
		if m.StudentID == 0 {
			return 0, helper.InvalidArgument("student_id is required for every mark")
		}
		r := model.AttendanceMarkedModel{
			AttendanceID: attendanceID,
			StudentID:    m.StudentID,
			Status:       m.Status,
			Remarks:      m.Remarks,
		}
		if i, ok := byStudent[m.StudentID]; ok {
			rows[i] = r
			continue
		}
		byStudent[m.StudentID] = len(rows)
		rows = append(rows, r)
	}

	err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "attendance_id"}, {Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "remarks", "updated_at"}),
		}).
		Create(&rows).Error
	if err != nil {
		return 0, errors.Wrap(err, "upsert attendance marks")
	}
	return len(rows), nil
}

// StudentsOnLeave lists students with an approved, live leave covering date.
func StudentsOnLeave(ctx context.Context, tx *gorm.DB, schoolID uint, date datatypes.Date) ([]uint, error) {
	var ids []uint
	err := tx.WithContext(ctx).
		Model(&leaveModel.LeaveRequestModel{}).
		Scopes(helper.ActiveOnly("")).
		Where("school_id = ? AND role = ? AND status = ?", schoolID, constants.LeaveRoleStudent, constants.LeaveApproved).
		Where("student_id IS NOT NULL AND from_date <= ? AND to_date >= ?", date, date).
		Distinct().
		Pluck("student_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "students on leave")
	}
	return ids, nil
}
