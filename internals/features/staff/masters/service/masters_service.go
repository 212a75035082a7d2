package service

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"schoolstaff_backend/internals/features/staff/masters/model"
	helper "schoolstaff_backend/internals/helpers"
)

// FindStudent loads a non-trashed student; a missing row is NotFound.
func FindStudent(ctx context.Context, db *gorm.DB, id uint) (*model.StudentModel, error) {
	var s model.StudentModel
	err := db.WithContext(ctx).
		Scopes(helper.ActiveOnly("")).
		First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, helper.NotFound("student %d not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "load student")
	}
	return &s, nil
}

// StudentClassID resolves the class a student sits in.
func StudentClassID(ctx context.Context, db *gorm.DB, studentID uint) (uint, error) {
	s, err := FindStudent(ctx, db, studentID)
	if err != nil {
		return 0, err
	}
	if s.ClassID == 0 {
		return 0, helper.NotFound("student %d has no class", studentID)
	}
	return s.ClassID, nil
}

// ExistingStudentIDs returns which of ids exist in the school and are not trashed.
func ExistingStudentIDs(ctx context.Context, db *gorm.DB, schoolID uint, ids []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var found []uint
	err := db.WithContext(ctx).
		Model(&model.StudentModel{}).
		Scopes(helper.ActiveOnly("")).
		Where("school_id = ? AND id IN ?", schoolID, ids).
		Pluck("id", &found).Error
	if err != nil {
		return nil, errors.Wrap(err, "check students")
	}
	for _, id := range found {
		out[id] = true
	}
	return out, nil
}

// RequireStudents fails with InvalidArgument naming the first unknown student.
func RequireStudents(ctx context.Context, db *gorm.DB, schoolID uint, ids []uint) error {
	known, err := ExistingStudentIDs(ctx, db, schoolID, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if !known[id] {
			return helper.InvalidArgument("student %d does not belong to school %d", id, schoolID)
		}
	}
	return nil
}
