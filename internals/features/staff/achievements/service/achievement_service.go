package service

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"schoolstaff_backend/internals/features/staff/achievements/model"
	helper "schoolstaff_backend/internals/helpers"
)

// EnsureUniqueTitle rejects a second achievement with the same school, title,
// date and recorder. Trashed rows still count; uq_achievement_title backs this up.
func EnsureUniqueTitle(ctx context.Context, tx *gorm.DB, a *model.AchievementModel) error {
	var n int64
	if err := tx.WithContext(ctx).
		Model(&model.AchievementModel{}).
		Where("school_id = ? AND title = ? AND date = ? AND recorded_by = ?", a.SchoolID, a.Title, a.Date, a.RecordedBy).
		Count(&n).Error; err != nil {
		return errors.Wrap(err, "check achievement title")
	}
	if n > 0 {
		return helper.Conflict("an achievement titled %q already exists for that date", a.Title)
	}
	return nil
}

// OwnedStudentAchievement loads a student achievement whose parent was
// recorded by staffID and is not trashed.
func OwnedStudentAchievement(ctx context.Context, tx *gorm.DB, id, staffID uint) (*model.StudentAchievementModel, error) {
	var sa model.StudentAchievementModel
	err := tx.WithContext(ctx).
		Joins("JOIN achievements ON achievements.id = student_achievements.achievement_id").
		Where("student_achievements.id = ? AND achievements.recorded_by = ?", id, staffID).
		Scopes(helper.ActiveOnly("achievements")).
		First(&sa).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, helper.NotFound("student achievement %d not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "load student achievement")
	}
	return &sa, nil
}

// RecordedBy narrows achievement queries to one staff member; 0 means no filter.
func RecordedBy(staffID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if staffID == 0 {
			return db
		}
		return db.Where("recorded_by = ?", staffID)
	}
}
