package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"schoolstaff_backend/internals/features/staff/homeworks/dto"
	"schoolstaff_backend/internals/features/staff/homeworks/model"
	helper "schoolstaff_backend/internals/helpers"
)

// FindDuplicate returns the active homework with the same school, teacher,
// class, subject, description and due date as hw, or nil.
func FindDuplicate(ctx context.Context, tx *gorm.DB, hw *model.HomeworkModel) (*model.HomeworkModel, error) {
	q := tx.WithContext(ctx).
		Scopes(helper.ActiveOnly("")).
		Where("school_id = ? AND teacher_id = ? AND class_id = ? AND subject_id = ? AND description = ?",
			hw.SchoolID, hw.TeacherID, hw.ClassID, hw.SubjectID, hw.Description)
	if hw.DueDate == nil {
		q = q.Where("due_date IS NULL")
	} else {
		q = q.Where("due_date = ?", *hw.DueDate)
	}

	var found model.HomeworkModel
	err := q.Order("id").First(&found).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "check duplicate homework")
	}
	return &found, nil
}

// BulkUpdateAssignments sets status and points for each listed student of an
// active homework. A student without an assignment fails the whole batch.
func BulkUpdateAssignments(ctx context.Context, tx *gorm.DB, homeworkID uint, updates []dto.AssignmentUpdate) (int, error) {
	var hw model.HomeworkModel
	if err := helper.FirstActive(tx.WithContext(ctx), &hw, homeworkID, "homework"); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	for _, u := range updates {
		cols := map[string]any{"status": u.Status, "updated_at": now}
		if u.Points != nil {
			cols["points"] = *u.Points
		}
		res := tx.WithContext(ctx).
			Model(&model.HomeworkAssignmentModel{}).
			Where("homework_id = ? AND student_id = ?", homeworkID, u.StudentID).
			Updates(cols)
		if res.Error != nil {
			return 0, errors.Wrap(res.Error, "update assignment")
		}
		if res.RowsAffected == 0 {
			return 0, helper.InvalidArgument("student %d is not assigned homework %d", u.StudentID, homeworkID)
		}
	}
	return len(updates), nil
}
