package database

import (
	"gorm.io/gorm"

	achievementModel "schoolstaff_backend/internals/features/staff/achievements/model"
	attendanceModel "schoolstaff_backend/internals/features/staff/attendances/model"
	dutyModel "schoolstaff_backend/internals/features/staff/duties/model"
	examModel "schoolstaff_backend/internals/features/staff/exams/model"
	homeworkModel "schoolstaff_backend/internals/features/staff/homeworks/model"
	leaveModel "schoolstaff_backend/internals/features/staff/leave_requests/model"
	mastersModel "schoolstaff_backend/internals/features/staff/masters/model"
)

// Models in dependency order.
func Models() []any {
	return []any{
		&mastersModel.SchoolModel{},
		&mastersModel.ClassModel{},
		&mastersModel.SubjectModel{},
		&mastersModel.UserModel{},
		&mastersModel.StudentModel{},

		&examModel.InternalExamModel{},
		&examModel.MarkModel{},
		&homeworkModel.HomeworkModel{},
		&homeworkModel.HomeworkAssignmentModel{},
		&attendanceModel.AttendanceModel{},
		&attendanceModel.AttendanceMarkedModel{},
		&dutyModel.DutyModel{},
		&dutyModel.DutyAssignmentModel{},
		&achievementModel.AchievementModel{},
		&achievementModel.StudentAchievementModel{},
		&leaveModel.LeaveRequestModel{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
