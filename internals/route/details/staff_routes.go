package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	AchievementRoutes "schoolstaff_backend/internals/features/staff/achievements/route"
	AttendanceRoutes "schoolstaff_backend/internals/features/staff/attendances/route"
	DutyRoutes "schoolstaff_backend/internals/features/staff/duties/route"
	ExamRoutes "schoolstaff_backend/internals/features/staff/exams/route"
	HomeworkRoutes "schoolstaff_backend/internals/features/staff/homeworks/route"
	LeaveRequestRoutes "schoolstaff_backend/internals/features/staff/leave_requests/route"
	"schoolstaff_backend/internals/helpers/filestore"
)

// StaffRoutes mounts every staff feature on r.
func StaffRoutes(r fiber.Router, db *gorm.DB, store filestore.Store) {
	ExamRoutes.ExamRoutes(r, db)
	HomeworkRoutes.HomeworkRoutes(r, db, store)
	AttendanceRoutes.AttendanceRoutes(r, db)
	DutyRoutes.DutyRoutes(r, db, store)
	AchievementRoutes.AchievementRoutes(r, db, store)
	LeaveRequestRoutes.LeaveRequestRoutes(r, db, store)
}
