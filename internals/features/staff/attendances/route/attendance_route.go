package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolstaff_backend/internals/features/staff/attendances/controller"
)

func AttendanceRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewAttendanceController(db)

	g := r.Group("/attendance")
	g.Post("/", ctl.Create)
	g.Get("/", ctl.List)
	g.Get("/check", ctl.Check)
	g.Patch("/marks/:id", ctl.UpdateMark)
	g.Get("/:id", ctl.GetByID)
	g.Patch("/:id", ctl.Update)
	g.Put("/:id/marks", ctl.UpsertMarks)
	g.Delete("/:id/permanent", ctl.Purge)
	g.Delete("/:id", ctl.Delete)
	g.Post("/:id/restore", ctl.Restore)
}
