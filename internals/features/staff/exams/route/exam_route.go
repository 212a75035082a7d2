package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolstaff_backend/internals/features/staff/exams/controller"
)

func ExamRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewExamController(db)

	g := r.Group("/exams")
	g.Post("/", ctl.Create)
	g.Get("/", ctl.List)
	g.Patch("/marks/:mark_id", ctl.UpdateMark)
	g.Get("/:id", ctl.GetByID)
	g.Patch("/:id", ctl.Update)
	g.Delete("/:id/permanent", ctl.Purge)
	g.Delete("/:id", ctl.Delete)
	g.Post("/:id/restore", ctl.Restore)
}
