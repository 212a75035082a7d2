package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolstaff_backend/internals/features/staff/homeworks/controller"
	"schoolstaff_backend/internals/helpers/filestore"
)

func HomeworkRoutes(r fiber.Router, db *gorm.DB, store filestore.Store) {
	ctl := controller.NewHomeworkController(db, store)

	g := r.Group("/homework")
	g.Post("/", ctl.Create)
	g.Get("/", ctl.List)
	g.Get("/assignments/:id", ctl.GetAssignment)
	g.Patch("/assignments/:id", ctl.UpdateAssignment)
	g.Patch("/:id/assignments", ctl.BulkUpdateAssignments)
	g.Get("/:id", ctl.GetByID)
	g.Patch("/:id", ctl.Update)
	g.Delete("/:id/permanent", ctl.Purge)
	g.Delete("/:id", ctl.Delete)
	g.Post("/:id/restore", ctl.Restore)
}
