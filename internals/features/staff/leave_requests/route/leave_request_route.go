package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolstaff_backend/internals/features/staff/leave_requests/controller"
	"schoolstaff_backend/internals/helpers/filestore"
)

func LeaveRequestRoutes(r fiber.Router, db *gorm.DB, store filestore.Store) {
	ctl := controller.NewLeaveRequestController(db, store)

	g := r.Group("/leave-requests")
	g.Post("/", ctl.CreateStaff)
	g.Get("/", ctl.List)
	g.Post("/students", ctl.CreateStudent)
	g.Patch("/students/:id", ctl.UpdateStudent)
	g.Patch("/:id/decision", ctl.Decide)
	g.Get("/:id", ctl.GetByID)
	g.Patch("/:id", ctl.UpdateStaff)
	g.Delete("/:id/permanent", ctl.Purge)
	g.Delete("/:id", ctl.Delete)
	g.Post("/:id/restore", ctl.Restore)
}
