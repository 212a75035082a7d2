package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolstaff_backend/internals/features/staff/achievements/controller"
	"schoolstaff_backend/internals/helpers/filestore"
)

func AchievementRoutes(r fiber.Router, db *gorm.DB, store filestore.Store) {
	ctl := controller.NewAchievementController(db, store)

	g := r.Group("/achievements")
	g.Post("/", ctl.Create)
	g.Get("/staff/:id", ctl.ListByStaff)
	g.Patch("/students/:id", ctl.UpdateStudent)
	g.Get("/:id", ctl.GetByID)
	g.Patch("/:id", ctl.Update)
	g.Delete("/:id/permanent", ctl.Purge)
	g.Delete("/:id", ctl.Delete)
	g.Post("/:id/restore", ctl.Restore)
}
