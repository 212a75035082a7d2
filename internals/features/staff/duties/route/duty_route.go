package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolstaff_backend/internals/features/staff/duties/controller"
	"schoolstaff_backend/internals/helpers/filestore"
)

func DutyRoutes(r fiber.Router, db *gorm.DB, store filestore.Store) {
	ctl := controller.NewDutyController(db, store)

	g := r.Group("/duties")
	g.Get("/", ctl.List)
	g.Get("/:id", ctl.GetByID)
	g.Patch("/:id", ctl.Update)
}
