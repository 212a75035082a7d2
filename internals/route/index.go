package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolstaff_backend/internals/helpers/filestore"
	"schoolstaff_backend/internals/middlewares/auth"
	routeDetails "schoolstaff_backend/internals/route/details"
)

const StaffPrefix = "/api/s1/staff"

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB, store filestore.Store) {
	startTime = time.Now()

	log.Println("[INFO] Setting up BaseRoutes...")
	BaseRoutes(app, db)

	log.Println("[INFO] Setting up STAFF group (optional JWT)...")
	staff := app.Group(StaffPrefix, auth.StaffAuth(db))

	log.Println("[INFO] Mounting staff routes...")
	routeDetails.StaffRoutes(staff, db, store)
}
