package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"

	"schoolstaff_backend/internals/configs"
	"schoolstaff_backend/internals/middlewares/logger"
)

// SetupMiddlewares installs the app-wide chain; recover stays first.
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(RequestID(configs.GetEnvDuration("REQUEST_TIMEOUT", 10*time.Second)))
	app.Use(logger.LoggerMiddleware())
	app.Use(CorsMiddleware())
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	app.Use(GlobalRateLimiter())
	app.Use(UploadRateLimiter())
}
