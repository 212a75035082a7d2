package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"

	"schoolstaff_backend/internals/configs"
	database "schoolstaff_backend/internals/databases"
	helper "schoolstaff_backend/internals/helpers"
	"schoolstaff_backend/internals/helpers/filestore"
	middlewares "schoolstaff_backend/internals/middlewares"
	routes "schoolstaff_backend/internals/route"
	"schoolstaff_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		ErrorHandler:            helper.FiberErrorHandler,
		BodyLimit:               configs.GetEnvInt("BODY_LIMIT_MB", 25) << 20,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	middlewares.SetupMiddlewares(app)

	database.ConnectDB()
	database.TunePool()
	database.WarmUpQueries()
	seeds.RunAllSeeds(database.DB)

	storeCfg := filestore.ConfigFromEnv()
	store, err := filestore.New(storeCfg)
	if err != nil {
		log.Fatalf("❌ file store: %v", err)
	}
	reaper, err := filestore.StartReaper(store, storeCfg.ReaperCron, storeCfg.StagingTTL)
	if err != nil {
		log.Fatalf("❌ staging reaper: %v", err)
	}
	if storeCfg.Driver == "" || storeCfg.Driver == "local" {
		app.Static("/uploads", storeCfg.Root, fiber.Static{Compress: true, MaxAge: 3600})
	}

	routes.SetupRoutes(app, database.DB, store)

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")
	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	<-reaper.Stop().Done()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	database.Close()
}
