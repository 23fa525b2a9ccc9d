package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/utils"

	"exam_allocation_backend/internals/configs"
	database "exam_allocation_backend/internals/databases"
	"exam_allocation_backend/internals/features/allocation/scheduler"
	helper "exam_allocation_backend/internals/helpers"
	"exam_allocation_backend/internals/helpers/dbtime"
	middlewares "exam_allocation_backend/internals/middlewares"
	routes "exam_allocation_backend/internals/route"
	"exam_allocation_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()
	dbtime.SetInstitutionTimezone(configs.Allocation.Timezone)

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		ErrorHandler:            helper.FromFiberError,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault})) // gzip
	app.Use(etag.New())                                                  // 304 caching

	// 🔎 Request-ID + timing
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		err := c.Next()
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
		return err
	})

	// ⏳ deadline per request; POST /api/a/exams dapat ALLOCATION_RUN_TIMEOUT_SECONDS
	app.Use(middlewares.Deadline(middlewares.RequestTimeout(configs.Allocation.RunTimeout())))

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + schema + warm-up
	database.ConnectDB()
	database.TunePool()
	if err := database.AutoMigrate(database.DB); err != nil {
		log.Fatalf("❌ migrate: %v", err)
	}
	database.WarmUpQueries()

	if strings.EqualFold(configs.GetEnv("SEED"), "true") {
		seeds.RunAllSeeds(database.DB)
	}

	// ⏱ scheduler setelah DB siap
	auditCron, err := scheduler.StartAllocationAuditCron(database.DB, configs.Allocation)
	if err != nil {
		log.Printf("[WARN] audit scheduler tidak jalan: %v", err)
	}

	// ✅ Routes
	routes.SetupRoutes(app, database.DB)

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = max(30*time.Second, configs.Allocation.RunTimeout()+10*time.Second)
	app.Server().IdleTimeout = 90 * time.Second

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: cron → server → pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if auditCron != nil {
		select {
		case <-auditCron.Stop().Done():
		case <-ctx.Done():
		}
	}
	_ = app.ShutdownWithContext(ctx)

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
