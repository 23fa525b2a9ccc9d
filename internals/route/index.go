// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	allocationRoutes "exam_allocation_backend/internals/features/allocation/route"
	"exam_allocation_backend/internals/middlewares"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	BaseRoutes(app, db)

	// ===================== GROUPS =====================
	// auth ada di gateway; di sini hanya pemisahan admin vs user
	log.Println("[INFO] Setting up ADMIN group...")
	admin := app.Group("/api/a", middlewares.AllocationRateLimiter())

	log.Println("[INFO] Setting up USER group...")
	user := app.Group("/api/u")

	// ===================== MOUNT ROUTES =====================
	log.Println("[INFO] Mounting Allocation routes...")
	ctl := allocationRoutes.NewController(db)
	allocationRoutes.MountAdmin(admin, ctl)
	allocationRoutes.MountUser(user, ctl)
}
