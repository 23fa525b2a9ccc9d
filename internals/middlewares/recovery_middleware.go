package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"exam_allocation_backend/internals/configs"
	"exam_allocation_backend/internals/middlewares/logger"
)

// RecoveryMiddleware menangkap panic dan mengembalikan error 500
func RecoveryMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true, // Stack trace akan dicetak saat error
	})
}

// SetupMiddlewares memasang middleware global dengan urutan: recover → logger → cors → limiter
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(logger.LoggerMiddleware(configs.Allocation.Timezone))
	app.Use(CorsMiddleware())
	app.Use(GlobalRateLimiter())
}
