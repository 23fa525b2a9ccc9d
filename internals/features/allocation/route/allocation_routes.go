// file: internals/features/allocation/route/allocation_routes.go
package route

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"exam_allocation_backend/internals/configs"
	allocCtl "exam_allocation_backend/internals/features/allocation/controller"
	"exam_allocation_backend/internals/features/allocation/engine"
	"exam_allocation_backend/internals/features/allocation/repository"
	"exam_allocation_backend/internals/features/allocation/service"
)

// NewController wires the service over Postgres with the loaded settings.
func NewController(db *gorm.DB) *allocCtl.ExamAllocationController {
	tb, err := service.TieBreakerFor(configs.Allocation)
	if err != nil {
		// LoadAllocationSettings already rejected bad seeds; keep serving with the default
		log.Printf("[WARN] shuffle seed ignored: %v", err)
		tb = engine.DefaultTieBreaker()
	}
	svc := service.NewExamAllocationService(repository.NewGormUnitOfWork(db), configs.Allocation, engine.LogNotifier{}, tb)
	return allocCtl.NewExamAllocationController(svc)
}

// MountAdmin: /api/a/exams... dan /api/a/rooms/availability
func MountAdmin(r fiber.Router, ctl *allocCtl.ExamAllocationController) {
	exams := r.Group("/exams")
	exams.Post("/", ctl.CreateExam)
	exams.Get("/:id/room-allocations", ctl.ListRoomAllocations)
	exams.Get("/:id/invigilations", ctl.ListInvigilations)
	exams.Get("/:id/notices", ctl.ListNotices)

	rooms := r.Group("/rooms")
	rooms.Post("/availability", ctl.CheckAvailability)
}

// MountUser: /api/u/faculty/:id/invigilations
func MountUser(r fiber.Router, ctl *allocCtl.ExamAllocationController) {
	faculty := r.Group("/faculty")
	faculty.Get("/:id/invigilations", ctl.FacultyInvigilations)
}
