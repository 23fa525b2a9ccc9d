// file: internals/features/allocation/controller/exam_allocation_controller.go
package controller

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"exam_allocation_backend/internals/features/allocation/dto"
	"exam_allocation_backend/internals/features/allocation/engine"
	"exam_allocation_backend/internals/features/allocation/service"
	helper "exam_allocation_backend/internals/helpers"
)

/* =======================================================
   CONTROLLER
   ======================================================= */

type ExamAllocationController struct {
	Svc *service.ExamAllocationService
}

func NewExamAllocationController(svc *service.ExamAllocationService) *ExamAllocationController {
	return &ExamAllocationController{Svc: svc}
}

// ambil context standar (kalau Fiber mendukung UserContext)
func reqCtx(c *fiber.Ctx) context.Context {
	if uc := c.UserContext(); uc != nil {
		return uc
	}
	return context.Background()
}

// writeError memetakan error service/engine ke status HTTP; pesan diteruskan apa adanya.
func writeError(c *fiber.Ctx, err error) error {
	var (
		verrs validator.ValidationErrors
		fe    *fiber.Error
	)
	switch {
	case errors.As(err, &verrs):
		return helper.ValidationError(c, err)
	case errors.As(err, &fe):
		return helper.JsonError(c, fe.Code, fe.Message)
	case errors.Is(err, service.ErrExamNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "request timed out")
	}

	msg := engine.Failure(err).Message
	switch engine.ErrorKind(err) {
	case "validation":
		return helper.JsonErrorCode(c, fiber.StatusUnprocessableEntity, msg, "VALIDATION_ERROR")
	case "capacity":
		return helper.JsonErrorCode(c, fiber.StatusConflict, msg, "CAPACITY_EXCEEDED")
	case "staffing_shortage":
		return helper.JsonErrorCode(c, fiber.StatusConflict, msg, "STAFFING_SHORTAGE")
	case "storage":
		log.Printf("[ALLOC][HTTP] %s %s storage failure: %v", c.Method(), c.OriginalURL(), err)
		return helper.JsonErrorCode(c, fiber.StatusInternalServerError, msg, "STORAGE_ERROR")
	default:
		log.Printf("[ALLOC][HTTP] %s %s unexpected: %v", c.Method(), c.OriginalURL(), err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "")
	}
}

/* ============================ CREATE ============================ */

// POST /api/a/exams
func (ctl *ExamAllocationController) CreateExam(c *fiber.Ctx) error {
	var req dto.CreateExamRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid JSON body")
	}

	out, err := ctl.Svc.CreateExam(reqCtx(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return helper.JsonCreated(c, "exam created and allocated", out.Response())
}

/* ============================ AVAILABILITY ============================ */

// POST /api/a/rooms/availability
func (ctl *ExamAllocationController) CheckAvailability(c *fiber.Ctx) error {
	var req dto.AvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid JSON body")
	}

	res, err := ctl.Svc.CheckAvailability(reqCtx(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return helper.JsonOK(c, "rooms available", res)
}

/* ============================ READ ============================ */

// GET /api/a/exams/:id/room-allocations
func (ctl *ExamAllocationController) ListRoomAllocations(c *fiber.Ctx) error {
	examID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	rows, err := ctl.Svc.ListExamRoomAllocations(reqCtx(c), examID)
	if err != nil {
		return writeError(c, err)
	}
	return helper.JsonList(c, "ok", rows)
}

// GET /api/a/exams/:id/invigilations
func (ctl *ExamAllocationController) ListInvigilations(c *fiber.Ctx) error {
	examID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	rows, err := ctl.Svc.ListExamInvigilations(reqCtx(c), examID)
	if err != nil {
		return writeError(c, err)
	}
	return helper.JsonList(c, "ok", rows)
}

// GET /api/a/exams/:id/notices
func (ctl *ExamAllocationController) ListNotices(c *fiber.Ctx) error {
	examID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	rows, err := ctl.Svc.ExamNotices(reqCtx(c), examID)
	if err != nil {
		return writeError(c, err)
	}
	return helper.JsonList(c, "ok", rows)
}

// GET /api/u/faculty/:id/invigilations?from=YYYY-MM-DD&to=YYYY-MM-DD
func (ctl *ExamAllocationController) FacultyInvigilations(c *fiber.Ctx) error {
	facultyID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	rows, err := ctl.Svc.ListFacultyInvigilations(reqCtx(c), facultyID,
		strings.TrimSpace(c.Query("from")), strings.TrimSpace(c.Query("to")))
	if err != nil {
		return writeError(c, err)
	}
	return helper.JsonList(c, "ok", rows)
}
