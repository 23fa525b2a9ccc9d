// file: internals/features/allocation/repository/stores.go
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"exam_allocation_backend/internals/features/allocation/engine"
	"exam_allocation_backend/internals/features/allocation/model"
)

// ExamStore persists the exam aggregate (exam → semesters → subjects).
type ExamStore interface {
	CreateExam(ctx context.Context, exam *model.ExamModel) error
	FindExam(ctx context.Context, id uuid.UUID) (*model.ExamModel, error)
}

// DashboardStore serves the read side that is not part of the allocation run.
type DashboardStore interface {
	ListInvigilationsByExam(ctx context.Context, examID uuid.UUID) ([]engine.Invigilation, error)
	ListInvigilationsByFaculty(ctx context.Context, facultyID uuid.UUID, from, to time.Time) ([]engine.Invigilation, error)
	ListRoomAllocationsBetween(ctx context.Context, from, to time.Time) ([]engine.RoomAllocation, error)
	ListInvigilationsBetween(ctx context.Context, from, to time.Time) ([]engine.Invigilation, error)
	ListAllRooms(ctx context.Context) ([]engine.Room, error)
}

// Stores bundles every port bound to the same connection or transaction.
type Stores struct {
	Rooms           engine.RoomDirectory
	RoomAllocations engine.RoomAllocationStore
	Invigilations   engine.InvigilationStore
	Faculty         engine.FacultyDirectory
	Exams           ExamStore
	Dashboard       DashboardStore
}

// UnitOfWork hands out Stores, either directly or inside one atomic transaction.
// A non-nil error from fn rolls back everything written through the Stores it received.
type UnitOfWork interface {
	Stores() Stores
	Transaction(ctx context.Context, fn func(Stores) error) error
}
