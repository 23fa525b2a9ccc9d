// file: internals/features/allocation/engine/ports.go
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
)

/* =========================
   Engine records
========================= */

type Room struct {
	ID       uuid.UUID
	Name     string
	Capacity int
}

// RoomAllocation is one seat assignment: a subject's occupants in one room for one window.
type RoomAllocation struct {
	ID        uuid.UUID
	ExamID    uuid.UUID
	SubjectID uuid.UUID
	RoomID    uuid.UUID
	Occupants []string
	Date      time.Time
	Window    Window
}

func (a RoomAllocation) Key() SlotKey {
	return SlotKey{RoomID: a.RoomID, Date: DateKey(a.Date), Window: a.Window}
}

// Invigilation is one (exam, subject, room, faculty) assignment.
type Invigilation struct {
	ID          uuid.UUID
	ExamID      uuid.UUID
	SubjectID   uuid.UUID
	RoomID      uuid.UUID
	FacultyID   uuid.UUID
	FacultyName string
	Date        time.Time
	Window      Window
}

func (i Invigilation) Key() SlotKey {
	return SlotKey{RoomID: i.RoomID, Date: DateKey(i.Date), Window: i.Window}
}

type Faculty struct {
	ID                  uuid.UUID
	Name                string
	Email               string
	Designation         Designation
	PreviousAllocations int
	Available           bool
}

/* =========================
   Collaborator ports
========================= */

type RoomDirectory interface {
	ListRooms(ctx context.Context, ids []uuid.UUID) ([]Room, error)
}

type RoomAllocationStore interface {
	// ListOverlapping: allocations in any of roomIDs on date whose window overlaps w.
	ListOverlapping(ctx context.Context, roomIDs []uuid.UUID, date time.Time, w Window) ([]RoomAllocation, error)
	ListByExam(ctx context.Context, examID uuid.UUID) ([]RoomAllocation, error)
	Create(ctx context.Context, a *RoomAllocation) error
}

type InvigilationStore interface {
	ListBySlotKeys(ctx context.Context, keys []SlotKey) ([]Invigilation, error)
	ListByFacultyOnDates(ctx context.Context, facultyIDs []uuid.UUID, dates []time.Time) ([]Invigilation, error)
	CreateBatch(ctx context.Context, rows []Invigilation) error
}

type FacultyFilter struct {
	IDs           []uuid.UUID
	AvailableOnly bool
}

type FacultyDirectory interface {
	ListFaculty(ctx context.Context, filter FacultyFilter) ([]Faculty, error)
	// IncrementAllocations adds counts[id] to each faculty's previous_allocations atomically.
	IncrementAllocations(ctx context.Context, counts map[uuid.UUID]int) error
}

// Notice is the data for one invigilation-detail message; delivery is not done here.
type Notice struct {
	FacultyID   uuid.UUID `json:"faculty_id"`
	Recipient   string    `json:"recipient"`
	FacultyName string    `json:"faculty_name"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
}

type Notifier interface {
	Notify(ctx context.Context, notices []Notice) error
}
