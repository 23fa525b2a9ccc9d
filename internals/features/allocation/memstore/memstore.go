// file: internals/features/allocation/memstore/memstore.go
package memstore

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"exam_allocation_backend/internals/features/allocation/engine"
	"exam_allocation_backend/internals/features/allocation/model"
)

// Store is an in-memory implementation of every engine port and of repository.UnitOfWork.
// Used by the dry-run command and by tests.
type Store struct {
	mu            sync.RWMutex
	rooms         map[uuid.UUID]engine.Room
	roomOrder     []uuid.UUID
	faculty       map[uuid.UUID]engine.Faculty
	facultyOrder  []uuid.UUID
	roomAllocs    []engine.RoomAllocation
	invigilations []engine.Invigilation
	exams         map[uuid.UUID]model.ExamModel

	txMu     sync.Mutex
	failMu   sync.Mutex
	failures map[string]*injected
}

type injected struct {
	err   error
	times int // 0 = until cleared
}

func New() *Store {
	return &Store{
		rooms:    map[uuid.UUID]engine.Room{},
		faculty:  map[uuid.UUID]engine.Faculty{},
		exams:    map[uuid.UUID]model.ExamModel{},
		failures: map[string]*injected{},
	}
}

/* =========================
   Seeding & inspection
========================= */

func (s *Store) AddRoom(r engine.Room) engine.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if _, ok := s.rooms[r.ID]; !ok {
		s.roomOrder = append(s.roomOrder, r.ID)
	}
	s.rooms[r.ID] = r
	return r
}

func (s *Store) AddFaculty(f engine.Faculty) engine.Faculty {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if _, ok := s.faculty[f.ID]; !ok {
		s.facultyOrder = append(s.facultyOrder, f.ID)
	}
	s.faculty[f.ID] = f
	return f
}

func (s *Store) Faculty(id uuid.UUID) (engine.Faculty, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.faculty[id]
	return f, ok
}

func (s *Store) AllRooms() []engine.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.roomOrder, func(id uuid.UUID, _ int) engine.Room { return s.rooms[id] })
}

func (s *Store) RoomAllocations() []engine.RoomAllocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.roomAllocs)
}

func (s *Store) Invigilations() []engine.Invigilation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.invigilations)
}

// Fail makes the named operation return err until cleared with a nil err.
func (s *Store) Fail(op string, err error) {
	s.FailTimes(op, err, 0)
}

// FailTimes makes the named operation return err for its next n calls.
func (s *Store) FailTimes(op string, err error, n int) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = &injected{err: err, times: n}
}

func (s *Store) failure(op string) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	f, ok := s.failures[op]
	if !ok {
		return nil
	}
	if f.times > 0 {
		f.times--
		if f.times == 0 {
			delete(s.failures, op)
		}
	}
	return f.err
}

/* =========================
   engine.RoomDirectory
========================= */

func (s *Store) ListRooms(_ context.Context, ids []uuid.UUID) ([]engine.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("ListRooms"); err != nil {
		return nil, err
	}
	out := make([]engine.Room, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.rooms[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

/* =========================
   engine.RoomAllocationStore
========================= */

func (s *Store) ListOverlapping(_ context.Context, roomIDs []uuid.UUID, date time.Time, w engine.Window) ([]engine.RoomAllocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("ListOverlapping"); err != nil {
		return nil, err
	}
	day := engine.DateKey(date)
	return lo.Filter(s.roomAllocs, func(a engine.RoomAllocation, _ int) bool {
		return lo.Contains(roomIDs, a.RoomID) && engine.DateKey(a.Date) == day && a.Window.Overlaps(w)
	}), nil
}

// ListByExam orders by date, start time, then insertion.
func (s *Store) ListByExam(_ context.Context, examID uuid.UUID) ([]engine.RoomAllocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("ListByExam"); err != nil {
		return nil, err
	}
	out := lo.Filter(s.roomAllocs, func(a engine.RoomAllocation, _ int) bool { return a.ExamID == examID })
	slices.SortStableFunc(out, func(a, b engine.RoomAllocation) int {
		return cmp.Or(
			strings.Compare(engine.DateKey(a.Date), engine.DateKey(b.Date)),
			strings.Compare(a.Window.Start, b.Window.Start),
		)
	})
	return out, nil
}

func (s *Store) Create(_ context.Context, a *engine.RoomAllocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("Create"); err != nil {
		return err
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	row := *a
	row.Occupants = slices.Clone(a.Occupants)
	s.roomAllocs = append(s.roomAllocs, row)
	return nil
}

/* =========================
   engine.InvigilationStore
========================= */

func (s *Store) ListBySlotKeys(_ context.Context, keys []engine.SlotKey) ([]engine.Invigilation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("ListBySlotKeys"); err != nil {
		return nil, err
	}
	want := lo.SliceToMap(keys, func(k engine.SlotKey) (engine.SlotKey, bool) { return k, true })
	return lo.Filter(s.invigilations, func(i engine.Invigilation, _ int) bool { return want[i.Key()] }), nil
}

func (s *Store) ListByFacultyOnDates(_ context.Context, facultyIDs []uuid.UUID, dates []time.Time) ([]engine.Invigilation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("ListByFacultyOnDates"); err != nil {
		return nil, err
	}
	days := lo.Map(dates, func(d time.Time, _ int) string { return engine.DateKey(d) })
	return lo.Filter(s.invigilations, func(i engine.Invigilation, _ int) bool {
		return lo.Contains(facultyIDs, i.FacultyID) && lo.Contains(days, engine.DateKey(i.Date))
	}), nil
}

func (s *Store) CreateBatch(_ context.Context, rows []engine.Invigilation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreateBatch"); err != nil {
		return err
	}
	for _, r := range rows {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		s.invigilations = append(s.invigilations, r)
	}
	return nil
}

/* =========================
   engine.FacultyDirectory
========================= */

func (s *Store) ListFaculty(_ context.Context, filter engine.FacultyFilter) ([]engine.Faculty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("ListFaculty"); err != nil {
		return nil, err
	}
	out := make([]engine.Faculty, 0, len(filter.IDs))
	for _, id := range s.facultyOrder {
		f := s.faculty[id]
		if len(filter.IDs) > 0 && !lo.Contains(filter.IDs, id) {
			continue
		}
		if filter.AvailableOnly && !f.Available {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (s *Store) IncrementAllocations(_ context.Context, counts map[uuid.UUID]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("IncrementAllocations"); err != nil {
		return err
	}
	for id, n := range counts {
		f, ok := s.faculty[id]
		if !ok {
			continue
		}
		f.PreviousAllocations += n
		s.faculty[id] = f
	}
	return nil
}
