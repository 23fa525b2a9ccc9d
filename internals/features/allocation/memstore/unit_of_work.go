// file: internals/features/allocation/memstore/unit_of_work.go
package memstore

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"exam_allocation_backend/internals/features/allocation/engine"
	"exam_allocation_backend/internals/features/allocation/model"
	"exam_allocation_backend/internals/features/allocation/repository"
)

/* =========================
   repository.ExamStore
========================= */

func (s *Store) CreateExam(_ context.Context, exam *model.ExamModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreateExam"); err != nil {
		return err
	}
	if exam.ExamID == uuid.Nil {
		exam.ExamID = uuid.New()
	}
	if exam.ExamCode != nil {
		for _, e := range s.exams {
			if e.ExamCode != nil && *e.ExamCode == *exam.ExamCode {
				return fmt.Errorf("%w: exam_code %q", gorm.ErrDuplicatedKey, *exam.ExamCode)
			}
		}
	}
	for i := range exam.ExamSemesters {
		sem := &exam.ExamSemesters[i]
		if sem.ExamSemesterID == uuid.Nil {
			sem.ExamSemesterID = uuid.New()
		}
		sem.ExamSemesterExamID = exam.ExamID
		for j := range sem.ExamSemesterSubjects {
			sub := &sem.ExamSemesterSubjects[j]
			if sub.ExamSubjectID == uuid.Nil {
				sub.ExamSubjectID = uuid.New()
			}
			sub.ExamSubjectExamID = exam.ExamID
			sub.ExamSubjectSemesterID = sem.ExamSemesterID
		}
	}
	exam.ExamCreatedAt = time.Now()
	s.exams[exam.ExamID] = *exam
	return nil
}

func (s *Store) FindExam(_ context.Context, id uuid.UUID) (*model.ExamModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.exams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

/* =========================
   repository.DashboardStore
========================= */

func (s *Store) ListInvigilationsByExam(_ context.Context, examID uuid.UUID) ([]engine.Invigilation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("ListInvigilationsByExam"); err != nil {
		return nil, err
	}
	return sortInvigilations(lo.Filter(s.invigilations, func(i engine.Invigilation, _ int) bool { return i.ExamID == examID })), nil
}

func (s *Store) ListInvigilationsByFaculty(_ context.Context, facultyID uuid.UUID, from, to time.Time) ([]engine.Invigilation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("ListInvigilationsByFaculty"); err != nil {
		return nil, err
	}
	return sortInvigilations(lo.Filter(s.invigilations, func(i engine.Invigilation, _ int) bool {
		return i.FacultyID == facultyID && within(i.Date, from, to)
	})), nil
}

func (s *Store) ListRoomAllocationsBetween(_ context.Context, from, to time.Time) ([]engine.RoomAllocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("ListRoomAllocationsBetween"); err != nil {
		return nil, err
	}
	return lo.Filter(s.roomAllocs, func(a engine.RoomAllocation, _ int) bool { return within(a.Date, from, to) }), nil
}

func (s *Store) ListInvigilationsBetween(_ context.Context, from, to time.Time) ([]engine.Invigilation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("ListInvigilationsBetween"); err != nil {
		return nil, err
	}
	return lo.Filter(s.invigilations, func(i engine.Invigilation, _ int) bool { return within(i.Date, from, to) }), nil
}

func (s *Store) ListAllRooms(context.Context) ([]engine.Room, error) {
	if err := s.failure("ListAllRooms"); err != nil {
		return nil, err
	}
	return s.AllRooms(), nil
}

// within compares calendar days; zero bounds are open.
func within(d, from, to time.Time) bool {
	day := engine.DateKey(d)
	if !from.IsZero() && day < engine.DateKey(from) {
		return false
	}
	if !to.IsZero() && day > engine.DateKey(to) {
		return false
	}
	return true
}

func sortInvigilations(rows []engine.Invigilation) []engine.Invigilation {
	slices.SortStableFunc(rows, func(a, b engine.Invigilation) int {
		return cmp.Or(
			strings.Compare(engine.DateKey(a.Date), engine.DateKey(b.Date)),
			strings.Compare(a.Window.Start, b.Window.Start),
		)
	})
	return rows
}

/* =========================
   repository.UnitOfWork
========================= */

type snapshot struct {
	rooms         map[uuid.UUID]engine.Room
	roomOrder     []uuid.UUID
	faculty       map[uuid.UUID]engine.Faculty
	facultyOrder  []uuid.UUID
	roomAllocs    []engine.RoomAllocation
	invigilations []engine.Invigilation
	exams         map[uuid.UUID]model.ExamModel
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		rooms:         maps.Clone(s.rooms),
		roomOrder:     slices.Clone(s.roomOrder),
		faculty:       maps.Clone(s.faculty),
		facultyOrder:  slices.Clone(s.facultyOrder),
		roomAllocs:    slices.Clone(s.roomAllocs),
		invigilations: slices.Clone(s.invigilations),
		exams:         maps.Clone(s.exams),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms, s.roomOrder = snap.rooms, snap.roomOrder
	s.faculty, s.facultyOrder = snap.faculty, snap.facultyOrder
	s.roomAllocs, s.invigilations = snap.roomAllocs, snap.invigilations
	s.exams = snap.exams
}

func (s *Store) Stores() repository.Stores {
	return repository.Stores{
		Rooms:           s,
		RoomAllocations: s,
		Invigilations:   s,
		Faculty:         s,
		Exams:           s,
		Dashboard:       s,
	}
}

// Transaction serializes callers and restores the pre-call state when fn fails.
func (s *Store) Transaction(_ context.Context, fn func(repository.Stores) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(s.Stores()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}
