// file: internals/features/allocation/service/exam_allocation_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"exam_allocation_backend/internals/configs"
	"exam_allocation_backend/internals/features/allocation/dto"
	"exam_allocation_backend/internals/features/allocation/engine"
	"exam_allocation_backend/internals/features/allocation/model"
	"exam_allocation_backend/internals/features/allocation/repository"
)

var ErrExamNotFound = errors.New("exam not found")

// ExamAllocationService runs exam creation and both allocators inside one unit of work.
type ExamAllocationService struct {
	uow      repository.UnitOfWork
	settings configs.AllocationSettings
	loc      *time.Location
	notifier engine.Notifier
	tb       engine.TieBreaker
	validate *validator.Validate

	retryBackoff time.Duration
}

func NewExamAllocationService(
	uow repository.UnitOfWork,
	settings configs.AllocationSettings,
	notifier engine.Notifier,
	tb engine.TieBreaker,
) *ExamAllocationService {
	if notifier == nil {
		notifier = engine.LogNotifier{}
	}
	if tb == nil {
		tb = engine.DefaultTieBreaker()
	}
	return &ExamAllocationService{
		uow:          uow,
		settings:     settings,
		loc:          settings.Location(),
		notifier:     notifier,
		tb:           tb,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		retryBackoff: 50 * time.Millisecond,
	}
}

// TieBreakerFor returns a seeded shuffle when ALLOCATION_SHUFFLE_SEED is set, else the clock-seeded default.
func TieBreakerFor(settings configs.AllocationSettings) (engine.TieBreaker, error) {
	seed, ok, err := settings.Seed()
	if err != nil {
		return nil, err
	}
	if !ok {
		return engine.DefaultTieBreaker(), nil
	}
	return engine.NewRandomTieBreaker(seed), nil
}

/* =========================================================
   CREATE EXAM (+ allocation)
========================================================= */

type ExamAllocationOutcome struct {
	Exam            model.ExamModel
	RoomAllocations []engine.RoomAllocation
	Invigilations   []engine.Invigilation
	Reused          int
	Shortage        bool
	Rooms           []engine.Room
	Notices         []engine.Notice
}

func (o *ExamAllocationOutcome) Response() dto.ExamAllocationResponse {
	names := dto.RoomNames(o.Rooms)
	return dto.ExamAllocationResponse{
		Exam:            dto.FromExamModel(&o.Exam),
		RoomAllocations: dto.FromRoomAllocations(o.RoomAllocations, names),
		Invigilations:   dto.FromInvigilations(o.Invigilations, names),
		Reused:          o.Reused,
		Shortage:        o.Shortage,
		NoticesSent:     len(o.Notices),
	}
}

// CreateExam persists the exam and allocates rooms and invigilators for every subject.
// Nothing is kept when any step fails.
func (s *ExamAllocationService) CreateExam(ctx context.Context, req dto.CreateExamRequest) (*ExamAllocationOutcome, error) {
	req.Normalize()
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	exam, err := req.ToModel(s.loc)
	if err != nil {
		return nil, err
	}

	var out *ExamAllocationOutcome
	for attempt := 0; ; attempt++ {
		out, err = s.allocateOnce(ctx, exam, req.FacultyIDs)
		if err == nil {
			break
		}
		if !repository.IsRetryable(err) || attempt >= s.settings.TxRetries {
			break
		}
		log.Printf("[ALLOC] ♻️ exam=%s retry %d/%d after: %v", exam.ExamID, attempt+1, s.settings.TxRetries, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.retryBackoff * time.Duration(attempt+1)):
		}
	}
	if err != nil {
		if isExamCodeTaken(err) {
			return nil, &engine.ValidationError{Field: "exam_code", Reason: "already exists"}
		}
		log.Printf("[ALLOC] ❌ exam=%q rolled back (%s): %v", exam.ExamName, engine.ErrorKind(err), err)
		return nil, err
	}

	log.Printf("[ALLOC] ✅ exam=%s subjects=%d rooms=%d invigilations=%d reused=%d shortage=%v",
		out.Exam.ExamID, len(out.Exam.Subjects()), len(out.RoomAllocations), len(out.Invigilations), out.Reused, out.Shortage)

	if s.settings.NotifyOnCreate && len(out.Notices) > 0 {
		// delivery failure never undoes a committed allocation
		if nerr := s.notifier.Notify(ctx, out.Notices); nerr != nil {
			log.Printf("[NOTICE] ⚠️ exam=%s delivery failed: %v", out.Exam.ExamID, nerr)
		}
	} else {
		out.Notices = nil
	}
	return out, nil
}

func (s *ExamAllocationService) allocateOnce(ctx context.Context, exam model.ExamModel, facultyIDs []uuid.UUID) (*ExamAllocationOutcome, error) {
	out := &ExamAllocationOutcome{}
	err := s.uow.Transaction(ctx, func(st repository.Stores) error {
		if err := st.Exams.CreateExam(ctx, &exam); err != nil {
			return &engine.StorageError{Op: "create exam", Err: err}
		}
		subjects := exam.Subjects()

		rooms := engine.NewRoomAllocator(st.Rooms, st.RoomAllocations, s.loc)
		faculty := engine.NewFacultyAllocator(st.RoomAllocations, st.Invigilations, st.Faculty, st.Rooms, s.tb)

		// fail fast before anything is placed
		for _, sub := range subjects {
			if _, err := rooms.CheckAvailability(ctx, engine.AvailabilityRequest{
				RoomIDs:       sub.RoomUUIDs(),
				Date:          s.subjectDate(sub),
				StartTime:     sub.ExamSubjectStartTime.Clock(),
				EndTime:       sub.ExamSubjectEndTime.Clock(),
				RequiredSeats: sub.ExamSubjectTotalStudents,
			}); err != nil {
				return fmt.Errorf("subject %s: %w", sub.ExamSubjectCode, err)
			}
		}

		for _, sub := range subjects {
			placed, err := rooms.Allocate(ctx, engine.AllocateRoomsRequest{
				ExamID:        exam.ExamID,
				SubjectID:     sub.ExamSubjectID,
				TotalStudents: sub.ExamSubjectTotalStudents,
				RoomIDs:       sub.RoomUUIDs(),
				Date:          s.subjectDate(sub),
				StartTime:     sub.ExamSubjectStartTime.Clock(),
				EndTime:       sub.ExamSubjectEndTime.Clock(),
			})
			if err != nil {
				return fmt.Errorf("subject %s: %w", sub.ExamSubjectCode, err)
			}
			out.RoomAllocations = append(out.RoomAllocations, placed...)

			staffed, err := faculty.Allocate(ctx, exam.ExamID, facultyIDs)
			if err != nil {
				return fmt.Errorf("subject %s: %w", sub.ExamSubjectCode, err)
			}
			out.Invigilations = append(out.Invigilations, staffed.Created...)
			out.Reused += staffed.Reused
			out.Shortage = out.Shortage || staffed.Shortage
		}

		roomIDs := lo.Uniq(lo.Map(out.RoomAllocations, func(a engine.RoomAllocation, _ int) uuid.UUID { return a.RoomID }))
		usedRooms, err := st.Rooms.ListRooms(ctx, roomIDs)
		if err != nil {
			return &engine.StorageError{Op: "list rooms", Err: err}
		}
		staff, err := st.Faculty.ListFaculty(ctx, engine.FacultyFilter{IDs: facultyIDs})
		if err != nil {
			return &engine.StorageError{Op: "list faculty", Err: err}
		}
		out.Rooms = usedRooms
		out.Notices = engine.BuildNotices(exam.ExamName, out.Invigilations, staff, usedRooms)
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.Exam = exam
	return out, nil
}

// subjectDate turns the stored calendar day into local midnight.
func (s *ExamAllocationService) subjectDate(sub model.ExamSubjectModel) time.Time {
	d := time.Time(sub.ExamSubjectDate)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc)
}

func isExamCodeTaken(err error) bool {
	if !repository.IsUniqueViolation(err) {
		return false
	}
	c := repository.UniqueConstraint(err)
	if c != "" {
		return strings.Contains(c, "exam_code")
	}
	return strings.Contains(err.Error(), "exam_code")
}

/* =========================================================
   READ SIDE
========================================================= */

func (s *ExamAllocationService) CheckAvailability(ctx context.Context, req dto.AvailabilityRequest) (dto.AvailabilityResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.AvailabilityResponse{}, err
	}
	in, err := req.ToEngine(s.loc)
	if err != nil {
		return dto.AvailabilityResponse{}, err
	}
	st := s.uow.Stores()
	res, err := engine.NewRoomAllocator(st.Rooms, st.RoomAllocations, s.loc).CheckAvailability(ctx, in)
	// a capacity shortfall still reports what is free
	var capErr *engine.CapacityError
	if err != nil && !errors.As(err, &capErr) {
		return dto.AvailabilityResponse{}, err
	}
	return dto.FromAvailability(res, req.RequiredSeats), err
}

func (s *ExamAllocationService) findExam(ctx context.Context, st repository.Stores, examID uuid.UUID) (*model.ExamModel, error) {
	exam, err := st.Exams.FindExam(ctx, examID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, &engine.StorageError{Op: "find exam", Err: err}
	}
	return exam, nil
}

func (s *ExamAllocationService) roomNames(ctx context.Context, st repository.Stores, ids []uuid.UUID) (map[uuid.UUID]string, []engine.Room, error) {
	ids = lo.Uniq(ids)
	if len(ids) == 0 {
		return map[uuid.UUID]string{}, nil, nil
	}
	rooms, err := st.Rooms.ListRooms(ctx, ids)
	if err != nil {
		return nil, nil, &engine.StorageError{Op: "list rooms", Err: err}
	}
	return dto.RoomNames(rooms), rooms, nil
}

func (s *ExamAllocationService) ListExamRoomAllocations(ctx context.Context, examID uuid.UUID) ([]dto.RoomAllocationResponse, error) {
	st := s.uow.Stores()
	if _, err := s.findExam(ctx, st, examID); err != nil {
		return nil, err
	}
	rows, err := st.RoomAllocations.ListByExam(ctx, examID)
	if err != nil {
		return nil, &engine.StorageError{Op: "list room allocations", Err: err}
	}
	names, _, err := s.roomNames(ctx, st, lo.Map(rows, func(a engine.RoomAllocation, _ int) uuid.UUID { return a.RoomID }))
	if err != nil {
		return nil, err
	}
	return dto.FromRoomAllocations(rows, names), nil
}

func (s *ExamAllocationService) ListExamInvigilations(ctx context.Context, examID uuid.UUID) ([]dto.InvigilationResponse, error) {
	st := s.uow.Stores()
	if _, err := s.findExam(ctx, st, examID); err != nil {
		return nil, err
	}
	rows, err := st.Dashboard.ListInvigilationsByExam(ctx, examID)
	if err != nil {
		return nil, &engine.StorageError{Op: "list invigilations", Err: err}
	}
	names, _, err := s.roomNames(ctx, st, lo.Map(rows, func(i engine.Invigilation, _ int) uuid.UUID { return i.RoomID }))
	if err != nil {
		return nil, err
	}
	return dto.FromInvigilations(rows, names), nil
}

// ListFacultyInvigilations serves the faculty dashboard; from/to are optional "YYYY-MM-DD" bounds.
func (s *ExamAllocationService) ListFacultyInvigilations(ctx context.Context, facultyID uuid.UUID, from, to string) ([]dto.InvigilationResponse, error) {
	var fromDate, toDate time.Time
	var err error
	if from != "" {
		if fromDate, err = engine.ParseDate(from, s.loc); err != nil {
			return nil, &engine.ValidationError{Field: "from", Reason: err.Error()}
		}
	}
	if to != "" {
		if toDate, err = engine.ParseDate(to, s.loc); err != nil {
			return nil, &engine.ValidationError{Field: "to", Reason: err.Error()}
		}
	}
	if !fromDate.IsZero() && !toDate.IsZero() && toDate.Before(fromDate) {
		return nil, &engine.ValidationError{Field: "to", Reason: "must not be before from"}
	}

	st := s.uow.Stores()
	rows, err := st.Dashboard.ListInvigilationsByFaculty(ctx, facultyID, fromDate, toDate)
	if err != nil {
		return nil, &engine.StorageError{Op: "list faculty invigilations", Err: err}
	}
	names, _, err := s.roomNames(ctx, st, lo.Map(rows, func(i engine.Invigilation, _ int) uuid.UUID { return i.RoomID }))
	if err != nil {
		return nil, err
	}
	return dto.FromInvigilations(rows, names), nil
}

// ExamNotices rebuilds the invigilation-detail messages of an exam without sending them.
func (s *ExamAllocationService) ExamNotices(ctx context.Context, examID uuid.UUID) ([]dto.NoticeResponse, error) {
	st := s.uow.Stores()
	exam, err := s.findExam(ctx, st, examID)
	if err != nil {
		return nil, err
	}
	rows, err := st.Dashboard.ListInvigilationsByExam(ctx, examID)
	if err != nil {
		return nil, &engine.StorageError{Op: "list invigilations", Err: err}
	}
	if len(rows) == 0 {
		return []dto.NoticeResponse{}, nil
	}
	staff, err := st.Faculty.ListFaculty(ctx, engine.FacultyFilter{
		IDs: lo.Uniq(lo.Map(rows, func(i engine.Invigilation, _ int) uuid.UUID { return i.FacultyID })),
	})
	if err != nil {
		return nil, &engine.StorageError{Op: "list faculty", Err: err}
	}
	_, rooms, err := s.roomNames(ctx, st, lo.Map(rows, func(i engine.Invigilation, _ int) uuid.UUID { return i.RoomID }))
	if err != nil {
		return nil, err
	}
	return dto.FromNotices(engine.BuildNotices(exam.ExamName, rows, staff, rooms)), nil
}
