package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	. "github.com/onsi/gomega"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exam_allocation_backend/internals/configs"
	"exam_allocation_backend/internals/features/allocation/dto"
	"exam_allocation_backend/internals/features/allocation/engine"
	"exam_allocation_backend/internals/features/allocation/memstore"
	"exam_allocation_backend/internals/features/allocation/repository"
)

type recordingNotifier struct {
	sent [][]engine.Notice
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, notices []engine.Notice) error {
	n.sent = append(n.sent, notices)
	return n.err
}

type fixture struct {
	store    *memstore.Store
	svc      *ExamAllocationService
	notifier *recordingNotifier
	rooms    []uuid.UUID
	faculty  []uuid.UUID
}

func newFixture(t *testing.T, caps ...int) *fixture {
	t.Helper()
	store := memstore.New()
	f := &fixture{store: store, notifier: &recordingNotifier{}}
	for i, c := range caps {
		r := store.AddRoom(engine.Room{Name: "Hall " + string(rune('A'+i)), Capacity: c})
		f.rooms = append(f.rooms, r.ID)
	}
	for _, d := range []engine.Designation{
		engine.DesignationAssistant, engine.DesignationAssistant, engine.DesignationAssociate,
		engine.DesignationProfessor, engine.DesignationAssistant,
	} {
		fac := store.AddFaculty(engine.Faculty{
			Name: "Faculty " + d.String(), Email: uuid.NewString() + "@campus.test",
			Designation: d, Available: true,
		})
		f.faculty = append(f.faculty, fac.ID)
	}

	settings := configs.DefaultAllocationSettings()
	settings.TxRetries = 2
	f.svc = NewExamAllocationService(store, settings, f.notifier, engine.NoopTieBreaker{})
	f.svc.retryBackoff = 0
	return f
}

func subject(code, date, start, end string, students int, rooms ...uuid.UUID) dto.SubjectRequest {
	return dto.SubjectRequest{
		Code: code, Name: "Subject " + code, Date: date, StartTime: start, EndTime: end,
		TotalStudents: students, RoomIDs: rooms,
	}
}

func examRequest(faculty []uuid.UUID, subjects ...dto.SubjectRequest) dto.CreateExamRequest {
	return dto.CreateExamRequest{
		ExamName:   "Mid Semester April",
		FacultyIDs: faculty,
		Semesters:  []dto.SemesterRequest{{Number: 2, Subjects: subjects}},
	}
}

func TestCreateExamAllocatesRoomsAndInvigilators(t *testing.T) {
	g := NewWithT(t)
	//** Arrange
	f := newFixture(t, 40, 30, 20)
	req := examRequest(f.faculty, subject("cs101", "2025-04-01", "09:00", "12:00", 65, f.rooms...))

	//** Act
	out, err := f.svc.CreateExam(context.Background(), req)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, []int{40, 25}, lo.Map(out.RoomAllocations, func(a engine.RoomAllocation, _ int) int { return len(a.Occupants) }))
	g.Expect(out.Invigilations).To(HaveLen(2))
	assert.Len(t, lo.UniqBy(out.Invigilations, func(i engine.Invigilation) uuid.UUID { return i.FacultyID }), 2)
	assert.Equal(t, "CS101", out.Exam.Subjects()[0].ExamSubjectCode)

	_, err = f.store.FindExam(context.Background(), out.Exam.ExamID)
	assert.NoError(t, err)
	g.Expect(f.store.RoomAllocations()).To(HaveLen(2))

	require.Len(t, f.notifier.sent, 1)
	g.Expect(f.notifier.sent[0]).To(HaveLen(2))

	resp := out.Response()
	assert.Equal(t, "Hall A", resp.RoomAllocations[0].RoomName)
	assert.Equal(t, "2025-04-01", resp.RoomAllocations[0].Date)
	assert.Equal(t, 2, resp.NoticesSent)
}

func TestCreateExamRollsBackOnStaffingShortage(t *testing.T) {
	//** Arrange
	f := newFixture(t, 40, 40)
	only := f.faculty[:1]
	before, _ := f.store.Faculty(only[0])
	req := examRequest(only,
		subject("CS101", "2025-04-01", "09:00", "11:00", 30, f.rooms[0]),
		subject("CS102", "2025-04-01", "10:00", "12:00", 30, f.rooms[1]),
	)

	//** Act
	out, err := f.svc.CreateExam(context.Background(), req)

	//** Assert
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Equal(t, "staffing_shortage", engine.ErrorKind(err))
	assert.Contains(t, err.Error(), "CS102")

	assert.Empty(t, f.store.RoomAllocations())
	assert.Empty(t, f.store.Invigilations())
	after, _ := f.store.Faculty(only[0])
	assert.Equal(t, before.PreviousAllocations, after.PreviousAllocations)
	assert.Empty(t, f.notifier.sent)
}

func TestCreateExamFailsFastOnCapacity(t *testing.T) {
	//** Arrange
	f := newFixture(t, 50, 30)
	req := examRequest(f.faculty,
		subject("CS101", "2025-04-01", "09:00", "11:00", 40, f.rooms...),
		subject("CS102", "2025-04-02", "09:00", "11:00", 85, f.rooms...),
	)

	//** Act
	_, err := f.svc.CreateExam(context.Background(), req)

	//** Assert
	var capErr *engine.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 5, capErr.Shortfall)
	assert.Empty(t, f.store.RoomAllocations())
}

func TestCreateExamRetriesSerializationFailure(t *testing.T) {
	//** Arrange
	f := newFixture(t, 40, 30)
	f.store.FailTimes("Create", &pgconn.PgError{Code: "40001"}, 1)
	req := examRequest(f.faculty, subject("CS101", "2025-04-01", "09:00", "11:00", 60, f.rooms...))

	//** Act
	out, err := f.svc.CreateExam(context.Background(), req)

	//** Assert
	require.NoError(t, err)
	g := NewWithT(t)
	g.Expect(out.RoomAllocations).To(HaveLen(2))
	// the aborted attempt left nothing behind
	g.Expect(f.store.RoomAllocations()).To(HaveLen(2))
	g.Expect(f.store.Invigilations()).To(HaveLen(2))
}

func TestCreateExamGivesUpAfterRetries(t *testing.T) {
	//** Arrange
	f := newFixture(t, 40)
	f.store.Fail("Create", &pgconn.PgError{Code: "40P01"})
	req := examRequest(f.faculty, subject("CS101", "2025-04-01", "09:00", "11:00", 10, f.rooms...))

	//** Act
	_, err := f.svc.CreateExam(context.Background(), req)

	//** Assert
	require.Error(t, err)
	assert.True(t, repository.IsRetryable(err))
	assert.Equal(t, "storage", engine.ErrorKind(err))
	assert.Empty(t, f.store.RoomAllocations())
}

func TestCreateExamRejectsDuplicateCode(t *testing.T) {
	//** Arrange
	f := newFixture(t, 40, 40)
	code := "MID-2025"
	first := examRequest(f.faculty, subject("CS101", "2025-04-01", "09:00", "11:00", 10, f.rooms[0]))
	first.ExamCode = &code
	second := examRequest(f.faculty, subject("CS201", "2025-04-02", "09:00", "11:00", 10, f.rooms[1]))
	second.ExamCode = &code

	//** Act
	_, err1 := f.svc.CreateExam(context.Background(), first)
	_, err2 := f.svc.CreateExam(context.Background(), second)

	//** Assert
	require.NoError(t, err1)
	var ve *engine.ValidationError
	require.ErrorAs(t, err2, &ve)
	assert.Equal(t, "exam_code", ve.Field)
	assert.Len(t, f.store.RoomAllocations(), 1)
}

func TestCreateExamValidation(t *testing.T) {
	f := newFixture(t, 40, 40, 40)

	t.Run("struct tags", func(t *testing.T) {
		req := examRequest(f.faculty, subject("CS101", "2025-04-01", "09:00", "11:00", 0, f.rooms[0]))
		req.ExamName = "  "

		_, err := f.svc.CreateExam(context.Background(), req)

		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		fields := lo.Map(verrs, func(fe validator.FieldError, _ int) string { return fe.Field() })
		NewWithT(t).Expect(fields).To(ContainElements("ExamName", "TotalStudents"))
	})

	t.Run("fewer faculty than rooms of one subject", func(t *testing.T) {
		req := examRequest(f.faculty[:2], subject("CS101", "2025-04-01", "09:00", "11:00", 100, f.rooms...))

		_, err := f.svc.CreateExam(context.Background(), req)

		var ve *engine.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "faculty_ids", ve.Field)
	})

	t.Run("end before start", func(t *testing.T) {
		req := examRequest(f.faculty, subject("CS101", "2025-04-01", "11:00", "09:00", 10, f.rooms[0]))

		_, err := f.svc.CreateExam(context.Background(), req)

		assert.Equal(t, "validation", engine.ErrorKind(err))
		assert.Contains(t, err.Error(), "semesters[0].subjects[0]")
	})

	t.Run("bad date", func(t *testing.T) {
		req := examRequest(f.faculty, subject("CS101", "01/04/2025", "09:00", "11:00", 10, f.rooms[0]))

		_, err := f.svc.CreateExam(context.Background(), req)

		assert.Equal(t, "validation", engine.ErrorKind(err))
	})

	t.Run("unknown room", func(t *testing.T) {
		req := examRequest(f.faculty, subject("CS101", "2025-04-01", "09:00", "11:00", 10, uuid.New()))

		_, err := f.svc.CreateExam(context.Background(), req)

		assert.Equal(t, "validation", engine.ErrorKind(err))
	})

	assert.Empty(t, f.store.RoomAllocations())
}

func TestNotifierFailureKeepsAllocation(t *testing.T) {
	//** Arrange
	f := newFixture(t, 40)
	f.notifier.err = errors.New("smtp down")

	//** Act
	out, err := f.svc.CreateExam(context.Background(),
		examRequest(f.faculty, subject("CS101", "2025-04-01", "09:00", "11:00", 10, f.rooms...)))

	//** Assert
	require.NoError(t, err)
	assert.Len(t, out.Invigilations, 1)
	assert.Len(t, f.store.Invigilations(), 1)
}

func TestNotificationsCanBeDisabled(t *testing.T) {
	f := newFixture(t, 40)
	f.svc.settings.NotifyOnCreate = false

	out, err := f.svc.CreateExam(context.Background(),
		examRequest(f.faculty, subject("CS101", "2025-04-01", "09:00", "11:00", 10, f.rooms...)))

	require.NoError(t, err)
	assert.Empty(t, f.notifier.sent)
	assert.Zero(t, out.Response().NoticesSent)
}

func TestReadSide(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	f := newFixture(t, 40, 30)
	out, err := f.svc.CreateExam(ctx, examRequest(f.faculty,
		subject("CS101", "2025-04-01", "09:00", "11:00", 60, f.rooms...),
		subject("CS102", "2025-04-03", "13:00", "15:00", 20, f.rooms[1]),
	))
	require.NoError(t, err)
	examID := out.Exam.ExamID

	t.Run("room allocations", func(t *testing.T) {
		rows, err := f.svc.ListExamRoomAllocations(ctx, examID)

		require.NoError(t, err)
		g.Expect(rows).To(HaveLen(3))
		g.Expect(lo.Map(rows, func(r dto.RoomAllocationResponse, _ int) string { return r.RoomName })).
			To(ConsistOf("Hall A", "Hall B", "Hall B"))
	})

	t.Run("invigilations", func(t *testing.T) {
		rows, err := f.svc.ListExamInvigilations(ctx, examID)

		require.NoError(t, err)
		g.Expect(rows).To(HaveLen(3))
		assert.Equal(t, "2025-04-01", rows[0].Date)
	})

	t.Run("faculty dashboard window", func(t *testing.T) {
		last := out.Invigilations[len(out.Invigilations)-1]

		all, err := f.svc.ListFacultyInvigilations(ctx, last.FacultyID, "", "")
		require.NoError(t, err)
		late, err := f.svc.ListFacultyInvigilations(ctx, last.FacultyID, "2025-04-02", "2025-04-30")
		require.NoError(t, err)

		g.Expect(all).NotTo(BeEmpty())
		g.Expect(late).To(HaveLen(1))
		assert.Equal(t, "2025-04-03", late[0].Date)

		_, err = f.svc.ListFacultyInvigilations(ctx, last.FacultyID, "2025-04-30", "2025-04-01")
		assert.Equal(t, "validation", engine.ErrorKind(err))
	})

	t.Run("notices", func(t *testing.T) {
		notices, err := f.svc.ExamNotices(ctx, examID)

		require.NoError(t, err)
		assert.Len(t, notices, len(lo.UniqBy(out.Invigilations, func(i engine.Invigilation) uuid.UUID { return i.FacultyID })))
		g.Expect(notices[0].Body).To(ContainSubstring("2025-04-0"))
	})

	t.Run("unknown exam", func(t *testing.T) {
		_, err := f.svc.ListExamRoomAllocations(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrExamNotFound)
		_, err = f.svc.ExamNotices(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrExamNotFound)
	})
}

func TestCheckAvailability(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 40, 30)
	_, err := f.svc.CreateExam(ctx, examRequest(f.faculty, subject("CS101", "2025-04-01", "09:00", "11:00", 50, f.rooms...)))
	require.NoError(t, err)

	req := dto.AvailabilityRequest{RoomIDs: f.rooms, Date: "2025-04-01", StartTime: "10:00", EndTime: "12:00", RequiredSeats: 30}

	res, err := f.svc.CheckAvailability(ctx, req)

	var capErr *engine.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 20, res.AvailableSeats)
	assert.Equal(t, 10, capErr.Shortfall)

	req.StartTime, req.EndTime = "11:00", "13:00"
	res, err = f.svc.CheckAvailability(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 70, res.AvailableSeats)
}

func TestTieBreakerFor(t *testing.T) {
	s := configs.DefaultAllocationSettings()

	tb, err := TieBreakerFor(s)
	require.NoError(t, err)
	assert.Same(t, engine.DefaultTieBreaker(), tb)

	s.ShuffleSeed = "42"
	tb, err = TieBreakerFor(s)
	require.NoError(t, err)
	assert.IsType(t, &engine.RandomTieBreaker{}, tb)

	s.ShuffleSeed = "forty-two"
	_, err = TieBreakerFor(s)
	assert.Error(t, err)
}
