package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exam_allocation_backend/internals/features/allocation/engine"
)

func TestRoomCapacityIsDerived(t *testing.T) {
	m := RoomModel{RoomBuilding: "Main", RoomNumber: "101", RoomBenches: 20, RoomStudentsPerBench: 2, RoomCapacity: 999}

	require.NoError(t, m.BeforeSave(nil))
	assert.Equal(t, 40, m.RoomCapacity)
	assert.Equal(t, "Main 101", m.RoomName)

	bad := RoomModel{RoomBenches: -1}
	assert.Error(t, bad.BeforeSave(nil))
}

func TestDateOnlyKeepsCalendarDay(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	d := DateOnly(time.Date(2025, 4, 1, 0, 0, 0, 0, loc))

	assert.Equal(t, "2025-04-01", engine.DateKey(time.Time(d)))
	assert.Equal(t, time.UTC, time.Time(d).Location())
}

func TestInvigilationMapping(t *testing.T) {
	inv := engine.Invigilation{
		ID: uuid.New(), ExamID: uuid.New(), SubjectID: uuid.New(), RoomID: uuid.New(),
		FacultyID: uuid.New(), FacultyName: "Dr. Rao",
		Date:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Window: engine.Window{Start: "09:00", End: "11:00"},
	}

	m := InvigilationFromEngine(inv)

	var snap map[string]string
	require.NoError(t, json.Unmarshal(m.InvigilationSlot, &snap))
	assert.Equal(t, map[string]string{
		"room_id": inv.RoomID.String(), "date": "2025-04-01", "start_time": "09:00", "end_time": "11:00",
	}, snap)
	assert.Equal(t, inv.Key(), m.ToEngine().Key())
	assert.Equal(t, inv.FacultyID, m.ToEngine().FacultyID)
}

func TestRoomAllocationMapping(t *testing.T) {
	a := engine.RoomAllocation{
		ID: uuid.New(), RoomID: uuid.New(), Occupants: []string{"STU-0001", "STU-0002"},
		Date: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), Window: engine.Window{Start: "13:00", End: "16:00"},
	}

	back := RoomAllocationFromEngine(a).ToEngine()

	assert.Equal(t, a.Key(), back.Key())
	assert.Equal(t, a.Occupants, back.Occupants)
}

func TestUserToFaculty(t *testing.T) {
	u := UserModel{UserID: uuid.New(), UserName: "Ms. Iyer", UserDesignation: "Associate Professor", UserPreviousAllocations: 4, UserAvailable: true}

	f := u.ToFaculty()

	assert.Equal(t, engine.DesignationAssociate, f.Designation)
	assert.Equal(t, 4, f.PreviousAllocations)
	assert.True(t, f.Available)

	u.UserDesignation = "Visiting"
	assert.Equal(t, engine.DesignationUnknown, u.ToFaculty().Designation)
}

func TestExamSubjects(t *testing.T) {
	r1, r2 := uuid.New(), uuid.New()
	exam := ExamModel{ExamSemesters: []ExamSemesterModel{
		{ExamSemesterSubjects: []ExamSubjectModel{{ExamSubjectCode: "CS101"}}},
		{ExamSemesterSubjects: []ExamSubjectModel{{ExamSubjectCode: "CS301", ExamSubjectRoomIDs: []string{r1.String(), "junk", r2.String()}}}},
	}}

	subjects := exam.Subjects()

	require.Len(t, subjects, 2)
	assert.Equal(t, "CS301", subjects[1].ExamSubjectCode)
	assert.Equal(t, []uuid.UUID{r1, r2}, subjects[1].RoomUUIDs())
}

func TestTimeColumnsStoreClockText(t *testing.T) {
	a := engine.RoomAllocation{RoomID: uuid.New(), Date: time.Now(), Window: engine.Window{Start: "09:00", End: "12:30"}}

	m := RoomAllocationFromEngine(a)
	start, err := m.RoomAllocationStartTime.Value()
	require.NoError(t, err)
	end, err := m.RoomAllocationEndTime.Value()
	require.NoError(t, err)

	assert.Equal(t, "09:00", start)
	assert.Equal(t, "12:30", end)
	assert.Equal(t, "13:05", TimeOfDay("1:05 PM").Clock())
}
