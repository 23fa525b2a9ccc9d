package dto

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exam_allocation_backend/internals/features/allocation/engine"
)

func TestCreateExamRequestToModel(t *testing.T) {
	//** Arrange
	loc, _ := time.LoadLocation("America/New_York")
	r1, r2 := uuid.New(), uuid.New()
	code := "  "
	req := CreateExamRequest{
		ExamName:   " End Sem ",
		ExamCode:   &code,
		FacultyIDs: []uuid.UUID{uuid.New(), uuid.New()},
		Semesters: []SemesterRequest{{Number: 3, Subjects: []SubjectRequest{{
			Code: " ma201 ", Name: "Linear Algebra", Date: "2025-05-10",
			StartTime: "9:30 AM", EndTime: "12:30 PM", TotalStudents: 80,
			RoomIDs: []uuid.UUID{r1, r2, r1},
		}}}},
	}

	//** Act
	req.Normalize()
	exam, err := req.ToModel(loc)

	//** Assert
	require.NoError(t, err)
	assert.Nil(t, exam.ExamCode)
	assert.Equal(t, "End Sem", exam.ExamName)

	sub := exam.Subjects()[0]
	assert.Equal(t, "MA201", sub.ExamSubjectCode)
	assert.Equal(t, "09:30", sub.ExamSubjectStartTime.Clock())
	assert.Equal(t, "12:30", sub.ExamSubjectEndTime.Clock())
	assert.Equal(t, []uuid.UUID{r1, r2}, sub.RoomUUIDs())
	// calendar day survives a negative UTC offset
	assert.Equal(t, "2025-05-10", engine.DateKey(time.Time(sub.ExamSubjectDate)))
	assert.Equal(t, exam.ExamID, sub.ExamSubjectExamID)
	assert.Equal(t, exam.ExamSemesters[0].ExamSemesterID, sub.ExamSubjectSemesterID)
}

func TestCreateExamRequestSemanticErrors(t *testing.T) {
	base := func() CreateExamRequest {
		return CreateExamRequest{
			ExamName:   "Mid",
			FacultyIDs: []uuid.UUID{uuid.New()},
			Semesters: []SemesterRequest{{Number: 1, Subjects: []SubjectRequest{{
				Code: "X1", Name: "X", Date: "2025-05-10", StartTime: "09:00", EndTime: "10:00",
				TotalStudents: 10, RoomIDs: []uuid.UUID{uuid.New()},
			}}}},
		}
	}

	cases := []struct {
		name  string
		edit  func(r *CreateExamRequest)
		field string
	}{
		{"bad start", func(r *CreateExamRequest) { r.Semesters[0].Subjects[0].StartTime = "25:00" }, "semesters[0].subjects[0].start_time"},
		{"empty window", func(r *CreateExamRequest) { r.Semesters[0].Subjects[0].EndTime = "09:00" }, "semesters[0].subjects[0].end_time"},
		{"bad date", func(r *CreateExamRequest) { r.Semesters[0].Subjects[0].Date = "tomorrow" }, "semesters[0].subjects[0].date"},
		{"no rooms", func(r *CreateExamRequest) { r.Semesters[0].Subjects[0].RoomIDs = nil }, "semesters[0].subjects[0].room_ids"},
		{"no subjects", func(r *CreateExamRequest) { r.Semesters[0].Subjects = nil }, "semesters"},
		{"too few faculty", func(r *CreateExamRequest) {
			r.Semesters[0].Subjects[0].RoomIDs = []uuid.UUID{uuid.New(), uuid.New()}
		}, "faculty_ids"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base()
			tc.edit(&req)

			_, err := req.ToModel(time.UTC)

			var ve *engine.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}
