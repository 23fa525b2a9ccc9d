// file: internals/features/allocation/dto/exam_dto.go
package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"exam_allocation_backend/internals/features/allocation/engine"
	"exam_allocation_backend/internals/features/allocation/model"
)

/* =========================================================
   REQUEST DTO: CREATE EXAM (+ allocation run)
========================================================= */

type CreateExamRequest struct {
	ExamName   string            `json:"exam_name" validate:"required,max=200"`
	ExamCode   *string           `json:"exam_code" validate:"omitempty,max=50"`
	CreatedBy  *uuid.UUID        `json:"created_by" validate:"omitempty"`
	FacultyIDs []uuid.UUID       `json:"faculty_ids" validate:"required,min=1,dive,required"`
	Semesters  []SemesterRequest `json:"semesters" validate:"required,min=1,dive"`
}

type SemesterRequest struct {
	Number   int              `json:"semester_number" validate:"required,min=1,max=12"`
	Name     string           `json:"semester_name" validate:"omitempty,max=100"`
	Subjects []SubjectRequest `json:"subjects" validate:"required,min=1,dive"`
}

type SubjectRequest struct {
	Code          string      `json:"subject_code" validate:"required,max=30"`
	Name          string      `json:"subject_name" validate:"required,max=200"`
	Date          string      `json:"date" validate:"required"`       // YYYY-MM-DD
	StartTime     string      `json:"start_time" validate:"required"` // HH:mm | h:mm AM
	EndTime       string      `json:"end_time" validate:"required"`
	TotalStudents int         `json:"total_students" validate:"required,min=1"`
	RoomIDs       []uuid.UUID `json:"room_ids" validate:"required,min=1,dive,required"`
}

// Normalize trims strings and removes duplicate ids in place.
func (r *CreateExamRequest) Normalize() {
	r.ExamName = strings.TrimSpace(r.ExamName)
	if r.ExamCode != nil {
		v := strings.TrimSpace(*r.ExamCode)
		if v == "" {
			r.ExamCode = nil
		} else {
			r.ExamCode = &v
		}
	}
	r.FacultyIDs = lo.Uniq(r.FacultyIDs)
	for i := range r.Semesters {
		sem := &r.Semesters[i]
		sem.Name = strings.TrimSpace(sem.Name)
		for j := range sem.Subjects {
			sub := &sem.Subjects[j]
			sub.Code = strings.ToUpper(strings.TrimSpace(sub.Code))
			sub.Name = strings.TrimSpace(sub.Name)
			sub.RoomIDs = lo.Uniq(sub.RoomIDs)
		}
	}
}

// ToModel checks the semantic rules struct tags cannot express and builds the aggregate.
// Dates are read in loc; times are normalized to "HH:mm".
func (r CreateExamRequest) ToModel(loc *time.Location) (model.ExamModel, error) {
	exam := model.ExamModel{
		ExamID:        uuid.New(),
		ExamName:      r.ExamName,
		ExamCode:      r.ExamCode,
		ExamCreatedBy: r.CreatedBy,
	}

	maxRooms := 0
	for i, sem := range r.Semesters {
		semModel := model.ExamSemesterModel{
			ExamSemesterID:     uuid.New(),
			ExamSemesterExamID: exam.ExamID,
			ExamSemesterNumber: sem.Number,
			ExamSemesterName:   sem.Name,
		}
		for j, sub := range sem.Subjects {
			field := fmt.Sprintf("semesters[%d].subjects[%d]", i, j)

			date, err := engine.ParseDate(sub.Date, loc)
			if err != nil {
				return exam, &engine.ValidationError{Field: field + ".date", Reason: err.Error()}
			}
			w, err := engine.NewWindow(sub.StartTime, sub.EndTime)
			var ve *engine.ValidationError
			if errors.As(err, &ve) {
				return exam, &engine.ValidationError{Field: field + "." + ve.Field, Reason: ve.Reason}
			}
			if err != nil {
				return exam, err
			}
			if len(sub.RoomIDs) == 0 {
				return exam, &engine.ValidationError{Field: field + ".room_ids", Reason: "at least one room is required"}
			}
			maxRooms = max(maxRooms, len(sub.RoomIDs))

			semModel.ExamSemesterSubjects = append(semModel.ExamSemesterSubjects, model.ExamSubjectModel{
				ExamSubjectID:            uuid.New(),
				ExamSubjectExamID:        exam.ExamID,
				ExamSubjectSemesterID:    semModel.ExamSemesterID,
				ExamSubjectCode:          sub.Code,
				ExamSubjectName:          sub.Name,
				ExamSubjectDate:          model.DateOnly(date),
				ExamSubjectStartTime:     model.TimeOfDay(w.Start),
				ExamSubjectEndTime:       model.TimeOfDay(w.End),
				ExamSubjectTotalStudents: sub.TotalStudents,
				ExamSubjectRoomIDs:       pq.StringArray(lo.Map(sub.RoomIDs, func(id uuid.UUID, _ int) string { return id.String() })),
			})
		}
		exam.ExamSemesters = append(exam.ExamSemesters, semModel)
	}

	if len(exam.Subjects()) == 0 {
		return exam, &engine.ValidationError{Field: "semesters", Reason: "at least one subject is required"}
	}
	if len(r.FacultyIDs) < maxRooms {
		return exam, &engine.ValidationError{
			Field:  "faculty_ids",
			Reason: fmt.Sprintf("%d faculty supplied but a subject uses %d rooms", len(r.FacultyIDs), maxRooms),
		}
	}
	return exam, nil
}

/* =========================================================
   REQUEST DTO: AVAILABILITY CHECK
========================================================= */

type AvailabilityRequest struct {
	RoomIDs       []uuid.UUID `json:"room_ids" validate:"required,min=1,dive,required"`
	Date          string      `json:"date" validate:"required"`
	StartTime     string      `json:"start_time" validate:"required"`
	EndTime       string      `json:"end_time" validate:"required"`
	RequiredSeats int         `json:"required_seats" validate:"required,min=1"`
}

func (r AvailabilityRequest) ToEngine(loc *time.Location) (engine.AvailabilityRequest, error) {
	date, err := engine.ParseDate(r.Date, loc)
	if err != nil {
		return engine.AvailabilityRequest{}, &engine.ValidationError{Field: "date", Reason: err.Error()}
	}
	return engine.AvailabilityRequest{
		RoomIDs:       lo.Uniq(r.RoomIDs),
		Date:          date,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		RequiredSeats: r.RequiredSeats,
	}, nil
}
