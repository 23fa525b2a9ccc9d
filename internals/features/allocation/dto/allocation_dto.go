// file: internals/features/allocation/dto/allocation_dto.go
package dto

import (
	"github.com/google/uuid"
	"github.com/samber/lo"

	"exam_allocation_backend/internals/features/allocation/engine"
	"exam_allocation_backend/internals/features/allocation/model"
)

/* =========================================================
   RESPONSE DTO
========================================================= */

type RoomAllocationResponse struct {
	RoomAllocationID uuid.UUID `json:"room_allocation_id"`
	ExamID           uuid.UUID `json:"exam_id"`
	SubjectID        uuid.UUID `json:"subject_id"`
	RoomID           uuid.UUID `json:"room_id"`
	RoomName         string    `json:"room_name,omitempty"`
	Date             string    `json:"date"`
	StartTime        string    `json:"start_time"`
	EndTime          string    `json:"end_time"`
	OccupantCount    int       `json:"occupant_count"`
	Occupants        []string  `json:"occupants"`
}

type InvigilationResponse struct {
	InvigilationID uuid.UUID `json:"invigilation_id"`
	ExamID         uuid.UUID `json:"exam_id"`
	SubjectID      uuid.UUID `json:"subject_id"`
	RoomID         uuid.UUID `json:"room_id"`
	RoomName       string    `json:"room_name,omitempty"`
	FacultyID      uuid.UUID `json:"faculty_id"`
	FacultyName    string    `json:"faculty_name"`
	Date           string         `json:"date"`
	StartTime      string         `json:"start_time"`
	EndTime        string         `json:"end_time"`
}

type ExamSummary struct {
	ExamID   uuid.UUID `json:"exam_id"`
	ExamName string    `json:"exam_name"`
	ExamCode *string   `json:"exam_code,omitempty"`
	Subjects int       `json:"subjects"`
}

type ExamAllocationResponse struct {
	Exam            ExamSummary              `json:"exam"`
	RoomAllocations []RoomAllocationResponse `json:"room_allocations"`
	Invigilations   []InvigilationResponse   `json:"invigilations"`
	Reused          int                      `json:"reused"`
	Shortage        bool                     `json:"shortage_fallback_used"`
	NoticesSent     int                      `json:"notices_sent"`
}

type AvailabilityResponse struct {
	AvailableSeats int            `json:"available_seats"`
	RequiredSeats  int            `json:"required_seats"`
	Date           string         `json:"date"`
	StartTime      string         `json:"start_time"`
	EndTime        string         `json:"end_time"`
	PerRoom        map[string]int `json:"per_room"`
}

type NoticeResponse struct {
	FacultyID   uuid.UUID `json:"faculty_id"`
	Recipient   string    `json:"recipient"`
	FacultyName string    `json:"faculty_name"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
}

/* =========================================================
   KONVERSI ENGINE -> DTO
========================================================= */

func FromExamModel(m *model.ExamModel) ExamSummary {
	return ExamSummary{ExamID: m.ExamID, ExamName: m.ExamName, ExamCode: m.ExamCode, Subjects: len(m.Subjects())}
}

func FromRoomAllocations(rows []engine.RoomAllocation, roomNames map[uuid.UUID]string) []RoomAllocationResponse {
	return lo.Map(rows, func(a engine.RoomAllocation, _ int) RoomAllocationResponse {
		return RoomAllocationResponse{
			RoomAllocationID: a.ID,
			ExamID:           a.ExamID,
			SubjectID:        a.SubjectID,
			RoomID:           a.RoomID,
			RoomName:         roomNames[a.RoomID],
			Date:             engine.DateKey(a.Date),
			StartTime:        a.Window.Start,
			EndTime:          a.Window.End,
			OccupantCount:    len(a.Occupants),
			Occupants:        a.Occupants,
		}
	})
}

func FromInvigilations(rows []engine.Invigilation, roomNames map[uuid.UUID]string) []InvigilationResponse {
	return lo.Map(rows, func(i engine.Invigilation, _ int) InvigilationResponse {
		return InvigilationResponse{
			InvigilationID: i.ID,
			ExamID:         i.ExamID,
			SubjectID:      i.SubjectID,
			RoomID:         i.RoomID,
			RoomName:       roomNames[i.RoomID],
			FacultyID:      i.FacultyID,
			FacultyName:    i.FacultyName,
			Date:           engine.DateKey(i.Date),
			StartTime:      i.Window.Start,
			EndTime:        i.Window.End,
		}
	})
}

func FromAvailability(res engine.AvailabilityResult, required int) AvailabilityResponse {
	return AvailabilityResponse{
		AvailableSeats: res.AvailableSeats,
		RequiredSeats:  required,
		Date:           res.Date,
		StartTime:      res.Window.Start,
		EndTime:        res.Window.End,
		PerRoom:        lo.MapKeys(res.PerRoom, func(_ int, id uuid.UUID) string { return id.String() }),
	}
}

func FromNotices(ns []engine.Notice) []NoticeResponse {
	return lo.Map(ns, func(n engine.Notice, _ int) NoticeResponse {
		return NoticeResponse{
			FacultyID:   n.FacultyID,
			Recipient:   n.Recipient,
			FacultyName: n.FacultyName,
			Subject:     n.Subject,
			Body:        n.Body,
		}
	})
}

// RoomNames indexes room display names by id.
func RoomNames(rooms []engine.Room) map[uuid.UUID]string {
	return lo.SliceToMap(rooms, func(r engine.Room) (uuid.UUID, string) { return r.ID, r.Name })
}
