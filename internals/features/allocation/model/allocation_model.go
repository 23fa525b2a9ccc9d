// file: internals/features/allocation/model/allocation_model.go
package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"

	"exam_allocation_backend/internals/features/allocation/engine"
	"exam_allocation_backend/internals/helpers/dbtime"
)

// DateOnly pins a calendar day to UTC midnight so the date column stores exactly that day.
func DateOnly(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// TimeOfDay: window sudah dinormalisasi "HH:mm" oleh engine.NewWindow
func TimeOfDay(clock string) dbtime.Tod {
	t, _ := dbtime.Parse(clock)
	return t
}

/* =========================
   room_allocations (append-only)
========================= */

type RoomAllocationModel struct {
	RoomAllocationID        uuid.UUID      `json:"room_allocation_id" gorm:"type:uuid;primaryKey;column:room_allocation_id;default:gen_random_uuid()"`
	RoomAllocationExamID    uuid.UUID      `json:"room_allocation_exam_id" gorm:"type:uuid;not null;column:room_allocation_exam_id"`
	RoomAllocationSubjectID uuid.UUID      `json:"room_allocation_subject_id" gorm:"type:uuid;not null;column:room_allocation_subject_id"`
	RoomAllocationRoomID    uuid.UUID      `json:"room_allocation_room_id" gorm:"type:uuid;not null;column:room_allocation_room_id"`
	RoomAllocationOccupants pq.StringArray `json:"room_allocation_occupants" gorm:"type:text[];not null;column:room_allocation_occupants"`

	RoomAllocationDate      datatypes.Date `json:"room_allocation_date" gorm:"type:date;not null;column:room_allocation_date"`
	RoomAllocationStartTime dbtime.Tod     `json:"room_allocation_start_time" gorm:"type:varchar(5);not null;column:room_allocation_start_time"`
	RoomAllocationEndTime   dbtime.Tod     `json:"room_allocation_end_time" gorm:"type:varchar(5);not null;column:room_allocation_end_time"`

	RoomAllocationCreatedAt time.Time `json:"room_allocation_created_at" gorm:"column:room_allocation_created_at;autoCreateTime"`
}

func (RoomAllocationModel) TableName() string { return "room_allocations" }

func RoomAllocationFromEngine(a engine.RoomAllocation) RoomAllocationModel {
	return RoomAllocationModel{
		RoomAllocationID:        a.ID,
		RoomAllocationExamID:    a.ExamID,
		RoomAllocationSubjectID: a.SubjectID,
		RoomAllocationRoomID:    a.RoomID,
		RoomAllocationOccupants: pq.StringArray(a.Occupants),
		RoomAllocationDate:      DateOnly(a.Date),
		RoomAllocationStartTime: TimeOfDay(a.Window.Start),
		RoomAllocationEndTime:   TimeOfDay(a.Window.End),
	}
}

func (m RoomAllocationModel) ToEngine() engine.RoomAllocation {
	return engine.RoomAllocation{
		ID:        m.RoomAllocationID,
		ExamID:    m.RoomAllocationExamID,
		SubjectID: m.RoomAllocationSubjectID,
		RoomID:    m.RoomAllocationRoomID,
		Occupants: []string(m.RoomAllocationOccupants),
		Date:      time.Time(m.RoomAllocationDate),
		Window:    engine.Window{Start: m.RoomAllocationStartTime.Clock(), End: m.RoomAllocationEndTime.Clock()},
	}
}

/* =========================
   invigilations (append-only)
========================= */

type InvigilationModel struct {
	InvigilationID          uuid.UUID `json:"invigilation_id" gorm:"type:uuid;primaryKey;column:invigilation_id;default:gen_random_uuid()"`
	InvigilationExamID      uuid.UUID `json:"invigilation_exam_id" gorm:"type:uuid;not null;column:invigilation_exam_id"`
	InvigilationSubjectID   uuid.UUID `json:"invigilation_subject_id" gorm:"type:uuid;not null;column:invigilation_subject_id"`
	InvigilationRoomID      uuid.UUID `json:"invigilation_room_id" gorm:"type:uuid;not null;column:invigilation_room_id"`
	InvigilationFacultyID   uuid.UUID `json:"invigilation_faculty_id" gorm:"type:uuid;not null;column:invigilation_faculty_id"`
	InvigilationFacultyName string    `json:"invigilation_faculty_name" gorm:"type:varchar(100);not null;column:invigilation_faculty_name"`

	InvigilationDate      datatypes.Date `json:"invigilation_date" gorm:"type:date;not null;column:invigilation_date"`
	InvigilationStartTime dbtime.Tod     `json:"invigilation_start_time" gorm:"type:varchar(5);not null;column:invigilation_start_time"`
	InvigilationEndTime   dbtime.Tod     `json:"invigilation_end_time" gorm:"type:varchar(5);not null;column:invigilation_end_time"`

	// snapshot slot: {"room_id","date","start_time","end_time"}
	InvigilationSlot datatypes.JSON `json:"invigilation_slot" gorm:"type:jsonb;not null;default:'{}';column:invigilation_slot"`

	InvigilationCreatedAt time.Time `json:"invigilation_created_at" gorm:"column:invigilation_created_at;autoCreateTime"`
}

func (InvigilationModel) TableName() string { return "invigilations" }

type slotSnapshot struct {
	RoomID    uuid.UUID `json:"room_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
}

func InvigilationFromEngine(i engine.Invigilation) InvigilationModel {
	k := i.Key()
	snap, _ := json.Marshal(slotSnapshot{RoomID: k.RoomID, Date: k.Date, StartTime: k.Window.Start, EndTime: k.Window.End})
	return InvigilationModel{
		InvigilationID:          i.ID,
		InvigilationExamID:      i.ExamID,
		InvigilationSubjectID:   i.SubjectID,
		InvigilationRoomID:      i.RoomID,
		InvigilationFacultyID:   i.FacultyID,
		InvigilationFacultyName: i.FacultyName,
		InvigilationDate:        DateOnly(i.Date),
		InvigilationStartTime:   TimeOfDay(i.Window.Start),
		InvigilationEndTime:     TimeOfDay(i.Window.End),
		InvigilationSlot:        datatypes.JSON(snap),
	}
}

func (m InvigilationModel) ToEngine() engine.Invigilation {
	return engine.Invigilation{
		ID:          m.InvigilationID,
		ExamID:      m.InvigilationExamID,
		SubjectID:   m.InvigilationSubjectID,
		RoomID:      m.InvigilationRoomID,
		FacultyID:   m.InvigilationFacultyID,
		FacultyName: m.InvigilationFacultyName,
		Date:        time.Time(m.InvigilationDate),
		Window:      engine.Window{Start: m.InvigilationStartTime.Clock(), End: m.InvigilationEndTime.Clock()},
	}
}
