// file: internals/features/allocation/model/room_model.go
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"exam_allocation_backend/internals/features/allocation/engine"
)

// RoomModel merepresentasikan tabel rooms
type RoomModel struct {
	RoomID uuid.UUID `json:"room_id" gorm:"type:uuid;primaryKey;column:room_id;default:gen_random_uuid()"`

	RoomBuilding         string `json:"room_building" gorm:"type:text;not null;column:room_building"`
	RoomFloor            int    `json:"room_floor" gorm:"not null;default:0;column:room_floor"`
	RoomNumber           string `json:"room_number" gorm:"type:varchar(30);not null;column:room_number"`
	RoomName             string `json:"room_name" gorm:"type:text;not null;column:room_name"`
	RoomBenches          int    `json:"room_benches" gorm:"not null;column:room_benches"`
	RoomStudentsPerBench int    `json:"room_students_per_bench" gorm:"not null;default:1;column:room_students_per_bench"`

	// derived: benches × students_per_bench, recomputed on every save
	RoomCapacity int  `json:"room_capacity" gorm:"not null;column:room_capacity"`
	RoomIsActive bool `json:"room_is_active" gorm:"not null;default:true;column:room_is_active"`

	RoomCreatedAt time.Time      `json:"room_created_at" gorm:"column:room_created_at;autoCreateTime"`
	RoomUpdatedAt time.Time      `json:"room_updated_at" gorm:"column:room_updated_at;autoUpdateTime"`
	RoomDeletedAt gorm.DeletedAt `json:"room_deleted_at,omitempty" gorm:"column:room_deleted_at;index"`
}

func (RoomModel) TableName() string { return "rooms" }

func (m *RoomModel) BeforeSave(tx *gorm.DB) error {
	if m.RoomBenches < 0 || m.RoomStudentsPerBench < 0 {
		return fmt.Errorf("room %s: benches and students per bench must be non-negative", m.RoomNumber)
	}
	m.RoomCapacity = m.RoomBenches * m.RoomStudentsPerBench
	if strings.TrimSpace(m.RoomName) == "" {
		m.RoomName = strings.TrimSpace(m.RoomBuilding + " " + m.RoomNumber)
	}
	return nil
}

func (m RoomModel) ToEngine() engine.Room {
	return engine.Room{ID: m.RoomID, Name: m.RoomName, Capacity: m.RoomCapacity}
}
