package rooms

import (
	"fmt"
	"log"
	"os"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"exam_allocation_backend/internals/features/allocation/model"
)

// Struktur sesuai dengan kolom rooms; capacity dihitung ulang oleh RoomModel.BeforeSave
type RoomSeed struct {
	RoomID               uuid.UUID `json:"room_id"`
	RoomBuilding         string    `json:"room_building"`
	RoomFloor            int       `json:"room_floor"`
	RoomNumber           string    `json:"room_number"`
	RoomName             string    `json:"room_name"`
	RoomBenches          int       `json:"room_benches"`
	RoomStudentsPerBench int       `json:"room_students_per_bench"`
}

func LoadRoomSeeds(filePath string) ([]model.RoomModel, error) {
	file, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}
	var seeds []RoomSeed
	if err := sonic.Unmarshal(file, &seeds); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filePath, err)
	}

	out := make([]model.RoomModel, 0, len(seeds))
	for i, s := range seeds {
		if s.RoomBuilding == "" || s.RoomNumber == "" {
			return nil, fmt.Errorf("room #%d: building and number are required", i)
		}
		if s.RoomID == uuid.Nil {
			s.RoomID = uuid.New()
		}
		m := model.RoomModel{
			RoomID:               s.RoomID,
			RoomBuilding:         s.RoomBuilding,
			RoomFloor:            s.RoomFloor,
			RoomNumber:           s.RoomNumber,
			RoomName:             s.RoomName,
			RoomBenches:          s.RoomBenches,
			RoomStudentsPerBench: s.RoomStudentsPerBench,
			RoomIsActive:         true,
		}
		if err := m.BeforeSave(nil); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func SeedRoomsFromJSON(db *gorm.DB, filePath string) {
	log.Println("📥 Membaca file:", filePath)

	rows, err := LoadRoomSeeds(filePath)
	if err != nil {
		log.Fatalf("❌ Gagal memuat seed rooms: %v", err)
	}

	// id yang sudah ada dilewati; Select("*") supaya nilai false tidak diganti default kolom
	res := db.Select("*").Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if res.Error != nil {
		log.Printf("❌ Gagal insert rooms: %v", res.Error)
		return
	}
	log.Printf("✅ rooms: %d baru, %d dilewati", res.RowsAffected, int64(len(rows))-res.RowsAffected)
}
