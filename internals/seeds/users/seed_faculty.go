package users

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"exam_allocation_backend/internals/features/allocation/engine"
	"exam_allocation_backend/internals/features/allocation/model"
)

type UserSeed struct {
	UserID          uuid.UUID `json:"user_id"`
	UserName        string    `json:"user_name"`
	UserEmail       string    `json:"user_email"`
	UserRole        string    `json:"user_role"`
	UserDesignation string    `json:"user_designation"`
	UserAvailable   *bool     `json:"user_available"`
}

// LoadFacultySeeds decodes the file; faculty rows must carry a known designation.
func LoadFacultySeeds(filePath string) ([]model.UserModel, error) {
	file, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}
	var seeds []UserSeed
	if err := sonic.Unmarshal(file, &seeds); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filePath, err)
	}

	out := make([]model.UserModel, 0, len(seeds))
	for _, s := range seeds {
		email := strings.ToLower(strings.TrimSpace(s.UserEmail))
		if email == "" {
			return nil, fmt.Errorf("user %q: email is required", s.UserName)
		}
		role := s.UserRole
		if role == "" {
			role = model.RoleFaculty
		}
		if role == model.RoleFaculty {
			if _, err := engine.ParseDesignation(s.UserDesignation); err != nil {
				return nil, fmt.Errorf("user %s: %w", email, err)
			}
		}
		if s.UserID == uuid.Nil {
			s.UserID = uuid.New()
		}
		out = append(out, model.UserModel{
			UserID:          s.UserID,
			UserName:        s.UserName,
			UserEmail:       email,
			UserRole:        role,
			UserDesignation: s.UserDesignation,
			UserAvailable:   s.UserAvailable == nil || *s.UserAvailable,
		})
	}
	return out, nil
}

func SeedFacultyFromJSON(db *gorm.DB, filePath string) {
	log.Println("📥 Membaca file user:", filePath)

	rows, err := LoadFacultySeeds(filePath)
	if err != nil {
		log.Fatalf("❌ Gagal memuat seed users: %v", err)
	}

	res := db.Select("*").Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if res.Error != nil {
		log.Printf("❌ Gagal insert users: %v", res.Error)
		return
	}
	log.Printf("✅ users: %d baru, %d dilewati", res.RowsAffected, int64(len(rows))-res.RowsAffected)
}
