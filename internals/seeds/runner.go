package seeds

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gorm.io/gorm"

	"exam_allocation_backend/internals/seeds/rooms"
	"exam_allocation_backend/internals/seeds/users"
)

const (
	RoomsFile   = "internals/seeds/rooms/data_rooms.json"
	FacultyFile = "internals/seeds/users/data_faculty.json"
)

// Files resolves the seed files under root (biasanya root repo).
func Files(root string) (roomsFile, facultyFile string, err error) {
	roomsFile = filepath.Join(root, RoomsFile)
	facultyFile = filepath.Join(root, FacultyFile)
	for _, f := range []string{roomsFile, facultyFile} {
		if _, err := os.Stat(f); err != nil {
			return "", "", fmt.Errorf("seed file: %w", err)
		}
	}
	return roomsFile, facultyFile, nil
}

func RunAllSeeds(db *gorm.DB) {
	if err := RunSeedsFrom(db, "."); err != nil {
		log.Printf("[SEED] ❌ %v", err)
	}
}

func RunSeedsFrom(db *gorm.DB, root string) error {
	roomsFile, facultyFile, err := Files(root)
	if err != nil {
		return err
	}
	log.Println("[SEED] 🌱 mulai")

	//* Rooms
	rooms.SeedRoomsFromJSON(db, roomsFile)

	//* Users (faculty + admin)
	users.SeedFacultyFromJSON(db, facultyFile)

	log.Println("[SEED] ✅ selesai")
	return nil
}
