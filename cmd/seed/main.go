// Command seed migrates the allocation schema and loads the room and faculty seeds.
package main

import (
	"flag"
	"log"

	"exam_allocation_backend/internals/configs"
	database "exam_allocation_backend/internals/databases"
	"exam_allocation_backend/internals/seeds"
)

func main() {
	root := flag.String("root", ".", "Repository root holding internals/seeds")
	flag.Parse()

	configs.LoadEnv()
	// cek file dulu sebelum buka koneksi
	if _, _, err := seeds.Files(*root); err != nil {
		log.Fatalf("❌ %v", err)
	}

	db := configs.InitSeederDB()
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("❌ migrate: %v", err)
	}
	if err := seeds.RunSeedsFrom(db, *root); err != nil {
		log.Fatalf("❌ %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
