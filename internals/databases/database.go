package database

import (
	"context"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"exam_allocation_backend/internals/configs"
	allocModel "exam_allocation_backend/internals/features/allocation/model"
)

var DB *gorm.DB

func ConnectDB() {
	log.Println("🔌 Connecting to PostgreSQL...")

	// statement_timeout aligned with the request timeout guard in main.go
	// PgBouncer (transaction pooling) needs PreferSimpleProtocol=true
	dsn := configs.PostgresDSN() + "&application_name=exam_allocation&options=-c%20statement_timeout%3D5000"

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 configs.NewGormLogger(),
		SkipDefaultTransaction: true, // writes go through explicit transactions
	})
	if err != nil {
		log.Fatalf("❌ DB connection failed: %v", err)
	}
	DB = db
	configs.DB = db
	log.Println("✅ DB connected.")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

// AutoMigrate creates/updates the allocation tables and their lookup indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		log.Printf("[WARN] pgcrypto extension: %v", err)
	}
	if err := db.AutoMigrate(allocModel.All()...); err != nil {
		return err
	}
	for _, stmt := range allocModel.IndexStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	log.Println("✅ Allocation schema migrated.")
	return nil
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := Ping(context.Background()); err != nil {
			log.Printf("warm-up ping err: %v", err)
			return
		}
		// rooms are read on every availability check
		var n int64
		if err := DB.Model(&allocModel.RoomModel{}).Count(&n).Error; err != nil {
			log.Printf("warm-up rooms err: %v", err)
			return
		}
		log.Printf("[INFO] warm-up done, %d rooms", n)
	}()
}

func Ping(ctx context.Context) error {
	return PingDB(ctx, DB)
}

func PingDB(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return gorm.ErrInvalidDB
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
