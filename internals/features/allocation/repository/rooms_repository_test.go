package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"exam_allocation_backend/internals/features/allocation/model"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=alloc dbname=alloc sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func TestAllRoomsQueryKeepsDeletedRooms(t *testing.T) {
	//** Arrange
	db := dryRunDB(t)
	var rows []model.RoomModel

	//** Act
	audit := db.ToSQL(func(tx *gorm.DB) *gorm.DB { return allRoomsQuery(tx).Find(&rows) })
	scoped := db.ToSQL(func(tx *gorm.DB) *gorm.DB { return tx.Find(&rows) })

	//** Assert
	assert.Contains(t, scoped, `"room_deleted_at" IS NULL`)
	assert.NotContains(t, audit, "room_deleted_at")
	assert.Contains(t, audit, "ORDER BY room_building, room_number")
}
