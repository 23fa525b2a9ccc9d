// file: internals/features/allocation/repository/rooms_repository.go
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"exam_allocation_backend/internals/features/allocation/engine"
	"exam_allocation_backend/internals/features/allocation/model"
)

type RoomRepository struct {
	db   *gorm.DB
	lock bool
}

// NewRoomRepository; lock=true reads candidate rooms FOR UPDATE so concurrent
// exam creations touching the same rooms serialize on them.
func NewRoomRepository(db *gorm.DB, lock bool) *RoomRepository {
	return &RoomRepository{db: db, lock: lock}
}

func (r *RoomRepository) ListRooms(ctx context.Context, ids []uuid.UUID) ([]engine.Room, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := r.db.WithContext(ctx).
		Where("room_id IN ? AND room_is_active = TRUE", ids).
		Order("room_id")
	if r.lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var rows []model.RoomModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return lo.Map(rows, func(m model.RoomModel, _ int) engine.Room { return m.ToEngine() }), nil
}

// ListAllRooms includes inactive and soft-deleted rooms: the audit still has to
// check allocations those rooms hold.
func (r *RoomRepository) ListAllRooms(ctx context.Context) ([]engine.Room, error) {
	var rows []model.RoomModel
	if err := allRoomsQuery(r.db.WithContext(ctx)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return lo.Map(rows, func(m model.RoomModel, _ int) engine.Room { return m.ToEngine() }), nil
}

func allRoomsQuery(db *gorm.DB) *gorm.DB {
	return db.Unscoped().Model(&model.RoomModel{}).Order("room_building, room_number")
}
