// file: internals/features/allocation/repository/allocations_repository.go
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"exam_allocation_backend/internals/features/allocation/engine"
	"exam_allocation_backend/internals/features/allocation/model"
)

/* =========================
   room_allocations
========================= */

type RoomAllocationRepository struct {
	db    *gorm.DB
	touch bool
}

// NewRoomAllocationRepository; touch=true bumps the room row on every insert so a concurrent
// transaction holding a stale snapshot of that room fails with a serialization error and retries.
func NewRoomAllocationRepository(db *gorm.DB, touch bool) *RoomAllocationRepository {
	return &RoomAllocationRepository{db: db, touch: touch}
}

// ListOverlapping: same date, [start,end) overlap evaluated on the "HH:mm" text columns.
func (r *RoomAllocationRepository) ListOverlapping(ctx context.Context, roomIDs []uuid.UUID, date time.Time, w engine.Window) ([]engine.RoomAllocation, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}
	var rows []model.RoomAllocationModel
	err := r.db.WithContext(ctx).
		Where("room_allocation_room_id IN ?", roomIDs).
		Where("room_allocation_date = ?", engine.DateKey(date)).
		Where("room_allocation_start_time < ? AND room_allocation_end_time > ?", w.End, w.Start).
		Order("room_allocation_created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toRoomAllocations(rows), nil
}

func (r *RoomAllocationRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]engine.RoomAllocation, error) {
	var rows []model.RoomAllocationModel
	err := r.db.WithContext(ctx).
		Where("room_allocation_exam_id = ?", examID).
		Order("room_allocation_date, room_allocation_start_time, room_allocation_created_at, room_allocation_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toRoomAllocations(rows), nil
}

func (r *RoomAllocationRepository) Create(ctx context.Context, a *engine.RoomAllocation) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	row := model.RoomAllocationFromEngine(*a)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	if !r.touch {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.RoomModel{}).
		Where("room_id = ?", a.RoomID).
		UpdateColumn("room_updated_at", gorm.Expr("now()")).Error
}

func (r *RoomAllocationRepository) ListRoomAllocationsBetween(ctx context.Context, from, to time.Time) ([]engine.RoomAllocation, error) {
	var rows []model.RoomAllocationModel
	err := r.db.WithContext(ctx).
		Where("room_allocation_date BETWEEN ? AND ?", engine.DateKey(from), engine.DateKey(to)).
		Order("room_allocation_date, room_allocation_start_time").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toRoomAllocations(rows), nil
}

func toRoomAllocations(rows []model.RoomAllocationModel) []engine.RoomAllocation {
	return lo.Map(rows, func(m model.RoomAllocationModel, _ int) engine.RoomAllocation { return m.ToEngine() })
}

/* =========================
   invigilations
========================= */

type InvigilationRepository struct {
	db *gorm.DB
}

func NewInvigilationRepository(db *gorm.DB) *InvigilationRepository {
	return &InvigilationRepository{db: db}
}

func (r *InvigilationRepository) ListBySlotKeys(ctx context.Context, keys []engine.SlotKey) ([]engine.Invigilation, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	tuples := lo.Map(keys, func(k engine.SlotKey, _ int) []any {
		return []any{k.RoomID, k.Date, k.Window.Start, k.Window.End}
	})
	var rows []model.InvigilationModel
	err := r.db.WithContext(ctx).
		Where("(invigilation_room_id, invigilation_date, invigilation_start_time, invigilation_end_time) IN ?", tuples).
		Order("invigilation_created_at, invigilation_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toInvigilations(rows), nil
}

func (r *InvigilationRepository) ListByFacultyOnDates(ctx context.Context, facultyIDs []uuid.UUID, dates []time.Time) ([]engine.Invigilation, error) {
	if len(facultyIDs) == 0 || len(dates) == 0 {
		return nil, nil
	}
	days := lo.Uniq(lo.Map(dates, func(d time.Time, _ int) string { return engine.DateKey(d) }))
	var rows []model.InvigilationModel
	err := r.db.WithContext(ctx).
		Where("invigilation_faculty_id IN ? AND invigilation_date IN ?", facultyIDs, days).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toInvigilations(rows), nil
}

func (r *InvigilationRepository) CreateBatch(ctx context.Context, rows []engine.Invigilation) error {
	if len(rows) == 0 {
		return nil
	}
	models := lo.Map(rows, func(i engine.Invigilation, _ int) model.InvigilationModel {
		if i.ID == uuid.Nil {
			i.ID = uuid.New()
		}
		return model.InvigilationFromEngine(i)
	})
	return r.db.WithContext(ctx).CreateInBatches(&models, 200).Error
}

func (r *InvigilationRepository) ListInvigilationsByExam(ctx context.Context, examID uuid.UUID) ([]engine.Invigilation, error) {
	var rows []model.InvigilationModel
	err := r.db.WithContext(ctx).
		Where("invigilation_exam_id = ?", examID).
		Order("invigilation_date, invigilation_start_time, invigilation_room_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toInvigilations(rows), nil
}

// ListInvigilationsByFaculty returns the faculty dashboard rows; zero bounds are open.
func (r *InvigilationRepository) ListInvigilationsByFaculty(ctx context.Context, facultyID uuid.UUID, from, to time.Time) ([]engine.Invigilation, error) {
	q := r.db.WithContext(ctx).Where("invigilation_faculty_id = ?", facultyID)
	if !from.IsZero() {
		q = q.Where("invigilation_date >= ?", engine.DateKey(from))
	}
	if !to.IsZero() {
		q = q.Where("invigilation_date <= ?", engine.DateKey(to))
	}
	var rows []model.InvigilationModel
	if err := q.Order("invigilation_date, invigilation_start_time").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toInvigilations(rows), nil
}

func (r *InvigilationRepository) ListInvigilationsBetween(ctx context.Context, from, to time.Time) ([]engine.Invigilation, error) {
	var rows []model.InvigilationModel
	err := r.db.WithContext(ctx).
		Where("invigilation_date BETWEEN ? AND ?", engine.DateKey(from), engine.DateKey(to)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toInvigilations(rows), nil
}

func toInvigilations(rows []model.InvigilationModel) []engine.Invigilation {
	return lo.Map(rows, func(m model.InvigilationModel, _ int) engine.Invigilation { return m.ToEngine() })
}
