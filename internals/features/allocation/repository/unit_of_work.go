// file: internals/features/allocation/repository/unit_of_work.go
package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type dashboard struct {
	*RoomAllocationRepository
	*InvigilationRepository
	*RoomRepository
}

// NewStores binds every port to db. Pass a transaction handle to scope them to it.
func NewStores(db *gorm.DB, lock bool) Stores {
	rooms := NewRoomRepository(db, lock)
	roomAllocs := NewRoomAllocationRepository(db, lock)
	invigilations := NewInvigilationRepository(db)
	return Stores{
		Rooms:           rooms,
		RoomAllocations: roomAllocs,
		Invigilations:   invigilations,
		Faculty:         NewFacultyRepository(db, lock),
		Exams:           NewExamRepository(db),
		Dashboard:       dashboard{roomAllocs, invigilations, rooms},
	}
}

type GormUnitOfWork struct {
	db        *gorm.DB
	isolation sql.IsolationLevel
}

// NewGormUnitOfWork runs transactions at REPEATABLE READ (snapshot) with row locks on
// rooms and faculty ledger rows.
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db, isolation: sql.LevelRepeatableRead}
}

func (u *GormUnitOfWork) Stores() Stores {
	return NewStores(u.db, false)
}

func (u *GormUnitOfWork) Transaction(ctx context.Context, fn func(Stores) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStores(tx, true))
	}, &sql.TxOptions{Isolation: u.isolation})
}
