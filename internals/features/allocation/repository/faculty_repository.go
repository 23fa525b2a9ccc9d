// file: internals/features/allocation/repository/faculty_repository.go
package repository

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"exam_allocation_backend/internals/features/allocation/engine"
	"exam_allocation_backend/internals/features/allocation/model"
)

type FacultyRepository struct {
	db   *gorm.DB
	lock bool
}

// NewFacultyRepository; lock=true takes the ledger rows FOR UPDATE while the run reads them.
func NewFacultyRepository(db *gorm.DB, lock bool) *FacultyRepository {
	return &FacultyRepository{db: db, lock: lock}
}

func (r *FacultyRepository) ListFaculty(ctx context.Context, filter engine.FacultyFilter) ([]engine.Faculty, error) {
	q := r.db.WithContext(ctx).Where("user_role = ?", model.RoleFaculty)
	if len(filter.IDs) > 0 {
		q = q.Where("user_id IN ?", filter.IDs)
	}
	if filter.AvailableOnly {
		q = q.Where("user_available = TRUE")
	}
	if r.lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var rows []model.UserModel
	if err := q.Order("user_previous_allocations, user_name, user_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return lo.Map(rows, func(m model.UserModel, _ int) engine.Faculty { return m.ToFaculty() }), nil
}

// IncrementAllocations adds the precomputed per-faculty counts with one atomic UPDATE each,
// in id order so concurrent runs lock rows in the same sequence.
func (r *FacultyRepository) IncrementAllocations(ctx context.Context, counts map[uuid.UUID]int) error {
	ids := lo.Keys(counts)
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })

	for _, id := range ids {
		n := counts[id]
		if n == 0 {
			continue
		}
		res := r.db.WithContext(ctx).
			Model(&model.UserModel{}).
			Where("user_id = ?", id).
			UpdateColumn("user_previous_allocations", gorm.Expr("user_previous_allocations + ?", n))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}
