// file: internals/features/allocation/repository/exams_repository.go
package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"exam_allocation_backend/internals/features/allocation/model"
)

type ExamRepository struct {
	db *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// CreateExam inserts the exam with its semesters and subjects in one go (gorm associations).
func (r *ExamRepository) CreateExam(ctx context.Context, exam *model.ExamModel) error {
	return r.db.WithContext(ctx).Create(exam).Error
}

func (r *ExamRepository) FindExam(ctx context.Context, id uuid.UUID) (*model.ExamModel, error) {
	var exam model.ExamModel
	err := r.db.WithContext(ctx).
		Preload("ExamSemesters", func(db *gorm.DB) *gorm.DB { return db.Order("exam_semester_number") }).
		Preload("ExamSemesters.ExamSemesterSubjects", func(db *gorm.DB) *gorm.DB {
			return db.Order("exam_subject_date, exam_subject_start_time, exam_subject_code")
		}).
		First(&exam, "exam_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}
