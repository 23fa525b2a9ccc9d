// file: internals/features/allocation/model/exam_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"exam_allocation_backend/internals/helpers/dbtime"
)

/* =========================
   exams
========================= */

type ExamModel struct {
	ExamID        uuid.UUID  `json:"exam_id" gorm:"type:uuid;primaryKey;column:exam_id;default:gen_random_uuid()"`
	ExamName      string     `json:"exam_name" gorm:"type:text;not null;column:exam_name"`
	ExamCode      *string    `json:"exam_code,omitempty" gorm:"type:varchar(50);uniqueIndex;column:exam_code"`
	ExamCreatedBy *uuid.UUID `json:"exam_created_by,omitempty" gorm:"type:uuid;column:exam_created_by"`

	ExamSemesters []ExamSemesterModel `json:"exam_semesters,omitempty" gorm:"foreignKey:ExamSemesterExamID;references:ExamID"`

	ExamCreatedAt time.Time      `json:"exam_created_at" gorm:"column:exam_created_at;autoCreateTime"`
	ExamUpdatedAt time.Time      `json:"exam_updated_at" gorm:"column:exam_updated_at;autoUpdateTime"`
	ExamDeletedAt gorm.DeletedAt `json:"exam_deleted_at,omitempty" gorm:"column:exam_deleted_at;index"`
}

func (ExamModel) TableName() string { return "exams" }

// Subjects flattens semesters in order.
func (m ExamModel) Subjects() []ExamSubjectModel {
	var out []ExamSubjectModel
	for _, s := range m.ExamSemesters {
		out = append(out, s.ExamSemesterSubjects...)
	}
	return out
}

/* =========================
   exam_semesters
========================= */

type ExamSemesterModel struct {
	ExamSemesterID     uuid.UUID `json:"exam_semester_id" gorm:"type:uuid;primaryKey;column:exam_semester_id;default:gen_random_uuid()"`
	ExamSemesterExamID uuid.UUID `json:"exam_semester_exam_id" gorm:"type:uuid;not null;index;column:exam_semester_exam_id"`
	ExamSemesterNumber int       `json:"exam_semester_number" gorm:"not null;column:exam_semester_number"`
	ExamSemesterName   string    `json:"exam_semester_name" gorm:"type:text;column:exam_semester_name"`

	ExamSemesterSubjects []ExamSubjectModel `json:"exam_semester_subjects,omitempty" gorm:"foreignKey:ExamSubjectSemesterID;references:ExamSemesterID"`

	ExamSemesterCreatedAt time.Time `json:"exam_semester_created_at" gorm:"column:exam_semester_created_at;autoCreateTime"`
}

func (ExamSemesterModel) TableName() string { return "exam_semesters" }

/* =========================
   exam_subjects
========================= */

type ExamSubjectModel struct {
	ExamSubjectID         uuid.UUID `json:"exam_subject_id" gorm:"type:uuid;primaryKey;column:exam_subject_id;default:gen_random_uuid()"`
	ExamSubjectExamID     uuid.UUID `json:"exam_subject_exam_id" gorm:"type:uuid;not null;index;column:exam_subject_exam_id"`
	ExamSubjectSemesterID uuid.UUID `json:"exam_subject_semester_id" gorm:"type:uuid;not null;index;column:exam_subject_semester_id"`

	ExamSubjectCode string `json:"exam_subject_code" gorm:"type:varchar(30);not null;column:exam_subject_code"`
	ExamSubjectName string `json:"exam_subject_name" gorm:"type:text;not null;column:exam_subject_name"`

	ExamSubjectDate          datatypes.Date `json:"exam_subject_date" gorm:"type:date;not null;column:exam_subject_date"`
	ExamSubjectStartTime     dbtime.Tod     `json:"exam_subject_start_time" gorm:"type:varchar(5);not null;column:exam_subject_start_time"`
	ExamSubjectEndTime       dbtime.Tod     `json:"exam_subject_end_time" gorm:"type:varchar(5);not null;column:exam_subject_end_time"`
	ExamSubjectTotalStudents int            `json:"exam_subject_total_students" gorm:"not null;column:exam_subject_total_students"`
	ExamSubjectRoomIDs       pq.StringArray `json:"exam_subject_room_ids" gorm:"type:text[];not null;column:exam_subject_room_ids"`

	ExamSubjectCreatedAt time.Time `json:"exam_subject_created_at" gorm:"column:exam_subject_created_at;autoCreateTime"`
}

func (ExamSubjectModel) TableName() string { return "exam_subjects" }

func (m ExamSubjectModel) RoomUUIDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(m.ExamSubjectRoomIDs))
	for _, s := range m.ExamSubjectRoomIDs {
		if id, err := uuid.Parse(s); err == nil {
			out = append(out, id)
		}
	}
	return out
}
