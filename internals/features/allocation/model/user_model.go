// file: internals/features/allocation/model/user_model.go
package model

import (
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"exam_allocation_backend/internals/features/allocation/engine"
)

const (
	RoleFaculty = "Faculty"
	RoleAdmin   = "Admin"
)

type UserModel struct {
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey;column:user_id;default:gen_random_uuid()"`
	UserName  string    `json:"user_name" gorm:"type:varchar(100);not null;column:user_name"`
	UserEmail string    `json:"user_email" gorm:"type:varchar(255);not null;uniqueIndex;column:user_email"`
	UserRole  string    `json:"user_role" gorm:"type:varchar(20);not null;default:'Faculty';column:user_role;check:user_role IN ('Faculty','Admin')"`

	// faculty only
	UserDesignation         string `json:"user_designation" gorm:"type:varchar(40);column:user_designation"`
	UserPreviousAllocations int    `json:"user_previous_allocations" gorm:"not null;default:0;column:user_previous_allocations"`
	UserAvailable           bool   `json:"user_available" gorm:"not null;default:true;column:user_available"`

	UserCreatedAt time.Time      `json:"user_created_at" gorm:"column:user_created_at;autoCreateTime"`
	UserUpdatedAt time.Time      `json:"user_updated_at" gorm:"column:user_updated_at;autoUpdateTime"`
	UserDeletedAt gorm.DeletedAt `json:"user_deleted_at,omitempty" gorm:"column:user_deleted_at;index"`
}

func (UserModel) TableName() string { return "users" }

// ToFaculty maps a user row to the engine view. An unparseable designation becomes
// DesignationUnknown, which the faculty allocator skips.
func (m UserModel) ToFaculty() engine.Faculty {
	d, err := engine.ParseDesignation(m.UserDesignation)
	if err != nil {
		log.Printf("[WARN] user %s: %v", m.UserID, err)
	}
	return engine.Faculty{
		ID:                  m.UserID,
		Name:                m.UserName,
		Email:               m.UserEmail,
		Designation:         d,
		PreviousAllocations: m.UserPreviousAllocations,
		Available:           m.UserAvailable,
	}
}
