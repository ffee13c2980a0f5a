package academy

import (
	"time"

	"gorm.io/gorm"
)

// Credential is an issued completion document for a passing, closed record.
// Regeneration marks the prior row revoked instead of deleting it.
type Credential struct {
	gorm.Model
	UserID       uint `json:"user_id" gorm:"index;not null"`
	CourseID     uint `json:"course_id" gorm:"index;not null"`
	EnrollmentID uint `json:"enrollment_id" gorm:"index;not null"`

	SerialNumber      string    `json:"serial_number" gorm:"unique"`
	DocumentReference string    `json:"document_reference"`
	Template          string    `json:"template"`
	Grade             float64   `json:"grade"`
	IssuedAt          time.Time `json:"issued_at"`
	Revoked           bool      `json:"revoked" gorm:"default:false"`
	IsDeleted         bool      `gorm:"default:false"`
}
