package academy

import (
	"time"

	"gorm.io/gorm"
)

// Record (acta) states for an enrollment
const (
	RecordPending              = "PENDING"
	RecordReviewed             = "REVIEWED"
	RecordCertificationPending = "CERTIFICATION_PENDING"
	RecordCertified            = "CERTIFIED"
)

// Enrollment is the per-student academic record for a course. The grade is
// locked as soon as RecordState leaves PENDING.
type Enrollment struct {
	gorm.Model
	UserID   uint `json:"user_id" gorm:"index;not null"`
	CourseID uint `json:"course_id" gorm:"index;not null"`

	FinalGrade     float64 `json:"final_grade" gorm:"default:0"` // 0-10
	RecordState    string  `json:"record_state" gorm:"default:'PENDING'"`
	ManualOverride bool    `json:"manual_override" gorm:"default:false"`

	CredentialIssued    bool       `json:"credential_issued" gorm:"default:false"`
	CredentialClaimed   bool       `json:"credential_claimed" gorm:"default:false"` // in-progress marker for the batch run
	CredentialIssuedAt  *time.Time `json:"credential_issued_at"`
	CredentialReference string     `json:"credential_reference"`

	IsDeleted bool `gorm:"default:false"` // unenroll keeps the row, drops the live link
}

// Locked reports whether grade and score writes are rejected for this record.
func (e *Enrollment) Locked() bool {
	return e.RecordState != RecordPending
}
