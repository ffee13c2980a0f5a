package academy

import (
	"time"

	"gorm.io/gorm"
)

// Course kinds. Kind is fixed at creation and never changes afterwards.
const (
	KindProgram         = "PROGRAM"
	KindSubject         = "SUBJECT"
	KindMicroCredential = "MICRO_CREDENTIAL"
)

// Publication states
const (
	StatusDraft       = "DRAFT"
	StatusSubmitted   = "SUBMITTED"
	StatusRejected    = "REJECTED"
	StatusRemediation = "REMEDIATION"
	StatusScheduled   = "SCHEDULED"
	StatusPublished   = "PUBLISHED"
	StatusFinished    = "FINISHED"
)

// Credential policies
const (
	PolicyAutomatic = "AUTOMATIC"
	PolicyManual    = "MANUAL"
)

// Course represents an academic course. A PROGRAM contains SUBJECTs through
// subject-link content items; a MICRO_CREDENTIAL is stand-alone.
type Course struct {
	gorm.Model
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Kind            string  `json:"kind" gorm:"default:'SUBJECT'"`
	Status          string  `json:"status" gorm:"default:'DRAFT'"`
	ParentProgramID *uint   `json:"parent_program_id" gorm:"index"` // set only on SUBJECT
	DurationHours   float64 `json:"duration_hours" gorm:"default:0"`

	IssuesCredential   bool   `json:"issues_credential" gorm:"default:false"`
	CredentialPolicy   string `json:"credential_policy" gorm:"default:'AUTOMATIC'"` // AUTOMATIC, MANUAL
	CredentialTemplate string `json:"credential_template"`

	IsPaid        bool    `json:"is_paid" gorm:"default:false"`
	Price         float64 `json:"price" gorm:"default:0"`
	UploadLimitMB int     `json:"upload_limit_mb" gorm:"default:10"` // deliverable size cap, 0 = unlimited

	ScheduledAt     *time.Time `json:"scheduled_at"`
	PublishedAt     *time.Time `json:"published_at"`
	RejectionReason string     `json:"rejection_reason"`

	IsActive  bool `json:"is_active" gorm:"default:true"`
	IsDeleted bool `gorm:"default:false"`
}

// Staff roles on a course
const (
	StaffDirector = "DIRECTOR"
	StaffTeacher  = "TEACHER"
)

// CourseStaff assigns a director or teacher to a course
type CourseStaff struct {
	gorm.Model
	CourseID  uint   `json:"course_id" gorm:"index;not null"`
	UserID    uint   `json:"user_id" gorm:"index;not null"`
	Role      string `json:"role" gorm:"default:'TEACHER'"` // DIRECTOR, TEACHER
	IsDeleted bool   `gorm:"default:false"`
}
