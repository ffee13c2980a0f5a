package academy

import (
	"time"

	"gorm.io/gorm"
)

// Content categories
const (
	CategoryDocument         = "DOCUMENT"
	CategoryVideo            = "VIDEO"
	CategoryQuiz             = "QUIZ"
	CategoryExam             = "EXAM"
	CategoryDeliverable      = "DELIVERABLE"
	CategorySubjectLink      = "SUBJECT_LINK"
	CategoryCredentialMarker = "CREDENTIAL_MARKER"
	CategorySection          = "SECTION"
)

// ContentItem represents a content row within a course. SUBJECT_LINK rows are
// the program-side bridge to an embedded subject and carry its canonical
// duration for program grade weighting.
type ContentItem struct {
	gorm.Model
	CourseID        uint    `json:"course_id" gorm:"index;not null"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Category        string  `json:"category" gorm:"default:'DOCUMENT'"`
	Evaluable       bool    `json:"evaluable" gorm:"default:false"`
	WeightPercent   float64 `json:"weight_percent" gorm:"default:0"` // 0-100
	DurationHours   float64 `json:"duration_hours" gorm:"default:0"` // canonical subject duration on SUBJECT_LINK
	LinkedSubjectID *uint   `json:"linked_subject_id" gorm:"uniqueIndex"`
	OrderIndex      int     `json:"order_index" gorm:"default:0"`

	IsPublished bool       `json:"is_published" gorm:"default:false"`
	ScheduledAt *time.Time `json:"scheduled_at"` // auto-published by the cron when reached
	IsDeleted   bool       `gorm:"default:false"`
}
