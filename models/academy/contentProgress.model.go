package academy

import (
	"time"

	"gorm.io/gorm"
)

// Evaluation states for a content progress row
const (
	EvalNotSubmitted = "NOT_SUBMITTED"
	EvalSubmitted    = "SUBMITTED"
	EvalEvaluated    = "EVALUATED"
)

// ContentProgress tracks one student's progress and grade on one content item.
// Rows are created eagerly by enrollment propagation for evaluable content so
// gradebook rows exist before the student ever opens the course.
type ContentProgress struct {
	gorm.Model
	ContentItemID uint `json:"content_item_id" gorm:"index;not null"`
	UserID        uint `json:"user_id" gorm:"index;not null"`
	CourseID      uint `json:"course_id" gorm:"index;not null"`
	EnrollmentID  uint `json:"enrollment_id" gorm:"index"`

	EvaluationState     string     `json:"evaluation_state" gorm:"default:'NOT_SUBMITTED'"`
	Score               float64    `json:"score" gorm:"default:0"` // 0-10
	SubmissionReference string     `json:"submission_reference"`
	SubmittedAt         *time.Time `json:"submitted_at"`

	IsDeleted bool `gorm:"default:false"`
}
