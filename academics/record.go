package academics

import (
	"academy/config"
	academyModels "academy/models/academy"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var ErrScoreOutOfRange = errors.New("score must be between 0 and 10")

// SubmitContent records a student's submission for a content item (deliverable
// upload or similar). The row moves to SUBMITTED and waits for teacher review.
func SubmitContent(db *gorm.DB, progressID uint, submissionRef string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		progress, enrollment, err := loadProgressAndRecord(tx, progressID)
		if err != nil {
			return err
		}
		if enrollment.Locked() {
			return &RecordLockedError{Reason: "the course record is closed"}
		}
		if progress.EvaluationState == academyModels.EvalEvaluated {
			return &RecordLockedError{Reason: "content is already evaluated, reopen it before resubmitting"}
		}

		now := time.Now()
		return tx.Model(progress).Updates(map[string]interface{}{
			"submission_reference": submissionRef,
			"submitted_at":         &now,
			"evaluation_state":     academyModels.EvalSubmitted,
		}).Error
	})
}

// RecordExamCompletion stores the score reported by the external exam engine.
// The row moves to SUBMITTED; an explicit teacher confirmation still closes it.
func RecordExamCompletion(db *gorm.DB, progressID uint, score float64) error {
	if score < 0 || score > 10 {
		return ErrScoreOutOfRange
	}
	return db.Transaction(func(tx *gorm.DB) error {
		progress, enrollment, err := loadProgressAndRecord(tx, progressID)
		if err != nil {
			return err
		}
		if enrollment.Locked() {
			return &RecordLockedError{Reason: "the course record is closed"}
		}
		if progress.EvaluationState == academyModels.EvalEvaluated {
			return &RecordLockedError{Reason: "content is already evaluated"}
		}

		now := time.Now()
		return tx.Model(progress).Updates(map[string]interface{}{
			"score":            score,
			"submitted_at":     &now,
			"evaluation_state": academyModels.EvalSubmitted,
		}).Error
	})
}

// EvaluateContent sets the teacher's score and confirms the evaluation as
// final. The subject grade and the student's program grade are recomputed
// synchronously before the call returns.
func EvaluateContent(db *gorm.DB, progressID uint, score float64) error {
	if score < 0 || score > 10 {
		return ErrScoreOutOfRange
	}
	return db.Transaction(func(tx *gorm.DB) error {
		progress, enrollment, err := loadProgressAndRecord(tx, progressID)
		if err != nil {
			return err
		}
		if enrollment.Locked() {
			return &RecordLockedError{Reason: "the course record is closed"}
		}
		if progress.EvaluationState == academyModels.EvalEvaluated {
			return &RecordLockedError{Reason: "score is final, reopen the evaluation to change it"}
		}

		if err := tx.Model(progress).Updates(map[string]interface{}{
			"score":            score,
			"evaluation_state": academyModels.EvalEvaluated,
		}).Error; err != nil {
			return err
		}
		return RecomputeEnrollment(tx, enrollment.ID)
	})
}

// ReopenContent moves an evaluated row back to SUBMITTED so the score can be
// corrected. Rejected once the course record is closed.
func ReopenContent(db *gorm.DB, progressID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		progress, enrollment, err := loadProgressAndRecord(tx, progressID)
		if err != nil {
			return err
		}
		if enrollment.Locked() {
			return &RecordLockedError{Reason: "the course record is closed"}
		}
		if progress.EvaluationState != academyModels.EvalEvaluated {
			return &InvalidTransitionError{From: progress.EvaluationState, To: academyModels.EvalSubmitted}
		}
		return tx.Model(progress).Update("evaluation_state", academyModels.EvalSubmitted).Error
	})
}

// CloseRecord closes the student's record for a course. For a subject or
// micro-credential every evaluable content row must be evaluated; for a
// program every linked subject's record must itself be closed. On success the
// record is REVIEWED, advancing straight to CERTIFICATION_PENDING for passing
// students of automatic credential-issuing courses.
func CloseRecord(db *gorm.DB, enrollmentID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var enrollment academyModels.Enrollment
		if err := tx.Where("id = ? AND is_deleted = ?", enrollmentID, false).
			First(&enrollment).Error; err != nil {
			return err
		}
		if enrollment.Locked() {
			return &InvalidTransitionError{From: enrollment.RecordState, To: academyModels.RecordReviewed}
		}

		var course academyModels.Course
		if err := tx.Where("id = ?", enrollment.CourseID).First(&course).Error; err != nil {
			return err
		}

		if course.Kind == academyModels.KindProgram {
			if err := checkProgramClosable(tx, &course, &enrollment); err != nil {
				return err
			}
		} else {
			if err := checkLeafClosable(tx, &enrollment); err != nil {
				return err
			}
		}

		state := academyModels.RecordReviewed
		if course.IssuesCredential &&
			course.CredentialPolicy == academyModels.PolicyAutomatic &&
			enrollment.FinalGrade >= passingGrade() &&
			!enrollment.CredentialIssued {
			state = academyModels.RecordCertificationPending
		}
		return tx.Model(&enrollment).Update("record_state", state).Error
	})
}

func checkLeafClosable(tx *gorm.DB, enrollment *academyModels.Enrollment) error {
	// Repair first so missing rows surface as pending evaluations, not silence.
	if err := ensureProgressRowsTx(tx, enrollment); err != nil {
		return err
	}

	var pending []academyModels.ContentProgress
	err := tx.Joins("JOIN content_items ON content_items.id = content_progresses.content_item_id").
		Where("content_progresses.user_id = ? AND content_progresses.course_id = ? AND content_progresses.is_deleted = ?",
			enrollment.UserID, enrollment.CourseID, false).
		Where("content_items.evaluable = ? AND content_items.category <> ? AND content_items.is_deleted = ?",
			true, academyModels.CategorySubjectLink, false).
		Where("content_progresses.evaluation_state <> ?", academyModels.EvalEvaluated).
		Find(&pending).Error
	if err != nil {
		return err
	}
	if len(pending) > 0 {
		return &IncompleteEvaluationError{
			Reason: fmt.Sprintf("%d evaluable content item(s) are not yet evaluated", len(pending)),
		}
	}
	return nil
}

func checkProgramClosable(tx *gorm.DB, program *academyModels.Course, enrollment *academyModels.Enrollment) error {
	links, err := linkedSubjectItems(tx, program.ID)
	if err != nil {
		return err
	}
	for _, link := range links {
		var sub academyModels.Enrollment
		err := tx.Where("course_id = ? AND user_id = ? AND is_deleted = ?",
			*link.LinkedSubjectID, enrollment.UserID, false).First(&sub).Error
		if err != nil || sub.RecordState == academyModels.RecordPending {
			return &IncompleteEvaluationError{
				Reason: fmt.Sprintf("subject %q is not yet closed for this student", link.Title),
			}
		}
	}
	return nil
}

// RequestCertification queues a reviewed, passing record of a manual-policy
// course for the next certification batch.
func RequestCertification(db *gorm.DB, enrollmentID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var enrollment academyModels.Enrollment
		if err := tx.Where("id = ? AND is_deleted = ?", enrollmentID, false).
			First(&enrollment).Error; err != nil {
			return err
		}
		if enrollment.RecordState != academyModels.RecordReviewed {
			return &InvalidTransitionError{From: enrollment.RecordState, To: academyModels.RecordCertificationPending}
		}

		var course academyModels.Course
		if err := tx.Where("id = ?", enrollment.CourseID).First(&course).Error; err != nil {
			return err
		}
		if !course.IssuesCredential {
			return &PublicationPreconditionError{Requirement: "course does not issue credentials"}
		}
		if enrollment.FinalGrade < passingGrade() {
			return &IncompleteEvaluationError{Reason: "final grade is below the passing threshold"}
		}

		return tx.Model(&enrollment).
			Update("record_state", academyModels.RecordCertificationPending).Error
	})
}

// SetManualGrade overrides the computed final grade. The stored value stays
// authoritative until the override is cleared. The student's program grade is
// refreshed before the call returns.
func SetManualGrade(db *gorm.DB, enrollmentID uint, grade float64) error {
	if grade < 0 || grade > 10 {
		return ErrScoreOutOfRange
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var enrollment academyModels.Enrollment
		if err := tx.Where("id = ? AND is_deleted = ?", enrollmentID, false).
			First(&enrollment).Error; err != nil {
			return err
		}
		if enrollment.Locked() {
			return &RecordLockedError{Reason: "the course record is closed"}
		}
		if err := tx.Model(&enrollment).Updates(map[string]interface{}{
			"final_grade":     grade,
			"manual_override": true,
		}).Error; err != nil {
			return err
		}
		return recomputeParentProgram(tx, enrollment.CourseID, []uint{enrollment.UserID})
	})
}

// ClearManualOverride returns the enrollment to computed grading.
func ClearManualOverride(db *gorm.DB, enrollmentID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var enrollment academyModels.Enrollment
		if err := tx.Where("id = ? AND is_deleted = ?", enrollmentID, false).
			First(&enrollment).Error; err != nil {
			return err
		}
		if enrollment.Locked() {
			return &RecordLockedError{Reason: "the course record is closed"}
		}
		if err := tx.Model(&enrollment).Update("manual_override", false).Error; err != nil {
			return err
		}
		return RecomputeEnrollment(tx, enrollment.ID)
	})
}

func loadProgressAndRecord(tx *gorm.DB, progressID uint) (*academyModels.ContentProgress, *academyModels.Enrollment, error) {
	var progress academyModels.ContentProgress
	if err := tx.Where("id = ? AND is_deleted = ?", progressID, false).
		First(&progress).Error; err != nil {
		return nil, nil, err
	}

	var enrollment academyModels.Enrollment
	if progress.EnrollmentID != 0 {
		if err := tx.Where("id = ?", progress.EnrollmentID).First(&enrollment).Error; err != nil {
			return nil, nil, err
		}
	} else {
		// Legacy rows created before the enrollment existed: resolve and repair.
		if err := tx.Where("course_id = ? AND user_id = ?", progress.CourseID, progress.UserID).
			First(&enrollment).Error; err != nil {
			return nil, nil, err
		}
		if err := tx.Model(&progress).Update("enrollment_id", enrollment.ID).Error; err != nil {
			return nil, nil, err
		}
	}
	return &progress, &enrollment, nil
}

func passingGrade() float64 {
	if config.AppConfig != nil {
		return config.AppConfig.PassingGrade
	}
	return 5.0
}
