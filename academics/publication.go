package academics

import (
	academyModels "academy/models/academy"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var ErrScheduleInPast = errors.New("scheduled publication date cannot be in the past")

// SubmitForReview moves a draft (or remediated) course into review. The
// structural invariants and publication guards run here: a course may not
// leave DRAFT with broken weights or missing requirements.
func SubmitForReview(db *gorm.DB, courseID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		course, err := loadCourse(tx, courseID)
		if err != nil {
			return err
		}
		if course.Status != academyModels.StatusDraft && course.Status != academyModels.StatusRemediation {
			return &InvalidTransitionError{From: course.Status, To: academyModels.StatusSubmitted}
		}
		if err := ValidateCourse(tx, course); err != nil {
			return err
		}
		if err := checkPublicationGuards(tx, course); err != nil {
			return err
		}
		return tx.Model(course).Updates(map[string]interface{}{
			"status":           academyModels.StatusSubmitted,
			"rejection_reason": "",
		}).Error
	})
}

// RejectCourse sends a submitted course back with a mandatory reason.
func RejectCourse(db *gorm.DB, courseID uint, reason string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		course, err := loadCourse(tx, courseID)
		if err != nil {
			return err
		}
		if course.Status != academyModels.StatusSubmitted {
			return &InvalidTransitionError{From: course.Status, To: academyModels.StatusRejected}
		}
		return tx.Model(course).Updates(map[string]interface{}{
			"status":           academyModels.StatusRejected,
			"rejection_reason": reason,
		}).Error
	})
}

// StartRemediation acknowledges a rejection so the staff can rework and
// resubmit the course.
func StartRemediation(db *gorm.DB, courseID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		course, err := loadCourse(tx, courseID)
		if err != nil {
			return err
		}
		if course.Status != academyModels.StatusRejected {
			return &InvalidTransitionError{From: course.Status, To: academyModels.StatusRemediation}
		}
		return tx.Model(course).Update("status", academyModels.StatusRemediation).Error
	})
}

// SchedulePublication queues a submitted course for automatic publication at
// a future time, released by the scheduler tick.
func SchedulePublication(db *gorm.DB, courseID uint, at time.Time) error {
	if at.Before(time.Now()) {
		return ErrScheduleInPast
	}
	return db.Transaction(func(tx *gorm.DB) error {
		course, err := loadCourse(tx, courseID)
		if err != nil {
			return err
		}
		if course.Status != academyModels.StatusSubmitted {
			return &InvalidTransitionError{From: course.Status, To: academyModels.StatusScheduled}
		}
		if err := checkPublicationGuards(tx, course); err != nil {
			return err
		}
		return tx.Model(course).Updates(map[string]interface{}{
			"status":       academyModels.StatusScheduled,
			"scheduled_at": &at,
		}).Error
	})
}

// PublishCourse publishes a submitted or scheduled course immediately.
func PublishCourse(db *gorm.DB, courseID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		course, err := loadCourse(tx, courseID)
		if err != nil {
			return err
		}
		return publishTx(tx, course)
	})
}

func publishTx(tx *gorm.DB, course *academyModels.Course) error {
	if course.Status != academyModels.StatusSubmitted && course.Status != academyModels.StatusScheduled {
		return &InvalidTransitionError{From: course.Status, To: academyModels.StatusPublished}
	}
	if err := checkPublicationGuards(tx, course); err != nil {
		return err
	}
	now := time.Now()
	return tx.Model(course).Updates(map[string]interface{}{
		"status":       academyModels.StatusPublished,
		"published_at": &now,
		"scheduled_at": nil,
	}).Error
}

// FinalizeProgram marks a published program FINISHED, cascading to every
// linked subject and deactivating all of them.
func FinalizeProgram(db *gorm.DB, programID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		program, err := loadCourse(tx, programID)
		if err != nil {
			return err
		}
		if program.Kind != academyModels.KindProgram {
			return &StructuralViolationError{Reason: "only a program can be finalized"}
		}
		if program.Status != academyModels.StatusPublished {
			return &InvalidTransitionError{From: program.Status, To: academyModels.StatusFinished}
		}

		links, err := linkedSubjectItems(tx, programID)
		if err != nil {
			return err
		}
		for _, link := range links {
			if err := tx.Model(&academyModels.Course{}).
				Where("id = ?", *link.LinkedSubjectID).
				Updates(map[string]interface{}{
					"status":    academyModels.StatusFinished,
					"is_active": false,
				}).Error; err != nil {
				return err
			}
		}
		return tx.Model(program).Updates(map[string]interface{}{
			"status":    academyModels.StatusFinished,
			"is_active": false,
		}).Error
	})
}

// RunDuePublications releases every scheduled course and content item whose
// time has arrived. Called by the scheduler; failures are isolated per item
// and reported in the summary, never aborting the run.
func RunDuePublications(db *gorm.DB) BatchResult {
	result := BatchResult{}
	now := time.Now()

	var dueCourses []academyModels.Course
	if err := db.Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ? AND is_deleted = ?",
		academyModels.StatusScheduled, now, false).Find(&dueCourses).Error; err != nil {
		result.Failures = append(result.Failures, BatchFailure{Reason: err.Error()})
		return result
	}

	for i := range dueCourses {
		course := dueCourses[i]
		err := db.Transaction(func(tx *gorm.DB) error {
			return publishTx(tx, &course)
		})
		if err != nil {
			result.Failures = append(result.Failures, BatchFailure{
				ID:     course.ID,
				Reason: err.Error(),
			})
			continue
		}
		result.Succeeded++
	}

	// Scheduled content items are released the same way.
	var dueItems []academyModels.ContentItem
	if err := db.Where("is_published = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ? AND is_deleted = ?",
		false, now, false).Find(&dueItems).Error; err != nil {
		result.Failures = append(result.Failures, BatchFailure{Reason: err.Error()})
		return result
	}
	for i := range dueItems {
		err := db.Model(&dueItems[i]).Updates(map[string]interface{}{
			"is_published": true,
			"scheduled_at": nil,
		}).Error
		if err != nil {
			result.Failures = append(result.Failures, BatchFailure{
				ID:     dueItems[i].ID,
				Reason: err.Error(),
			})
			continue
		}
		result.Succeeded++
	}
	return result
}

// checkPublicationGuards verifies the data-completeness requirements at the
// SUBMITTED/SCHEDULED/PUBLISHED boundaries, naming the unmet requirement.
func checkPublicationGuards(tx *gorm.DB, course *academyModels.Course) error {
	switch course.Kind {
	case academyModels.KindProgram, academyModels.KindMicroCredential:
		count, err := directorCount(tx, course.ID)
		if err != nil {
			return err
		}
		if count == 0 {
			return &PublicationPreconditionError{Requirement: "course needs at least one academic director"}
		}

	case academyModels.KindSubject:
		if course.ParentProgramID == nil {
			return &PublicationPreconditionError{Requirement: "subject must be linked into a program"}
		}
		count, err := directorCount(tx, course.ID)
		if err != nil {
			return err
		}
		if count == 0 {
			// A subject without its own director falls back to the program's.
			parentCount, err := directorCount(tx, *course.ParentProgramID)
			if err != nil {
				return err
			}
			if parentCount == 0 {
				return &PublicationPreconditionError{Requirement: "subject has no director and its program has none to inherit"}
			}
		}

		var link academyModels.ContentItem
		err = tx.Where("course_id = ? AND linked_subject_id = ? AND is_deleted = ?",
			*course.ParentProgramID, course.ID, false).First(&link).Error
		if err != nil || link.DurationHours <= 0 {
			return &PublicationPreconditionError{
				Requirement: fmt.Sprintf("subject %q needs a positive duration on its program subject link", course.Title),
			}
		}
	}

	if course.IsPaid && course.Price <= 0 {
		return &PublicationPreconditionError{Requirement: "paid course must have a price greater than 0"}
	}
	if course.IssuesCredential && course.CredentialTemplate == "" {
		return &PublicationPreconditionError{Requirement: "credential-issuing course needs a rendering template"}
	}
	return nil
}

func directorCount(tx *gorm.DB, courseID uint) (int64, error) {
	var count int64
	err := tx.Model(&academyModels.CourseStaff{}).
		Where("course_id = ? AND role = ? AND is_deleted = ?", courseID, academyModels.StaffDirector, false).
		Count(&count).Error
	return count, err
}

func loadCourse(tx *gorm.DB, courseID uint) (*academyModels.Course, error) {
	var course academyModels.Course
	if err := tx.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}
