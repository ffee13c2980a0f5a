package academics

import (
	"academy/models"
	academyModels "academy/models/academy"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Renderer is the external credential document rendering collaborator. It
// returns an opaque document reference.
type Renderer interface {
	RenderCredential(studentName, studentEmail, courseTitle string, grade float64, template string) (string, error)
}

// BatchFailure names one failed item of a batch run.
type BatchFailure struct {
	ID     uint   `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// BatchResult summarizes a batch run: how many items succeeded and which
// failed, so partial progress is never hidden behind a bare error.
type BatchResult struct {
	Succeeded    int            `json:"succeeded"`
	SucceededIDs []uint         `json:"succeededIds,omitempty"`
	Failures     []BatchFailure `json:"failures,omitempty"`
}

// RunPendingCertifications issues credentials for records waiting in
// CERTIFICATION_PENDING, up to batchLimit. Each enrollment is claimed with an
// atomic row update before rendering, so two concurrent runs never double
// issue. A failed item is logged, released and retried on the next run.
func RunPendingCertifications(db *gorm.DB, batchLimit int, renderer Renderer) BatchResult {
	result := BatchResult{}

	var pending []academyModels.Enrollment
	err := db.Where("record_state = ? AND credential_issued = ? AND credential_claimed = ? AND is_deleted = ?",
		academyModels.RecordCertificationPending, false, false, false).
		Limit(batchLimit).
		Find(&pending).Error
	if err != nil {
		result.Failures = append(result.Failures, BatchFailure{Reason: err.Error()})
		return result
	}

	for i := range pending {
		enrollment := pending[i]
		if err := issueCredential(db, &enrollment, renderer); err != nil {
			log.Printf("[CERTIFICATION] enrollment %d failed: %v", enrollment.ID, err)
			result.Failures = append(result.Failures, BatchFailure{
				ID:     enrollment.ID,
				Reason: err.Error(),
			})
			continue
		}
		result.Succeeded++
		result.SucceededIDs = append(result.SucceededIDs, enrollment.ID)
	}
	return result
}

func issueCredential(db *gorm.DB, enrollment *academyModels.Enrollment, renderer Renderer) error {
	// Atomic claim: only one run may take the row past this point.
	claim := db.Model(&academyModels.Enrollment{}).
		Where("id = ? AND record_state = ? AND credential_issued = ? AND credential_claimed = ?",
			enrollment.ID, academyModels.RecordCertificationPending, false, false).
		Update("credential_claimed", true)
	if claim.Error != nil {
		return claim.Error
	}
	if claim.RowsAffected == 0 {
		return nil // claimed or issued by a concurrent run, nothing to do
	}

	release := func() {
		db.Model(&academyModels.Enrollment{}).Where("id = ?", enrollment.ID).
			Update("credential_claimed", false)
	}

	var student models.User
	if err := db.Where("id = ?", enrollment.UserID).First(&student).Error; err != nil {
		release()
		return err
	}
	var course academyModels.Course
	if err := db.Where("id = ?", enrollment.CourseID).First(&course).Error; err != nil {
		release()
		return err
	}

	documentRef, err := renderer.RenderCredential(
		student.Name, student.Email, course.Title, enrollment.FinalGrade, course.CredentialTemplate)
	if err != nil {
		release()
		return &RenderError{Err: err}
	}

	now := time.Now()
	return db.Transaction(func(tx *gorm.DB) error {
		credential := academyModels.Credential{
			UserID:            enrollment.UserID,
			CourseID:          enrollment.CourseID,
			EnrollmentID:      enrollment.ID,
			SerialNumber:      uuid.NewString(),
			DocumentReference: documentRef,
			Template:          course.CredentialTemplate,
			Grade:             enrollment.FinalGrade,
			IssuedAt:          now,
		}
		if err := tx.Create(&credential).Error; err != nil {
			return err
		}
		return tx.Model(&academyModels.Enrollment{}).Where("id = ?", enrollment.ID).
			Updates(map[string]interface{}{
				"record_state":         academyModels.RecordCertified,
				"credential_issued":    true,
				"credential_claimed":   false,
				"credential_issued_at": &now,
				"credential_reference": documentRef,
			}).Error
	})
}

// RegenerateCredential revokes a certified enrollment's credential and queues
// it for reissue on the next batch run. This is the only supported undo.
func RegenerateCredential(db *gorm.DB, enrollmentID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var enrollment academyModels.Enrollment
		if err := tx.Where("id = ? AND is_deleted = ?", enrollmentID, false).
			First(&enrollment).Error; err != nil {
			return err
		}
		if enrollment.RecordState != academyModels.RecordCertified || !enrollment.CredentialIssued {
			return &InvalidTransitionError{From: enrollment.RecordState, To: academyModels.RecordCertificationPending}
		}

		if err := tx.Model(&academyModels.Credential{}).
			Where("enrollment_id = ? AND revoked = ? AND is_deleted = ?", enrollment.ID, false, false).
			Update("revoked", true).Error; err != nil {
			return err
		}

		return tx.Model(&enrollment).Updates(map[string]interface{}{
			"record_state":         academyModels.RecordCertificationPending,
			"credential_issued":    false,
			"credential_claimed":   false,
			"credential_reference": "",
			"credential_issued_at": nil,
		}).Error
	})
}
