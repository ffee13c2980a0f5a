package academics

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	academyModels "academy/models/academy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubRenderer struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (r *stubRenderer) RenderCredential(studentName, studentEmail, courseTitle string, grade float64, template string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.fail {
		return "", errors.New("render service unavailable")
	}
	return fmt.Sprintf("documents/%s-%d.pdf", template, r.calls), nil
}

func certifiableEnrollment(t *testing.T, db *gorm.DB) *academyModels.Enrollment {
	t.Helper()

	course := createCourse(t, db, "Micro", academyModels.KindMicroCredential, academyModels.StatusPublished)
	course.IssuesCredential = true
	course.CredentialPolicy = academyModels.PolicyAutomatic
	course.CredentialTemplate = "classic"
	require.NoError(t, db.Save(course).Error)

	exam := createItem(t, db, course.ID, academyModels.CategoryExam, true, 100)

	student := createUser(t, db, "student", "STUDENT")
	_, err := Enroll(db, course.ID, []uint{student.ID})
	require.NoError(t, err)

	require.NoError(t, EvaluateContent(db, getProgress(t, db, exam.ID, student.ID).ID, 8))
	require.NoError(t, CloseRecord(db, getEnrollment(t, db, course.ID, student.ID).ID))

	enrollment := getEnrollment(t, db, course.ID, student.ID)
	require.Equal(t, academyModels.RecordCertificationPending, enrollment.RecordState)
	return enrollment
}

func TestCertificationBatchIssuesOnce(t *testing.T) {
	db := newTestDB(t)
	enrollment := certifiableEnrollment(t, db)

	renderer := &stubRenderer{}
	result := RunPendingCertifications(db, 50, renderer)
	require.Equal(t, 1, result.Succeeded)
	require.Empty(t, result.Failures)
	require.Equal(t, []uint{enrollment.ID}, result.SucceededIDs)

	var reloaded academyModels.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, academyModels.RecordCertified, reloaded.RecordState)
	assert.True(t, reloaded.CredentialIssued)
	assert.False(t, reloaded.CredentialClaimed)
	assert.NotEmpty(t, reloaded.CredentialReference)
	assert.NotNil(t, reloaded.CredentialIssuedAt)

	var credentials []academyModels.Credential
	require.NoError(t, db.Where("enrollment_id = ?", enrollment.ID).Find(&credentials).Error)
	require.Len(t, credentials, 1)
	assert.NotEmpty(t, credentials[0].SerialNumber)
	assert.Equal(t, 8.0, credentials[0].Grade)

	// A second run is a no-op
	result = RunPendingCertifications(db, 50, renderer)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 1, renderer.calls)
}

func TestCertificationClaimBlocksDoubleIssue(t *testing.T) {
	db := newTestDB(t)
	enrollment := certifiableEnrollment(t, db)

	// Another run already claimed the row: issueCredential must back off
	require.NoError(t, db.Model(&academyModels.Enrollment{}).
		Where("id = ?", enrollment.ID).Update("credential_claimed", true).Error)

	renderer := &stubRenderer{}
	result := RunPendingCertifications(db, 50, renderer)
	assert.Equal(t, 0, result.Succeeded)
	assert.Empty(t, result.Failures)
	assert.Equal(t, 0, renderer.calls)

	var count int64
	db.Model(&academyModels.Credential{}).Where("enrollment_id = ?", enrollment.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestCertificationRenderFailureReleasesClaim(t *testing.T) {
	db := newTestDB(t)
	enrollment := certifiableEnrollment(t, db)

	renderer := &stubRenderer{fail: true}
	result := RunPendingCertifications(db, 50, renderer)
	require.Equal(t, 0, result.Succeeded)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, enrollment.ID, result.Failures[0].ID)

	// The claim is released so the next run can retry
	var reloaded academyModels.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.False(t, reloaded.CredentialClaimed)
	assert.False(t, reloaded.CredentialIssued)
	assert.Equal(t, academyModels.RecordCertificationPending, reloaded.RecordState)

	renderer.fail = false
	result = RunPendingCertifications(db, 50, renderer)
	assert.Equal(t, 1, result.Succeeded)
}

func TestCertificationBatchLimit(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 3; i++ {
		certifiableEnrollment(t, db)
	}

	renderer := &stubRenderer{}
	result := RunPendingCertifications(db, 2, renderer)
	assert.Equal(t, 2, result.Succeeded)

	result = RunPendingCertifications(db, 2, renderer)
	assert.Equal(t, 1, result.Succeeded)
}

func TestRegenerateCredential(t *testing.T) {
	db := newTestDB(t)
	enrollment := certifiableEnrollment(t, db)

	renderer := &stubRenderer{}
	require.Equal(t, 1, RunPendingCertifications(db, 50, renderer).Succeeded)

	// Regeneration is only valid for certified records
	var transition *InvalidTransitionError
	other := certifiableEnrollment(t, db)
	require.ErrorAs(t, RegenerateCredential(db, other.ID), &transition)

	require.NoError(t, RegenerateCredential(db, enrollment.ID))

	var reloaded academyModels.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, academyModels.RecordCertificationPending, reloaded.RecordState)
	assert.False(t, reloaded.CredentialIssued)
	assert.Empty(t, reloaded.CredentialReference)

	result := RunPendingCertifications(db, 50, renderer)
	require.GreaterOrEqual(t, result.Succeeded, 1)

	// The old document is revoked, exactly one live credential remains
	var live, revoked int64
	db.Model(&academyModels.Credential{}).
		Where("enrollment_id = ? AND revoked = ?", enrollment.ID, false).Count(&live)
	db.Model(&academyModels.Credential{}).
		Where("enrollment_id = ? AND revoked = ?", enrollment.ID, true).Count(&revoked)
	assert.EqualValues(t, 1, live)
	assert.EqualValues(t, 1, revoked)
}
