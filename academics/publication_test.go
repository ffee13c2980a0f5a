package academics

import (
	"testing"
	"time"

	academyModels "academy/models/academy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitForReviewChecksWeightsAndGuards(t *testing.T) {
	db := newTestDB(t)

	director := createUser(t, db, "director", "TEACHER")
	course := createCourse(t, db, "Micro", academyModels.KindMicroCredential, academyModels.StatusDraft)
	exam := createItem(t, db, course.ID, academyModels.CategoryExam, true, 70)

	// Broken weight sum blocks leaving draft
	var structural *StructuralViolationError
	require.ErrorAs(t, SubmitForReview(db, course.ID), &structural)
	require.NoError(t, db.Model(exam).Update("weight_percent", 100).Error)

	// Missing director blocks next
	var precondition *PublicationPreconditionError
	require.ErrorAs(t, SubmitForReview(db, course.ID), &precondition)
	addDirector(t, db, course.ID, director.ID)

	require.NoError(t, SubmitForReview(db, course.ID))

	var reloaded academyModels.Course
	require.NoError(t, db.First(&reloaded, course.ID).Error)
	assert.Equal(t, academyModels.StatusSubmitted, reloaded.Status)
}

func TestRejectionRemediationLoop(t *testing.T) {
	db := newTestDB(t)

	director := createUser(t, db, "director", "TEACHER")
	course := createCourse(t, db, "Micro", academyModels.KindMicroCredential, academyModels.StatusDraft)
	addDirector(t, db, course.ID, director.ID)

	require.NoError(t, SubmitForReview(db, course.ID))
	require.NoError(t, RejectCourse(db, course.ID, "missing syllabus"))

	var reloaded academyModels.Course
	require.NoError(t, db.First(&reloaded, course.ID).Error)
	assert.Equal(t, academyModels.StatusRejected, reloaded.Status)
	assert.Equal(t, "missing syllabus", reloaded.RejectionReason)

	require.NoError(t, StartRemediation(db, course.ID))
	require.NoError(t, SubmitForReview(db, course.ID))

	require.NoError(t, db.First(&reloaded, course.ID).Error)
	assert.Equal(t, academyModels.StatusSubmitted, reloaded.Status)
	assert.Empty(t, reloaded.RejectionReason)
}

func TestInvalidPublicationTransitions(t *testing.T) {
	db := newTestDB(t)

	course := createCourse(t, db, "Micro", academyModels.KindMicroCredential, academyModels.StatusDraft)

	var transition *InvalidTransitionError
	require.ErrorAs(t, PublishCourse(db, course.ID), &transition)
	require.ErrorAs(t, RejectCourse(db, course.ID, "nope"), &transition)
	require.ErrorAs(t, StartRemediation(db, course.ID), &transition)
}

func TestSubjectPublicationGuards(t *testing.T) {
	db := newTestDB(t)

	subject := createCourse(t, db, "Orphan Subject", academyModels.KindSubject, academyModels.StatusDraft)

	// A subject outside any program cannot be submitted
	var precondition *PublicationPreconditionError
	require.ErrorAs(t, SubmitForReview(db, subject.ID), &precondition)

	director := createUser(t, db, "director", "TEACHER")
	program := createCourse(t, db, "Program", academyModels.KindProgram, academyModels.StatusDraft)
	addDirector(t, db, program.ID, director.ID)
	_, err := AttachSubject(db, program.ID, subject.ID, 25, false)
	require.NoError(t, err)

	// Director inherited from the program on attach, duration on the link
	require.NoError(t, SubmitForReview(db, subject.ID))
}

func TestPaidAndCredentialGuards(t *testing.T) {
	db := newTestDB(t)

	director := createUser(t, db, "director", "TEACHER")
	course := createCourse(t, db, "Micro", academyModels.KindMicroCredential, academyModels.StatusDraft)
	addDirector(t, db, course.ID, director.ID)

	require.NoError(t, db.Model(course).Updates(map[string]interface{}{
		"is_paid": true, "price": 0.0,
	}).Error)
	course.IsPaid = true

	var precondition *PublicationPreconditionError
	require.ErrorAs(t, SubmitForReview(db, course.ID), &precondition)

	require.NoError(t, db.Model(course).Updates(map[string]interface{}{
		"price": 49.0, "issues_credential": true, "credential_template": "",
	}).Error)
	require.ErrorAs(t, SubmitForReview(db, course.ID), &precondition)

	require.NoError(t, db.Model(course).Update("credential_template", "classic").Error)
	require.NoError(t, SubmitForReview(db, course.ID))
}

func TestSchedulePublicationAndRunDue(t *testing.T) {
	db := newTestDB(t)

	director := createUser(t, db, "director", "TEACHER")
	course := createCourse(t, db, "Micro", academyModels.KindMicroCredential, academyModels.StatusDraft)
	addDirector(t, db, course.ID, director.ID)

	require.NoError(t, SubmitForReview(db, course.ID))

	require.ErrorIs(t, SchedulePublication(db, course.ID, time.Now().Add(-time.Hour)), ErrScheduleInPast)

	at := time.Now().Add(50 * time.Millisecond)
	require.NoError(t, SchedulePublication(db, course.ID, at))

	// Not due yet
	result := RunDuePublications(db)
	assert.Equal(t, 0, result.Succeeded)

	time.Sleep(60 * time.Millisecond)
	result = RunDuePublications(db)
	assert.Equal(t, 1, result.Succeeded)
	assert.Empty(t, result.Failures)

	var reloaded academyModels.Course
	require.NoError(t, db.First(&reloaded, course.ID).Error)
	assert.Equal(t, academyModels.StatusPublished, reloaded.Status)
	assert.NotNil(t, reloaded.PublishedAt)
	assert.Nil(t, reloaded.ScheduledAt)
}

func TestRunDuePublicationsReleasesScheduledContent(t *testing.T) {
	db := newTestDB(t)

	course := createCourse(t, db, "Subject", academyModels.KindSubject, academyModels.StatusPublished)
	past := time.Now().Add(-time.Minute)
	item := academyModels.ContentItem{
		CourseID:    course.ID,
		Title:       "Late lecture",
		Category:    academyModels.CategoryDocument,
		ScheduledAt: &past,
	}
	require.NoError(t, db.Create(&item).Error)

	result := RunDuePublications(db)
	assert.Equal(t, 1, result.Succeeded)

	var reloaded academyModels.ContentItem
	require.NoError(t, db.First(&reloaded, item.ID).Error)
	assert.True(t, reloaded.IsPublished)
	assert.Nil(t, reloaded.ScheduledAt)
}

func TestFinalizeProgramCascades(t *testing.T) {
	db := newTestDB(t)

	program := createCourse(t, db, "Program", academyModels.KindProgram, academyModels.StatusPublished)
	subject := createCourse(t, db, "Subject", academyModels.KindSubject, academyModels.StatusPublished)
	_, err := AttachSubject(db, program.ID, subject.ID, 10, false)
	require.NoError(t, err)

	micro := createCourse(t, db, "Micro", academyModels.KindMicroCredential, academyModels.StatusPublished)

	var structural *StructuralViolationError
	require.ErrorAs(t, FinalizeProgram(db, micro.ID), &structural)

	require.NoError(t, FinalizeProgram(db, program.ID))

	for _, id := range []uint{program.ID, subject.ID} {
		var reloaded academyModels.Course
		require.NoError(t, db.First(&reloaded, id).Error)
		assert.Equal(t, academyModels.StatusFinished, reloaded.Status)
		assert.False(t, reloaded.IsActive)
	}
}
