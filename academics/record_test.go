package academics

import (
	"testing"

	academyModels "academy/models/academy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitAndEvaluateLifecycle(t *testing.T) {
	db := newTestDB(t)

	course := createCourse(t, db, "Subject", academyModels.KindSubject, academyModels.StatusPublished)
	deliverable := createItem(t, db, course.ID, academyModels.CategoryDeliverable, true, 100)

	student := createUser(t, db, "student", "STUDENT")
	_, err := Enroll(db, course.ID, []uint{student.ID})
	require.NoError(t, err)

	progress := getProgress(t, db, deliverable.ID, student.ID)
	require.NoError(t, SubmitContent(db, progress.ID, "uploads/report.pdf"))

	reloaded := getProgress(t, db, deliverable.ID, student.ID)
	assert.Equal(t, academyModels.EvalSubmitted, reloaded.EvaluationState)
	assert.Equal(t, "uploads/report.pdf", reloaded.SubmissionReference)
	assert.NotNil(t, reloaded.SubmittedAt)

	require.NoError(t, EvaluateContent(db, progress.ID, 8.5))
	reloaded = getProgress(t, db, deliverable.ID, student.ID)
	assert.Equal(t, academyModels.EvalEvaluated, reloaded.EvaluationState)
	assert.Equal(t, 8.5, reloaded.Score)

	// Final scores cannot be overwritten without reopening
	var locked *RecordLockedError
	require.ErrorAs(t, EvaluateContent(db, progress.ID, 5), &locked)
	require.ErrorAs(t, SubmitContent(db, progress.ID, "uploads/v2.pdf"), &locked)

	require.NoError(t, ReopenContent(db, progress.ID))
	require.NoError(t, EvaluateContent(db, progress.ID, 9))
	assert.Equal(t, 9.0, getProgress(t, db, deliverable.ID, student.ID).Score)
}

func TestRecordExamCompletion(t *testing.T) {
	db := newTestDB(t)

	course := createCourse(t, db, "Subject", academyModels.KindSubject, academyModels.StatusPublished)
	exam := createItem(t, db, course.ID, academyModels.CategoryExam, true, 100)

	student := createUser(t, db, "student", "STUDENT")
	_, err := Enroll(db, course.ID, []uint{student.ID})
	require.NoError(t, err)

	progress := getProgress(t, db, exam.ID, student.ID)

	require.ErrorIs(t, RecordExamCompletion(db, progress.ID, 12), ErrScoreOutOfRange)

	require.NoError(t, RecordExamCompletion(db, progress.ID, 7.25))
	reloaded := getProgress(t, db, exam.ID, student.ID)
	assert.Equal(t, academyModels.EvalSubmitted, reloaded.EvaluationState)
	assert.Equal(t, 7.25, reloaded.Score)
}

func TestCloseRecordRequiresFullEvaluation(t *testing.T) {
	db := newTestDB(t)

	course := createCourse(t, db, "Subject", academyModels.KindSubject, academyModels.StatusPublished)
	exam := createItem(t, db, course.ID, academyModels.CategoryExam, true, 60)
	deliverable := createItem(t, db, course.ID, academyModels.CategoryDeliverable, true, 40)

	student := createUser(t, db, "student", "STUDENT")
	_, err := Enroll(db, course.ID, []uint{student.ID})
	require.NoError(t, err)

	require.NoError(t, EvaluateContent(db, getProgress(t, db, exam.ID, student.ID).ID, 8))
	require.NoError(t, SubmitContent(db, getProgress(t, db, deliverable.ID, student.ID).ID, "uploads/x.pdf"))

	enrollment := getEnrollment(t, db, course.ID, student.ID)

	// A submitted but unevaluated row blocks closing
	var incomplete *IncompleteEvaluationError
	require.ErrorAs(t, CloseRecord(db, enrollment.ID), &incomplete)

	require.NoError(t, EvaluateContent(db, getProgress(t, db, deliverable.ID, student.ID).ID, 6))
	require.NoError(t, CloseRecord(db, enrollment.ID))

	reloaded := getEnrollment(t, db, course.ID, student.ID)
	assert.Equal(t, academyModels.RecordReviewed, reloaded.RecordState)
}

func TestClosedRecordLocksGradeWrites(t *testing.T) {
	db := newTestDB(t)

	course := createCourse(t, db, "Subject", academyModels.KindSubject, academyModels.StatusPublished)
	exam := createItem(t, db, course.ID, academyModels.CategoryExam, true, 100)

	student := createUser(t, db, "student", "STUDENT")
	_, err := Enroll(db, course.ID, []uint{student.ID})
	require.NoError(t, err)

	progress := getProgress(t, db, exam.ID, student.ID)
	require.NoError(t, EvaluateContent(db, progress.ID, 7))

	enrollment := getEnrollment(t, db, course.ID, student.ID)
	require.NoError(t, CloseRecord(db, enrollment.ID))

	var locked *RecordLockedError
	require.ErrorAs(t, ReopenContent(db, progress.ID), &locked)
	require.ErrorAs(t, SetManualGrade(db, enrollment.ID, 9), &locked)

	// The stored grade survives course-wide recomputes
	require.NoError(t, db.Model(progress).Update("score", 1.0).Error)
	require.NoError(t, RecomputeCourseGrades(db, course.ID))
	assert.Equal(t, 7.0, getEnrollment(t, db, course.ID, student.ID).FinalGrade)
}

func TestCloseRecordAutoAdvancesToCertificationPending(t *testing.T) {
	db := newTestDB(t)

	course := createCourse(t, db, "Micro", academyModels.KindMicroCredential, academyModels.StatusPublished)
	course.IssuesCredential = true
	course.CredentialPolicy = academyModels.PolicyAutomatic
	course.CredentialTemplate = "default"
	require.NoError(t, db.Save(course).Error)

	exam := createItem(t, db, course.ID, academyModels.CategoryExam, true, 100)

	passing := createUser(t, db, "passing", "STUDENT")
	failing := createUser(t, db, "failing", "STUDENT")
	_, err := Enroll(db, course.ID, []uint{passing.ID, failing.ID})
	require.NoError(t, err)

	require.NoError(t, EvaluateContent(db, getProgress(t, db, exam.ID, passing.ID).ID, 8))
	require.NoError(t, EvaluateContent(db, getProgress(t, db, exam.ID, failing.ID).ID, 3))

	require.NoError(t, CloseRecord(db, getEnrollment(t, db, course.ID, passing.ID).ID))
	require.NoError(t, CloseRecord(db, getEnrollment(t, db, course.ID, failing.ID).ID))

	assert.Equal(t, academyModels.RecordCertificationPending,
		getEnrollment(t, db, course.ID, passing.ID).RecordState)
	assert.Equal(t, academyModels.RecordReviewed,
		getEnrollment(t, db, course.ID, failing.ID).RecordState)
}

func TestCloseProgramRecordRequiresClosedSubjects(t *testing.T) {
	db := newTestDB(t)

	program := createCourse(t, db, "Program", academyModels.KindProgram, academyModels.StatusPublished)
	subject := createCourse(t, db, "Subject", academyModels.KindSubject, academyModels.StatusPublished)
	_, err := AttachSubject(db, program.ID, subject.ID, 20, false)
	require.NoError(t, err)

	exam := createItem(t, db, subject.ID, academyModels.CategoryExam, true, 100)

	student := createUser(t, db, "student", "STUDENT")
	_, err = Enroll(db, program.ID, []uint{student.ID})
	require.NoError(t, err)

	programEnrollment := getEnrollment(t, db, program.ID, student.ID)

	var incomplete *IncompleteEvaluationError
	require.ErrorAs(t, CloseRecord(db, programEnrollment.ID), &incomplete)

	require.NoError(t, EvaluateContent(db, getProgress(t, db, exam.ID, student.ID).ID, 7))
	require.NoError(t, CloseRecord(db, getEnrollment(t, db, subject.ID, student.ID).ID))

	require.NoError(t, CloseRecord(db, programEnrollment.ID))
	assert.Equal(t, academyModels.RecordReviewed,
		getEnrollment(t, db, program.ID, student.ID).RecordState)
}

func TestRequestCertification(t *testing.T) {
	db := newTestDB(t)

	course := createCourse(t, db, "Micro", academyModels.KindMicroCredential, academyModels.StatusPublished)
	course.IssuesCredential = true
	course.CredentialPolicy = academyModels.PolicyManual
	course.CredentialTemplate = "default"
	require.NoError(t, db.Save(course).Error)

	exam := createItem(t, db, course.ID, academyModels.CategoryExam, true, 100)

	student := createUser(t, db, "student", "STUDENT")
	_, err := Enroll(db, course.ID, []uint{student.ID})
	require.NoError(t, err)

	enrollment := getEnrollment(t, db, course.ID, student.ID)

	// Not yet reviewed
	var transition *InvalidTransitionError
	require.ErrorAs(t, RequestCertification(db, enrollment.ID), &transition)

	require.NoError(t, EvaluateContent(db, getProgress(t, db, exam.ID, student.ID).ID, 8))
	require.NoError(t, CloseRecord(db, enrollment.ID))

	// Manual policy leaves the record in REVIEWED until requested
	reloaded := getEnrollment(t, db, course.ID, student.ID)
	require.Equal(t, academyModels.RecordReviewed, reloaded.RecordState)

	require.NoError(t, RequestCertification(db, enrollment.ID))
	assert.Equal(t, academyModels.RecordCertificationPending,
		getEnrollment(t, db, course.ID, student.ID).RecordState)
}
