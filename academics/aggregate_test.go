package academics

import (
	"testing"

	"academy/config"
	academyModels "academy/models/academy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedLeafGrade(t *testing.T) {
	db := newTestDB(t)

	course := createCourse(t, db, "Subject", academyModels.KindSubject, academyModels.StatusPublished)
	exam := createItem(t, db, course.ID, academyModels.CategoryExam, true, 60)
	deliverable := createItem(t, db, course.ID, academyModels.CategoryDeliverable, true, 40)

	student := createUser(t, db, "student", "STUDENT")
	_, err := Enroll(db, course.ID, []uint{student.ID})
	require.NoError(t, err)

	require.NoError(t, EvaluateContent(db, getProgress(t, db, exam.ID, student.ID).ID, 8))
	require.NoError(t, EvaluateContent(db, getProgress(t, db, deliverable.ID, student.ID).ID, 6))

	enrollment := getEnrollment(t, db, course.ID, student.ID)
	assert.InDelta(t, 7.2, enrollment.FinalGrade, 0.0001) // 8*0.6 + 6*0.4
}

func TestSimpleAverageWhenWeightsIncomplete(t *testing.T) {
	db := newTestDB(t)

	course := createCourse(t, db, "Subject", academyModels.KindSubject, academyModels.StatusPublished)
	exam := createItem(t, db, course.ID, academyModels.CategoryExam, true, 30)
	deliverable := createItem(t, db, course.ID, academyModels.CategoryDeliverable, true, 30)

	student := createUser(t, db, "student", "STUDENT")
	_, err := Enroll(db, course.ID, []uint{student.ID})
	require.NoError(t, err)

	require.NoError(t, EvaluateContent(db, getProgress(t, db, exam.ID, student.ID).ID, 8))
	require.NoError(t, EvaluateContent(db, getProgress(t, db, deliverable.ID, student.ID).ID, 6))

	// Weights total 60, so plain averaging applies
	enrollment := getEnrollment(t, db, course.ID, student.ID)
	assert.InDelta(t, 7.0, enrollment.FinalGrade, 0.0001)
}

func TestProgramGradeIsDurationWeighted(t *testing.T) {
	db := newTestDB(t)

	program := createCourse(t, db, "Program", academyModels.KindProgram, academyModels.StatusPublished)
	subjectA := createCourse(t, db, "Subject A", academyModels.KindSubject, academyModels.StatusPublished)
	subjectB := createCourse(t, db, "Subject B", academyModels.KindSubject, academyModels.StatusPublished)
	_, err := AttachSubject(db, program.ID, subjectA.ID, 40, false)
	require.NoError(t, err)
	_, err = AttachSubject(db, program.ID, subjectB.ID, 60, false)
	require.NoError(t, err)

	examA := createItem(t, db, subjectA.ID, academyModels.CategoryExam, true, 100)
	examB := createItem(t, db, subjectB.ID, academyModels.CategoryExam, true, 100)

	student := createUser(t, db, "student", "STUDENT")
	_, err = Enroll(db, program.ID, []uint{student.ID})
	require.NoError(t, err)

	require.NoError(t, EvaluateContent(db, getProgress(t, db, examA.ID, student.ID).ID, 6))
	require.NoError(t, EvaluateContent(db, getProgress(t, db, examB.ID, student.ID).ID, 8))

	// (6*40 + 8*60) / 100
	programEnrollment := getEnrollment(t, db, program.ID, student.ID)
	assert.InDelta(t, 7.2, programEnrollment.FinalGrade, 0.0001)
}

func TestProgramGradeCountsMissingSubjectAsZero(t *testing.T) {
	db := newTestDB(t)

	program := createCourse(t, db, "Program", academyModels.KindProgram, academyModels.StatusPublished)
	subjectA := createCourse(t, db, "Subject A", academyModels.KindSubject, academyModels.StatusPublished)
	_, err := AttachSubject(db, program.ID, subjectA.ID, 50, false)
	require.NoError(t, err)

	examA := createItem(t, db, subjectA.ID, academyModels.CategoryExam, true, 100)

	student := createUser(t, db, "student", "STUDENT")
	_, err = Enroll(db, program.ID, []uint{student.ID})
	require.NoError(t, err)

	require.NoError(t, EvaluateContent(db, getProgress(t, db, examA.ID, student.ID).ID, 8))

	// A second subject arrives without cascade: the student has no record there
	subjectB := createCourse(t, db, "Subject B", academyModels.KindSubject, academyModels.StatusPublished)
	_, err = AttachSubject(db, program.ID, subjectB.ID, 50, false)
	require.NoError(t, err)

	require.NoError(t, RecomputeProgramGrades(db, program.ID, []uint{student.ID}))

	programEnrollment := getEnrollment(t, db, program.ID, student.ID)
	assert.InDelta(t, 4.0, programEnrollment.FinalGrade, 0.0001) // 8*50/100 + 0*50/100
}

func TestProgramGradeExcludeMissingFlag(t *testing.T) {
	db := newTestDB(t)

	prev := config.AppConfig
	config.AppConfig = &config.Config{GradeExcludeMissing: true, PassingGrade: 5.0}
	defer func() { config.AppConfig = prev }()

	program := createCourse(t, db, "Program", academyModels.KindProgram, academyModels.StatusPublished)
	subjectA := createCourse(t, db, "Subject A", academyModels.KindSubject, academyModels.StatusPublished)
	_, err := AttachSubject(db, program.ID, subjectA.ID, 50, false)
	require.NoError(t, err)

	examA := createItem(t, db, subjectA.ID, academyModels.CategoryExam, true, 100)

	student := createUser(t, db, "student", "STUDENT")
	_, err = Enroll(db, program.ID, []uint{student.ID})
	require.NoError(t, err)

	require.NoError(t, EvaluateContent(db, getProgress(t, db, examA.ID, student.ID).ID, 8))

	subjectB := createCourse(t, db, "Subject B", academyModels.KindSubject, academyModels.StatusPublished)
	_, err = AttachSubject(db, program.ID, subjectB.ID, 50, false)
	require.NoError(t, err)

	require.NoError(t, RecomputeProgramGrades(db, program.ID, []uint{student.ID}))

	// Legacy behavior: subjects without a record are left out of the average
	programEnrollment := getEnrollment(t, db, program.ID, student.ID)
	assert.InDelta(t, 8.0, programEnrollment.FinalGrade, 0.0001)
}

func TestManualOverrideBlocksRecompute(t *testing.T) {
	db := newTestDB(t)

	course := createCourse(t, db, "Subject", academyModels.KindSubject, academyModels.StatusPublished)
	exam := createItem(t, db, course.ID, academyModels.CategoryExam, true, 100)

	student := createUser(t, db, "student", "STUDENT")
	_, err := Enroll(db, course.ID, []uint{student.ID})
	require.NoError(t, err)

	enrollment := getEnrollment(t, db, course.ID, student.ID)
	require.NoError(t, SetManualGrade(db, enrollment.ID, 9.5))

	require.NoError(t, EvaluateContent(db, getProgress(t, db, exam.ID, student.ID).ID, 3))

	reloaded := getEnrollment(t, db, course.ID, student.ID)
	assert.Equal(t, 9.5, reloaded.FinalGrade)
	assert.True(t, reloaded.ManualOverride)

	// Clearing the override returns to computed grading
	require.NoError(t, ClearManualOverride(db, enrollment.ID))
	reloaded = getEnrollment(t, db, course.ID, student.ID)
	assert.InDelta(t, 3.0, reloaded.FinalGrade, 0.0001)
	assert.False(t, reloaded.ManualOverride)
}

func TestRecomputeCourseGradesBatch(t *testing.T) {
	db := newTestDB(t)

	course := createCourse(t, db, "Subject", academyModels.KindSubject, academyModels.StatusPublished)
	exam := createItem(t, db, course.ID, academyModels.CategoryExam, true, 100)

	alice := createUser(t, db, "alice", "STUDENT")
	bob := createUser(t, db, "bob", "STUDENT")
	_, err := Enroll(db, course.ID, []uint{alice.ID, bob.ID})
	require.NoError(t, err)

	require.NoError(t, db.Model(getProgress(t, db, exam.ID, alice.ID)).
		Updates(map[string]interface{}{"score": 9.0, "evaluation_state": academyModels.EvalEvaluated}).Error)
	require.NoError(t, db.Model(getProgress(t, db, exam.ID, bob.ID)).
		Updates(map[string]interface{}{"score": 4.0, "evaluation_state": academyModels.EvalEvaluated}).Error)

	require.NoError(t, RecomputeCourseGrades(db, course.ID))

	assert.InDelta(t, 9.0, getEnrollment(t, db, course.ID, alice.ID).FinalGrade, 0.0001)
	assert.InDelta(t, 4.0, getEnrollment(t, db, course.ID, bob.ID).FinalGrade, 0.0001)
}

func TestGradeClamping(t *testing.T) {
	assert.Equal(t, 0.0, clampGrade(-1.2))
	assert.Equal(t, 10.0, clampGrade(11.7))
	assert.Equal(t, 6.3, clampGrade(6.3))
}
