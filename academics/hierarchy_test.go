package academics

import (
	"testing"

	academyModels "academy/models/academy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachSubjectCreatesLinkAndSyncsParent(t *testing.T) {
	db := newTestDB(t)

	program := createCourse(t, db, "Data Engineering", academyModels.KindProgram, academyModels.StatusDraft)
	subject := createCourse(t, db, "SQL Fundamentals", academyModels.KindSubject, academyModels.StatusDraft)

	link, err := AttachSubject(db, program.ID, subject.ID, 40, false)
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, academyModels.CategorySubjectLink, link.Category)
	assert.True(t, link.Evaluable)
	assert.Equal(t, 40.0, link.DurationHours)

	var reloaded academyModels.Course
	require.NoError(t, db.First(&reloaded, subject.ID).Error)
	require.NotNil(t, reloaded.ParentProgramID)
	assert.Equal(t, program.ID, *reloaded.ParentProgramID)

	// Program duration is derived from its subject links
	var reloadedProgram academyModels.Course
	require.NoError(t, db.First(&reloadedProgram, program.ID).Error)
	assert.Equal(t, 40.0, reloadedProgram.DurationHours)
}

func TestAttachSubjectIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	program := createCourse(t, db, "Program", academyModels.KindProgram, academyModels.StatusDraft)
	subject := createCourse(t, db, "Subject", academyModels.KindSubject, academyModels.StatusDraft)

	first, err := AttachSubject(db, program.ID, subject.ID, 20, false)
	require.NoError(t, err)
	second, err := AttachSubject(db, program.ID, subject.ID, 20, false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&academyModels.ContentItem{}).
		Where("linked_subject_id = ? AND is_deleted = ?", subject.ID, false).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestAttachSubjectRejectsSecondProgram(t *testing.T) {
	db := newTestDB(t)

	first := createCourse(t, db, "First Program", academyModels.KindProgram, academyModels.StatusDraft)
	second := createCourse(t, db, "Second Program", academyModels.KindProgram, academyModels.StatusDraft)
	subject := createCourse(t, db, "Shared Subject", academyModels.KindSubject, academyModels.StatusDraft)

	_, err := AttachSubject(db, first.ID, subject.ID, 10, false)
	require.NoError(t, err)

	_, err = AttachSubject(db, second.ID, subject.ID, 10, false)
	var structural *StructuralViolationError
	require.ErrorAs(t, err, &structural)
}

func TestAttachSubjectRejectsWrongKinds(t *testing.T) {
	db := newTestDB(t)

	program := createCourse(t, db, "Program", academyModels.KindProgram, academyModels.StatusDraft)
	micro := createCourse(t, db, "Micro", academyModels.KindMicroCredential, academyModels.StatusDraft)
	subject := createCourse(t, db, "Subject", academyModels.KindSubject, academyModels.StatusDraft)

	var structural *StructuralViolationError

	_, err := AttachSubject(db, program.ID, micro.ID, 10, false)
	require.ErrorAs(t, err, &structural)

	_, err = AttachSubject(db, micro.ID, subject.ID, 10, false)
	require.ErrorAs(t, err, &structural)

	_, err = AttachSubject(db, program.ID, subject.ID, 0, false)
	require.ErrorAs(t, err, &structural)
}

func TestAttachSubjectInheritsDirectors(t *testing.T) {
	db := newTestDB(t)

	director := createUser(t, db, "director", "TEACHER")
	program := createCourse(t, db, "Program", academyModels.KindProgram, academyModels.StatusDraft)
	subject := createCourse(t, db, "Subject", academyModels.KindSubject, academyModels.StatusDraft)
	addDirector(t, db, program.ID, director.ID)

	_, err := AttachSubject(db, program.ID, subject.ID, 10, false)
	require.NoError(t, err)

	var count int64
	db.Model(&academyModels.CourseStaff{}).
		Where("course_id = ? AND user_id = ? AND role = ? AND is_deleted = ?",
			subject.ID, director.ID, academyModels.StaffDirector, false).
		Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestDetachSubjectFreesTheLinkSlot(t *testing.T) {
	db := newTestDB(t)

	first := createCourse(t, db, "First", academyModels.KindProgram, academyModels.StatusDraft)
	second := createCourse(t, db, "Second", academyModels.KindProgram, academyModels.StatusDraft)
	subject := createCourse(t, db, "Subject", academyModels.KindSubject, academyModels.StatusDraft)

	_, err := AttachSubject(db, first.ID, subject.ID, 10, false)
	require.NoError(t, err)
	require.NoError(t, DetachSubject(db, first.ID, subject.ID))

	// Detaching again is a no-op
	require.NoError(t, DetachSubject(db, first.ID, subject.ID))

	var reloaded academyModels.Course
	require.NoError(t, db.First(&reloaded, subject.ID).Error)
	assert.Nil(t, reloaded.ParentProgramID)

	// The subject can now live in another program
	_, err = AttachSubject(db, second.ID, subject.ID, 10, false)
	require.NoError(t, err)
}

func TestValidateCourseWeightSum(t *testing.T) {
	db := newTestDB(t)

	course := createCourse(t, db, "Subject", academyModels.KindSubject, academyModels.StatusDraft)
	createItem(t, db, course.ID, academyModels.CategoryExam, true, 60)
	deliverable := createItem(t, db, course.ID, academyModels.CategoryDeliverable, true, 30)

	err := ValidateCourse(db, course)
	var structural *StructuralViolationError
	require.ErrorAs(t, err, &structural)

	require.NoError(t, db.Model(deliverable).Update("weight_percent", 40).Error)
	assert.NoError(t, ValidateCourse(db, course))
}

func TestValidateCourseIgnoresWeightsWithoutEvaluableContent(t *testing.T) {
	db := newTestDB(t)

	// A program's evaluable rows are subject links, which carry no weights
	program := createCourse(t, db, "Program", academyModels.KindProgram, academyModels.StatusDraft)
	subject := createCourse(t, db, "Subject", academyModels.KindSubject, academyModels.StatusDraft)
	_, err := AttachSubject(db, program.ID, subject.ID, 10, false)
	require.NoError(t, err)

	assert.NoError(t, ValidateCourse(db, program))
}

func TestContentItemShapeRules(t *testing.T) {
	db := newTestDB(t)

	program := createCourse(t, db, "Program", academyModels.KindProgram, academyModels.StatusDraft)
	subject := createCourse(t, db, "Subject", academyModels.KindSubject, academyModels.StatusDraft)

	var structural *StructuralViolationError

	// A program holds only sections and subject links
	err := ValidateContentItem(db, &academyModels.ContentItem{
		CourseID: program.ID,
		Category: academyModels.CategoryVideo,
	})
	require.ErrorAs(t, err, &structural)

	// Subject links exist only inside programs
	err = ValidateContentItem(db, &academyModels.ContentItem{
		CourseID:      subject.ID,
		Category:      academyModels.CategorySubjectLink,
		DurationHours: 5,
	})
	require.ErrorAs(t, err, &structural)

	// Passive content cannot be evaluable
	err = ValidateContentItem(db, &academyModels.ContentItem{
		CourseID:  subject.ID,
		Category:  academyModels.CategoryDocument,
		Evaluable: true,
	})
	require.ErrorAs(t, err, &structural)

	assert.NoError(t, ValidateContentItem(db, &academyModels.ContentItem{
		CourseID:      subject.ID,
		Category:      academyModels.CategoryExam,
		Evaluable:     true,
		WeightPercent: 100,
	}))
}
