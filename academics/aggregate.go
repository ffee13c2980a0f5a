package academics

import (
	"academy/config"
	academyModels "academy/models/academy"
	"math"

	"gorm.io/gorm"
)

// ComputeGrade returns the student's grade for the enrollment's course in
// [0,10]. It never fails: absent contributing data yields 0.0.
func ComputeGrade(db *gorm.DB, enrollment *academyModels.Enrollment) float64 {
	var course academyModels.Course
	if err := db.Where("id = ?", enrollment.CourseID).First(&course).Error; err != nil {
		return 0.0
	}
	if course.Kind == academyModels.KindProgram {
		return computeProgramGrade(db, &course, enrollment.UserID)
	}
	return computeLeafGrade(db, &course, enrollment.UserID)
}

// computeLeafGrade grades a subject or micro-credential from its evaluable
// content. Declared weights apply once the course is published with weights
// totalling 100; before that a simple average avoids misreading partial data.
func computeLeafGrade(db *gorm.DB, course *academyModels.Course, userID uint) float64 {
	var items []academyModels.ContentItem
	if err := db.Where("course_id = ? AND evaluable = ? AND category <> ? AND is_deleted = ?",
		course.ID, true, academyModels.CategorySubjectLink, false).Find(&items).Error; err != nil {
		return 0.0
	}
	if len(items) == 0 {
		return 0.0
	}

	itemIDs := make([]uint, len(items))
	weightSum := 0.0
	for i := range items {
		itemIDs[i] = items[i].ID
		weightSum += items[i].WeightPercent
	}

	var rows []academyModels.ContentProgress
	if err := db.Where("content_item_id IN ? AND user_id = ? AND is_deleted = ?",
		itemIDs, userID, false).Find(&rows).Error; err != nil {
		return 0.0
	}
	scores := make(map[uint]float64, len(rows))
	for i := range rows {
		scores[rows[i].ContentItemID] = rows[i].Score
	}

	return leafGradeFromScores(course, items, weightSum, scores)
}

func leafGradeFromScores(course *academyModels.Course, items []academyModels.ContentItem, weightSum float64, scores map[uint]float64) float64 {
	published := course.Status == academyModels.StatusPublished || course.Status == academyModels.StatusFinished
	useWeights := published && math.Abs(weightSum-100.0) <= 0.01

	grade := 0.0
	if useWeights {
		for i := range items {
			grade += scores[items[i].ID] * items[i].WeightPercent / 100.0
		}
	} else {
		for i := range items {
			grade += scores[items[i].ID]
		}
		grade /= float64(len(items))
	}
	return clampGrade(grade)
}

// computeProgramGrade grades a program as the duration-weighted average of its
// linked subjects' final grades. A subject the student never enrolled in
// counts as 0 against the full denominator (strict completion), unless the
// legacy exclude-missing behavior is configured.
func computeProgramGrade(db *gorm.DB, program *academyModels.Course, userID uint) float64 {
	links, err := linkedSubjectItems(db, program.ID)
	if err != nil || len(links) == 0 {
		return 0.0
	}

	subjectIDs := make([]uint, len(links))
	for i := range links {
		subjectIDs[i] = *links[i].LinkedSubjectID
	}

	var subEnrollments []academyModels.Enrollment
	if err := db.Where("course_id IN ? AND user_id = ? AND is_deleted = ?",
		subjectIDs, userID, false).Find(&subEnrollments).Error; err != nil {
		return 0.0
	}
	grades := make(map[uint]float64, len(subEnrollments))
	for i := range subEnrollments {
		grades[subEnrollments[i].CourseID] = subEnrollments[i].FinalGrade
	}

	return programGradeFromMap(links, grades)
}

func programGradeFromMap(links []academyModels.ContentItem, grades map[uint]float64) float64 {
	excludeMissing := config.AppConfig != nil && config.AppConfig.GradeExcludeMissing

	totalHours := 0.0
	counted := 0
	for i := range links {
		if excludeMissing {
			if _, ok := grades[*links[i].LinkedSubjectID]; !ok {
				continue
			}
		}
		totalHours += links[i].DurationHours
		counted++
	}
	if counted == 0 {
		return 0.0
	}

	grade := 0.0
	if totalHours > 0 {
		for i := range links {
			subjectID := *links[i].LinkedSubjectID
			g, ok := grades[subjectID]
			if !ok && excludeMissing {
				continue
			}
			grade += g * links[i].DurationHours / totalHours
		}
	} else {
		// No durations recorded: plain arithmetic mean.
		for i := range links {
			g, ok := grades[*links[i].LinkedSubjectID]
			if !ok && excludeMissing {
				continue
			}
			grade += g
		}
		grade /= float64(counted)
	}
	return clampGrade(grade)
}

// RecomputeEnrollment refreshes the stored final grade of one enrollment and
// propagates upward into the student's program record, synchronously, in the
// fixed order content score -> subject grade -> program grade.
func RecomputeEnrollment(db *gorm.DB, enrollmentID uint) error {
	var enrollment academyModels.Enrollment
	if err := db.Where("id = ?", enrollmentID).First(&enrollment).Error; err != nil {
		return err
	}

	if !enrollment.ManualOverride && !enrollment.Locked() {
		grade := ComputeGrade(db, &enrollment)
		if err := db.Model(&enrollment).Update("final_grade", grade).Error; err != nil {
			return err
		}
	}
	return recomputeParentProgram(db, enrollment.CourseID, []uint{enrollment.UserID})
}

// recomputeParentProgram refreshes the program-level enrollments of the given
// students when the course is a subject linked into a program.
func recomputeParentProgram(db *gorm.DB, courseID uint, userIDs []uint) error {
	var course academyModels.Course
	if err := db.Where("id = ?", courseID).First(&course).Error; err != nil {
		return err
	}
	if course.Kind != academyModels.KindSubject || course.ParentProgramID == nil {
		return nil
	}
	return RecomputeProgramGrades(db, *course.ParentProgramID, userIDs)
}

// RecomputeCourseGrades refreshes every live enrollment of a course in one
// pass, then cascades upward. Sub-enrollments and progress rows are loaded
// with single queries into in-memory lookups, never per student.
func RecomputeCourseGrades(db *gorm.DB, courseID uint) error {
	var course academyModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return err
	}

	var enrollments []academyModels.Enrollment
	if err := db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Find(&enrollments).Error; err != nil {
		return err
	}
	if len(enrollments) == 0 {
		return nil
	}

	if course.Kind == academyModels.KindProgram {
		userIDs := make([]uint, len(enrollments))
		for i := range enrollments {
			userIDs[i] = enrollments[i].UserID
		}
		return RecomputeProgramGrades(db, courseID, userIDs)
	}

	var items []academyModels.ContentItem
	if err := db.Where("course_id = ? AND evaluable = ? AND category <> ? AND is_deleted = ?",
		courseID, true, academyModels.CategorySubjectLink, false).Find(&items).Error; err != nil {
		return err
	}
	weightSum := 0.0
	itemIDs := make([]uint, len(items))
	for i := range items {
		itemIDs[i] = items[i].ID
		weightSum += items[i].WeightPercent
	}

	// One pass over all progress rows of the course.
	scoresByUser := make(map[uint]map[uint]float64)
	if len(items) > 0 {
		var rows []academyModels.ContentProgress
		if err := db.Where("content_item_id IN ? AND is_deleted = ?", itemIDs, false).
			Find(&rows).Error; err != nil {
			return err
		}
		for i := range rows {
			m := scoresByUser[rows[i].UserID]
			if m == nil {
				m = make(map[uint]float64)
				scoresByUser[rows[i].UserID] = m
			}
			m[rows[i].ContentItemID] = rows[i].Score
		}
	}

	userIDs := make([]uint, 0, len(enrollments))
	for i := range enrollments {
		e := &enrollments[i]
		userIDs = append(userIDs, e.UserID)
		if e.ManualOverride || e.Locked() || len(items) == 0 {
			continue
		}
		grade := leafGradeFromScores(&course, items, weightSum, scoresByUser[e.UserID])
		if grade != e.FinalGrade {
			if err := db.Model(e).Update("final_grade", grade).Error; err != nil {
				return err
			}
		}
	}

	return recomputeParentProgram(db, courseID, userIDs)
}

// RecomputeProgramGrades refreshes the program enrollments of the given
// students, loading all relevant sub-enrollments in a single query and grading
// from an in-memory (student, subject) lookup.
func RecomputeProgramGrades(db *gorm.DB, programID uint, userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}

	links, err := linkedSubjectItems(db, programID)
	if err != nil {
		return err
	}

	var programEnrollments []academyModels.Enrollment
	if err := db.Where("course_id = ? AND user_id IN ? AND is_deleted = ?",
		programID, userIDs, false).Find(&programEnrollments).Error; err != nil {
		return err
	}
	if len(programEnrollments) == 0 {
		return nil
	}

	subjectIDs := make([]uint, len(links))
	for i := range links {
		subjectIDs[i] = *links[i].LinkedSubjectID
	}

	gradesByUser := make(map[uint]map[uint]float64)
	if len(subjectIDs) > 0 {
		var subEnrollments []academyModels.Enrollment
		if err := db.Where("course_id IN ? AND user_id IN ? AND is_deleted = ?",
			subjectIDs, userIDs, false).Find(&subEnrollments).Error; err != nil {
			return err
		}
		for i := range subEnrollments {
			m := gradesByUser[subEnrollments[i].UserID]
			if m == nil {
				m = make(map[uint]float64)
				gradesByUser[subEnrollments[i].UserID] = m
			}
			m[subEnrollments[i].CourseID] = subEnrollments[i].FinalGrade
		}
	}

	for i := range programEnrollments {
		e := &programEnrollments[i]
		if e.ManualOverride || e.Locked() {
			continue
		}
		grade := 0.0
		if len(links) > 0 {
			grade = programGradeFromMap(links, gradesByUser[e.UserID])
		}
		if grade != e.FinalGrade {
			if err := db.Model(e).Update("final_grade", grade).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func clampGrade(g float64) float64 {
	return math.Min(math.Max(g, 0.0), 10.0)
}
