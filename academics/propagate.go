package academics

import (
	academyModels "academy/models/academy"

	"gorm.io/gorm"
)

// EnrollResult summarizes one propagation run.
type EnrollResult struct {
	Enrolled int `json:"enrolled"`
	Skipped  int `json:"skipped"` // already enrolled or excluded as course staff
}

// Enroll adds students to a course and cascades: enrollments are created
// idempotently, progress rows are materialized eagerly for evaluable content,
// and when the course is a program the same students are enrolled into every
// linked subject. The whole cascade runs in a single transaction.
func Enroll(db *gorm.DB, courseID uint, studentIDs []uint) (EnrollResult, error) {
	var result EnrollResult
	err := db.Transaction(func(tx *gorm.DB) error {
		r, err := enrollTx(tx, courseID, studentIDs)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	return result, err
}

// enrollTx performs the cascade inside an open transaction. Parents are
// written before children so a re-run can always complete missing rows.
func enrollTx(tx *gorm.DB, courseID uint, studentIDs []uint) (EnrollResult, error) {
	var result EnrollResult

	var course academyModels.Course
	if err := tx.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return result, &StructuralViolationError{Reason: "course not found"}
	}

	staff, err := staffUserIDs(tx, courseID)
	if err != nil {
		return result, err
	}

	for _, studentID := range studentIDs {
		// Course staff are never enrolled as students of their own course.
		if staff[studentID] {
			result.Skipped++
			continue
		}

		var enrollment academyModels.Enrollment
		err := tx.Where("user_id = ? AND course_id = ?", studentID, courseID).First(&enrollment).Error
		switch {
		case err == nil && !enrollment.IsDeleted:
			result.Skipped++ // re-adding an existing student is a no-op
		case err == nil && enrollment.IsDeleted:
			// Re-enrollment revives the historical row; past evaluations survive.
			if err := tx.Model(&enrollment).Update("is_deleted", false).Error; err != nil {
				return result, err
			}
			enrollment.IsDeleted = false
			result.Enrolled++
		default:
			enrollment = academyModels.Enrollment{
				UserID:      studentID,
				CourseID:    courseID,
				RecordState: academyModels.RecordPending,
			}
			if err := tx.Create(&enrollment).Error; err != nil {
				return result, err
			}
			result.Enrolled++
		}

		if err := ensureProgressRowsTx(tx, &enrollment); err != nil {
			return result, err
		}
	}

	// Cascade into linked subjects after the parent rows are committed to the tx.
	if course.Kind == academyModels.KindProgram {
		links, err := linkedSubjectItems(tx, courseID)
		if err != nil {
			return result, err
		}
		for _, link := range links {
			if _, err := enrollTx(tx, *link.LinkedSubjectID, studentIDs); err != nil {
				return result, err
			}
		}
	}
	return result, nil
}

// Unenroll removes students from a course and cascades into linked subjects.
// Enrollment rows are soft-deleted and progress history is retained, so a
// later re-enroll restores past evaluations.
func Unenroll(db *gorm.DB, courseID uint, studentIDs []uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return unenrollTx(tx, courseID, studentIDs)
	})
}

func unenrollTx(tx *gorm.DB, courseID uint, studentIDs []uint) error {
	var course academyModels.Course
	if err := tx.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return &StructuralViolationError{Reason: "course not found"}
	}

	if err := tx.Model(&academyModels.Enrollment{}).
		Where("course_id = ? AND user_id IN ? AND is_deleted = ?", courseID, studentIDs, false).
		Update("is_deleted", true).Error; err != nil {
		return err
	}

	if course.Kind == academyModels.KindProgram {
		links, err := linkedSubjectItems(tx, courseID)
		if err != nil {
			return err
		}
		for _, link := range links {
			if err := unenrollTx(tx, *link.LinkedSubjectID, studentIDs); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReassignSubjectProgram moves a subject from its current program to another.
// The roster is adjusted off a before/after diff of the parent link: students
// of the old program leave the subject, students of the new program join it.
func ReassignSubjectProgram(db *gorm.DB, subjectID, newProgramID uint, durationHours float64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var oldLink academyModels.ContentItem
		var oldProgramID uint
		if err := tx.Where("linked_subject_id = ? AND is_deleted = ?", subjectID, false).
			First(&oldLink).Error; err == nil {
			oldProgramID = oldLink.CourseID
		}

		if oldProgramID == newProgramID {
			return nil
		}

		var oldStudents, newStudents []uint
		var err error
		if oldProgramID != 0 {
			if oldStudents, err = activeStudentIDs(tx, oldProgramID); err != nil {
				return err
			}
			if err := DetachSubject(tx, oldProgramID, subjectID); err != nil {
				return err
			}
		}
		if newStudents, err = activeStudentIDs(tx, newProgramID); err != nil {
			return err
		}

		if _, err := AttachSubject(tx, newProgramID, subjectID, durationHours, false); err != nil {
			return err
		}

		// Diff the rosters rather than rebuilding from scratch.
		inNew := make(map[uint]bool, len(newStudents))
		for _, id := range newStudents {
			inNew[id] = true
		}
		var leaving []uint
		for _, id := range oldStudents {
			if !inNew[id] {
				leaving = append(leaving, id)
			}
		}
		if len(leaving) > 0 {
			if err := unenrollTx(tx, subjectID, leaving); err != nil {
				return err
			}
		}
		if len(newStudents) > 0 {
			if _, err := enrollTx(tx, subjectID, newStudents); err != nil {
				return err
			}
		}
		return nil
	})
}

// EnsureProgressRows creates any missing progress rows for the enrollment's
// evaluable content. Safe to re-run; used as a self-healing repair before
// gradebook reads.
func EnsureProgressRows(db *gorm.DB, enrollment *academyModels.Enrollment) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return ensureProgressRowsTx(tx, enrollment)
	})
}

func ensureProgressRowsTx(tx *gorm.DB, enrollment *academyModels.Enrollment) error {
	var items []academyModels.ContentItem
	if err := tx.Where("course_id = ? AND evaluable = ? AND is_deleted = ?",
		enrollment.CourseID, true, false).Find(&items).Error; err != nil {
		return err
	}

	for _, item := range items {
		if item.Category == academyModels.CategorySubjectLink {
			continue // subject grades live on the subject's own enrollment
		}
		var progress academyModels.ContentProgress
		err := tx.Where("content_item_id = ? AND user_id = ?", item.ID, enrollment.UserID).
			First(&progress).Error
		if err == nil {
			if progress.EnrollmentID == 0 {
				// Repair a row created before its enrollment existed.
				if err := tx.Model(&progress).Update("enrollment_id", enrollment.ID).Error; err != nil {
					return err
				}
			}
			continue
		}
		progress = academyModels.ContentProgress{
			ContentItemID:   item.ID,
			UserID:          enrollment.UserID,
			CourseID:        enrollment.CourseID,
			EnrollmentID:    enrollment.ID,
			EvaluationState: academyModels.EvalNotSubmitted,
		}
		if err := tx.Create(&progress).Error; err != nil {
			return err
		}
	}
	return nil
}

// MaterializeProgressForContent backfills progress rows for every active
// student of the course when a content item becomes evaluable.
func MaterializeProgressForContent(db *gorm.DB, item *academyModels.ContentItem) error {
	if !item.Evaluable || item.Category == academyModels.CategorySubjectLink {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var enrollments []academyModels.Enrollment
		if err := tx.Where("course_id = ? AND is_deleted = ?", item.CourseID, false).
			Find(&enrollments).Error; err != nil {
			return err
		}
		for i := range enrollments {
			var count int64
			tx.Model(&academyModels.ContentProgress{}).
				Where("content_item_id = ? AND user_id = ?", item.ID, enrollments[i].UserID).
				Count(&count)
			if count > 0 {
				continue
			}
			progress := academyModels.ContentProgress{
				ContentItemID:   item.ID,
				UserID:          enrollments[i].UserID,
				CourseID:        item.CourseID,
				EnrollmentID:    enrollments[i].ID,
				EvaluationState: academyModels.EvalNotSubmitted,
			}
			if err := tx.Create(&progress).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// activeStudentIDs lists the user ids with a live enrollment in a course.
func activeStudentIDs(tx *gorm.DB, courseID uint) ([]uint, error) {
	var ids []uint
	err := tx.Model(&academyModels.Enrollment{}).
		Where("course_id = ? AND is_deleted = ?", courseID, false).
		Pluck("user_id", &ids).Error
	return ids, err
}

// staffUserIDs returns the set of users assigned as staff on a course.
func staffUserIDs(tx *gorm.DB, courseID uint) (map[uint]bool, error) {
	var ids []uint
	if err := tx.Model(&academyModels.CourseStaff{}).
		Where("course_id = ? AND is_deleted = ?", courseID, false).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
