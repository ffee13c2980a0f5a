package academics

import (
	academyModels "academy/models/academy"
	"fmt"
	"math"

	"gorm.io/gorm"
)

// evaluableCategories are the only content categories that may carry the
// evaluable flag.
var evaluableCategories = map[string]bool{
	academyModels.CategoryExam:             true,
	academyModels.CategoryDeliverable:      true,
	academyModels.CategorySubjectLink:      true,
	academyModels.CategoryCredentialMarker: true,
}

// AttachSubject links a subject into a program by creating the program-side
// subject-link content item carrying the subject's canonical duration. When
// cascade is true the program's current students are enrolled into the subject.
func AttachSubject(db *gorm.DB, programID, subjectID uint, durationHours float64, cascade bool) (*academyModels.ContentItem, error) {
	var program, subject academyModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", programID, false).First(&program).Error; err != nil {
		return nil, &StructuralViolationError{Reason: "program not found"}
	}
	if err := db.Where("id = ? AND is_deleted = ?", subjectID, false).First(&subject).Error; err != nil {
		return nil, &StructuralViolationError{Reason: "subject not found"}
	}

	if program.Kind != academyModels.KindProgram {
		return nil, &StructuralViolationError{Reason: "only a program can contain subjects"}
	}
	if subject.Kind != academyModels.KindSubject {
		return nil, &StructuralViolationError{Reason: "only a subject can be linked into a program"}
	}
	if durationHours <= 0 {
		return nil, &StructuralViolationError{Reason: "subject duration must be greater than 0 hours"}
	}

	// A subject may be linked into at most one program.
	var existing academyModels.ContentItem
	if err := db.Where("linked_subject_id = ? AND is_deleted = ?", subjectID, false).First(&existing).Error; err == nil {
		if existing.CourseID == programID {
			return &existing, nil // already linked here, idempotent
		}
		return nil, &StructuralViolationError{Reason: "subject is already linked into another program"}
	}

	link := academyModels.ContentItem{
		CourseID:        programID,
		Title:           subject.Title,
		Category:        academyModels.CategorySubjectLink,
		Evaluable:       true,
		DurationHours:   durationHours,
		LinkedSubjectID: &subjectID,
		IsPublished:     true,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&link).Error; err != nil {
			return err
		}

		// Bidirectional sync: the subject records its parent program.
		subject.ParentProgramID = &programID
		if err := tx.Model(&subject).Update("parent_program_id", programID).Error; err != nil {
			return err
		}

		// A subject with no director of its own inherits the program's directors.
		var directorCount int64
		tx.Model(&academyModels.CourseStaff{}).
			Where("course_id = ? AND role = ? AND is_deleted = ?", subjectID, academyModels.StaffDirector, false).
			Count(&directorCount)
		if directorCount == 0 {
			var programDirectors []academyModels.CourseStaff
			tx.Where("course_id = ? AND role = ? AND is_deleted = ?", programID, academyModels.StaffDirector, false).
				Find(&programDirectors)
			for _, d := range programDirectors {
				inherited := academyModels.CourseStaff{
					CourseID: subjectID,
					UserID:   d.UserID,
					Role:     academyModels.StaffDirector,
				}
				if err := tx.Create(&inherited).Error; err != nil {
					return err
				}
			}
		}

		if err := recomputeProgramDuration(tx, programID); err != nil {
			return err
		}

		if cascade {
			// Program students follow the new subject.
			studentIDs, err := activeStudentIDs(tx, programID)
			if err != nil {
				return err
			}
			if len(studentIDs) > 0 {
				if _, err := enrollTx(tx, subjectID, studentIDs); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// DetachSubject clears the program-side link of a subject. It is idempotent:
// detaching a subject that is not linked is a no-op. Enrollment history in the
// subject is retained.
func DetachSubject(db *gorm.DB, programID, subjectID uint) error {
	var link academyModels.ContentItem
	err := db.Where("course_id = ? AND linked_subject_id = ? AND is_deleted = ?", programID, subjectID, false).
		First(&link).Error
	if err != nil {
		return nil // not linked, nothing to do
	}

	return db.Transaction(func(tx *gorm.DB) error {
		// Free the unique link slot so the subject can be attached elsewhere.
		if err := tx.Model(&link).Updates(map[string]interface{}{
			"is_deleted":        true,
			"linked_subject_id": nil,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&academyModels.Course{}).
			Where("id = ? AND parent_program_id = ?", subjectID, programID).
			Update("parent_program_id", nil).Error; err != nil {
			return err
		}
		return recomputeProgramDuration(tx, programID)
	})
}

// ValidateCourse checks the structural invariants of a course and its content.
// It is run synchronously on every structural mutation and before a course may
// leave DRAFT.
func ValidateCourse(db *gorm.DB, course *academyModels.Course) error {
	var items []academyModels.ContentItem
	if err := db.Where("course_id = ? AND is_deleted = ?", course.ID, false).Find(&items).Error; err != nil {
		return err
	}

	weightSum := 0.0
	hasWeighted := false
	for i := range items {
		if err := checkItemShape(course, &items[i]); err != nil {
			return err
		}
		if items[i].Evaluable && items[i].Category != academyModels.CategorySubjectLink {
			weightSum += items[i].WeightPercent
			hasWeighted = true
		}
	}

	// Weights over evaluable content must total 100 before the course leaves draft.
	if hasWeighted && math.Abs(weightSum-100.0) > 0.01 {
		return &StructuralViolationError{
			Reason: fmt.Sprintf("evaluable content weights total %.2f%%, must be 100%%", weightSum),
		}
	}
	return nil
}

// ValidateContentItem checks one content row against its owning course before
// it is created or updated.
func ValidateContentItem(db *gorm.DB, item *academyModels.ContentItem) error {
	var course academyModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", item.CourseID, false).First(&course).Error; err != nil {
		return &StructuralViolationError{Reason: "owning course not found"}
	}
	return checkItemShape(&course, item)
}

func checkItemShape(course *academyModels.Course, item *academyModels.ContentItem) error {
	switch course.Kind {
	case academyModels.KindProgram:
		if item.Category != academyModels.CategorySection && item.Category != academyModels.CategorySubjectLink {
			return &StructuralViolationError{Reason: "a program may only contain sections and subject links"}
		}
	default:
		if item.Category == academyModels.CategorySubjectLink {
			return &StructuralViolationError{Reason: "only programs may contain subject links"}
		}
	}

	if item.Evaluable && !evaluableCategories[item.Category] {
		return &StructuralViolationError{
			Reason: fmt.Sprintf("content of category %s cannot be evaluable", item.Category),
		}
	}
	if item.WeightPercent < 0 || item.WeightPercent > 100 {
		return &StructuralViolationError{Reason: "weight percent must be between 0 and 100"}
	}
	if item.Category == academyModels.CategorySubjectLink && item.DurationHours <= 0 {
		return &StructuralViolationError{Reason: "a subject link must carry a duration greater than 0 hours"}
	}
	return nil
}

// recomputeProgramDuration keeps the program's derived duration in sync with
// the sum of its subject-link durations.
func recomputeProgramDuration(tx *gorm.DB, programID uint) error {
	var total float64
	row := tx.Model(&academyModels.ContentItem{}).
		Where("course_id = ? AND category = ? AND is_deleted = ?", programID, academyModels.CategorySubjectLink, false).
		Select("COALESCE(SUM(duration_hours), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return err
	}
	return tx.Model(&academyModels.Course{}).Where("id = ?", programID).
		Update("duration_hours", total).Error
}

// linkedSubjectItems returns the live subject-link rows of a program.
func linkedSubjectItems(db *gorm.DB, programID uint) ([]academyModels.ContentItem, error) {
	var links []academyModels.ContentItem
	err := db.Where("course_id = ? AND category = ? AND linked_subject_id IS NOT NULL AND is_deleted = ?",
		programID, academyModels.CategorySubjectLink, false).
		Order("order_index asc").
		Find(&links).Error
	return links, err
}
