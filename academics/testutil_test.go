package academics

import (
	"fmt"
	"testing"

	"academy/database"
	"academy/models"
	academyModels "academy/models/academy"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.RunMigrations(db)
	return db
}

func createUser(t *testing.T, db *gorm.DB, name, role string) *models.User {
	t.Helper()
	user := models.User{
		Name:  name,
		Email: fmt.Sprintf("%s-%s@example.org", name, uuid.NewString()[:8]),
		Role:  role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createCourse(t *testing.T, db *gorm.DB, title, kind, status string) *academyModels.Course {
	t.Helper()
	course := academyModels.Course{
		Title:  title,
		Kind:   kind,
		Status: status,
	}
	require.NoError(t, db.Create(&course).Error)
	return &course
}

func addDirector(t *testing.T, db *gorm.DB, courseID, userID uint) {
	t.Helper()
	staff := academyModels.CourseStaff{
		CourseID: courseID,
		UserID:   userID,
		Role:     academyModels.StaffDirector,
	}
	require.NoError(t, db.Create(&staff).Error)
}

func createItem(t *testing.T, db *gorm.DB, courseID uint, category string, evaluable bool, weight float64) *academyModels.ContentItem {
	t.Helper()
	item := academyModels.ContentItem{
		CourseID:      courseID,
		Title:         fmt.Sprintf("%s item", category),
		Category:      category,
		Evaluable:     evaluable,
		WeightPercent: weight,
		IsPublished:   true,
	}
	require.NoError(t, db.Create(&item).Error)
	return &item
}

func getEnrollment(t *testing.T, db *gorm.DB, courseID, userID uint) *academyModels.Enrollment {
	t.Helper()
	var enrollment academyModels.Enrollment
	require.NoError(t, db.Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&enrollment).Error)
	return &enrollment
}

func getProgress(t *testing.T, db *gorm.DB, itemID, userID uint) *academyModels.ContentProgress {
	t.Helper()
	var progress academyModels.ContentProgress
	require.NoError(t, db.Where("content_item_id = ? AND user_id = ?", itemID, userID).
		First(&progress).Error)
	return &progress
}

// evaluateAll scores every progress row of a user in a course and confirms it.
func evaluateAll(t *testing.T, db *gorm.DB, courseID, userID uint, score float64) {
	t.Helper()
	var rows []academyModels.ContentProgress
	require.NoError(t, db.Where("course_id = ? AND user_id = ? AND is_deleted = ?",
		courseID, userID, false).Find(&rows).Error)
	require.NotEmpty(t, rows)
	for _, row := range rows {
		require.NoError(t, EvaluateContent(db, row.ID, score))
	}
}
