package academyController

import (
	"path/filepath"

	"academy/academics"
	"academy/config"
	"academy/database"
	"academy/middleware"
	academyModels "academy/models/academy"
	"academy/utils"

	"github.com/gofiber/fiber/v2"
)

// UploadDeliverable accepts a student's multipart submission for a
// deliverable item and moves the progress row to SUBMITTED.
func UploadDeliverable(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	progressId, ok := paramID(c, "progressId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid progress id!", nil)
	}

	db := database.Database.Db

	var progress academyModels.ContentProgress
	if err := db.Where("id = ? AND is_deleted = ?", progressId, false).First(&progress).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Progress row not found!", nil)
	}
	if progress.UserID != userId {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access Denied!", nil)
	}

	var item academyModels.ContentItem
	if err := db.Where("id = ?", progress.ContentItemID).First(&item).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content item not found!", nil)
	}
	if item.Category != academyModels.CategoryDeliverable {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "This content item does not accept uploads!", nil)
	}

	var course academyModels.Course
	if err := db.Where("id = ?", progress.CourseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Submission file is required!", nil)
	}

	limitMB := course.UploadLimitMB
	if limitMB == 0 {
		limitMB = config.AppConfig.DefaultUploadMB
	}

	destDir := filepath.Join(config.AppConfig.UploadDir, "submissions")
	path, err := utils.SaveSubmission(file, destDir, limitMB)
	if err != nil {
		return respondDomainError(c, err)
	}

	if err := academics.SubmitContent(db, progressId, path); err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission uploaded successfully.", fiber.Map{
		"submissionReference": utils.GetFileURL(path),
	})
}

// CompleteExam records an exam completion reported by the exam engine. The
// score arrives with the call and the row waits for teacher evaluation.
func CompleteExam(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	progressId, ok := paramID(c, "progressId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid progress id!", nil)
	}

	reqData, ok := c.Locals("validatedScore").(*struct {
		Score float64 `json:"score"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var progress academyModels.ContentProgress
	if err := db.Where("id = ? AND is_deleted = ?", progressId, false).First(&progress).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Progress row not found!", nil)
	}
	if progress.UserID != userId {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access Denied!", nil)
	}

	var item academyModels.ContentItem
	if err := db.Where("id = ?", progress.ContentItemID).First(&item).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content item not found!", nil)
	}
	if item.Category != academyModels.CategoryExam {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "This content item is not an exam!", nil)
	}

	if err := academics.RecordExamCompletion(db, progressId, reqData.Score); err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam completion recorded.", nil)
}

func EvaluateContent(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	progressId, ok := paramID(c, "progressId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid progress id!", nil)
	}

	db := database.Database.Db

	var progress academyModels.ContentProgress
	if err := db.Where("id = ? AND is_deleted = ?", progressId, false).First(&progress).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Progress row not found!", nil)
	}

	caps := middleware.ActorCapabilities(userId, progress.CourseID)
	if !caps.CanManage() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access Denied!", nil)
	}

	reqData, ok := c.Locals("validatedScore").(*struct {
		Score float64 `json:"score"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := academics.EvaluateContent(db, progressId, reqData.Score); err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content evaluated.", nil)
}

func ReopenContent(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	progressId, ok := paramID(c, "progressId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid progress id!", nil)
	}

	db := database.Database.Db

	var progress academyModels.ContentProgress
	if err := db.Where("id = ? AND is_deleted = ?", progressId, false).First(&progress).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Progress row not found!", nil)
	}

	caps := middleware.ActorCapabilities(userId, progress.CourseID)
	if !caps.CanManage() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access Denied!", nil)
	}

	if err := academics.ReopenContent(db, progressId); err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content reopened for evaluation.", nil)
}

func CloseRecord(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentId, ok := paramID(c, "enrollmentId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid enrollment id!", nil)
	}

	db := database.Database.Db

	var enrollment academyModels.Enrollment
	if err := db.Where("id = ? AND is_deleted = ?", enrollmentId, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	caps := middleware.ActorCapabilities(userId, enrollment.CourseID)
	if !caps.CanManage() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access Denied!", nil)
	}

	if err := academics.CloseRecord(db, enrollmentId); err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Record closed.", nil)
}

func RequestCertification(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentId, ok := paramID(c, "enrollmentId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid enrollment id!", nil)
	}

	db := database.Database.Db

	var enrollment academyModels.Enrollment
	if err := db.Where("id = ? AND is_deleted = ?", enrollmentId, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	caps := middleware.ActorCapabilities(userId, enrollment.CourseID)
	if !caps.CanManage() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access Denied!", nil)
	}

	if err := academics.RequestCertification(db, enrollmentId); err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certification requested.", nil)
}

func SetManualGrade(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentId, ok := paramID(c, "enrollmentId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid enrollment id!", nil)
	}

	db := database.Database.Db

	var enrollment academyModels.Enrollment
	if err := db.Where("id = ? AND is_deleted = ?", enrollmentId, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	caps := middleware.ActorCapabilities(userId, enrollment.CourseID)
	if !caps.IsAdmin && !caps.IsDirector {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access Denied!", nil)
	}

	reqData, ok := c.Locals("validatedScore").(*struct {
		Score float64 `json:"score"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := academics.SetManualGrade(db, enrollmentId, reqData.Score); err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Manual grade set.", nil)
}

func ClearManualOverride(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentId, ok := paramID(c, "enrollmentId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid enrollment id!", nil)
	}

	db := database.Database.Db

	var enrollment academyModels.Enrollment
	if err := db.Where("id = ? AND is_deleted = ?", enrollmentId, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	caps := middleware.ActorCapabilities(userId, enrollment.CourseID)
	if !caps.IsAdmin && !caps.IsDirector {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access Denied!", nil)
	}

	if err := academics.ClearManualOverride(db, enrollmentId); err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Manual override cleared.", nil)
}

// CourseGradebook lists every progress row of a course grouped per student.
func CourseGradebook(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseId, ok := paramID(c, "courseId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	caps := middleware.ActorCapabilities(userId, courseId)
	if !caps.CanManage() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access Denied!", nil)
	}

	db := database.Database.Db

	var enrollments []academyModels.Enrollment
	if err := db.Where("course_id = ? AND is_deleted = ?", courseId, false).
		Order("user_id asc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch gradebook!", nil)
	}

	// Backfill rows for content added after enrollment so the sheet is complete.
	for i := range enrollments {
		if err := academics.EnsureProgressRows(db, &enrollments[i]); err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch gradebook!", nil)
		}
	}

	var progress []academyModels.ContentProgress
	if err := db.Where("course_id = ? AND is_deleted = ?", courseId, false).
		Order("user_id asc, content_item_id asc").Find(&progress).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch gradebook!", nil)
	}

	progressByUser := make(map[uint][]academyModels.ContentProgress)
	for _, p := range progress {
		progressByUser[p.UserID] = append(progressByUser[p.UserID], p)
	}

	rows := make([]fiber.Map, 0, len(enrollments))
	for _, e := range enrollments {
		rows = append(rows, fiber.Map{
			"enrollment": e,
			"progress":   progressByUser[e.UserID],
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course Gradebook.", rows)
}

// MyGrades returns the student's own enrollments with their progress rows.
func MyGrades(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var enrollments []academyModels.Enrollment
	if err := db.Where("user_id = ? AND is_deleted = ?", userId, false).
		Order("course_id asc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch grades!", nil)
	}

	var progress []academyModels.ContentProgress
	if err := db.Where("user_id = ? AND is_deleted = ?", userId, false).
		Order("course_id asc, content_item_id asc").Find(&progress).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch grades!", nil)
	}

	progressByCourse := make(map[uint][]academyModels.ContentProgress)
	for _, p := range progress {
		progressByCourse[p.CourseID] = append(progressByCourse[p.CourseID], p)
	}

	rows := make([]fiber.Map, 0, len(enrollments))
	for _, e := range enrollments {
		rows = append(rows, fiber.Map{
			"enrollment": e,
			"progress":   progressByCourse[e.CourseID],
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "My Grades.", rows)
}
