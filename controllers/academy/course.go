package academyController

import (
	"academy/academics"
	"academy/database"
	"academy/middleware"
	academyModels "academy/models/academy"

	"github.com/gofiber/fiber/v2"
)

func CreateCourse(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCourse").(*struct {
		Title              string  `json:"title"`
		Description        string  `json:"description"`
		Kind               string  `json:"kind"`
		DurationHours      float64 `json:"durationHours"`
		IssuesCredential   bool    `json:"issuesCredential"`
		CredentialPolicy   string  `json:"credentialPolicy"`
		CredentialTemplate string  `json:"credentialTemplate"`
		IsPaid             bool    `json:"isPaid"`
		Price              float64 `json:"price"`
		UploadLimitMB      *int    `json:"uploadLimitMb"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	course := academyModels.Course{
		Title:              reqData.Title,
		Description:        reqData.Description,
		Kind:               reqData.Kind,
		Status:             academyModels.StatusDraft,
		DurationHours:      reqData.DurationHours,
		IssuesCredential:   reqData.IssuesCredential,
		CredentialPolicy:   reqData.CredentialPolicy,
		CredentialTemplate: reqData.CredentialTemplate,
		IsPaid:             reqData.IsPaid,
		Price:              reqData.Price,
	}
	if course.CredentialPolicy == "" {
		course.CredentialPolicy = academyModels.PolicyAutomatic
	}
	if reqData.UploadLimitMB != nil {
		course.UploadLimitMB = *reqData.UploadLimitMB
	} else {
		course.UploadLimitMB = 10
	}

	if err := db.Create(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	// The creator becomes the course director
	staff := academyModels.CourseStaff{
		CourseID: course.ID,
		UserID:   userId,
		Role:     academyModels.StaffDirector,
	}
	if err := db.Create(&staff).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to assign course director!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully.", course)
}

func UpdateCourse(c *fiber.Ctx) error {
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

	reqData, ok := c.Locals("validatedCourseUpdate").(*struct {
		Title              *string  `json:"title"`
		Description        *string  `json:"description"`
		DurationHours      *float64 `json:"durationHours"`
		IssuesCredential   *bool    `json:"issuesCredential"`
		CredentialPolicy   *string  `json:"credentialPolicy"`
		CredentialTemplate *string  `json:"credentialTemplate"`
		IsPaid             *bool    `json:"isPaid"`
		Price              *float64 `json:"price"`
		UploadLimitMB      *int     `json:"uploadLimitMb"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var course academyModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseId, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	updates := map[string]interface{}{}
	if reqData.Title != nil {
		updates["title"] = *reqData.Title
	}
	if reqData.Description != nil {
		updates["description"] = *reqData.Description
	}
	if reqData.DurationHours != nil {
		updates["duration_hours"] = *reqData.DurationHours
	}
	if reqData.IssuesCredential != nil {
		updates["issues_credential"] = *reqData.IssuesCredential
	}
	if reqData.CredentialPolicy != nil {
		updates["credential_policy"] = *reqData.CredentialPolicy
	}
	if reqData.CredentialTemplate != nil {
		updates["credential_template"] = *reqData.CredentialTemplate
	}
	if reqData.IsPaid != nil {
		updates["is_paid"] = *reqData.IsPaid
	}
	if reqData.Price != nil {
		updates["price"] = *reqData.Price
	}
	if reqData.UploadLimitMB != nil {
		updates["upload_limit_mb"] = *reqData.UploadLimitMB
	}

	if len(updates) > 0 {
		if err := db.Model(&course).Updates(updates).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully.", course)
}

func CourseList(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPagination").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	offset := (*reqData.Page - 1) * (*reqData.Limit)
	db := database.Database.Db

	query := db.Where("is_deleted = ?", false)
	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var courses []academyModels.Course
	var total int64

	if err := query.Offset(offset).Limit(*reqData.Limit).Order("id desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}
	query.Model(&academyModels.Course{}).Count(&total)

	response := map[string]interface{}{
		"courses": courses,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  *reqData.Page,
			"limit": *reqData.Limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course List.", response)
}

func CourseDetail(c *fiber.Ctx) error {
	courseId, ok := paramID(c, "courseId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	db := database.Database.Db

	var course academyModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseId, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var items []academyModels.ContentItem
	db.Where("course_id = ? AND is_deleted = ?", courseId, false).
		Order("order_index asc, id asc").Find(&items)

	var staff []academyModels.CourseStaff
	db.Where("course_id = ? AND is_deleted = ?", courseId, false).Find(&staff)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course Detail.", fiber.Map{
		"course":  course,
		"content": items,
		"staff":   staff,
	})
}

func DeleteCourse(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseId, ok := paramID(c, "courseId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	caps := middleware.ActorCapabilities(userId, courseId)
	if !caps.IsAdmin && !caps.IsDirector {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access Denied!", nil)
	}

	db := database.Database.Db

	var course academyModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseId, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	// A subject still embedded in a program must be detached first
	if course.Kind == academyModels.KindSubject && course.ParentProgramID != nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Detach the subject from its program first!", nil)
	}

	if err := db.Model(&course).Updates(map[string]interface{}{
		"is_deleted": true,
		"is_active":  false,
	}).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully.", nil)
}

func AssignStaff(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseId, ok := paramID(c, "courseId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	caps := middleware.ActorCapabilities(userId, courseId)
	if !caps.IsAdmin && !caps.IsDirector {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access Denied!", nil)
	}

	reqData, ok := c.Locals("validatedStaff").(*struct {
		UserID uint   `json:"userId"`
		Role   string `json:"role"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// Revive a soft-deleted assignment instead of duplicating it
	var existing academyModels.CourseStaff
	err := db.Where("course_id = ? AND user_id = ? AND role = ?", courseId, reqData.UserID, reqData.Role).
		First(&existing).Error
	if err == nil {
		if existing.IsDeleted {
			if err := db.Model(&existing).Update("is_deleted", false).Error; err != nil {
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to assign staff!", nil)
			}
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Staff assigned successfully.", existing)
	}

	staff := academyModels.CourseStaff{
		CourseID: courseId,
		UserID:   reqData.UserID,
		Role:     reqData.Role,
	}
	if err := db.Create(&staff).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to assign staff!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Staff assigned successfully.", staff)
}

func RemoveStaff(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseId, ok := paramID(c, "courseId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}
	staffUserId, ok := paramID(c, "userId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user id!", nil)
	}

	caps := middleware.ActorCapabilities(userId, courseId)
	if !caps.IsAdmin && !caps.IsDirector {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access Denied!", nil)
	}

	db := database.Database.Db

	result := db.Model(&academyModels.CourseStaff{}).
		Where("course_id = ? AND user_id = ? AND is_deleted = ?", courseId, staffUserId, false).
		Update("is_deleted", true)
	if result.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to remove staff!", nil)
	}
	if result.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Staff assignment not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Staff removed successfully.", nil)
}

func AttachSubject(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	programId, ok := paramID(c, "courseId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	caps := middleware.ActorCapabilities(userId, programId)
	if !caps.IsAdmin && !caps.IsDirector {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access Denied!", nil)
	}

	reqData, ok := c.Locals("validatedAttach").(*struct {
		SubjectID     uint    `json:"subjectId"`
		DurationHours float64 `json:"durationHours"`
		Cascade       bool    `json:"cascade"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	link, err := academics.AttachSubject(database.Database.Db, programId, reqData.SubjectID, reqData.DurationHours, reqData.Cascade)
	if err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Subject attached successfully.", link)
}

func DetachSubject(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	programId, ok := paramID(c, "courseId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}
	subjectId, ok := paramID(c, "subjectId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid subject id!", nil)
	}

	caps := middleware.ActorCapabilities(userId, programId)
	if !caps.IsAdmin && !caps.IsDirector {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access Denied!", nil)
	}

	if err := academics.DetachSubject(database.Database.Db, programId, subjectId); err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subject detached successfully.", nil)
}

func ReassignSubject(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	subjectId, ok := paramID(c, "subjectId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid subject id!", nil)
	}

	reqData, ok := c.Locals("validatedReassign").(*struct {
		ProgramID     uint    `json:"programId"`
		DurationHours float64 `json:"durationHours"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	caps := middleware.ActorCapabilities(userId, reqData.ProgramID)
	if !caps.IsAdmin && !caps.IsDirector {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access Denied!", nil)
	}

	if err := academics.ReassignSubjectProgram(database.Database.Db, subjectId, reqData.ProgramID, reqData.DurationHours); err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subject reassigned successfully.", nil)
}
