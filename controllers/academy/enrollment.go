package academyController

import (
	"academy/academics"
	"academy/database"
	"academy/middleware"
	academyModels "academy/models/academy"

	"github.com/gofiber/fiber/v2"
)

func EnrollStudents(c *fiber.Ctx) error {
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

	reqData, ok := c.Locals("validatedEnrollment").(*struct {
		StudentIDs []uint `json:"studentIds"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	result, err := academics.Enroll(database.Database.Db, courseId, reqData.StudentIDs)
	if err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment processed.", result)
}

func UnenrollStudents(c *fiber.Ctx) error {
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

	reqData, ok := c.Locals("validatedEnrollment").(*struct {
		StudentIDs []uint `json:"studentIds"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := academics.Unenroll(database.Database.Db, courseId, reqData.StudentIDs); err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Unenrollment processed.", nil)
}

func CourseEnrollmentList(c *fiber.Ctx) error {
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

	reqData, ok := c.Locals("validatedPagination").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	offset := (*reqData.Page - 1) * (*reqData.Limit)
	db := database.Database.Db

	var enrollments []academyModels.Enrollment
	var total int64

	if err := db.Where("course_id = ? AND is_deleted = ?", courseId, false).
		Offset(offset).
		Limit(*reqData.Limit).
		Order("id asc").
		Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}
	db.Model(&academyModels.Enrollment{}).
		Where("course_id = ? AND is_deleted = ?", courseId, false).Count(&total)

	response := map[string]interface{}{
		"enrollments": enrollments,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  *reqData.Page,
			"limit": *reqData.Limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment List.", response)
}

func MyEnrollments(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var enrollments []academyModels.Enrollment
	if err := db.Where("user_id = ? AND is_deleted = ?", userId, false).
		Order("id asc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	courseIDs := make([]uint, 0, len(enrollments))
	for _, e := range enrollments {
		courseIDs = append(courseIDs, e.CourseID)
	}

	var courses []academyModels.Course
	if len(courseIDs) > 0 {
		db.Where("id IN ? AND is_deleted = ?", courseIDs, false).Find(&courses)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "My Enrollments.", fiber.Map{
		"enrollments": enrollments,
		"courses":     courses,
	})
}
