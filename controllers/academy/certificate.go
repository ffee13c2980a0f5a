package academyController

import (
	"academy/academics"
	"academy/config"
	"academy/database"
	"academy/middleware"
	academyModels "academy/models/academy"
	"academy/utils"

	"github.com/gofiber/fiber/v2"
)

// RunCertifications lets an admin trigger one certification batch without
// waiting for the cron.
func RunCertifications(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	caps := middleware.ActorCapabilities(userId, 0)
	if !caps.IsAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access Denied!", nil)
	}

	renderer := utils.NewRenderClient()
	result := academics.RunPendingCertifications(database.Database.Db, config.AppConfig.CertificationBatch, renderer)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certification batch processed.", result)
}

func RegenerateCredential(c *fiber.Ctx) error {
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

	if err := academics.RegenerateCredential(db, enrollmentId); err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Credential queued for regeneration.", nil)
}

func MyCredentials(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var credentials []academyModels.Credential
	if err := database.Database.Db.
		Where("user_id = ? AND revoked = ? AND is_deleted = ?", userId, false, false).
		Order("issued_at desc").
		Find(&credentials).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch credentials!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "My Credentials.", credentials)
}

// CourseCredentialList lists issued credentials of a course for staff.
func CourseCredentialList(c *fiber.Ctx) error {
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

	var credentials []academyModels.Credential
	if err := database.Database.Db.
		Where("course_id = ? AND is_deleted = ?", courseId, false).
		Order("issued_at desc").
		Find(&credentials).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch credentials!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course Credential List.", credentials)
}
