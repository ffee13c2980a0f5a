package academyController

import (
	"academy/academics"
	"academy/database"
	"academy/middleware"
	"academy/models"
	academyModels "academy/models/academy"
	"academy/utils"
	"time"

	"github.com/gofiber/fiber/v2"
)

func SubmitForReview(c *fiber.Ctx) error {
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

	if err := academics.SubmitForReview(database.Database.Db, courseId); err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course submitted for review.", nil)
}

func RejectCourse(c *fiber.Ctx) error {
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

	reqData, ok := c.Locals("validatedRejection").(*struct {
		Reason string `json:"reason"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	if err := academics.RejectCourse(db, courseId, reqData.Reason); err != nil {
		return respondDomainError(c, err)
	}

	notifyCourseRejected(courseId, reqData.Reason)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course rejected.", nil)
}

// notifyCourseRejected emails every director of the rejected course.
func notifyCourseRejected(courseId uint, reason string) {
	db := database.Database.Db

	var course academyModels.Course
	if err := db.Where("id = ?", courseId).First(&course).Error; err != nil {
		return
	}

	var staff []academyModels.CourseStaff
	db.Where("course_id = ? AND role = ? AND is_deleted = ?", courseId, academyModels.StaffDirector, false).
		Find(&staff)
	for _, s := range staff {
		var director models.User
		if err := db.Where("id = ?", s.UserID).First(&director).Error; err != nil {
			continue
		}
		utils.SendCourseRejectedEmail(director.Email, director.Name, course.Title, reason)
	}
}

func StartRemediation(c *fiber.Ctx) error {
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

	if err := academics.StartRemediation(database.Database.Db, courseId); err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Remediation started.", nil)
}

func SchedulePublication(c *fiber.Ctx) error {
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

	reqData, ok := c.Locals("validatedSchedule").(*struct {
		PublishAt time.Time `json:"publishAt"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := academics.SchedulePublication(database.Database.Db, courseId, reqData.PublishAt); err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Publication scheduled.", nil)
}

func PublishCourse(c *fiber.Ctx) error {
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

	if err := academics.PublishCourse(db, courseId); err != nil {
		return respondDomainError(c, err)
	}

	notifyCoursePublished(courseId)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course published.", nil)
}

func notifyCoursePublished(courseId uint) {
	db := database.Database.Db

	var course academyModels.Course
	if err := db.Where("id = ?", courseId).First(&course).Error; err != nil {
		return
	}

	var staff []academyModels.CourseStaff
	db.Where("course_id = ? AND role = ? AND is_deleted = ?", courseId, academyModels.StaffDirector, false).
		Find(&staff)
	for _, s := range staff {
		var director models.User
		if err := db.Where("id = ?", s.UserID).First(&director).Error; err != nil {
			continue
		}
		utils.SendCoursePublishedEmail(director.Email, director.Name, course.Title)
	}
}

func FinalizeProgram(c *fiber.Ctx) error {
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

	if err := academics.FinalizeProgram(database.Database.Db, programId); err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Program finalized.", nil)
}

// RunDuePublications lets staff trigger the scheduled-publication sweep
// without waiting for the cron.
func RunDuePublications(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	caps := middleware.ActorCapabilities(userId, 0)
	if !caps.IsAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access Denied!", nil)
	}

	result := academics.RunDuePublications(database.Database.Db)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Due publications processed.", result)
}
