package academyController

import (
	"time"

	"academy/academics"
	"academy/database"
	"academy/middleware"
	academyModels "academy/models/academy"

	"github.com/gofiber/fiber/v2"
)

func CreateContentItem(c *fiber.Ctx) error {
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

	reqData, ok := c.Locals("validatedContent").(*struct {
		Title         string     `json:"title"`
		Description   string     `json:"description"`
		Category      string     `json:"category"`
		Evaluable     bool       `json:"evaluable"`
		WeightPercent float64    `json:"weightPercent"`
		DurationHours float64    `json:"durationHours"`
		OrderIndex    int        `json:"orderIndex"`
		IsPublished   bool       `json:"isPublished"`
		ScheduledAt   *time.Time `json:"scheduledAt"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var course academyModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseId, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	item := academyModels.ContentItem{
		CourseID:      courseId,
		Title:         reqData.Title,
		Description:   reqData.Description,
		Category:      reqData.Category,
		Evaluable:     reqData.Evaluable,
		WeightPercent: reqData.WeightPercent,
		DurationHours: reqData.DurationHours,
		OrderIndex:    reqData.OrderIndex,
		IsPublished:   reqData.IsPublished,
		ScheduledAt:   reqData.ScheduledAt,
	}

	if err := academics.ValidateContentItem(db, &item); err != nil {
		return respondDomainError(c, err)
	}

	if err := db.Create(&item).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create content item!", nil)
	}

	// Existing enrollments get their gradebook row right away
	if err := academics.MaterializeProgressForContent(db, &item); err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Content item created successfully.", item)
}

func UpdateContentItem(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	itemId, ok := paramID(c, "itemId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid item id!", nil)
	}

	db := database.Database.Db

	var item academyModels.ContentItem
	if err := db.Where("id = ? AND is_deleted = ?", itemId, false).First(&item).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content item not found!", nil)
	}

	caps := middleware.ActorCapabilities(userId, item.CourseID)
	if !caps.CanManage() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access Denied!", nil)
	}

	// Subject links are managed through attach and detach only
	if item.Category == academyModels.CategorySubjectLink {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Subject links cannot be edited directly!", nil)
	}

	reqData, ok := c.Locals("validatedContentUpdate").(*struct {
		Title         *string    `json:"title"`
		Description   *string    `json:"description"`
		Evaluable     *bool      `json:"evaluable"`
		WeightPercent *float64   `json:"weightPercent"`
		DurationHours *float64   `json:"durationHours"`
		OrderIndex    *int       `json:"orderIndex"`
		IsPublished   *bool      `json:"isPublished"`
		ScheduledAt   *time.Time `json:"scheduledAt"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	updated := item
	if reqData.Title != nil {
		updated.Title = *reqData.Title
	}
	if reqData.Description != nil {
		updated.Description = *reqData.Description
	}
	if reqData.Evaluable != nil {
		updated.Evaluable = *reqData.Evaluable
	}
	if reqData.WeightPercent != nil {
		updated.WeightPercent = *reqData.WeightPercent
	}
	if reqData.DurationHours != nil {
		updated.DurationHours = *reqData.DurationHours
	}
	if reqData.OrderIndex != nil {
		updated.OrderIndex = *reqData.OrderIndex
	}
	if reqData.IsPublished != nil {
		updated.IsPublished = *reqData.IsPublished
	}
	if reqData.ScheduledAt != nil {
		updated.ScheduledAt = reqData.ScheduledAt
	}

	if err := academics.ValidateContentItem(db, &updated); err != nil {
		return respondDomainError(c, err)
	}

	if err := db.Save(&updated).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update content item!", nil)
	}

	becameEvaluable := reqData.Evaluable != nil && *reqData.Evaluable && !item.Evaluable
	if becameEvaluable {
		if err := academics.MaterializeProgressForContent(db, &updated); err != nil {
			return respondDomainError(c, err)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content item updated successfully.", updated)
}

func ContentList(c *fiber.Ctx) error {
	courseId, ok := paramID(c, "courseId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	var items []academyModels.ContentItem
	if err := database.Database.Db.
		Where("course_id = ? AND is_deleted = ?", courseId, false).
		Order("order_index asc, id asc").
		Find(&items).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch content!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content List.", items)
}

func DeleteContentItem(c *fiber.Ctx) error {
	userId, ok := actorID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	itemId, ok := paramID(c, "itemId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid item id!", nil)
	}

	db := database.Database.Db

	var item academyModels.ContentItem
	if err := db.Where("id = ? AND is_deleted = ?", itemId, false).First(&item).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content item not found!", nil)
	}

	caps := middleware.ActorCapabilities(userId, item.CourseID)
	if !caps.CanManage() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access Denied!", nil)
	}

	if item.Category == academyModels.CategorySubjectLink {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Detach the subject instead of deleting its link!", nil)
	}

	if err := db.Model(&item).Update("is_deleted", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete content item!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content item deleted successfully.", nil)
}
