package academyValidator

import (
	"strings"
	"time"

	"academy/middleware"
	academyModels "academy/models/academy"

	"github.com/gofiber/fiber/v2"
)

func isValidCategory(category string) bool {
	switch category {
	case academyModels.CategoryDocument, academyModels.CategoryVideo,
		academyModels.CategoryQuiz, academyModels.CategoryExam,
		academyModels.CategoryDeliverable, academyModels.CategoryCredentialMarker,
		academyModels.CategorySection:
		return true
	}
	// SUBJECT_LINK rows are created by attach only, never through content CRUD
	return false
}

// CreateContent validator middleware
func CreateContent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
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
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if len(strings.TrimSpace(reqData.Title)) == 0 {
			errors["title"] = "Title is required!"
		}

		if !isValidCategory(reqData.Category) {
			errors["category"] = "Invalid content category!"
		}

		if reqData.WeightPercent < 0 || reqData.WeightPercent > 100 {
			errors["weightPercent"] = "Weight must be between 0 and 100!"
		}

		if reqData.DurationHours < 0 {
			errors["durationHours"] = "Duration cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedContent", reqData)
		return c.Next()
	}
}

// UpdateContent validator middleware
func UpdateContent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title         *string    `json:"title"`
			Description   *string    `json:"description"`
			Evaluable     *bool      `json:"evaluable"`
			WeightPercent *float64   `json:"weightPercent"`
			DurationHours *float64   `json:"durationHours"`
			OrderIndex    *int       `json:"orderIndex"`
			IsPublished   *bool      `json:"isPublished"`
			ScheduledAt   *time.Time `json:"scheduledAt"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Title != nil && len(strings.TrimSpace(*reqData.Title)) == 0 {
			errors["title"] = "Title cannot be empty!"
		}

		if reqData.WeightPercent != nil && (*reqData.WeightPercent < 0 || *reqData.WeightPercent > 100) {
			errors["weightPercent"] = "Weight must be between 0 and 100!"
		}

		if reqData.DurationHours != nil && *reqData.DurationHours < 0 {
			errors["durationHours"] = "Duration cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedContentUpdate", reqData)
		return c.Next()
	}
}
