package academyValidator

import (
	"academy/middleware"

	"github.com/gofiber/fiber/v2"
)

// Enrollment validator middleware for bulk enroll and unenroll
func Enrollment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			StudentIDs []uint `json:"studentIds"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if len(reqData.StudentIDs) == 0 {
			errors["studentIds"] = "At least one student id is required!"
		}
		for _, id := range reqData.StudentIDs {
			if id == 0 {
				errors["studentIds"] = "Student ids must be positive!"
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedEnrollment", reqData)
		return c.Next()
	}
}

// Score validator middleware for evaluation, exam completion and manual grades
func Score() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Score float64 `json:"score"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Score < 0 || reqData.Score > 10 {
			errors["score"] = "Score must be between 0 and 10!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedScore", reqData)
		return c.Next()
	}
}
