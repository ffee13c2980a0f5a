package academyValidator

import (
	"strings"
	"time"

	"academy/middleware"
	academyModels "academy/models/academy"

	"github.com/gofiber/fiber/v2"
)

func isValidKind(kind string) bool {
	switch kind {
	case academyModels.KindProgram, academyModels.KindSubject, academyModels.KindMicroCredential:
		return true
	}
	return false
}

func isValidPolicy(policy string) bool {
	switch policy {
	case "", academyModels.PolicyAutomatic, academyModels.PolicyManual:
		return true
	}
	return false
}

// CreateCourse validator middleware
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
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
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Validate Title
		if len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		// Validate Kind
		if !isValidKind(reqData.Kind) {
			errors["kind"] = "Kind must be PROGRAM, SUBJECT or MICRO_CREDENTIAL!"
		}

		// Validate Credential Policy
		if !isValidPolicy(reqData.CredentialPolicy) {
			errors["credentialPolicy"] = "Credential policy must be AUTOMATIC or MANUAL!"
		}

		if reqData.DurationHours < 0 {
			errors["durationHours"] = "Duration cannot be negative!"
		}

		if reqData.IsPaid && reqData.Price <= 0 {
			errors["price"] = "Paid course requires a positive price!"
		}

		if reqData.UploadLimitMB != nil && *reqData.UploadLimitMB < 0 {
			errors["uploadLimitMb"] = "Upload limit cannot be negative!"
		}

		// Respond with errors if any exist
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// UpdateCourse validator middleware
func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
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
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Title != nil && len(strings.TrimSpace(*reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		if reqData.CredentialPolicy != nil && !isValidPolicy(*reqData.CredentialPolicy) {
			errors["credentialPolicy"] = "Credential policy must be AUTOMATIC or MANUAL!"
		}

		if reqData.DurationHours != nil && *reqData.DurationHours < 0 {
			errors["durationHours"] = "Duration cannot be negative!"
		}

		if reqData.Price != nil && *reqData.Price < 0 {
			errors["price"] = "Price cannot be negative!"
		}

		if reqData.UploadLimitMB != nil && *reqData.UploadLimitMB < 0 {
			errors["uploadLimitMb"] = "Upload limit cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

// AssignStaff validator middleware
func AssignStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			UserID uint   `json:"userId"`
			Role   string `json:"role"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.UserID == 0 {
			errors["userId"] = "User id is required!"
		}

		if reqData.Role != academyModels.StaffDirector && reqData.Role != academyModels.StaffTeacher {
			errors["role"] = "Role must be DIRECTOR or TEACHER!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedStaff", reqData)
		return c.Next()
	}
}

// AttachSubject validator middleware
func AttachSubject() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			SubjectID     uint    `json:"subjectId"`
			DurationHours float64 `json:"durationHours"`
			Cascade       bool    `json:"cascade"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.SubjectID == 0 {
			errors["subjectId"] = "Subject id is required!"
		}

		if reqData.DurationHours <= 0 {
			errors["durationHours"] = "Duration must be greater than 0!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAttach", reqData)
		return c.Next()
	}
}

// ReassignSubject validator middleware
func ReassignSubject() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ProgramID     uint    `json:"programId"`
			DurationHours float64 `json:"durationHours"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.ProgramID == 0 {
			errors["programId"] = "Program id is required!"
		}

		if reqData.DurationHours <= 0 {
			errors["durationHours"] = "Duration must be greater than 0!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedReassign", reqData)
		return c.Next()
	}
}

// Rejection validator middleware
func Rejection() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Reason string `json:"reason"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if len(strings.TrimSpace(reqData.Reason)) == 0 {
			errors["reason"] = "Rejection reason is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedRejection", reqData)
		return c.Next()
	}
}

// Schedule validator middleware
func Schedule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			PublishAt time.Time `json:"publishAt"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.PublishAt.IsZero() {
			errors["publishAt"] = "Publish time is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSchedule", reqData)
		return c.Next()
	}
}

// Pagination validator middleware
func Pagination() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
		}

		// Default to the first page when nothing is asked for
		if reqData.Page == nil {
			page := 1
			reqData.Page = &page
		}
		if reqData.Limit == nil {
			limit := 20
			reqData.Limit = &limit
		}

		errors := make(map[string]string)

		if *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}

		if *reqData.Limit < 1 {
			errors["limit"] = "Limit must be greater than 0!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPagination", reqData)
		return c.Next()
	}
}
