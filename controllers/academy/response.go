package academyController

import (
	"errors"

	"academy/academics"
	"academy/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// respondDomainError maps domain errors onto HTTP statuses. Anything
// unrecognized is reported as an internal error without leaking details.
func respondDomainError(c *fiber.Ctx, err error) error {
	var structural *academics.StructuralViolationError
	var precondition *academics.PublicationPreconditionError
	var locked *academics.RecordLockedError
	var incomplete *academics.IncompleteEvaluationError
	var tooLarge *academics.SizeExceededError
	var transition *academics.InvalidTransitionError
	var render *academics.RenderError

	switch {
	case errors.As(err, &structural):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, structural.Error(), nil)
	case errors.As(err, &precondition):
		return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, precondition.Error(), nil)
	case errors.As(err, &locked):
		return middleware.JsonResponse(c, fiber.StatusLocked, false, locked.Error(), nil)
	case errors.As(err, &incomplete):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, incomplete.Error(), nil)
	case errors.As(err, &tooLarge):
		return middleware.JsonResponse(c, fiber.StatusRequestEntityTooLarge, false, tooLarge.Error(), nil)
	case errors.As(err, &transition):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, transition.Error(), nil)
	case errors.As(err, &render):
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Credential rendering failed!", nil)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Record not found!", nil)
	case errors.Is(err, academics.ErrScoreOutOfRange):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	case errors.Is(err, academics.ErrScheduleInPast):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	}
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
}

// actorID pulls the authenticated user id set by the JWT middleware.
func actorID(c *fiber.Ctx) (uint, bool) {
	userId, ok := c.Locals("userId").(uint)
	return userId, ok
}

// paramID parses a positive numeric route parameter.
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
