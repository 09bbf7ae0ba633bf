package api

import (
	"errors"
	"log"

	"github.com/example/schedule-sync/domain/errs"
	"github.com/gofiber/fiber/v2"
)

// errorHandler renders every error returned by a handler or middleware.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(ErrorResponse{
			Error:   fiberKind(fe.Code),
			Message: fe.Message,
		})
	}

	kind := errs.KindOf(err)
	if kind == errs.KindInternal {
		// Log the actual error but don't expose it to the client
		log.Printf("[api] Internal error on %s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(errs.Status(kind)).JSON(ErrorResponse{
		Error:   string(kind),
		Message: errs.Message(err),
	})
}

func fiberKind(code int) string {
	switch code {
	case fiber.StatusNotFound:
		return string(errs.KindNotFound)
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return string(errs.KindBadRequest)
	case fiber.StatusTooManyRequests:
		return "rate_limited"
	default:
		return "server_error"
	}
}

func badRequest(message string) error {
	return errs.New(errs.KindBadRequest, message)
}
