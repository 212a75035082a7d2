package helper

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// FromError renders any error from a controller/service as the standard JSON error.
// Unexpected errors are logged with their detail and answered with a generic 500.
func FromError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return ValidationError(c, ve)
	}

	var ae *AppError
	if errors.As(err, &ae) {
		switch ae.Kind {
		case KindInvalidArgument:
			return jsonErrorWithCode(c, fiber.StatusBadRequest, ae.Message, string(KindInvalidArgument))
		case KindNotFound:
			return jsonErrorWithCode(c, fiber.StatusNotFound, ae.Message, string(KindNotFound))
		case KindConflict:
			return jsonErrorWithCode(c, fiber.StatusBadRequest, ae.Message, string(KindConflict))
		case KindStorage:
			log.Printf("[ERROR] %s %s storage: %v", c.Method(), c.OriginalURL(), err)
			return jsonErrorWithCode(c, fiber.StatusBadGateway, ae.Message, string(KindStorage))
		}
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return jsonErrorWithCode(c, fiber.StatusNotFound, "Not found", string(KindNotFound))
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return jsonErrorWithCode(c, fiber.StatusBadRequest, "Record already exists", string(KindConflict))
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return jsonErrorWithCode(c, fiber.StatusBadRequest, "Referenced record does not exist", string(KindInvalidArgument))
	}

	log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), err)
	return jsonErrorWithCode(c, fiber.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR")
}

// ValidationError: validator.v10 errors as a field → tag map
func ValidationError(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return JsonError(c, fiber.StatusBadRequest, "Invalid input")
	}
	fields := make(map[string]string, len(ve))
	for _, fieldErr := range ve {
		fields[fieldErr.Field()] = fieldErr.Tag()
	}
	return JsonValidationError(c, fields)
}

// FiberErrorHandler is the app-level fallback so errors returned from middleware
// keep the same envelope.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	return FromError(c, err)
}
