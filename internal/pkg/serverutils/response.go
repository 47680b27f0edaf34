package serverutils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// APIError is a typed error carrying an HTTP status, returned by services and
// translated by the error handler middleware.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(status int, message string) *APIError {
	return &APIError{StatusCode: status, Message: message}
}

func NotFoundError(message string) *APIError {
	return &APIError{StatusCode: fiber.StatusNotFound, Message: message}
}

func BadRequestError(message string) *APIError {
	return &APIError{StatusCode: fiber.StatusBadRequest, Message: message}
}

type Response struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) Response {
	return Response{Message: message, Data: data}
}

// ValidateRequest runs struct-tag validation on a request DTO and converts
// failures into a 400 APIError listing the offending fields.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		reason := ""
		for _, fe := range verrs {
			reason += fmt.Sprintf("%s: failed on '%s'; ", fe.Field(), fe.Tag())
		}
		return BadRequestError(reason)
	}
	return BadRequestError("invalid request body")
}

// ErrorHandlerMiddleware converts errors bubbling out of handlers into JSON
// responses. Unknown errors become generic 500s so internals never leak.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return ctx.Status(apiErr.StatusCode).JSON(Response{Message: apiErr.Message})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(Response{Message: fiberErr.Message})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(Response{
			Message: "Internal server error",
		})
	}
}
