package seojobapi

import (
	"errors"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/logx"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders errx errors as JSON. Fiber errors keep their status,
// anything else becomes a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	requestID := c.Get(fiber.HeaderXRequestID)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(errx.HTTPErrorResponse{
			Code:       "HTTP_ERROR",
			Message:    fe.Message,
			Type:       string(errx.TypeValidation),
			StatusCode: fe.Code,
			RequestID:  requestID,
		})
	}

	e := errx.FromError(err)
	entry := logx.WithFields(logx.Fields{
		"path":       c.Path(),
		"method":     c.Method(),
		"request_id": requestID,
		"code":       e.Code,
	})
	if e.HTTPStatus >= fiber.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.Debug(e.Message)
	}

	resp := e.ToHTTPResponse()
	resp.RequestID = requestID
	return c.Status(e.HTTPStatus).JSON(resp)
}
