// Package response provides helpers for consistent API responses.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kyiku/planet-jigsaw-back/internal/model"
)

// Error codes that have no sentinel in the puzzle core.
const (
	CodeInvalidSession = "INVALID_SESSION"
	CodeInvalidRequest = "INVALID_REQUEST"
)

// Success sends a successful JSON response with the given data.
// The response will always include "error": false.
func Success(c echo.Context, data map[string]interface{}) error {
	resp := make(map[string]interface{})
	resp["error"] = false

	// Merge additional data
	for k, v := range data {
		resp[k] = v
	}

	return c.JSON(http.StatusOK, resp)
}

// Error sends an error JSON response with the given status code and message.
func Error(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, map[string]interface{}{
		"error":   true,
		"message": message,
	})
}

// ErrorWithCode sends an error response with a specific error code.
// This is useful for clients that need to handle specific error types.
func ErrorWithCode(c echo.Context, statusCode int, code string, message string) error {
	return c.JSON(statusCode, map[string]interface{}{
		"error":   true,
		"code":    code,
		"message": message,
	})
}

// statusByCode maps core error codes to HTTP status codes.
var statusByCode = map[string]int{
	model.CodeInvalidParameter:  http.StatusBadRequest,
	model.CodeInvalidGridArity:  http.StatusBadRequest,
	model.CodeUnknownPiece:      http.StatusNotFound,
	model.CodeNoActiveRound:     http.StatusConflict,
	model.CodeAllRoundsComplete: http.StatusConflict,
	model.CodePieceBusy:         http.StatusConflict,
	model.CodeInvalidTransition: http.StatusConflict,
}

// FromError sends an error response for a core error.
// Unrecognized errors become 500 without leaking the error text.
func FromError(c echo.Context, err error) error {
	code := model.ErrorCode(err)

	status, ok := statusByCode[code]
	if !ok {
		c.Logger().Errorf("internal error: %v", err)
		return ErrorWithCode(c, http.StatusInternalServerError, code, "内部エラーが発生しました")
	}
	return ErrorWithCode(c, status, code, err.Error())
}
