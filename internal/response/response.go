package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the uniform body returned by every JSON endpoint. Clients
// branch on IsSuccess rather than the HTTP status code alone.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	IsSuccess  bool   `json:"isSuccess"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
}

func Data(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, Envelope{
		StatusCode: code,
		IsSuccess:  code < http.StatusBadRequest,
		Message:    message,
		Data:       data,
	})
}

func Message(c echo.Context, code int, message string) error {
	return Data(c, code, message, nil)
}

// ErrorHandler serializes failures into the same envelope as successes,
// replacing echo's default {"message": ...} body. Install it as
// echo.HTTPErrorHandler.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			message = m
		case error:
			message = m.Error()
		default:
			message = fmt.Sprintf("%v", m)
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = Message(c, code, message)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

// Paged wraps a page of rows together with the pagination meta the product
// and location listings return.
type Paged struct {
	Items      any   `json:"items"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func NewPaged(items any, page, size int, total int64) Paged {
	return Paged{
		Items:      items,
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: (total + int64(size) - 1) / int64(size),
	}
}
