// Утилиты возврата ошибок HTTP API конвертера.
//
// Основные возможности:
//   - Единый формат JSON-ответа для ошибок (DefinedError).
//   - Логирование ошибок API вместе с методом, URL и местом вызова.
//   - Преобразование ошибок конвертации в ответ с соответствующим статусом.
package carbon

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime"

	"github.com/candybanana/carbon-json-to-html/internal/carbon/apierrors"
	stack_error "github.com/candybanana/carbon-json-to-html/internal/carbon/stack-error"
	"github.com/labstack/echo/v4"
)

// EError возвращает DefinedError из цепочки err, неизвестные ошибки логируются и скрываются за ErrGeneric.
func EError(c echo.Context, err error) error {
	var defined apierrors.DefinedError
	if errors.As(err, &defined) {
		return EErrorDefined(c, defined)
	}

	slog.Error("API error",
		"err", err,
		"method", c.Request().Method,
		"url", c.Request().URL,
		getCallerFile(),
	)
	return EErrorDefined(c, apierrors.ErrGeneric)
}

// Возврат ошибки <status> для ошибок, пришедших из echo
func EErrorMsgStatus(c echo.Context, err error, status int) error {
	if status == http.StatusRequestEntityTooLarge {
		return EErrorDefined(c, apierrors.ErrEntityToLarge)
	}

	if status != http.StatusNotFound {
		slog.Error("API error",
			"err", err,
			"method", c.Request().Method,
			slog.Int("status", status),
			"url", c.Request().URL,
			getCallerFile(),
		)
	}

	er := apierrors.ErrGeneric
	er.StatusCode = status
	if he, ok := err.(*echo.HTTPError); ok {
		er.Err = fmt.Sprint(he.Message)
	}
	return EErrorDefined(c, er)
}

// EConversionError логирует ошибку конвертации с контекстом документа и отвечает ее DefinedError.
func EConversionError(c echo.Context, err error) error {
	stack_error.LogError(c, err)
	return EError(c, err)
}

// EErrorDefined возвращает JSON-ответ с кодом статуса и сообщением об ошибке. Если код статуса не определен, используется 400 Bad Request.
func EErrorDefined(c echo.Context, err apierrors.DefinedError) error {
	// If unknown code use 400 Bad Request
	if http.StatusText(err.StatusCode) == "" {
		err.StatusCode = http.StatusBadRequest
	}
	return c.JSON(err.StatusCode, err)
}

func getCallerFile() slog.Attr {
	_, path, no, ok := runtime.Caller(2)
	if !ok {
		return slog.Attr{}
	}
	_, file := filepath.Split(path)
	return slog.String("caller", fmt.Sprintf("%s:%d", file, no))
}
