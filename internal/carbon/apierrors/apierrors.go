// Пакет содержит определения ошибок конвертера Carbon JSON → HTML и HTTP API поверх него.
// Каждая ошибка имеет код, статус HTTP, вид (kind) и описание, что позволяет вызывающему коду
// различать ошибки разбора JSON, ошибки структуры документа и сбои санитайзера.
//
// Основные возможности:
//   - Каталог ошибок конвертации (1***) и ошибок API (2***).
//   - Сравнение ошибок через errors.Is по коду, даже после форматирования сообщения.
//   - Определение вида ошибки (KindOf) для выбора кода выхода CLI или статуса HTTP.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind - вид ошибки конвертации.
type Kind string

const (
	KindParse     Kind = "parse_error"
	KindStructure Kind = "structure_error"
	KindSanitize  Kind = "sanitization_failure"
	KindAPI       Kind = "api_error"
)

type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Kind       Kind   `json:"kind"`
	Err        string `json:"error"`
}

func (e DefinedError) Error() string {
	return e.Err
}

// Is сравнивает ошибки по коду: отформатированная ошибка совпадает со своим шаблоном.
func (e DefinedError) Is(target error) bool {
	t, ok := target.(DefinedError)
	return ok && t.Code == e.Code
}

var (
	// 1*** - conversion errors
	ErrInvalidJSON      = DefinedError{Code: 1001, StatusCode: http.StatusBadRequest, Kind: KindParse, Err: "the JSON provided is not valid"}
	ErrNotCarbonFormat  = DefinedError{Code: 1002, StatusCode: http.StatusUnprocessableEntity, Kind: KindStructure, Err: "the JSON provided is not in a Carbon Editor format"}
	ErrUnknownComponent = DefinedError{Code: 1003, StatusCode: http.StatusUnprocessableEntity, Kind: KindStructure, Err: "the JSON contains the component '%s', but that isn't loaded"}
	ErrSanitizeFailed   = DefinedError{Code: 1004, StatusCode: http.StatusInternalServerError, Kind: KindSanitize, Err: "formatted text could not be parsed after sanitizing"}

	// 2*** - API errors
	ErrGeneric              = DefinedError{Code: 2000, StatusCode: http.StatusInternalServerError, Kind: KindAPI, Err: "internal server error"}
	ErrConvertRequestFormat = DefinedError{Code: 2001, StatusCode: http.StatusBadRequest, Kind: KindAPI, Err: "invalid convert request"}
	ErrEntityToLarge        = DefinedError{Code: 2002, StatusCode: http.StatusRequestEntityTooLarge, Kind: KindAPI, Err: "request entity too large"}
	ErrInvalidInsert        = DefinedError{Code: 2003, StatusCode: http.StatusBadRequest, Kind: KindAPI, Err: "custom insert for paragraph %s is not valid HTML"}
	ErrMinifyFailed         = DefinedError{Code: 2004, StatusCode: http.StatusInternalServerError, Kind: KindAPI, Err: "failed to minify rendered HTML"}
	ErrInvalidAPIToken      = DefinedError{Code: 2005, StatusCode: http.StatusUnauthorized, Kind: KindAPI, Err: "missing or invalid API token"}
	ErrTooManyRequests      = DefinedError{Code: 2006, StatusCode: http.StatusTooManyRequests, Kind: KindAPI, Err: "too many conversion requests, try later"}
)

// Catalog возвращает все определенные ошибки в порядке кодов.
func Catalog() []DefinedError {
	return []DefinedError{
		ErrInvalidJSON,
		ErrNotCarbonFormat,
		ErrUnknownComponent,
		ErrSanitizeFailed,
		ErrGeneric,
		ErrConvertRequestFormat,
		ErrEntityToLarge,
		ErrInvalidInsert,
		ErrMinifyFailed,
		ErrInvalidAPIToken,
		ErrTooManyRequests,
	}
}

func (e DefinedError) WithFormattedMessage(args ...interface{}) DefinedError {
	if len(args) > 0 {
		e.Err = fmt.Sprintf(e.Err, args...)
	} else {
		e.Err = strings.Replace(e.Err, "%s", "", -1)
	}
	return e
}

// KindOf возвращает вид первой DefinedError в цепочке err или пустую строку.
func KindOf(err error) Kind {
	var de DefinedError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
