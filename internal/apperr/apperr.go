// Package apperr содержит классы ошибок, которые видит пользователь.
// Конкретные ошибки оборачивают их через fmt.Errorf("%w ...") и проверяются errors.Is.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrAuthentication = errors.New("authentication failed")
	ErrAuthorization  = errors.New("not authorized")
	ErrValidation     = errors.New("validation failed")
	ErrState          = errors.New("invalid state transition")
	ErrNotFound       = errors.New("not found")
)

// HTTPStatus сопоставляет ошибку HTTP-коду. Неизвестные ошибки: 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrState):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
