package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrUnknown          = errors.New("unknown error")

	ErrCompetitionEnded = errors.New("competition ended")
	ErrSoldOut          = errors.New("competition sold out")
	ErrTermsNotAccepted = errors.New("terms not accepted")
	ErrSubmitInFlight   = errors.New("purchase request already in flight")
)

// AuthRequiredError возвращается при попытке выполнить операцию, требующую аутентификации.
// RedirectTo хранит путь, на который нужно вернуть пользователя после входа.
type AuthRequiredError struct {
	RedirectTo string
}

func NewAuthRequiredError(redirectTo string) error {
	return &AuthRequiredError{RedirectTo: redirectTo}
}

func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf("authentication required, return to %s", e.RedirectTo)
}

func (e *AuthRequiredError) Unwrap() error {
	return ErrNotAuthenticated
}
