package errors

import "fmt"

var (
	// Relay / connection lifecycle
	ErrAuthenticationFailed = fmt.Errorf("authentication failed")
	ErrUnauthenticated      = fmt.Errorf("user not authenticated")
	ErrUnknownSender        = fmt.Errorf("sender has no live session")
	ErrMalformedFrame       = fmt.Errorf("malformed frame")

	// Accounts
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")

	// Applications
	ErrApplicationNotFound = fmt.Errorf("application not found")
	ErrAlreadyReviewed     = fmt.Errorf("application already reviewed")
	ErrNotApplicant        = fmt.Errorf("application belongs to another applicant")

	// Infrastructure
	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrEmptyWords  = fmt.Errorf("no words have been found")
)
