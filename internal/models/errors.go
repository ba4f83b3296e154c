package models

import "errors"

var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrAccountExists          = errors.New("account already exists")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidCode            = errors.New("invalid code")
	ErrCodeExpired            = errors.New("code expired")
	ErrAlreadyVerified        = errors.New("account already verified")
	ErrSubjectNotAllowed      = errors.New("subject is not in account subjects")
	ErrInvalidSignature       = errors.New("invalid payment signature")
	ErrOrderMismatch          = errors.New("payment does not match order")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidDuration        = errors.New("subscription duration must be positive")
	ErrSubscriptionInactive   = errors.New("subscription is not active")
	ErrSubscriptionNotExpired = errors.New("subscription has not expired")
)
