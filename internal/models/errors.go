package models

import "errors"

// Стандартные ошибки приложения
var (
	// Common Resource/DB Errors
	ErrNotFound             = errors.New("resource not found")
	ErrActiveConfigNotFound = errors.New("active pricing config not found")
	ErrVersionConflict      = errors.New("pricing config version conflict")

	// Validation Errors
	ErrValidation         = errors.New("validation error")
	ErrUnknownVehicleType = errors.New("unknown vehicle type")

	// Token Errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// Authorization Errors
	ErrForbidden = errors.New("forbidden") // Authenticated, but lacks permission
)
