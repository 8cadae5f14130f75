package service

import (
	"errors"

	"pharmapos/internal/settings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrCustomerRequired   = errors.New("debt sales require a customer")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrFeatureUnavailable = errors.New("feature not available in local mode")
)

// SettingsReader is the slice of the settings store services depend on.
type SettingsReader interface {
	System() settings.System
	Pharmacy() settings.Pharmacy
}
