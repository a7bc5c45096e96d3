package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type EnsureCustomerRequest struct {
	Email       string
	FirstName   string
	LastName    string
	Phone       string
	Street      string
	HouseNumber string
	ZipCode     string
	City        string
}

type Service interface {
	// EnsureByEmail returns the customer with the given email, creating it on
	// first use. The boolean reports whether a new customer was created.
	EnsureByEmail(ctx context.Context, req EnsureCustomerRequest) (Customer, bool, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	// WithDB binds the service to another store handle.
	WithDB(db *gorm.DB) Service
}

var (
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("customer_not_found")
)
