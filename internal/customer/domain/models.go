package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Customer struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Email       string       `gorm:"not null;index" json:"email"`
	FirstName   string       `gorm:"not null" json:"first_name"`
	LastName    string       `gorm:"not null" json:"last_name"`
	Phone       string       `json:"phone,omitempty"`
	Street      string       `json:"street,omitempty"`
	HouseNumber string       `json:"house_number,omitempty"`
	ZipCode     string       `json:"zip_code,omitempty"`
	City        string       `json:"city,omitempty"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}
