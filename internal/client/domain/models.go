package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PriceUpdateFrequency bounds how often a recurring item participates in a
// mass price revision.
type PriceUpdateFrequency string

const (
	FrequencyMonthly    PriceUpdateFrequency = "MONTHLY"
	FrequencyQuarterly  PriceUpdateFrequency = "QUARTERLY"
	FrequencySemiannual PriceUpdateFrequency = "SEMIANNUAL"
	FrequencyYearly     PriceUpdateFrequency = "YEARLY"
)

// ValidFrequency reports whether value names a known revision frequency.
func ValidFrequency(value PriceUpdateFrequency) bool {
	switch value {
	case FrequencyMonthly, FrequencyQuarterly, FrequencySemiannual, FrequencyYearly:
		return true
	}
	return false
}

// Client is a billable customer of a tenant.
type Client struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	TenantID  snowflake.ID `gorm:"not null;index"`
	Name      string       `gorm:"type:text;not null"`
	CUIT      *string      `gorm:"type:varchar(20)"`
	Email     *string      `gorm:"type:text"`
	Address   *string      `gorm:"type:text"`
	// No column default: gorm must write false explicitly or a
	// deactivated client silently reverts to active on insert.
	Active    bool         `gorm:"not null"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Client) TableName() string { return "clients" }

// ClientEquipment is a recurring billable line item (an "abono"): one
// elevator, one maintenance plan, one monthly price.
type ClientEquipment struct {
	ID                    snowflake.ID         `gorm:"primaryKey"`
	TenantID              snowflake.ID         `gorm:"not null;index"`
	ClientID              snowflake.ID         `gorm:"not null;index"`
	Type                  string               `gorm:"type:text;not null"`
	Quantity              int                  `gorm:"not null;default:1"`
	Price                 decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	ExcludeFromMassUpdate bool                 `gorm:"not null;default:false"`
	PriceUpdateFrequency  PriceUpdateFrequency `gorm:"type:text;not null;default:'MONTHLY'"`
	LastPriceUpdate       *time.Time
	CreatedAt             time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt             time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (ClientEquipment) TableName() string { return "client_equipments" }

var (
	ErrInvalidClient  = errors.New("invalid_client")
	ErrClientNotFound = errors.New("client_not_found")
)
