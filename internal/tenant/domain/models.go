package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// RegimeType describes the simplified-regime activity of a tenant. Service
// based tenants face a lower revenue ceiling than goods based ones.
type RegimeType string

const (
	RegimeTypeServices RegimeType = "services"
	RegimeTypeGoods    RegimeType = "goods"
)

// Tenant is the account that owns every other entity. All queries and
// mutations are scoped by its ID.
type Tenant struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	Name        string       `gorm:"type:text;not null"`
	CUIT        string       `gorm:"type:varchar(20);not null"`
	PointOfSale int          `gorm:"not null;default:1"`
	RegimeType  RegimeType   `gorm:"type:text;not null;default:'services'"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }

var (
	ErrInvalidTenant  = errors.New("invalid_tenant")
	ErrTenantNotFound = errors.New("tenant_not_found")
)
