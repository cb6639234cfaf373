package employee

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Employee carries the baseline compensation snapshot alongside the HR
// profile. The comp_* columns mirror the active compensation period and are
// rewritten by the compensation module whenever the ledger changes.
type Employee struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID  `gorm:"type:uuid;not null;index"`
	FullName  string     `gorm:"type:varchar(255);not null"`
	Email     string     `gorm:"type:varchar(255);uniqueIndex:uq_employee_email"`
	Phone     string     `gorm:"type:varchar(50)"`
	JoinDate  *time.Time `gorm:"type:date"`

	CompBasic   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	CompHousing decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	CompVehicle decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	CompFuel    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	CompOther   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	CompTotal   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`

	// Bumped on every ledger rewrite, used for optimistic locking.
	CompensationVersion int64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
