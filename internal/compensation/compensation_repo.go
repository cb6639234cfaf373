package compensation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// periodRecord is the persisted shape of one ledger entry. Position keeps
// insertion order (0 = newest) because display order is not chronological
// order.
type periodRecord struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID     uuid.UUID `gorm:"type:uuid;index"`
	CompanyID      uuid.UUID `gorm:"type:uuid;index"`
	Position       int
	Label          string
	EffectiveFrom  time.Time
	EffectiveTo    *time.Time
	Basic          decimal.Decimal `gorm:"type:numeric(14,2)"`
	Housing        decimal.Decimal `gorm:"type:numeric(14,2)"`
	Vehicle        decimal.Decimal `gorm:"type:numeric(14,2)"`
	Fuel           decimal.Decimal `gorm:"type:numeric(14,2)"`
	Other          decimal.Decimal `gorm:"type:numeric(14,2)"`
	Total          decimal.Decimal `gorm:"type:numeric(14,2)"`
	AttachmentName string
	AttachmentURL  string
	AttachmentMIME string
	AttachmentData []byte
	IsInitial      bool
	CreatedAt      time.Time
}

func (periodRecord) TableName() string { return "compensation_periods" }

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	LoadLedger(ctx context.Context, companyID, employeeID string) (Ledger, error)
	ReplaceLedger(ctx context.Context, led Ledger) error
	LoadEmployeeBaseline(ctx context.Context, companyID, employeeID string) (EmployeeBaseline, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

type ledgerHead struct {
	EmployeeID          uuid.UUID
	CompanyID           uuid.UUID
	CompensationVersion int64
	CompBasic           decimal.Decimal
	CompHousing         decimal.Decimal
	CompVehicle         decimal.Decimal
	CompFuel            decimal.Decimal
	CompOther           decimal.Decimal
	CompTotal           decimal.Decimal
}

func (r *repository) LoadLedger(ctx context.Context, companyID, employeeID string) (Ledger, error) {
	var head ledgerHead
	err := r.db.WithContext(ctx).Raw(`
SELECT
	id AS employee_id,
	company_id,
	compensation_version,
	comp_basic,
	comp_housing,
	comp_vehicle,
	comp_fuel,
	comp_other,
	comp_total
FROM employees
WHERE id = ? AND company_id = ?
`, employeeID, companyID).Scan(&head).Error
	if err != nil {
		return Ledger{}, err
	}
	if head.EmployeeID == uuid.Nil {
		return Ledger{}, gorm.ErrRecordNotFound
	}

	var records []periodRecord
	err = r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("company_id = ?", companyID).
		Order("position ASC").
		Find(&records).Error
	if err != nil {
		return Ledger{}, err
	}

	led := Ledger{
		EmployeeID: head.EmployeeID,
		CompanyID:  head.CompanyID,
		Version:    head.CompensationVersion,
		Periods:    make([]Period, 0, len(records)),
		Baseline: Baseline{
			Basic:   head.CompBasic,
			Housing: head.CompHousing,
			Vehicle: head.CompVehicle,
			Fuel:    head.CompFuel,
			Other:   head.CompOther,
			Total:   head.CompTotal,
		},
	}
	for _, rec := range records {
		led.Periods = append(led.Periods, recordToPeriod(rec))
	}
	return led, nil
}

// ReplaceLedger persists the whole period array atomically and mirrors the
// baseline onto the employee row. The version check is the single-writer
// guard: a concurrent save bumps the version first and this write affects
// zero rows.
func (r *repository) ReplaceLedger(ctx context.Context, led Ledger) error {
	if r.tx == nil {
		return errors.New("ReplaceLedger requires a transaction")
	}

	res, err := r.tx.ExecContext(ctx, `
UPDATE employees
SET
	comp_basic = $1,
	comp_housing = $2,
	comp_vehicle = $3,
	comp_fuel = $4,
	comp_other = $5,
	comp_total = $6,
	compensation_version = compensation_version + 1,
	updated_at = NOW()
WHERE id = $7 AND company_id = $8 AND compensation_version = $9
`,
		led.Baseline.Basic, led.Baseline.Housing, led.Baseline.Vehicle,
		led.Baseline.Fuel, led.Baseline.Other, led.Baseline.Total,
		led.EmployeeID, led.CompanyID, led.Version,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrVersionConflict
	}

	if _, err := r.tx.ExecContext(ctx,
		`DELETE FROM compensation_periods WHERE employee_id = $1 AND company_id = $2`,
		led.EmployeeID, led.CompanyID,
	); err != nil {
		return err
	}

	const insert = `
INSERT INTO compensation_periods (
	id, employee_id, company_id, position, label,
	effective_from, effective_to,
	basic, housing, vehicle, fuel, other, total,
	attachment_name, attachment_url, attachment_mime, attachment_data,
	is_initial, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
`
	for pos, p := range led.Periods {
		rec := periodToRecord(p, led, pos)
		if _, err := r.tx.ExecContext(ctx, insert,
			rec.ID, rec.EmployeeID, rec.CompanyID, rec.Position, rec.Label,
			rec.EffectiveFrom, rec.EffectiveTo,
			rec.Basic, rec.Housing, rec.Vehicle, rec.Fuel, rec.Other, rec.Total,
			rec.AttachmentName, rec.AttachmentURL, rec.AttachmentMIME, rec.AttachmentData,
			rec.IsInitial, rec.CreatedAt,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) LoadEmployeeBaseline(ctx context.Context, companyID, employeeID string) (EmployeeBaseline, error) {
	var row struct {
		ID        uuid.UUID
		JoinDate  *time.Time
		CreatedAt time.Time
		Basic     decimal.Decimal
		Housing   decimal.Decimal
		Vehicle   decimal.Decimal
		Fuel      decimal.Decimal
		Other     decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(`
SELECT
	id,
	join_date,
	created_at,
	comp_basic AS basic,
	comp_housing AS housing,
	comp_vehicle AS vehicle,
	comp_fuel AS fuel,
	comp_other AS other
FROM employees
WHERE id = ? AND company_id = ?
`, employeeID, companyID).Scan(&row).Error
	if err != nil {
		return EmployeeBaseline{}, err
	}
	if row.ID == uuid.Nil {
		return EmployeeBaseline{}, gorm.ErrRecordNotFound
	}

	out := EmployeeBaseline{
		CreatedAt: row.CreatedAt,
		Basic:     row.Basic,
		Housing:   row.Housing,
		Vehicle:   row.Vehicle,
		Fuel:      row.Fuel,
		Other:     row.Other,
	}
	if row.JoinDate != nil {
		out.JoinDate = *row.JoinDate
	}
	return out, nil
}

func recordToPeriod(rec periodRecord) Period {
	p := Period{
		ID:            rec.ID,
		Label:         rec.Label,
		EffectiveFrom: rec.EffectiveFrom,
		EffectiveTo:   rec.EffectiveTo,
		Basic:         rec.Basic,
		Housing:       rec.Housing,
		Vehicle:       rec.Vehicle,
		Fuel:          rec.Fuel,
		Other:         rec.Other,
		Total:         rec.Total,
		Initial:       rec.IsInitial,
		CreatedAt:     rec.CreatedAt,
	}
	// A URL reference wins; inline bytes are only kept when no URL exists.
	switch {
	case rec.AttachmentURL != "":
		p.Attachment = URLAttachment{Name: rec.AttachmentName, URL: rec.AttachmentURL}
	case len(rec.AttachmentData) > 0:
		p.Attachment = InlineAttachment{Name: rec.AttachmentName, MIME: rec.AttachmentMIME, Data: rec.AttachmentData}
	}
	return p
}

func periodToRecord(p Period, led Ledger, pos int) periodRecord {
	rec := periodRecord{
		ID:            p.ID,
		EmployeeID:    led.EmployeeID,
		CompanyID:     led.CompanyID,
		Position:      pos,
		Label:         p.Label,
		EffectiveFrom: p.EffectiveFrom,
		EffectiveTo:   p.EffectiveTo,
		Basic:         p.Basic,
		Housing:       p.Housing,
		Vehicle:       p.Vehicle,
		Fuel:          p.Fuel,
		Other:         p.Other,
		Total:         p.Total,
		IsInitial:     p.Initial,
		CreatedAt:     p.CreatedAt,
	}
	switch a := p.Attachment.(type) {
	case URLAttachment:
		rec.AttachmentName = a.Name
		rec.AttachmentURL = a.URL
	case InlineAttachment:
		rec.AttachmentName = a.Name
		rec.AttachmentMIME = a.MIME
		rec.AttachmentData = a.Data
	}
	return rec
}
