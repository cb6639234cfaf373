package compensation

import "time"

// LetterUpload is a base64-encoded authorization letter sent with a period
// mutation. It is uploaded to the document store before the ledger is
// touched; only the resulting URL reference is kept on the period.
type LetterUpload struct {
	FileName string `json:"file_name" binding:"required"`
	MimeType string `json:"mime_type" binding:"required"`
	Data     string `json:"data" binding:"required"`
}

// PeriodRequest carries form input for add/increment/edit. Amounts stay
// strings so empty, zero and invalid input remain distinguishable; the
// total is accepted for round-tripping but always recomputed before commit.
type PeriodRequest struct {
	EffectiveFrom     string        `json:"effective_from"`
	Label             string        `json:"label"`
	Basic             string        `json:"basic"`
	HousingAllowance  string        `json:"housing_allowance"`
	VehicleAllowance  string        `json:"vehicle_allowance"`
	FuelAllowance     string        `json:"fuel_allowance"`
	OtherAllowance    string        `json:"other_allowance"`
	TotalCompensation string        `json:"total_compensation"`
	Letter            *LetterUpload `json:"letter"`
	TargetPeriodID    string        `json:"target_period_id"`
}

type LetterResponse struct {
	FileName string `json:"file_name"`
	URL      string `json:"url,omitempty"`
	Inline   bool   `json:"inline,omitempty"`
}

type PeriodResponse struct {
	PeriodID          string          `json:"period_id"`
	Label             string          `json:"label"`
	EffectiveFrom     string          `json:"effective_from"`
	EffectiveTo       string          `json:"effective_to,omitempty"`
	Basic             string          `json:"basic"`
	HousingAllowance  string          `json:"housing_allowance"`
	VehicleAllowance  string          `json:"vehicle_allowance"`
	FuelAllowance     string          `json:"fuel_allowance"`
	OtherAllowance    string          `json:"other_allowance"`
	TotalCompensation string          `json:"total_compensation"`
	Letter            *LetterResponse `json:"letter,omitempty"`
	IsInitial         bool            `json:"is_initial"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
}

type BaselineResponse struct {
	Basic             string `json:"basic"`
	HousingAllowance  string `json:"housing_allowance"`
	VehicleAllowance  string `json:"vehicle_allowance"`
	FuelAllowance     string `json:"fuel_allowance"`
	OtherAllowance    string `json:"other_allowance"`
	TotalCompensation string `json:"total_compensation"`
}

type LedgerResponse struct {
	EmployeeID   string           `json:"employee_id"`
	Version      int64            `json:"version"`
	Baseline     BaselineResponse `json:"baseline"`
	ActivePeriod *PeriodResponse  `json:"active_period,omitempty"`
	Periods      []PeriodResponse `json:"periods"`
}

func mapPeriodResponse(p Period) PeriodResponse {
	out := PeriodResponse{
		PeriodID:          p.ID.String(),
		Label:             p.Label,
		EffectiveFrom:     p.EffectiveFrom.Format(dateLayout),
		Basic:             p.Basic.String(),
		HousingAllowance:  p.Housing.String(),
		VehicleAllowance:  p.Vehicle.String(),
		FuelAllowance:     p.Fuel.String(),
		OtherAllowance:    p.Other.String(),
		TotalCompensation: p.Total.String(),
		IsInitial:         p.Initial,
		IsActive:          p.Active(),
		CreatedAt:         p.CreatedAt,
	}
	if p.EffectiveTo != nil {
		out.EffectiveTo = p.EffectiveTo.Format(dateLayout)
	}
	switch a := p.Attachment.(type) {
	case URLAttachment:
		out.Letter = &LetterResponse{FileName: a.Name, URL: a.URL}
	case InlineAttachment:
		out.Letter = &LetterResponse{FileName: a.Name, Inline: true}
	}
	return out
}

func mapLedgerResponse(led Ledger) LedgerResponse {
	out := LedgerResponse{
		EmployeeID: led.EmployeeID.String(),
		Version:    led.Version,
		Baseline: BaselineResponse{
			Basic:             led.Baseline.Basic.String(),
			HousingAllowance:  led.Baseline.Housing.String(),
			VehicleAllowance:  led.Baseline.Vehicle.String(),
			FuelAllowance:     led.Baseline.Fuel.String(),
			OtherAllowance:    led.Baseline.Other.String(),
			TotalCompensation: led.Baseline.Total.String(),
		},
		Periods: make([]PeriodResponse, 0, len(led.Periods)),
	}

	for p := range led.History() {
		out.Periods = append(out.Periods, mapPeriodResponse(p))
	}

	if active, ok := led.ActivePeriod(); ok {
		resp := mapPeriodResponse(active)
		out.ActivePeriod = &resp
	}
	return out
}
