package models

// Profile holds the per-user financial baseline, the anchor for every derived
// risk metric in the monthly report. One row per user.
type Profile struct {
	Username         string  `json:"-"`
	IncomeFloor      float64 `json:"income_floor"`       // Guaranteed minimum monthly income, >= 0
	IncomeIsVariable bool    `json:"income_is_variable"` // Freelance / commission income
	Dependents       int     `json:"dependents"`         // >= 0
	EmergencyReserve float64 `json:"emergency_reserve"`  // Liquid savings, >= 0
	DebtService      float64 `json:"debt_service"`       // Monthly debt payments, >= 0
}

// RawProfile receives profile data from a JSON request before validation.
type RawProfile struct {
	IncomeFloor      *float64 `json:"income_floor" validate:"required,gte=0"`
	IncomeIsVariable bool     `json:"income_is_variable"`
	Dependents       *int     `json:"dependents" validate:"omitempty,gte=0"`
	EmergencyReserve *float64 `json:"emergency_reserve" validate:"omitempty,gte=0"`
	DebtService      *float64 `json:"debt_service" validate:"omitempty,gte=0"`
}
