package employee

type CreateEmployeeRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	JoinDate string `json:"join_date"`

	// Baseline compensation amounts as decimal strings. Anything that does
	// not parse as a number is treated as zero.
	Basic   string `json:"basic"`
	Housing string `json:"housing_allowance"`
	Vehicle string `json:"vehicle_allowance"`
	Fuel    string `json:"fuel_allowance"`
	Other   string `json:"other_allowance"`
}

type UpdateEmployeeRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	JoinDate string `json:"join_date"`
}

type EmployeeResponse struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	JoinDate  string `json:"join_date,omitempty"`

	Basic   string `json:"basic"`
	Housing string `json:"housing_allowance"`
	Vehicle string `json:"vehicle_allowance"`
	Fuel    string `json:"fuel_allowance"`
	Other   string `json:"other_allowance"`
	Total   string `json:"total_compensation"`
}
