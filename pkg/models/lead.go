package models

// LeadRequest represents a lead create/update payload
type LeadRequest struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name" validate:"required,min=1"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string `json:"phone,omitempty"`
	Company   string `json:"company,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Status    string `json:"status,omitempty"`
	DoNotCall bool   `json:"do_not_call,omitempty"`
}

// LeadResponse represents a single lead in API responses
type LeadResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Company   string `json:"company,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Source    string `json:"source"`
	Status    string `json:"status"`
	Score     int    `json:"score"`
	DoNotCall bool   `json:"do_not_call"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// LeadListResponse represents a list of leads
type LeadListResponse struct {
	Data  []LeadResponse `json:"data"`
	Total int            `json:"total"`
}

// ImportResponse reports a CSV lead import
type ImportResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

// ExportResponse reports a generated export file
type ExportResponse struct {
	Success  bool   `json:"success"`
	FilePath string `json:"file_path"`
	Format   string `json:"format"`
	Count    int    `json:"count"`
}
