package dto

// CreateStaffRequest payload.
type CreateStaffRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	PhotoURL string `json:"photo_url"`
}

// UpdateStaffRequest payload. Omitted fields stay unchanged.
type UpdateStaffRequest struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	PhotoURL  *string `json:"photo_url"`
	Password  *string `json:"password"`
	IsBlocked *bool   `json:"is_blocked"`
}
