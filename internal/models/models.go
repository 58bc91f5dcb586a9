package models

// StatusPending is the status every swatch starts with. Later states are
// written by the processing pipeline, not by this service.
const StatusPending = "Pending"

// Account represents a registered user
type Account struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	PhoneNumber    string `json:"phone_number"`
	HashedPassword string `json:"-"`
	IsActive       bool   `json:"is_active"`
}

// SwatchRecord represents an uploaded fabric swatch
type SwatchRecord struct {
	SNo        int64   `json:"s_no"`
	CreatedAt  string  `json:"created_at"`
	SwachCode  string  `json:"swach_code"`
	SwatchPath string  `json:"swatch_path"`
	ModelPath  *string `json:"model_path"`
	Status     string  `json:"status"`
	FinalImage *string `json:"final_image"`
}
