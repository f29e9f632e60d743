package models

// ContactRequest is the body of POST /contact.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,notblank"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,notblank"`
	Message string `json:"message" validate:"required,notblank"`
}
