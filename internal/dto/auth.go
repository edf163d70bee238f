package dto

// RegisterRequest creates a portal account.
type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	FullName     string `json:"fullName" validate:"required,max=200"`
	Role         string `json:"role" validate:"required,oneof=ADMIN COORDINATOR FACULTY STUDENT INDUSTRY FOCAL_PERSON"`
	UniversityID string `json:"universityId" validate:"omitempty"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgetPasswordRequest starts the reset flow.
type ForgetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes the reset flow.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}
