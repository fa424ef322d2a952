package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// LoginRequest authenticates a PIN against a selected user. The user is picked
// from the station's roster, so the client sends the id, not a username.
type LoginRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Pin    string `json:"pin"     validate:"required"`
}

type CrearUsuarioRequest struct {
	Nombre string `json:"nombre" validate:"required,min=2,max=100"`
	Pin    string `json:"pin"    validate:"required"`
	// PinSupervisor is the step-up confirmation of the acting supervisor
	PinSupervisor string `json:"pin_supervisor" validate:"required"`
}

type EliminarUsuarioRequest struct {
	PinSupervisor string `json:"pin_supervisor" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID        string `json:"id"`
	Nombre    string `json:"nombre"`
	Rol       string `json:"rol"`
	CreatedAt string `json:"created_at,omitempty"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"` // seconds
	User        UsuarioResponse `json:"user"`
}
