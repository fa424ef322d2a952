package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// SetupRequest performs the one-time station setup: station code plus the
// single supervisor account. Rejected once the station is configured.
type SetupRequest struct {
	Estacion         string `json:"estacion"          validate:"required,min=1,max=20"`
	NombreSupervisor string `json:"nombre_supervisor" validate:"required,min=2,max=100"`
	Pin              string `json:"pin"               validate:"required"`
	PinConfirmacion  string `json:"pin_confirmacion"  validate:"required"`
}

type ResetFolioRequest struct {
	PinSupervisor string `json:"pin_supervisor" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type EstacionResponse struct {
	Codigo    string `json:"codigo"`
	CreatedAt string `json:"created_at"`
}

type BitacoraResponse struct {
	Estacion  string `json:"estacion"`
	Mes       string `json:"mes"`
	Accion    string `json:"accion"`
	Por       string `json:"por"`
	CreatedAt string `json:"created_at"`
}
