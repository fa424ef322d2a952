package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearDepositoRequest struct {
	Isla  string          `json:"isla"  validate:"required,min=1,max=40"`
	Turno string          `json:"turno" validate:"required,min=1,max=40"`
	Monto decimal.Decimal `json:"monto" validate:"required"`
	// FirmaDataURL is the handwritten signature captured by the client,
	// as a data:image/png;base64 payload
	FirmaDataURL string `json:"firma_data_url" validate:"required"`
}

type LimpiarDiaRequest struct {
	Fecha string `json:"fecha" validate:"omitempty,datetime=2006-01-02"`
}

type CorteEmailRequest struct {
	PinSupervisor string `json:"pin_supervisor" validate:"required"`
	// Para overrides the configured report recipient when present
	Para *string `json:"para" validate:"omitempty,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DepositoResponse struct {
	ID            string          `json:"id"`
	Estacion      string          `json:"estacion"`
	Folio         string          `json:"folio"`
	Fecha         string          `json:"fecha"`
	Hora          string          `json:"hora"`
	Isla          string          `json:"isla"`
	Turno         string          `json:"turno"`
	Monto         decimal.Decimal `json:"monto"`
	UsuarioID     string          `json:"usuario_id"`
	UsuarioNombre string          `json:"usuario_nombre"`
	Estado        string          `json:"estado"`
	CreatedAt     string          `json:"created_at"`
	CanceladoAt   *string         `json:"cancelado_at,omitempty"`
	CanceladoPor  *string         `json:"cancelado_por,omitempty"`
}

// TotalUsuario is one per-operator line of the corte report.
type TotalUsuario struct {
	Usuario string          `json:"usuario"`
	Total   decimal.Decimal `json:"total"`
}

// CorteResponse carries the day's KPIs. Totals always cover OK deposits only,
// regardless of the cancellation-visibility flag used for listing.
type CorteResponse struct {
	Estacion        string          `json:"estacion"`
	Fecha           string          `json:"fecha"`
	TransaccionesOK int             `json:"transacciones_ok"`
	TotalPorUsuario []TotalUsuario  `json:"total_por_usuario"`
	GranTotal       decimal.Decimal `json:"gran_total"`
}
