package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estado values for Deposito. The literals match the exports of the legacy
// station software so CSV files stay interchangeable.
const (
	EstadoOK        = "OK"
	EstadoCancelado = "CANCELED"
)

// Deposito is one recorded cash deposit. After creation the only permitted
// mutation is the one-way OK → CANCELED transition; rows are physically
// deleted only by the supervisor's clear-day operation.
type Deposito struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Estacion string    `gorm:"type:varchar(20);not null;index:idx_depositos_estacion_fecha"`
	Folio    string    `gorm:"type:varchar(40);not null;index"`
	// Fecha/Hora are the local calendar day and wall-clock stamps shown on
	// the ticket; stored as strings so day filtering is an exact match.
	Fecha         string          `gorm:"type:char(10);not null;index:idx_depositos_estacion_fecha"`
	Hora          string          `gorm:"type:char(5);not null"`
	Isla          string          `gorm:"type:varchar(40);not null"`
	Turno         string          `gorm:"type:varchar(40);not null"`
	Monto         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UsuarioID     uuid.UUID       `gorm:"type:uuid;not null"`
	UsuarioNombre string          `gorm:"type:varchar(100);not null"` // snapshot at creation
	FirmaDataURL  string          `gorm:"type:text;not null"`
	Estado        string          `gorm:"type:varchar(20);not null;default:'OK'"`
	CreatedAt     time.Time
	CanceladoAt   *time.Time
	CanceladoPor  *string `gorm:"type:varchar(100)"`
}
