package model

import "time"

// FolioContador holds the monthly receipt counter for a station.
// Mes has the form "YYYY-MM". Valor only moves forward except for an explicit
// supervisor reset, which is always paired with a BitacoraEntrada.
type FolioContador struct {
	ID        uint   `gorm:"primaryKey"`
	Estacion  string `gorm:"type:varchar(20);not null;uniqueIndex:idx_folio_estacion_mes"`
	Mes       string `gorm:"type:char(7);not null;uniqueIndex:idx_folio_estacion_mes"`
	Valor     int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// BitacoraEntrada is an append-only audit record of administrative actions.
// Entries are never updated or deleted.
type BitacoraEntrada struct {
	ID        uint   `gorm:"primaryKey"`
	Estacion  string `gorm:"type:varchar(20);not null;index"`
	Mes       string `gorm:"type:char(7);not null"`
	Accion    string `gorm:"type:varchar(40);not null"`
	Por       string `gorm:"type:varchar(100);not null"`
	CreatedAt time.Time
}
