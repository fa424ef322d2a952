package model

import (
	"time"

	"github.com/google/uuid"
)

// Rol values. Exactly one SUPERVISOR exists (created at setup) and no code
// path demotes or deletes it; OPERADOR records may be removed.
const (
	RolOperador   = "OPERADOR"
	RolSupervisor = "SUPERVISOR"
)

// Usuario is a local station user. PinHash is the hex SHA-256 digest of
// "colectas|" + PIN — a deterministic verifier for a low-entropy secret,
// not a security boundary.
type Usuario struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre    string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	PinHash   string    `gorm:"type:char(64);not null"`
	Rol       string    `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time
}
