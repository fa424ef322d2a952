package model

import "time"

// Estacion is the one-time station configuration. There is exactly one row
// and no update path: once the station is set up the code never changes.
type Estacion struct {
	ID        uint   `gorm:"primaryKey"`
	Codigo    string `gorm:"type:varchar(20);uniqueIndex;not null"`
	CreatedAt time.Time
}

// TableName pins the Spanish plural; gorm's pluralizer would produce "estacions".
func (Estacion) TableName() string { return "estaciones" }
