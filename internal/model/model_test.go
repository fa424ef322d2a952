package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/schema"
)

// tablaMigrada resolves the table name exactly as AutoMigrate does.
func tablaMigrada(t *testing.T, modelo interface{}) string {
	t.Helper()
	s, err := schema.Parse(modelo, &sync.Map{}, schema.NamingStrategy{})
	assert.NoError(t, err)
	return s.Table
}

// The seeding tool writes these tables with raw SQL, so the migrated names
// must match its identifiers exactly.
func TestTablasDelSeeder(t *testing.T) {
	assert.Equal(t, "estaciones", tablaMigrada(t, &Estacion{}))
	assert.Equal(t, "usuarios", tablaMigrada(t, &Usuario{}))
}
