package service

import (
	"strings"
	"time"

	"colectas/internal/model"
)

// Header row of the CSV export. Column names and order match the legacy
// station software so downstream spreadsheets keep working.
var csvEncabezados = []string{
	"stationCode", "folio", "date", "time", "turno", "isla",
	"monto", "status", "userName", "userId", "createdAt", "canceledAt", "canceledBy",
}

// construirCSV builds the deterministic export: a bare comma-joined header
// row, then data rows with every field quoted and internal quotes doubled,
// montos with exactly two decimals and a period separator. Same deposits in,
// same bytes out.
func construirCSV(deps []model.Deposito) []byte {
	var b strings.Builder
	// Header fields carry no quotes, matching the legacy exports
	b.WriteString(strings.Join(csvEncabezados, ","))
	b.WriteByte('\n')
	for i := range deps {
		d := &deps[i]
		canceladoAt := ""
		if d.CanceladoAt != nil {
			canceladoAt = d.CanceladoAt.Format(time.RFC3339)
		}
		canceladoPor := ""
		if d.CanceladoPor != nil {
			canceladoPor = *d.CanceladoPor
		}
		escribirFila(&b, []string{
			d.Estacion,
			d.Folio,
			d.Fecha,
			d.Hora,
			d.Turno,
			d.Isla,
			d.Monto.StringFixed(2),
			d.Estado,
			d.UsuarioNombre,
			d.UsuarioID.String(),
			d.CreatedAt.Format(time.RFC3339),
			canceladoAt,
			canceladoPor,
		})
	}
	// Rows are newline-joined without a trailing newline
	return []byte(strings.TrimSuffix(b.String(), "\n"))
}

func escribirFila(b *strings.Builder, campos []string) {
	for i, v := range campos {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(v, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}
