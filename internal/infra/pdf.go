package infra

// pdf.go — Ticket de colecta generation using go-pdf/fpdf.
// Produces the two-copy receipt (ORIGINAL + COPIA) on thermal-format paper:
//   - Folio, date/time, shift/lane
//   - Operator name and amount at two decimals
//   - Embedded handwritten signature
//   - Bordered CANCELADO stamp when the deposit was canceled

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"colectas/internal/firma"
	"colectas/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerarTicket writes the two-copy receipt PDF for a deposit to w.
func GenerarTicket(dep *model.Deposito, w io.Writer) error {
	// 74mm wide thermal paper; tall enough for both copies
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 220},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	// Register the signature once; both copies reuse it
	sigName := ""
	if raw, err := firma.DecodificarPNG(dep.FirmaDataURL); err == nil {
		sigName = "firma_" + dep.ID.String()
		pdf.RegisterImageOptionsReader(sigName,
			fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(raw))
	}

	copia(pdf, dep, sigName, "ORIGINAL - TICKET DE COLECTA", "Firma Responsable")

	// Cut line between copies
	pdf.Ln(4)
	pdf.SetDashPattern([]float64{1.5, 1.5}, 0)
	pdf.Line(4, pdf.GetY(), 70, pdf.GetY())
	pdf.SetDashPattern([]float64{}, 0)
	pdf.Ln(4)

	copia(pdf, dep, sigName, "COPIA - TICKET DE COLECTA", "Sello / Recepcion")

	return pdf.Output(w)
}

// GenerarTicketArchivo writes the receipt to storagePath/ticket_{folio}.pdf
// and returns the absolute path.
func GenerarTicketArchivo(dep *model.Deposito, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("ticket_%s.pdf", dep.Folio))
	f, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("pdf: create file: %w", err)
	}
	defer f.Close()
	if err := GenerarTicket(dep, f); err != nil {
		return "", fmt.Errorf("pdf: write ticket: %w", err)
	}
	return filePath, nil
}

func copia(pdf *fpdf.Fpdf, dep *model.Deposito, sigName, titulo, pie string) {
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 6, titulo, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 4, "Comprobante de Deposito - Estacion "+dep.Estacion, "", 1, "C", false, 0, "")
	pdf.Line(4, pdf.GetY()+1, pageW-4, pdf.GetY()+1)
	pdf.Ln(3)

	// ── Detail ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, "FOLIO: "+dep.Folio, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 4, fmt.Sprintf("FECHA: %s  HORA: %s", dep.Fecha, dep.Hora), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, fmt.Sprintf("TURNO: %s  ISLA: %s", dep.Turno, dep.Isla), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, "USUARIO: "+dep.UsuarioNombre, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// ── Total ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 8, "TOTAL: $"+dep.Monto.StringFixed(2), "1", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Firma ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(contentW, 4, "FIRMA", "", 1, "C", false, 0, "")
	if sigName != "" {
		x := (pageW - 40) / 2
		pdf.ImageOptions(sigName, x, pdf.GetY(), 40, 0, false,
			fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		pdf.Ln(16)
	} else {
		pdf.Ln(12)
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, pie, "T", 1, "C", false, 0, "")

	if dep.Estado == model.EstadoCancelado {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 7, "CANCELADO", "1", 1, "C", false, 0, "")
	}
}
