// Package report renders the delinquency report as a PDF document.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"

	"mensalidades/internal/services"
)

const (
	titleFormat = "Relatório de Pagamentos Atrasados - %s"
	headerChild = "Nome da Criança"
	headerLast  = "Último Pagamento"
	columnWidth = 95.0
	rowHeight   = 10.0
	titleSize   = 16.0
	bodySize    = 12.0
)

// WriteDelinquents renders rows as a two column table preceded by a dated
// title and writes the document to w.
func WriteDelinquents(w io.Writer, rows []services.DelinquentRow, now time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", titleSize)
	title := fmt.Sprintf(titleFormat, now.Format("02/01/2006"))
	pdf.CellFormat(0, rowHeight, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(rowHeight)

	pdf.SetFont("Arial", "B", bodySize)
	pdf.CellFormat(columnWidth, rowHeight, tr(headerChild), "1", 0, "L", false, 0, "")
	pdf.CellFormat(columnWidth, rowHeight, tr(headerLast), "1", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", bodySize)
	for _, row := range rows {
		pdf.CellFormat(columnWidth, rowHeight, tr(row.Child), "1", 0, "L", false, 0, "")
		pdf.CellFormat(columnWidth, rowHeight, tr(row.LastPayment), "1", 1, "L", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render delinquency report: %w", err)
	}
	return nil
}

// SaveDelinquents writes the report to dir using a dated file name and
// returns the full path.
func SaveDelinquents(dir string, rows []services.DelinquentRow, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("atrasados-%s.pdf", now.Format("20060102")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()
	if err := WriteDelinquents(f, rows, now); err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close report file: %w", err)
	}
	return path, nil
}
