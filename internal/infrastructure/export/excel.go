// Package export writes bills to spreadsheet files.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/service"
)

// SheetName is the name of the single sheet of a bills export
const SheetName = "Notes de frais"

// ContentType is the MIME type of the generated workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{"Type", "Nom", "Date", "Montant", "TVA", "Statut", "Justificatif"}

// ExcelExporter writes formatted bills as an xlsx workbook
type ExcelExporter struct {
	logger *zap.Logger
}

// NewExcelExporter creates an ExcelExporter
func NewExcelExporter(logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{logger: logger}
}

// WriteBills writes one header row then one row per bill, in the given order
func (e *ExcelExporter) WriteBills(w io.Writer, bills []service.FormattedBill) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, fb := range bills {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}

		amount, _ := fb.Bill.Amount.Float64()
		row := []interface{}{
			fb.Bill.Type,
			fb.Bill.Name,
			fb.Date,
			amount,
			fb.Bill.VAT,
			fb.Status,
			fb.Bill.FileURL,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Debug("Bills exported", zap.Int("rows", len(bills)))
	return nil
}
