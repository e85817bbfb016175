// Package export renders ledger operations as spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the exported operations.
const SheetName = "Operations"

// ContentType is the MIME type of an XLSX workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headings = []interface{}{
	"ID", "Caisse", "Type", "Amount", "Balance After",
	"Description", "Reference", "Performed By", "Timestamp (UTC)",
}

// WriteOperationsWorkbook writes ops as a single-sheet workbook. registerNames maps
// register ids to display names; unknown ids fall back to the numeric id.
func WriteOperationsWorkbook(w io.Writer, ops []domain.Operation, registerNames map[int64]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &headings); err != nil {
		return fmt.Errorf("failed to write headings: %w", err)
	}

	for i := range ops {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := operationRow(&ops[i], registerNames)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write operation %d: %w", ops[i].OperationID, err)
		}
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("failed to create money style: %w", err)
	}
	if err := f.SetColStyle(SheetName, "D:E", money); err != nil {
		return fmt.Errorf("failed to style amounts: %w", err)
	}
	if err := f.SetColWidth(SheetName, "F", "F", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "I", "I", 22); err != nil {
		return err
	}

	return f.Write(w)
}

func operationRow(op *domain.Operation, registerNames map[int64]string) []interface{} {
	register, ok := registerNames[op.CaisseID]
	if !ok {
		register = fmt.Sprint(op.CaisseID)
	}
	reference := ""
	if op.ReferenceID != nil {
		reference = *op.ReferenceID
	}
	performer := op.PerformedByUsername
	if performer == "" && op.PerformedBy != nil {
		performer = *op.PerformedBy
	}
	return []interface{}{
		op.OperationID,
		register,
		string(op.OperationType),
		op.Amount.InexactFloat64(),
		op.BalanceAfter.InexactFloat64(),
		op.Description,
		reference,
		performer,
		op.Timestamp.UTC().Format(time.DateTime),
	}
}
