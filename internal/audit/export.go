package audit

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Audit Log"

var exportHeaders = []string{"Timestamp", "User", "Email", "Role", "Action", "Entity Type", "Entity ID", "Details", "Changes", "IP Address"}

// WriteWorkbook renders entries as an .xlsx workbook into w.
func WriteWorkbook(w io.Writer, entries []*Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("audit export: rename sheet: %w", err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return fmt.Errorf("audit export: header: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(exportSheet, 1, 1, bold)
	}

	for i, e := range entries {
		row := i + 2
		var name, email, role string
		if e.Actor != nil {
			name, email, role = e.Actor.Name, e.Actor.Email, e.Actor.Role
		}
		values := []interface{}{
			e.CreatedAt.UTC().Format(time.RFC3339),
			name,
			email,
			role,
			string(e.Action),
			string(e.EntityType),
			e.EntityID,
			e.Details,
			string(e.Changes),
			e.IPAddress,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return fmt.Errorf("audit export: row %d: %w", row, err)
			}
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 22)
	_ = f.SetColWidth(exportSheet, "H", "I", 48)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("audit export: write: %w", err)
	}
	return nil
}
