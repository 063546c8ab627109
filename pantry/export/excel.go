// pantry/export/excel.go
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dalemusser/audiencekit/pantry/merge"
)

// DefaultSheet is used when WriteXLSX is given an empty sheet name.
const DefaultSheet = "Audience"

// WriteXLSX writes m to a single-sheet workbook with a bold header row.
func WriteXLSX(w io.Writer, m merge.Mapping, sheet string) (err error) {
	rows, err := Rows(m)
	if err != nil {
		return err
	}

	sheet = strings.TrimSpace(sheet)
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := setRow(f, sheet, 1, Headers); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "C1", bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "C", "C", 60); err != nil {
		return err
	}

	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	// Cells are written as strings so ids keep their exact digits.
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
