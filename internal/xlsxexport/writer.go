package xlsxexport

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"bkcnorm/internal/pipeline"
)

// SheetName is the name of the single worksheet in an export.
const SheetName = "Bookings"

// Write writes a workbook with a bold header row and one row per result to
// out. Nil results are skipped. All cells are strings.
func Write(out io.Writer, columns []string, results []*pipeline.Result) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := sw.SetRow("A1", toCells(pipeline.Header(columns)), excelize.RowOpts{StyleID: headerStyle}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	rowNum := 2
	for _, res := range results {
		if res == nil || res.Payload == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, toCells(res.Row(columns))); err != nil {
			return fmt.Errorf("write row %d: %w", rowNum, err)
		}
		rowNum++
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if err := f.Write(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}
