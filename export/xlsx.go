// Package export renders a meeting's roster as an XLSX workbook for the
// admin dashboard's download button.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/presenca-digital/lista-presenca/meetings"
	"github.com/xuri/excelize/v2"
)

type Options struct {
	ExportedAt time.Time
}

const rosterSheet = "Lista de Presença"

var headers = []string{
	"Nome Completo",
	"CPF",
	"E-mail",
	"Entidade",
	"Registrado em",
}

// RosterXLSX renders one meeting per workbook: a small header block with
// the meeting name and export time, then one row per participant in
// arrival order.
func RosterXLSX(meeting meetings.Meeting, opt Options) ([]byte, error) {
	exportedAt := opt.ExportedAt
	if exportedAt.IsZero() {
		exportedAt = time.Now()
	}

	f := excelize.NewFile()

	if _, err := f.NewSheet(rosterSheet); err != nil {
		return nil, err
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	dateStyle, _ := f.NewStyle(&excelize.Style{
		NumFmt: 22,
	})

	if err := f.SetCellValue(rosterSheet, "A1", meeting.Name); err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(rosterSheet, "A1", "A1", titleStyle)
	if err := f.SetCellValue(rosterSheet, "A2", fmt.Sprintf("Exportado em %s", exportedAt.Format("02/01/2006 15:04"))); err != nil {
		return nil, err
	}

	const headerRow = 4
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		if err := f.SetCellValue(rosterSheet, cell, h); err != nil {
			return nil, err
		}
		_ = f.SetCellStyle(rosterSheet, cell, cell, headerStyle)
	}

	_ = f.SetPanes(rosterSheet, &excelize.Panes{
		Freeze:      true,
		Split:       true,
		YSplit:      headerRow,
		TopLeftCell: fmt.Sprintf("A%d", headerRow+1),
		ActivePane:  "bottomLeft",
	})

	row := headerRow + 1
	for _, p := range meeting.Participants {
		values := []any{p.FullName, p.CPF, p.Email, p.Entity, p.Timestamp.Local()}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(rosterSheet, cell, v); err != nil {
				return nil, err
			}
			if col == 4 {
				_ = f.SetCellStyle(rosterSheet, cell, cell, dateStyle)
			}
		}
		row++
	}

	_ = f.SetColWidth(rosterSheet, "A", "A", 32)
	_ = f.SetColWidth(rosterSheet, "B", "B", 18)
	_ = f.SetColWidth(rosterSheet, "C", "C", 30)
	_ = f.SetColWidth(rosterSheet, "D", "D", 26)
	_ = f.SetColWidth(rosterSheet, "E", "E", 20)

	_ = f.DeleteSheet("Sheet1")

	i, err := f.GetSheetIndex(rosterSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(i)

	var buf bytes.Buffer
	if err = f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
