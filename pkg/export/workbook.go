// Package export renders schedules as spreadsheets and calendar feeds.
package export

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/arnavshah/meeting-rotation-api/pkg/models"
	"github.com/arnavshah/meeting-rotation-api/pkg/slips"
	"github.com/xuri/excelize/v2"
)

// ErrNoWeeks is returned when there is nothing to export
var ErrNoWeeks = errors.New("schedule has no weeks")

// Sheet names of the exported workbook
const (
	SheetSchedule = "Schedule"
	SheetSlips    = "Slips"
)

// Row is one role of one week in the flattened schedule
type Row struct {
	Week      string
	Section   string
	Part      string
	Name      string
	Secondary string
}

// Rows flattens weeks into printable rows in document order
func Rows(weeks []models.Week) []Row {
	var out []Row
	for wi, w := range weeks {
		label := w.Title
		if w.DateRange != "" {
			label = fmt.Sprintf("%s (%s)", w.Title, w.DateRange)
		}
		if label == "" {
			label = fmt.Sprintf("Week %d", wi+1)
		}
		out = append(out,
			Row{Week: label, Part: "Chairman", Name: w.Chairman},
			Row{Week: label, Part: "Opening prayer", Name: w.OpeningPrayer},
		)
		for _, sec := range w.Sections {
			for _, it := range sec.Items {
				part := it.Point()
				if part == "" {
					part = it.ParticipantList
				}
				r := Row{Week: label, Section: sec.Name, Part: part, Name: it.AssignedName, Secondary: it.AssignedSecondary}
				if lead, support, ok := models.SplitPair(it.AssignedName); ok && it.IsDouble {
					r.Name, r.Secondary = lead, support
				}
				out = append(out, r)
			}
		}
		out = append(out, Row{Week: label, Part: "Closing prayer", Name: w.ClosingPrayer})
	}
	return out
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func writeTable(f *excelize.File, sheet string, header []string, widths []float64, rows [][]string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	for i, h := range header {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell(i+1, 1), h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, cell(1, 1), cell(len(header), 1), style); err != nil {
		return err
	}
	for ri, r := range rows {
		for ci, v := range r {
			if err := f.SetCellValue(sheet, cell(ci+1, ri+2), v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Workbook writes the schedule and its slips as an .xlsx document
func Workbook(weeks []models.Week, slipList []slips.Slip) (*bytes.Buffer, error) {
	if len(weeks) == 0 {
		return nil, ErrNoWeeks
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSchedule); err != nil {
		return nil, err
	}
	var rows [][]string
	for _, r := range Rows(weeks) {
		rows = append(rows, []string{r.Week, r.Section, r.Part, r.Name, r.Secondary})
	}
	if err := writeTable(f, SheetSchedule,
		[]string{"Week", "Section", "Part", "Assigned", "Assistant"},
		[]float64{26, 30, 36, 22, 22}, rows); err != nil {
		return nil, fmt.Errorf("write schedule sheet: %w", err)
	}

	if _, err := f.NewSheet(SheetSlips); err != nil {
		return nil, err
	}
	rows = rows[:0]
	for _, s := range slipList {
		rows = append(rows, []string{s.Date, s.Part, s.Name, s.Assistant, s.Hall})
	}
	if err := writeTable(f, SheetSlips,
		[]string{"Date", "Part", "Name", "Assistant", "Hall"},
		[]float64{22, 36, 22, 22, 14}, rows); err != nil {
		return nil, fmt.Errorf("write slips sheet: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}
