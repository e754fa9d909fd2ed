// Package export moves pacientes in and out of XLSX workbooks.
package export

import (
	"fmt"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/paciente"
	"github.com/xuri/excelize/v2"
)

const (
	pacientesSheet = "Pacientes"
	// maxImportRows bounds one upload.
	maxImportRows = 5000
)

// Column keys match the paciente JSON field names.
var importColumns = []string{
	"tipo_identificacion",
	"numero_identificacion",
	"primer_nombre",
	"segundo_nombre",
	"primer_apellido",
	"segundo_apellido",
	"fecha_nacimiento",
	"sexo",
	"telefono",
	"direccion",
}

var exportColumns = append(append([]string{"id"}, importColumns...), "created_at")

var columnWidths = map[string]float64{
	"id":                    8,
	"tipo_identificacion":   12,
	"numero_identificacion": 20,
	"fecha_nacimiento":      16,
	"direccion":             35,
	"created_at":            20,
}

var (
	ErrInvalidWorkbook = internal.NewValidationError("File is not a readable XLSX workbook", internal.ErrCodeValidationFailed)
	ErrMissingColumns  = internal.NewValidationError("Workbook is missing required columns", internal.ErrCodeValidationFailed)
	ErrTooManyRows     = internal.NewValidationError(fmt.Sprintf("Workbook exceeds %d rows", maxImportRows), internal.ErrCodeValidationFailed)
)

// RowError reports why one spreadsheet row was not imported. Row is the
// 1-based sheet row.
type RowError struct {
	Row     int                        `json:"row"`
	Message string                     `json:"message"`
	Fields  []internal.ValidationError `json:"fields,omitempty"`
}

type ImportResult struct {
	Total   int         `json:"total"`
	Created int         `json:"created"`
	Failed  int         `json:"failed"`
	Errors  []*RowError `json:"errors"`
}

func exportRow(p *paciente.Paciente) []interface{} {
	return []interface{}{
		p.ID,
		p.TipoIdentificacion,
		p.NumeroIdentificacion,
		p.PrimerNombre,
		p.SegundoNombre,
		p.PrimerApellido,
		p.SegundoApellido,
		p.FechaNacimiento,
		p.Sexo,
		p.Telefono,
		p.Direccion,
		p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// newWorkbook creates a single-sheet workbook with a styled, frozen header.
func newWorkbook(headers []string) (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(pacientesSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, h := range headers {
		if err := setCell(f, i+1, 1, h); err != nil {
			f.Close()
			return nil, err
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		width := columnWidths[h]
		if width == 0 {
			width = 18
		}
		if err := f.SetColWidth(pacientesSheet, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetCellStyle(pacientesSheet, "A1", last, style); err != nil {
		f.Close()
		return nil, fmt.Errorf("set header style: %w", err)
	}

	if err := f.SetPanes(pacientesSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("freeze header: %w", err)
	}
	return f, nil
}

func setCell(f *excelize.File, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(pacientesSheet, cell, value); err != nil {
		return fmt.Errorf("set cell %s: %w", cell, err)
	}
	return nil
}
