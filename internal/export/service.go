package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	"github.com/frahmantamala/vaccination-registry/internal/paciente"
	"github.com/xuri/excelize/v2"
)

type PacienteService interface {
	ListAll(ctx context.Context, p *access.Principal) ([]*paciente.Paciente, error)
	Create(ctx context.Context, p *access.Principal, dto paciente.PacienteDTO) (*paciente.Paciente, error)
}

type Service struct {
	pacientes PacienteService
	logger    *slog.Logger
}

func NewService(pacientes PacienteService, logger *slog.Logger) *Service {
	return &Service{pacientes: pacientes, logger: logger}
}

// ExportPacientes writes every paciente of the caller's tenant as XLSX.
func (s *Service) ExportPacientes(ctx context.Context, p *access.Principal, w io.Writer) (int, error) {
	pacientes, err := s.pacientes.ListAll(ctx, p)
	if err != nil {
		return 0, err
	}

	f, err := newWorkbook(exportColumns)
	if err != nil {
		return 0, internal.NewInternalError("failed to build workbook", err)
	}
	defer f.Close()

	for i, pac := range pacientes {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, internal.NewInternalError("failed to build workbook", err)
		}
		row := exportRow(pac)
		if err := f.SetSheetRow(pacientesSheet, cell, &row); err != nil {
			return 0, internal.NewInternalError("failed to build workbook", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return 0, internal.NewInternalError("failed to write workbook", err)
	}
	s.logger.Info("pacientes exported", "empresa_id", p.EmpresaID, "rows", len(pacientes))
	return len(pacientes), nil
}

// ImportTemplate writes an empty workbook with the import header row.
func (s *Service) ImportTemplate(w io.Writer) error {
	f, err := newWorkbook(importColumns)
	if err != nil {
		return internal.NewInternalError("failed to build template", err)
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return internal.NewInternalError("failed to write template", err)
	}
	return nil
}

// ImportPacientes creates one paciente per data row of the first sheet.
// Invalid rows are reported and skipped; valid rows are created. Store
// failures abort the import.
func (s *Service) ImportPacientes(ctx context.Context, p *access.Principal, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ErrInvalidWorkbook.WithCause(err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrInvalidWorkbook
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, ErrInvalidWorkbook.WithCause(err)
	}

	result := &ImportResult{Errors: []*RowError{}}
	if len(rows) == 0 {
		return result, nil
	}
	if len(rows)-1 > maxImportRows {
		return nil, ErrTooManyRows
	}

	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		result.Total++
		sheetRow := i + 2

		if _, err := s.pacientes.Create(ctx, p, rowDTO(row, index)); err != nil {
			appErr, ok := internal.IsAppError(err)
			if !ok || appErr.Type == internal.ErrorTypeDependency || appErr.Type == internal.ErrorTypeInternal {
				return nil, err
			}
			result.Errors = append(result.Errors, rowError(sheetRow, internal.Public(err)))
			continue
		}
		result.Created++
	}

	result.Failed = len(result.Errors)
	s.logger.Info("pacientes imported",
		"empresa_id", p.EmpresaID,
		"total", result.Total,
		"created", result.Created,
		"failed", result.Failed)
	return result, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var missing []string
	for _, col := range []string{"tipo_identificacion", "numero_identificacion", "primer_nombre", "primer_apellido", "fecha_nacimiento"} {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, ErrMissingColumns.WithDetails(map[string]interface{}{"missing": missing})
	}
	return index, nil
}

func rowDTO(row []string, index map[string]int) paciente.PacienteDTO {
	get := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	return paciente.PacienteDTO{
		TipoIdentificacion:   strings.ToUpper(get("tipo_identificacion")),
		NumeroIdentificacion: get("numero_identificacion"),
		PrimerNombre:         get("primer_nombre"),
		SegundoNombre:        get("segundo_nombre"),
		PrimerApellido:       get("primer_apellido"),
		SegundoApellido:      get("segundo_apellido"),
		FechaNacimiento:      get("fecha_nacimiento"),
		Sexo:                 strings.ToUpper(get("sexo")),
		Telefono:             get("telefono"),
		Direccion:            get("direccion"),
	}
}

func rowError(row int, err *internal.AppError) *RowError {
	out := &RowError{Row: row, Message: err.Message}
	if details, ok := err.Details.(internal.ValidationErrors); ok {
		out.Fields = details.Errors
	}
	return out
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Filename names an export file for a tenant.
func Filename(empresaID int64) string {
	return fmt.Sprintf("pacientes_%d.xlsx", empresaID)
}
