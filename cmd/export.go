package cmd

import (
	"fmt"
	"os"

	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	"github.com/frahmantamala/vaccination-registry/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export tenant data to spreadsheets",
	}
	exportPacientesCmd = &cobra.Command{
		Use:   "pacientes",
		Short: "Write every paciente of a tenant to an xlsx workbook",
		RunE:  runExportPacientes,
	}
	exportEmpresaID int64
	exportOut       string
)

func init() {
	exportPacientesCmd.Flags().Int64Var(&exportEmpresaID, "empresa", 0, "id of the tenant to export")
	exportPacientesCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default pacientes_<empresa>.xlsx)")
	_ = exportPacientesCmd.MarkFlagRequired("empresa")

	exportCmd.AddCommand(exportPacientesCmd)
}

func runExportPacientes(cmd *cobra.Command, _ []string) error {
	rt, err := newCLIRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	out := exportOut
	if out == "" {
		out = export.Filename(exportEmpresaID)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	defer f.Close()

	// Route guards are skipped here; the service only scopes by tenant.
	p := &access.Principal{EmpresaID: exportEmpresaID, Username: "cli"}
	n, err := rt.services.Export.ExportPacientes(rt.ctx, p, f)
	if err != nil {
		return fmt.Errorf("export pacientes: %w", err)
	}

	fmt.Printf("Exported %d pacientes to %s\n", n, out)
	return nil
}
