package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/frahmantamala/vaccination-registry/internal/empresa"
	"github.com/spf13/cobra"
)

var (
	empresaCmd = &cobra.Command{
		Use:   "empresa",
		Short: "Manage tenants",
	}
	empresaCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Register a new tenant",
		RunE:  runEmpresaCreate,
	}
	empresaListCmd = &cobra.Command{
		Use:   "list",
		Short: "List every tenant",
		RunE:  runEmpresaList,
	}
	empresaDeleteCmd = &cobra.Command{
		Use:   "delete",
		Short: "Delete a tenant that owns no users, roles or pacientes",
		RunE:  runEmpresaDelete,
	}
	empresaEstadoCmd = &cobra.Command{
		Use:   "estado",
		Short: "Enable or disable a tenant",
		RunE:  runEmpresaEstado,
	}

	empresaDTO    empresa.CreateEmpresaDTO
	empresaID     int64
	empresaEstado bool
)

func init() {
	f := empresaCreateCmd.Flags()
	f.StringVar(&empresaDTO.Codigo, "codigo", "", "unique tenant code")
	f.StringVar(&empresaDTO.RazonSocial, "razon-social", "", "legal name")
	f.StringVar(&empresaDTO.NIT, "nit", "", "tax id")
	f.StringVar(&empresaDTO.Email, "email", "", "contact email")
	f.StringVar(&empresaDTO.Telefono, "telefono", "", "contact phone")
	f.StringVar(&empresaDTO.Direccion, "direccion", "", "address")
	_ = empresaCreateCmd.MarkFlagRequired("codigo")
	_ = empresaCreateCmd.MarkFlagRequired("razon-social")

	empresaDeleteCmd.Flags().Int64Var(&empresaID, "id", 0, "tenant id")
	_ = empresaDeleteCmd.MarkFlagRequired("id")

	empresaEstadoCmd.Flags().Int64Var(&empresaID, "id", 0, "tenant id")
	empresaEstadoCmd.Flags().BoolVar(&empresaEstado, "enabled", true, "new estado")
	_ = empresaEstadoCmd.MarkFlagRequired("id")

	empresaCmd.AddCommand(empresaCreateCmd, empresaListCmd, empresaDeleteCmd, empresaEstadoCmd)
}

func runEmpresaCreate(cmd *cobra.Command, _ []string) error {
	rt, err := newCLIRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	e, err := rt.services.Empresa.Create(rt.ctx, empresaDTO)
	if err != nil {
		return err
	}
	fmt.Printf("Created empresa %s (id %d)\n", e.Codigo, e.ID)
	return nil
}

func runEmpresaList(cmd *cobra.Command, _ []string) error {
	rt, err := newCLIRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	list, err := rt.services.Empresa.List(rt.ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCODIGO\tRAZON SOCIAL\tNIT\tESTADO")
	for _, e := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", e.ID, e.Codigo, e.RazonSocial, e.NIT, e.Estado)
	}
	return w.Flush()
}

func runEmpresaDelete(cmd *cobra.Command, _ []string) error {
	rt, err := newCLIRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.services.Empresa.Delete(rt.ctx, empresaID); err != nil {
		return err
	}
	fmt.Printf("Deleted empresa %d\n", empresaID)
	return nil
}

func runEmpresaEstado(cmd *cobra.Command, _ []string) error {
	rt, err := newCLIRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.services.Empresa.SetEstado(rt.ctx, empresaID, empresaID, empresaEstado); err != nil {
		return err
	}
	fmt.Printf("Empresa %d estado set to %t\n", empresaID, empresaEstado)
	return nil
}
