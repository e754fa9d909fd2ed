// Package seed loads a demo tenant: the navigation tree, the Administrador,
// Enfermera and Auditor roles with their users, and starter catalogs.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/vaccination-registry/internal/catalog"
	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	"github.com/frahmantamala/vaccination-registry/internal/core/datamodel"
	empresaDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/empresa"
	rbacDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/rbac"
	registroDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/registro"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Options struct {
	EmpresaCodigo string
	Password      string
	BCryptCost    int
	// Clear deletes every row of every table first.
	Clear bool
}

type Result struct {
	EmpresaID int64
	Users     map[string]int64
	Roles     map[string]int64
	MenuItems map[string]int64
}

type menuSeed struct {
	name     string
	resource string
	parent   string
	icon     string
	url      string
	order    int
}

var menuTree = []menuSeed{
	{name: "Administración", resource: access.ResourceAdministracion, icon: "settings", order: 1},
	{name: "Empresas", resource: access.ResourceEmpresas, parent: access.ResourceAdministracion, url: "/admin/empresa", order: 1},
	{name: "Usuarios", resource: access.ResourceUsuarios, parent: access.ResourceAdministracion, url: "/admin/usuarios", order: 2},
	{name: "Roles", resource: access.ResourceRoles, parent: access.ResourceAdministracion, url: "/admin/roles", order: 3},
	{name: "Menú", resource: access.ResourceMenu, parent: access.ResourceAdministracion, url: "/admin/menu", order: 4},
	{name: "Pacientes", resource: access.ResourcePacientes, icon: "users", url: "/pacientes", order: 2},
	{name: "Registro de vacunación", resource: access.ResourceRegistroVacunacion, icon: "syringe", url: "/registros", order: 3},
	{name: "Insumos", resource: access.ResourceInsumos, icon: "box", url: "/insumos", order: 4},
	{name: "Catálogos", resource: access.ResourceCatalogos, icon: "list", url: "/catalogos", order: 5},
	{name: "Reportes", resource: access.ResourceReportes, icon: "chart", order: 6},
	{name: "Vacunación por insumo", resource: access.ResourceReporteVacunacion, parent: access.ResourceReportes, url: "/reportes/vacunacion", order: 1},
}

var (
	all      = access.Capabilities{CanCreate: true, CanRead: true, CanUpdate: true, CanDelete: true, CanActivate: true, CanResetPassword: true}
	readOnly = access.Capabilities{CanRead: true}
	editor   = access.Capabilities{CanCreate: true, CanRead: true, CanUpdate: true}
)

type roleSeed struct {
	name        string
	description string
	username    string
	grants      map[string]access.Capabilities
}

func roles() []roleSeed {
	admin := make(map[string]access.Capabilities, len(menuTree))
	for _, m := range menuTree {
		admin[m.resource] = all
	}
	return []roleSeed{
		{
			name:        "Administrador",
			description: "Full access to the tenant",
			username:    "admin",
			grants:      admin,
		},
		{
			name:        "Enfermera",
			description: "Registers pacientes and vaccinations",
			username:    "enfermera",
			grants: map[string]access.Capabilities{
				access.ResourcePacientes:          editor,
				access.ResourceRegistroVacunacion: editor,
				access.ResourceInsumos:            readOnly,
				access.ResourceCatalogos:          readOnly,
			},
		},
		{
			name:        "Auditor",
			description: "Reads records and reports",
			username:    "auditor",
			grants: map[string]access.Capabilities{
				access.ResourcePacientes:          readOnly,
				access.ResourceRegistroVacunacion: readOnly,
				access.ResourceReporteVacunacion:  readOnly,
			},
		},
	}
}

var catalogEntries = map[catalog.Kind][][2]string{
	catalog.KindTipoCarnet:        {{"CON", "Contributivo"}, {"SUB", "Subsidiado"}, {"PART", "Particular"}},
	catalog.KindCondicionUsuaria:  {{"GEST", "Gestante"}, {"LACT", "Lactante"}, {"NA", "No aplica"}},
	catalog.KindPertenenciaEtnica: {{"IND", "Indígena"}, {"AFRO", "Afrodescendiente"}, {"NING", "Ninguna"}},
	catalog.KindAseguradora:       {{"EPS001", "EPS Demo"}},
	catalog.KindRegimenAfiliacion: {{"C", "Contributivo"}, {"S", "Subsidiado"}, {"E", "Especial"}},
	catalog.KindHospital:          {{"HOSP01", "Hospital Central"}},
	catalog.KindCentroAtencion:    {{"CA01", "Centro de Salud Norte"}},
}

var insumos = []registroDatamodel.Insumo{
	{Codigo: "VAC-BCG", Nombre: "BCG", Tipo: "vacuna", UnidadMedida: "dosis"},
	{Codigo: "VAC-HB", Nombre: "Hepatitis B", Tipo: "vacuna", UnidadMedida: "dosis"},
	{Codigo: "JER-1ML", Nombre: "Jeringa 1 ml", Tipo: "jeringa", UnidadMedida: "unidad"},
}

// Run is idempotent: existing rows matched by their natural keys are kept.
func Run(ctx context.Context, db *gorm.DB, opts Options, logger *slog.Logger) (*Result, error) {
	if opts.EmpresaCodigo == "" {
		opts.EmpresaCodigo = "DEMO"
	}
	if opts.Password == "" {
		opts.Password = "password"
	}
	if opts.BCryptCost == 0 {
		opts.BCryptCost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), opts.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	res := &Result{
		Users:     map[string]int64{},
		Roles:     map[string]int64{},
		MenuItems: map[string]int64{},
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.Clear {
			if err := clearAll(tx); err != nil {
				return err
			}
		}

		empresa := empresaDatamodel.Empresa{
			Codigo:      opts.EmpresaCodigo,
			RazonSocial: "IPS " + opts.EmpresaCodigo,
			NIT:         "900000001-1",
			Estado:      true,
		}
		if err := tx.Where("codigo = ?", empresa.Codigo).FirstOrCreate(&empresa).Error; err != nil {
			return fmt.Errorf("seed empresa: %w", err)
		}
		res.EmpresaID = empresa.ID

		if err := seedMenu(tx, empresa.ID, res); err != nil {
			return err
		}
		if err := seedPermissions(tx, empresa.ID); err != nil {
			return err
		}
		if err := seedRoles(tx, empresa.ID, usernameSuffix(opts.EmpresaCodigo), string(hash), res); err != nil {
			return err
		}
		if err := seedCatalogs(tx, empresa.ID); err != nil {
			return err
		}
		return seedInsumos(tx, empresa.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("seed completed",
		"empresa_id", res.EmpresaID,
		"users", len(res.Users),
		"roles", len(res.Roles),
		"menu_items", len(res.MenuItems))
	return res, nil
}

func clearAll(tx *gorm.DB) error {
	models := datamodel.All()
	for i := len(models) - 1; i >= 0; i-- {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(models[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", models[i], err)
		}
	}
	return nil
}

func seedMenu(tx *gorm.DB, empresaID int64, res *Result) error {
	for _, m := range menuTree {
		item := rbacDatamodel.MenuItem{
			EmpresaID:   empresaID,
			Name:        m.name,
			ResourceKey: m.resource,
			Icon:        m.icon,
			URL:         m.url,
			Order:       m.order,
			IsActive:    true,
		}
		if m.parent != "" {
			parentID := res.MenuItems[m.parent]
			item.ParentID = &parentID
		}
		if err := tx.Where("empresa_id = ? AND resource_key = ?", empresaID, m.resource).
			FirstOrCreate(&item).Error; err != nil {
			return fmt.Errorf("seed menu item %s: %w", m.resource, err)
		}
		res.MenuItems[m.resource] = item.ID
	}
	return nil
}

func seedPermissions(tx *gorm.DB, empresaID int64) error {
	actions := []access.Action{
		access.ActionCreate, access.ActionRead, access.ActionUpdate,
		access.ActionDelete, access.ActionActivate, access.ActionResetPassword,
	}
	for _, m := range menuTree {
		for _, a := range actions {
			p := rbacDatamodel.Permission{
				EmpresaID:   empresaID,
				Resource:    m.resource,
				Action:      string(a),
				Description: fmt.Sprintf("%s on %s", a, m.name),
			}
			if err := tx.Where("empresa_id = ? AND resource = ? AND action = ?", empresaID, p.Resource, p.Action).
				FirstOrCreate(&p).Error; err != nil {
				return fmt.Errorf("seed permission %s/%s: %w", m.resource, a, err)
			}
		}
	}
	return nil
}

func seedRoles(tx *gorm.DB, empresaID int64, suffix, passwordHash string, res *Result) error {
	for _, r := range roles() {
		role := rbacDatamodel.Role{EmpresaID: empresaID, Name: r.name, Description: r.description}
		if err := tx.Where("empresa_id = ? AND name = ?", empresaID, r.name).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", r.name, err)
		}
		res.Roles[r.name] = role.ID

		for resource, caps := range r.grants {
			grant := rbacDatamodel.RolePermission{
				RoleID:     role.ID,
				MenuItemID: res.MenuItems[resource],
				EmpresaID:  empresaID,
			}
			grant.SetCapabilities(caps)
			if err := tx.Where("role_id = ? AND menu_item_id = ?", grant.RoleID, grant.MenuItemID).
				FirstOrCreate(&grant).Error; err != nil {
				return fmt.Errorf("seed grant %s/%s: %w", r.name, resource, err)
			}
		}

		username := r.username + suffix
		u := rbacDatamodel.User{
			EmpresaID:    empresaID,
			Username:     username,
			Email:        username + ".local@example.com",
			Name:         r.name,
			PasswordHash: passwordHash,
			IsActive:     true,
		}
		if err := tx.Where("username = ?", username).FirstOrCreate(&u).Error; err != nil {
			return fmt.Errorf("seed user %s: %w", username, err)
		}
		res.Users[r.username] = u.ID

		link := rbacDatamodel.UserRole{UserID: u.ID, RoleID: role.ID, EmpresaID: empresaID}
		if err := tx.Where("user_id = ? AND role_id = ?", u.ID, role.ID).FirstOrCreate(&link).Error; err != nil {
			return fmt.Errorf("seed user role %s: %w", username, err)
		}
	}
	return nil
}

// usernameSuffix keeps usernames globally unique when several demo tenants
// are seeded. The DEMO tenant keeps plain usernames.
func usernameSuffix(codigo string) string {
	if codigo == "DEMO" {
		return ""
	}
	return "." + strings.ToLower(codigo)
}

func seedCatalogs(tx *gorm.DB, empresaID int64) error {
	for kind, entries := range catalogEntries {
		for _, entry := range entries {
			row := registroDatamodel.CatalogEntry{
				EmpresaID: empresaID,
				Codigo:    entry[0],
				Nombre:    entry[1],
				IsActive:  true,
			}
			if err := tx.Table(kind.Table()).
				Where("empresa_id = ? AND codigo = ?", empresaID, row.Codigo).
				FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed %s %s: %w", kind, row.Codigo, err)
			}
		}
	}
	return nil
}

func seedInsumos(tx *gorm.DB, empresaID int64) error {
	for _, seedRow := range insumos {
		row := seedRow
		row.EmpresaID = empresaID
		row.IsActive = true
		if err := tx.Where("empresa_id = ? AND codigo = ?", empresaID, row.Codigo).FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("seed insumo %s: %w", row.Codigo, err)
		}
	}
	return nil
}
