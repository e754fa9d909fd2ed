package access

// Resource keys of the seeded navigation tree. Route guards refer to these.
const (
	ResourceAdministracion     = "Administracion"
	ResourceEmpresas           = "Empresas"
	ResourceUsuarios           = "Usuarios"
	ResourceRoles              = "Roles"
	ResourceMenu               = "Menu"
	ResourcePacientes          = "Pacientes"
	ResourceRegistroVacunacion = "RegistroVacunacion"
	ResourceInsumos            = "Insumos"
	ResourceCatalogos          = "Catalogos"
	ResourceReportes           = "Reportes"
	ResourceReporteVacunacion  = "Reportes/Vacunacion"
)
