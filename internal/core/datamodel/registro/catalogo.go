package registro

import "time"

// CatalogEntry is the row shape shared by every coded reference table.
// Repositories address a concrete table with db.Table(kind.Table()).
type CatalogEntry struct {
	ID        int64     `gorm:"primaryKey"`
	EmpresaID int64     `gorm:"column:empresa_id;not null;uniqueIndex:,composite:empresa_codigo"`
	Codigo    string    `gorm:"column:codigo;not null;uniqueIndex:,composite:empresa_codigo"`
	Nombre    string    `gorm:"column:nombre;not null"`
	IsActive  bool      `gorm:"column:is_active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *CatalogEntry) GetEmpresaID() int64 { return c.EmpresaID }

// Concrete table types, used for schema migration of the reference tables.
type (
	TipoCarnet        struct{ CatalogEntry }
	CondicionUsuaria  struct{ CatalogEntry }
	PertenenciaEtnica struct{ CatalogEntry }
	Aseguradora       struct{ CatalogEntry }
	RegimenAfiliacion struct{ CatalogEntry }
	Hospital          struct{ CatalogEntry }
	CentroAtencion    struct{ CatalogEntry }
)

func (TipoCarnet) TableName() string        { return "tipos_carnet" }
func (CondicionUsuaria) TableName() string  { return "condiciones_usuaria" }
func (PertenenciaEtnica) TableName() string { return "pertenencias_etnicas" }
func (Aseguradora) TableName() string       { return "aseguradoras" }
func (RegimenAfiliacion) TableName() string { return "regimenes_afiliacion" }
func (Hospital) TableName() string          { return "hospitales" }
func (CentroAtencion) TableName() string    { return "centros_atencion" }

// AllModels lists every registry table in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&TipoCarnet{}, &CondicionUsuaria{}, &PertenenciaEtnica{}, &Aseguradora{},
		&RegimenAfiliacion{}, &Hospital{}, &CentroAtencion{},
		&Paciente{}, &AntecedenteMedico{}, &Insumo{}, &Entrada{},
		&RegistroVacunacion{}, &VacunaAplicada{},
	}
}
