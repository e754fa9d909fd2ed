package registro

import "time"

type Paciente struct {
	ID                   int64     `gorm:"primaryKey"`
	EmpresaID            int64     `gorm:"column:empresa_id;not null;uniqueIndex:idx_pacientes_empresa_identificacion"`
	TipoIdentificacion   string    `gorm:"column:tipo_identificacion;not null;uniqueIndex:idx_pacientes_empresa_identificacion"`
	NumeroIdentificacion string    `gorm:"column:numero_identificacion;not null;uniqueIndex:idx_pacientes_empresa_identificacion"`
	PrimerNombre         string    `gorm:"column:primer_nombre;not null"`
	SegundoNombre        string    `gorm:"column:segundo_nombre"`
	PrimerApellido       string    `gorm:"column:primer_apellido;not null"`
	SegundoApellido      string    `gorm:"column:segundo_apellido"`
	FechaNacimiento      time.Time `gorm:"column:fecha_nacimiento;not null"`
	Sexo                 string    `gorm:"column:sexo"`
	Telefono             string    `gorm:"column:telefono"`
	Direccion            string    `gorm:"column:direccion"`
	TipoCarnetID         *int64    `gorm:"column:tipo_carnet_id"`
	CondicionUsuariaID   *int64    `gorm:"column:condicion_usuaria_id"`
	PertenenciaEtnicaID  *int64    `gorm:"column:pertenencia_etnica_id"`
	AseguradoraID        *int64    `gorm:"column:aseguradora_id"`
	RegimenAfiliacionID  *int64    `gorm:"column:regimen_afiliacion_id"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Paciente) TableName() string { return "pacientes" }

func (p *Paciente) GetEmpresaID() int64 { return p.EmpresaID }

type AntecedenteMedico struct {
	ID               int64      `gorm:"primaryKey"`
	EmpresaID        int64      `gorm:"column:empresa_id;not null;index"`
	PacienteID       int64      `gorm:"column:paciente_id;not null;index"`
	Tipo             string     `gorm:"column:tipo;not null"`
	Descripcion      string     `gorm:"column:descripcion;not null"`
	FechaDiagnostico *time.Time `gorm:"column:fecha_diagnostico"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (AntecedenteMedico) TableName() string { return "antecedentes_medicos" }

func (a *AntecedenteMedico) GetEmpresaID() int64 { return a.EmpresaID }

type RegistroVacunacion struct {
	ID                  int64     `gorm:"primaryKey"`
	EmpresaID           int64     `gorm:"column:empresa_id;not null;index"`
	PacienteID          int64     `gorm:"column:paciente_id;not null;index"`
	FechaAtencion       time.Time `gorm:"column:fecha_atencion;not null"`
	Observaciones       string    `gorm:"column:observaciones"`
	HospitalID          *int64    `gorm:"column:hospital_id"`
	CentroAtencionID    *int64    `gorm:"column:centro_atencion_id"`
	AseguradoraID       *int64    `gorm:"column:aseguradora_id"`
	RegimenAfiliacionID *int64    `gorm:"column:regimen_afiliacion_id"`
	TipoCarnetID        *int64    `gorm:"column:tipo_carnet_id"`
	CondicionUsuariaID  *int64    `gorm:"column:condicion_usuaria_id"`
	PertenenciaEtnicaID *int64    `gorm:"column:pertenencia_etnica_id"`
	CreadoPorID         *int64    `gorm:"column:creado_por_id"`
	ModificadoPorID     *int64    `gorm:"column:modificado_por_id"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (RegistroVacunacion) TableName() string { return "registros_vacunacion" }

func (r *RegistroVacunacion) GetEmpresaID() int64 { return r.EmpresaID }

type VacunaAplicada struct {
	ID                   int64     `gorm:"primaryKey"`
	EmpresaID            int64     `gorm:"column:empresa_id;not null;index"`
	RegistroVacunacionID int64     `gorm:"column:registro_vacunacion_id;not null;index"`
	InsumoID             *int64    `gorm:"column:insumo_id"`
	EntradaID            *int64    `gorm:"column:entrada_id"`
	Dosis                string    `gorm:"column:dosis;not null"`
	ViaAdministracion    string    `gorm:"column:via_administracion"`
	FechaAplicacion      time.Time `gorm:"column:fecha_aplicacion;not null"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (VacunaAplicada) TableName() string { return "vacunas_aplicadas" }

func (v *VacunaAplicada) GetEmpresaID() int64 { return v.EmpresaID }

type Insumo struct {
	ID           int64     `gorm:"primaryKey"`
	EmpresaID    int64     `gorm:"column:empresa_id;not null;uniqueIndex:idx_insumos_empresa_codigo"`
	Codigo       string    `gorm:"column:codigo;not null;uniqueIndex:idx_insumos_empresa_codigo"`
	Nombre       string    `gorm:"column:nombre;not null"`
	Tipo         string    `gorm:"column:tipo;not null"`
	UnidadMedida string    `gorm:"column:unidad_medida"`
	Stock        int64     `gorm:"column:stock;not null;default:0"`
	IsActive     bool      `gorm:"column:is_active"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Insumo) TableName() string { return "insumos" }

func (i *Insumo) GetEmpresaID() int64 { return i.EmpresaID }

// Entrada is a received lot of an Insumo.
type Entrada struct {
	ID               int64     `gorm:"primaryKey"`
	EmpresaID        int64     `gorm:"column:empresa_id;not null;index"`
	InsumoID         int64     `gorm:"column:insumo_id;not null;index"`
	Lote             string    `gorm:"column:lote;not null"`
	FechaVencimiento time.Time `gorm:"column:fecha_vencimiento;not null"`
	Cantidad         int64     `gorm:"column:cantidad;not null"`
	FechaEntrada     time.Time `gorm:"column:fecha_entrada;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Entrada) TableName() string { return "entradas" }

func (e *Entrada) GetEmpresaID() int64 { return e.EmpresaID }
