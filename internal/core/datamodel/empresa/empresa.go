package empresa

import "time"

type Empresa struct {
	ID          int64     `gorm:"primaryKey"`
	Codigo      string    `gorm:"column:codigo;uniqueIndex;not null"`
	RazonSocial string    `gorm:"column:razon_social;not null"`
	NIT         string    `gorm:"column:nit;not null"`
	Email       string    `gorm:"column:email"`
	Telefono    string    `gorm:"column:telefono"`
	Direccion   string    `gorm:"column:direccion"`
	Estado      bool      `gorm:"column:estado"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Empresa) TableName() string {
	return "empresas"
}

// GetEmpresaID makes the tenant row scoped to itself.
func (e *Empresa) GetEmpresaID() int64 {
	return e.ID
}
