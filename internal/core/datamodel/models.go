// Package datamodel groups the gorm models of every bounded context.
package datamodel

import (
	"github.com/frahmantamala/vaccination-registry/internal/core/datamodel/empresa"
	"github.com/frahmantamala/vaccination-registry/internal/core/datamodel/rbac"
	"github.com/frahmantamala/vaccination-registry/internal/core/datamodel/registro"
)

// All returns every model in creation order. Used by AutoMigrate in tests
// and by the seed command; production schemas come from goose migrations.
func All() []interface{} {
	models := []interface{}{&empresa.Empresa{}}
	models = append(models, rbac.Models()...)
	return append(models, registro.AllModels()...)
}
