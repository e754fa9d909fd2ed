package catalog

import "github.com/frahmantamala/vaccination-registry/internal/core/common/validation"

type CreateEntryDTO struct {
	Codigo string `json:"codigo"`
	Nombre string `json:"nombre"`
}

func (d CreateEntryDTO) Validate() error {
	if err := validation.ValidateCode("codigo", d.Codigo, maxCodigoLength); err != nil {
		return err
	}
	if err := validation.ValidateName("nombre", d.Nombre, maxNombreLength); err != nil {
		return err
	}
	return nil
}

type UpdateEntryDTO struct {
	Nombre   string `json:"nombre"`
	IsActive *bool  `json:"is_active"`
}

func (d UpdateEntryDTO) Validate() error {
	if err := validation.ValidateName("nombre", d.Nombre, maxNombreLength); err != nil {
		return err
	}
	return nil
}

type EntriesResponse struct {
	Kind    Kind     `json:"kind"`
	Entries []*Entry `json:"entries"`
}
