package tenant

import (
	"fmt"

	"github.com/frahmantamala/vaccination-registry/internal"
)

// Scoped is implemented by every tenant-owned datamodel.
type Scoped interface {
	GetEmpresaID() int64
}

// CheckTenant fails with an internal TenantMismatchError when the entity is
// owned by another tenant. Transport turns it into a not found.
func CheckTenant(callerTenantID, entityTenantID int64) error {
	if callerTenantID == 0 || callerTenantID != entityTenantID {
		return internal.NewTenantMismatchError(
			fmt.Sprintf("tenant %d cannot access entity of tenant %d", callerTenantID, entityTenantID))
	}
	return nil
}

// Guard applies CheckTenant to every non-nil entity.
func Guard(callerTenantID int64, entities ...Scoped) error {
	for _, e := range entities {
		if e == nil {
			continue
		}
		if err := CheckTenant(callerTenantID, e.GetEmpresaID()); err != nil {
			return err
		}
	}
	return nil
}
