package rbac_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	empresaDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/empresa"
	rbacDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/rbac"
	"github.com/frahmantamala/vaccination-registry/internal/core/events"
	"github.com/frahmantamala/vaccination-registry/internal/core/storetest"
	"github.com/frahmantamala/vaccination-registry/internal/rbac"
	rbacPostgres "github.com/frahmantamala/vaccination-registry/internal/rbac/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestRBAC(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "RBAC Suite")
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	return p.PublishSync(ctx, e)
}

func (p *recordingPublisher) PublishSync(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func newEmpresa(db *gorm.DB, codigo string) int64 {
	e := &empresaDatamodel.Empresa{Codigo: codigo, RazonSocial: "Empresa " + codigo, NIT: codigo + "-1", Estado: true}
	Expect(db.Create(e).Error).NotTo(HaveOccurred())
	return e.ID
}

func newUser(db *gorm.DB, empresaID int64, username string) int64 {
	u := &rbacDatamodel.User{
		EmpresaID:    empresaID,
		Username:     username,
		Email:        username + "@mail.com",
		Name:         username,
		PasswordHash: "x",
		IsActive:     true,
	}
	Expect(db.Create(u).Error).NotTo(HaveOccurred())
	return u.ID
}

var _ = Describe("RBAC Service", func() {
	var (
		ctx       context.Context
		db        *gorm.DB
		service   *rbac.Service
		publisher *recordingPublisher
		empresaA  int64
		empresaB  int64
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = storetest.MustOpen()
		publisher = &recordingPublisher{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = rbac.NewService(rbacPostgres.NewRBACRepository(db), publisher, logger)

		empresaA = newEmpresa(db, "A")
		empresaB = newEmpresa(db, "B")
	})

	createItem := func(empresaID int64, key string, parentID *int64) int64 {
		id, err := service.CreateMenuItem(ctx, empresaID, rbac.CreateMenuItemDTO{Name: key, ResourceKey: key, ParentID: parentID})
		Expect(err).NotTo(HaveOccurred())
		return id
	}

	createRole := func(empresaID int64, name string) int64 {
		id, err := service.CreateRole(ctx, empresaID, rbac.CreateRoleDTO{Name: name})
		Expect(err).NotTo(HaveOccurred())
		return id
	}

	Describe("CreateRole", func() {
		It("creates a role and publishes an access change", func() {
			id := createRole(empresaA, "Enfermera")
			Expect(id).To(BeNumerically(">", 0))
			Expect(publisher.count()).To(Equal(1))
		})

		It("rejects an empty name", func() {
			_, err := service.CreateRole(ctx, empresaA, rbac.CreateRoleDTO{Name: "  "})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("rejects a name longer than 100 characters", func() {
			long := make([]byte, 101)
			for i := range long {
				long[i] = 'a'
			}
			_, err := service.CreateRole(ctx, empresaA, rbac.CreateRoleDTO{Name: string(long)})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("rejects a duplicate name in the same tenant", func() {
			createRole(empresaA, "Auditor")
			_, err := service.CreateRole(ctx, empresaA, rbac.CreateRoleDTO{Name: "Auditor"})
			Expect(err).To(MatchError(rbac.ErrDuplicateRole))
		})

		It("allows the same name in another tenant", func() {
			createRole(empresaA, "Auditor")
			_, err := service.CreateRole(ctx, empresaB, rbac.CreateRoleDTO{Name: "Auditor"})
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("GrantPermission", func() {
		var roleID, itemID int64

		BeforeEach(func() {
			roleID = createRole(empresaA, "Enfermera")
			itemID = createItem(empresaA, "RegistroVacunacion", nil)
		})

		It("is idempotent", func() {
			dto := rbac.GrantDTO{MenuItemID: itemID, Capabilities: access.Capabilities{CanRead: true, CanCreate: true}}
			Expect(service.GrantPermission(ctx, empresaA, roleID, dto)).To(Succeed())
			Expect(service.GrantPermission(ctx, empresaA, roleID, dto)).To(Succeed())

			var count int64
			Expect(db.Model(&rbacDatamodel.RolePermission{}).Where("role_id = ?", roleID).Count(&count).Error).To(Succeed())
			Expect(count).To(Equal(int64(1)))

			grants, err := service.ListGrants(ctx, empresaA, roleID)
			Expect(err).NotTo(HaveOccurred())
			Expect(grants).To(HaveLen(1))
			Expect(grants[0].Capabilities).To(Equal(access.Capabilities{CanRead: true, CanCreate: true}))
		})

		It("overwrites flags of an existing grant", func() {
			Expect(service.GrantPermission(ctx, empresaA, roleID, rbac.GrantDTO{
				MenuItemID:   itemID,
				Capabilities: access.Capabilities{CanRead: true, CanDelete: true},
			})).To(Succeed())
			Expect(service.GrantPermission(ctx, empresaA, roleID, rbac.GrantDTO{
				MenuItemID:   itemID,
				Capabilities: access.Capabilities{CanRead: true},
			})).To(Succeed())

			grants, err := service.ListGrants(ctx, empresaA, roleID)
			Expect(err).NotTo(HaveOccurred())
			Expect(grants).To(HaveLen(1))
			Expect(grants[0].CanDelete).To(BeFalse())
			Expect(grants[0].CanRead).To(BeTrue())
		})

		It("fails with not found for an unknown role", func() {
			err := service.GrantPermission(ctx, empresaA, 9999, rbac.GrantDTO{MenuItemID: itemID})
			Expect(err).To(MatchError(rbac.ErrRoleNotFound))
		})

		It("fails with not found for an unknown menu item", func() {
			err := service.GrantPermission(ctx, empresaA, roleID, rbac.GrantDTO{MenuItemID: 9999})
			Expect(err).To(MatchError(rbac.ErrMenuItemNotFound))
		})

		It("rejects a grant spanning two tenants", func() {
			foreignItem := createItem(empresaB, "Pacientes", nil)
			err := service.GrantPermission(ctx, empresaA, roleID, rbac.GrantDTO{MenuItemID: foreignItem})
			Expect(internal.IsType(err, internal.ErrorTypeTenantMismatch)).To(BeTrue())
			Expect(internal.Public(err).Type).To(Equal(internal.ErrorTypeNotFound))
		})

		It("links an optional permission and nulls it when the permission is deleted", func() {
			permID, err := service.CreatePermission(ctx, empresaA, rbac.CreatePermissionDTO{Resource: "RegistroVacunacion", Action: "read"})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.GrantPermission(ctx, empresaA, roleID, rbac.GrantDTO{
				MenuItemID:   itemID,
				PermissionID: &permID,
				Capabilities: access.Capabilities{CanRead: true},
			})).To(Succeed())

			Expect(service.DeletePermission(ctx, empresaA, permID)).To(Succeed())

			grants, err := service.ListGrants(ctx, empresaA, roleID)
			Expect(err).NotTo(HaveOccurred())
			Expect(grants).To(HaveLen(1))
			Expect(grants[0].PermissionID).To(BeNil())
			Expect(grants[0].CanRead).To(BeTrue())
		})

		It("revokes a grant", func() {
			Expect(service.GrantPermission(ctx, empresaA, roleID, rbac.GrantDTO{MenuItemID: itemID})).To(Succeed())
			Expect(service.RevokePermission(ctx, empresaA, roleID, itemID)).To(Succeed())
			Expect(service.RevokePermission(ctx, empresaA, roleID, itemID)).To(MatchError(rbac.ErrGrantNotFound))
		})
	})

	Describe("CreatePermission", func() {
		It("rejects duplicates of (resource, action) in a tenant", func() {
			dto := rbac.CreatePermissionDTO{Resource: "Pacientes", Action: "create"}
			_, err := service.CreatePermission(ctx, empresaA, dto)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreatePermission(ctx, empresaA, dto)
			Expect(err).To(MatchError(rbac.ErrDuplicatePermission))
			_, err = service.CreatePermission(ctx, empresaB, dto)
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects unknown actions", func() {
			_, err := service.CreatePermission(ctx, empresaA, rbac.CreatePermissionDTO{Resource: "Pacientes", Action: "approve"})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})
	})

	Describe("AssignRole", func() {
		var userID, roleID int64

		BeforeEach(func() {
			userID = newUser(db, empresaA, "ana")
			roleID = createRole(empresaA, "Enfermera")
		})

		It("assigns once and rejects a second assignment", func() {
			Expect(service.AssignRole(ctx, empresaA, userID, roleID)).To(Succeed())
			Expect(service.AssignRole(ctx, empresaA, userID, roleID)).To(MatchError(rbac.ErrAlreadyAssigned))

			ids, err := service.ListUserRoles(ctx, empresaA, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ConsistOf(roleID))
		})

		It("fails with a tenant mismatch when user and role belong to different tenants", func() {
			foreignRole := createRole(empresaB, "Auditor")
			err := service.AssignRole(ctx, empresaA, userID, foreignRole)
			Expect(internal.IsType(err, internal.ErrorTypeTenantMismatch)).To(BeTrue())

			var count int64
			Expect(db.Model(&rbacDatamodel.UserRole{}).Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())
		})

		It("unassigns a role", func() {
			Expect(service.AssignRole(ctx, empresaA, userID, roleID)).To(Succeed())
			Expect(service.UnassignRole(ctx, empresaA, userID, roleID)).To(Succeed())
			Expect(service.UnassignRole(ctx, empresaA, userID, roleID)).To(MatchError(rbac.ErrAssignmentNotFound))
		})
	})

	Describe("DeleteRole", func() {
		It("cascades grants and assignments but keeps menu items and permissions", func() {
			userID := newUser(db, empresaA, "ana")
			roleID := createRole(empresaA, "Enfermera")
			itemID := createItem(empresaA, "Pacientes", nil)
			permID, err := service.CreatePermission(ctx, empresaA, rbac.CreatePermissionDTO{Resource: "Pacientes", Action: "read"})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.GrantPermission(ctx, empresaA, roleID, rbac.GrantDTO{MenuItemID: itemID, PermissionID: &permID})).To(Succeed())
			Expect(service.AssignRole(ctx, empresaA, userID, roleID)).To(Succeed())

			Expect(service.DeleteRole(ctx, empresaA, roleID)).To(Succeed())

			var grants, assignments, items, perms int64
			db.Model(&rbacDatamodel.RolePermission{}).Count(&grants)
			db.Model(&rbacDatamodel.UserRole{}).Count(&assignments)
			db.Model(&rbacDatamodel.MenuItem{}).Count(&items)
			db.Model(&rbacDatamodel.Permission{}).Count(&perms)
			Expect(grants).To(BeZero())
			Expect(assignments).To(BeZero())
			Expect(items).To(Equal(int64(1)))
			Expect(perms).To(Equal(int64(1)))
		})

		It("hides roles of other tenants", func() {
			roleID := createRole(empresaB, "Auditor")
			err := service.DeleteRole(ctx, empresaA, roleID)
			Expect(internal.Public(err).Type).To(Equal(internal.ErrorTypeNotFound))
		})
	})

	Describe("Menu item hierarchy", func() {
		var reportes, vacunacion int64

		BeforeEach(func() {
			reportes = createItem(empresaA, "Reportes", nil)
			vacunacion = createItem(empresaA, "Reportes/Vacunacion", &reportes)
		})

		It("rejects deleting a parent with children until the child is gone", func() {
			err := service.DeleteMenuItem(ctx, empresaA, reportes)
			Expect(err).To(MatchError(rbac.ErrMenuItemHasChildren))

			Expect(service.DeleteMenuItem(ctx, empresaA, vacunacion)).To(Succeed())
			Expect(service.DeleteMenuItem(ctx, empresaA, reportes)).To(Succeed())
		})

		It("allows deleting the parent after re-parenting the child", func() {
			Expect(service.MoveMenuItem(ctx, empresaA, vacunacion, rbac.MoveMenuItemDTO{ParentID: nil})).To(Succeed())
			Expect(service.DeleteMenuItem(ctx, empresaA, reportes)).To(Succeed())

			items, err := service.ListMenuItems(ctx, empresaA)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].ResourceKey).To(Equal("Reportes/Vacunacion"))
			Expect(items[0].ParentID).To(BeNil())
		})

		It("removes only the deleted childless node and its grants", func() {
			other := createItem(empresaA, "Pacientes", nil)
			roleID := createRole(empresaA, "Auditor")
			Expect(service.GrantPermission(ctx, empresaA, roleID, rbac.GrantDTO{MenuItemID: vacunacion, Capabilities: access.Capabilities{CanRead: true}})).To(Succeed())
			Expect(service.GrantPermission(ctx, empresaA, roleID, rbac.GrantDTO{MenuItemID: other, Capabilities: access.Capabilities{CanRead: true}})).To(Succeed())

			Expect(service.DeleteMenuItem(ctx, empresaA, vacunacion)).To(Succeed())

			items, err := service.ListMenuItems(ctx, empresaA)
			Expect(err).NotTo(HaveOccurred())
			keys := make([]string, 0, len(items))
			for _, it := range items {
				keys = append(keys, it.ResourceKey)
			}
			Expect(keys).To(ConsistOf("Reportes", "Pacientes"))

			grants, err := service.ListGrants(ctx, empresaA, roleID)
			Expect(err).NotTo(HaveOccurred())
			Expect(grants).To(HaveLen(1))
			Expect(grants[0].MenuItemID).To(Equal(other))
		})

		It("rejects moving a node under its own descendant", func() {
			err := service.MoveMenuItem(ctx, empresaA, reportes, rbac.MoveMenuItemDTO{ParentID: &vacunacion})
			Expect(err).To(MatchError(rbac.ErrMenuItemCycle))

			err = service.MoveMenuItem(ctx, empresaA, reportes, rbac.MoveMenuItemDTO{ParentID: &reportes})
			Expect(err).To(MatchError(rbac.ErrMenuItemCycle))
		})

		It("rejects a parent from another tenant", func() {
			foreign := createItem(empresaB, "Reportes", nil)
			_, err := service.CreateMenuItem(ctx, empresaA, rbac.CreateMenuItemDTO{Name: "x", ResourceKey: "X", ParentID: &foreign})
			Expect(internal.IsType(err, internal.ErrorTypeTenantMismatch)).To(BeTrue())

			err = service.MoveMenuItem(ctx, empresaA, vacunacion, rbac.MoveMenuItemDTO{ParentID: &foreign})
			Expect(internal.IsType(err, internal.ErrorTypeTenantMismatch)).To(BeTrue())
		})

		It("rejects a duplicate resource key in the tenant", func() {
			_, err := service.CreateMenuItem(ctx, empresaA, rbac.CreateMenuItemDTO{Name: "dup", ResourceKey: "Reportes"})
			Expect(err).To(MatchError(rbac.ErrDuplicateMenuItem))
		})
	})
})
