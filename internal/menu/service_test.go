package menu_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	empresaDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/empresa"
	rbacDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/rbac"
	"github.com/frahmantamala/vaccination-registry/internal/core/events"
	"github.com/frahmantamala/vaccination-registry/internal/core/storetest"
	"github.com/frahmantamala/vaccination-registry/internal/menu"
	menuPostgres "github.com/frahmantamala/vaccination-registry/internal/menu/postgres"
	"github.com/frahmantamala/vaccination-registry/internal/rbac"
	rbacPostgres "github.com/frahmantamala/vaccination-registry/internal/rbac/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Menu Service", func() {
	var (
		ctx       context.Context
		db        *gorm.DB
		logger    *slog.Logger
		bus       *events.EventBus
		cache     *menu.Cache
		service   *menu.Service
		rbacSvc   *rbac.Service
		empresaID int64
		userID    int64
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = storetest.MustOpen()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewEventBus(logger)
		cache = menu.NewCache(16, time.Minute, nil)
		cache.Subscribe(bus)
		service = menu.NewService(menuPostgres.NewMenuRepository(db), cache, nil, logger)
		rbacSvc = rbac.NewService(rbacPostgres.NewRBACRepository(db), bus, logger)

		e := &empresaDatamodel.Empresa{Codigo: "E1", RazonSocial: "Empresa 1", NIT: "900-1", Estado: true}
		Expect(db.Create(e).Error).NotTo(HaveOccurred())
		empresaID = e.ID

		u := &rbacDatamodel.User{
			EmpresaID:    empresaID,
			Username:     "nurse",
			Email:        "nurse@mail.com",
			Name:         "Nurse",
			PasswordHash: "x",
			IsActive:     true,
		}
		Expect(db.Create(u).Error).NotTo(HaveOccurred())
		userID = u.ID
	})

	createItem := func(key string, parentID *int64) int64 {
		id, err := rbacSvc.CreateMenuItem(ctx, empresaID, rbac.CreateMenuItemDTO{Name: key, ResourceKey: key, ParentID: parentID})
		Expect(err).NotTo(HaveOccurred())
		return id
	}

	createRole := func(name string) int64 {
		id, err := rbacSvc.CreateRole(ctx, empresaID, rbac.CreateRoleDTO{Name: name})
		Expect(err).NotTo(HaveOccurred())
		return id
	}

	grant := func(roleID, itemID int64, caps access.Capabilities) {
		Expect(rbacSvc.GrantPermission(ctx, empresaID, roleID, rbac.GrantDTO{MenuItemID: itemID, Capabilities: caps})).To(Succeed())
	}

	assign := func(roleID int64) {
		Expect(rbacSvc.AssignRole(ctx, empresaID, userID, roleID)).To(Succeed())
	}

	Describe("Resolve", func() {
		It("returns an empty authorization for the anonymous identity", func() {
			auth, err := service.Resolve(ctx, internal.AnonymousIdentity)
			Expect(err).NotTo(HaveOccurred())
			Expect(auth.Tree).To(BeEmpty())
			Expect(auth.Permissions).To(BeEmpty())
			Expect(auth.Principal().Authenticated()).To(BeFalse())
		})

		It("returns an empty authorization for an unknown user", func() {
			auth, err := service.Resolve(ctx, "ghost")
			Expect(err).NotTo(HaveOccurred())
			Expect(auth.Tree).To(BeEmpty())
			Expect(auth.UserID).To(BeZero())
		})

		It("returns an empty authorization for an inactive user", func() {
			Expect(db.Model(&rbacDatamodel.User{}).Where("id = ?", userID).Update("is_active", false).Error).NotTo(HaveOccurred())

			auth, err := service.Resolve(ctx, "nurse")
			Expect(err).NotTo(HaveOccurred())
			Expect(auth.Principal().Authenticated()).To(BeFalse())
		})

		It("returns an empty authorization when the tenant is disabled", func() {
			Expect(db.Model(&empresaDatamodel.Empresa{}).Where("id = ?", empresaID).Update("estado", false).Error).NotTo(HaveOccurred())

			auth, err := service.Resolve(ctx, "nurse")
			Expect(err).NotTo(HaveOccurred())
			Expect(auth.Principal().Authenticated()).To(BeFalse())
		})

		It("resolves an authenticated principal with no roles to an empty tree", func() {
			auth, err := service.Resolve(ctx, "nurse")
			Expect(err).NotTo(HaveOccurred())
			Expect(auth.UserID).To(Equal(userID))
			Expect(auth.EmpresaID).To(Equal(empresaID))
			Expect(auth.Tree).To(BeEmpty())
		})

		It("unions the flags of Enfermera and Auditor", func() {
			registro := createItem(access.ResourceRegistroVacunacion, nil)
			enfermera := createRole("Enfermera")
			auditor := createRole("Auditor")
			grant(enfermera, registro, access.Capabilities{CanRead: true, CanCreate: true})
			grant(auditor, registro, access.Capabilities{CanRead: true})
			assign(enfermera)
			assign(auditor)

			auth, err := service.Resolve(ctx, "nurse")
			Expect(err).NotTo(HaveOccurred())
			Expect(auth.Permissions[access.ResourceRegistroVacunacion]).To(Equal(access.Capabilities{CanRead: true, CanCreate: true}))

			p := auth.Principal()
			Expect(p.Can(access.ResourceRegistroVacunacion, access.ActionCreate)).To(BeTrue())
			Expect(p.Can(access.ResourceRegistroVacunacion, access.ActionUpdate)).To(BeFalse())
			Expect(p.Can(access.ResourceRegistroVacunacion, access.ActionDelete)).To(BeFalse())
		})

		It("shows Reportes as a container with exactly one child", func() {
			reportes := createItem(access.ResourceReportes, nil)
			vacunacion := createItem(access.ResourceReporteVacunacion, &reportes)
			createItem("Reportes/Insumos", &reportes)
			role := createRole("Analista")
			grant(role, vacunacion, access.Capabilities{CanRead: true})
			assign(role)

			auth, err := service.Resolve(ctx, "nurse")
			Expect(err).NotTo(HaveOccurred())
			Expect(auth.Tree).To(HaveLen(1))
			Expect(auth.Tree[0].ResourceKey).To(Equal(access.ResourceReportes))
			Expect(auth.Tree[0].Container).To(BeTrue())
			Expect(auth.Tree[0].Children).To(HaveLen(1))
			Expect(auth.Tree[0].Children[0].ResourceKey).To(Equal(access.ResourceReporteVacunacion))
			Expect(auth.Permissions).NotTo(HaveKey(access.ResourceReportes))
		})

		It("shrinks capabilities monotonically when a role is removed", func() {
			registro := createItem(access.ResourceRegistroVacunacion, nil)
			pacientes := createItem(access.ResourcePacientes, nil)
			enfermera := createRole("Enfermera")
			auditor := createRole("Auditor")
			grant(enfermera, registro, access.Capabilities{CanRead: true, CanCreate: true})
			grant(auditor, registro, access.Capabilities{CanRead: true})
			grant(auditor, pacientes, access.Capabilities{CanRead: true})
			assign(enfermera)
			assign(auditor)

			before, err := service.Resolve(ctx, "nurse")
			Expect(err).NotTo(HaveOccurred())

			Expect(rbacSvc.UnassignRole(ctx, empresaID, userID, enfermera)).To(Succeed())

			after, err := service.Resolve(ctx, "nurse")
			Expect(err).NotTo(HaveOccurred())
			for resource, caps := range after.Permissions {
				Expect(before.Permissions).To(HaveKey(resource))
				Expect(caps.Union(before.Permissions[resource])).To(Equal(before.Permissions[resource]))
			}
			Expect(after.Permissions[access.ResourceRegistroVacunacion].CanCreate).To(BeFalse())
			Expect(after.Permissions[access.ResourcePacientes].CanRead).To(BeTrue())
		})

		It("ignores inactive menu items", func() {
			pacientes := createItem(access.ResourcePacientes, nil)
			role := createRole("Recepcion")
			grant(role, pacientes, access.Capabilities{CanRead: true})
			assign(role)
			Expect(db.Model(&rbacDatamodel.MenuItem{}).Where("id = ?", pacientes).Update("is_active", false).Error).NotTo(HaveOccurred())

			auth, err := service.Resolve(ctx, "nurse")
			Expect(err).NotTo(HaveOccurred())
			Expect(auth.Tree).To(BeEmpty())
			Expect(auth.Permissions).To(BeEmpty())
		})
	})

	Describe("Cache", func() {
		It("serves repeated resolutions from the cache", func() {
			_, err := service.Resolve(ctx, "nurse")
			Expect(err).NotTo(HaveOccurred())

			_, ok := cache.Get(empresaID, userID)
			Expect(ok).To(BeTrue())
		})

		It("drops the tenant's entries when access changes", func() {
			pacientes := createItem(access.ResourcePacientes, nil)
			role := createRole("Recepcion")
			assign(role)

			auth, err := service.Resolve(ctx, "nurse")
			Expect(err).NotTo(HaveOccurred())
			Expect(auth.Permissions).To(BeEmpty())
			Expect(cache.Len()).To(Equal(1))

			grant(role, pacientes, access.Capabilities{CanRead: true})
			Expect(cache.Len()).To(BeZero())

			auth, err = service.Resolve(ctx, "nurse")
			Expect(err).NotTo(HaveOccurred())
			Expect(auth.Permissions[access.ResourcePacientes].CanRead).To(BeTrue())
		})

		It("keeps entries of other tenants", func() {
			Expect(cache.Put(&menu.Authorization{EmpresaID: 42, UserID: 7}, cache.Generation(42))).To(BeTrue())
			Expect(cache.Put(&menu.Authorization{EmpresaID: empresaID, UserID: userID}, cache.Generation(empresaID))).To(BeTrue())

			Expect(cache.InvalidateTenant(empresaID)).To(Equal(1))
			_, ok := cache.Get(42, 7)
			Expect(ok).To(BeTrue())
		})

		It("refuses a write read under an older generation", func() {
			gen := cache.Generation(empresaID)
			cache.InvalidateTenant(empresaID)

			Expect(cache.Put(&menu.Authorization{EmpresaID: empresaID, UserID: userID}, gen)).To(BeFalse())
			Expect(cache.Len()).To(BeZero())
		})

		It("does not cache an authorization revoked while it was being resolved", func() {
			repo := &revokingRepository{cache: cache}
			svc := menu.NewService(repo, cache, nil, logger)

			first, err := svc.Resolve(ctx, "nurse")
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Permissions).To(HaveKey(access.ResourcePacientes))
			Expect(cache.Len()).To(BeZero())

			second, err := svc.Resolve(ctx, "nurse")
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Permissions).NotTo(HaveKey(access.ResourcePacientes))
			Expect(repo.grantCalls).To(Equal(2))
		})
	})
})

// revokingRepository serves one grant on pacientes, then revokes it and
// purges the tenant from the cache as a concurrent writer would.
type revokingRepository struct {
	cache      *menu.Cache
	revoked    bool
	grantCalls int
}

func (r *revokingRepository) GetUserByUsername(_ context.Context, username string) (*rbacDatamodel.User, error) {
	return &rbacDatamodel.User{ID: 1, EmpresaID: 1, Username: username, IsActive: true}, nil
}

func (r *revokingRepository) IsTenantActive(context.Context, int64) (bool, error) {
	return true, nil
}

func (r *revokingRepository) ListRoleIDs(context.Context, int64) ([]int64, error) {
	return []int64{10}, nil
}

func (r *revokingRepository) ListGrants(_ context.Context, empresaID int64, _ []int64) ([]*rbacDatamodel.RolePermission, error) {
	r.grantCalls++
	if r.revoked {
		return nil, nil
	}
	grants := []*rbacDatamodel.RolePermission{
		{RoleID: 10, MenuItemID: 100, EmpresaID: empresaID, CanRead: true, CanDelete: true},
	}
	r.revoked = true
	r.cache.InvalidateTenant(empresaID)
	return grants, nil
}

func (r *revokingRepository) ListActiveMenuItems(_ context.Context, empresaID int64) ([]*rbacDatamodel.MenuItem, error) {
	return []*rbacDatamodel.MenuItem{
		{ID: 100, EmpresaID: empresaID, Name: "Pacientes", ResourceKey: access.ResourcePacientes, IsActive: true},
	}, nil
}
