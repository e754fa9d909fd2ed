package menu

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/vaccination-registry/internal"
	rbacDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/rbac"
	"github.com/frahmantamala/vaccination-registry/internal/core/metrics"
)

// Repository is the read side of the RBAC graph needed for resolution.
// GetUserByUsername returns nil, nil for unknown users.
type Repository interface {
	GetUserByUsername(ctx context.Context, username string) (*rbacDatamodel.User, error)
	IsTenantActive(ctx context.Context, empresaID int64) (bool, error)
	ListRoleIDs(ctx context.Context, userID int64) ([]int64, error)
	ListGrants(ctx context.Context, empresaID int64, roleIDs []int64) ([]*rbacDatamodel.RolePermission, error)
	ListActiveMenuItems(ctx context.Context, empresaID int64) ([]*rbacDatamodel.MenuItem, error)
}

type Service struct {
	repo    Repository
	cache   *Cache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewService builds the resolver. cache and m may be nil.
func NewService(repo Repository, cache *Cache, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		metrics: m,
		logger:  logger,
	}
}

// Resolve computes the authorization of identity. Anonymous, unknown and
// inactive users (or users of a disabled tenant) get Empty with no error.
// Any store failure is a DependencyError and callers must deny access.
func (s *Service) Resolve(ctx context.Context, identity string) (*Authorization, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" || identity == internal.AnonymousIdentity {
		return Empty(), nil
	}

	user, err := s.repo.GetUserByUsername(ctx, identity)
	if err != nil {
		return nil, s.dependencyError("get user", err)
	}
	if user == nil || !user.IsActive {
		s.logger.Debug("no access for identity", "identity", identity, "found", user != nil)
		return Empty(), nil
	}

	active, err := s.repo.IsTenantActive(ctx, user.EmpresaID)
	if err != nil {
		return nil, s.dependencyError("get tenant", err)
	}
	if !active {
		s.logger.Info("tenant disabled, denying access", "empresa_id", user.EmpresaID, "user_id", user.ID)
		return Empty(), nil
	}

	var gen uint64
	if s.cache != nil {
		if auth, ok := s.cache.Get(user.EmpresaID, user.ID); ok {
			return auth, nil
		}
		gen = s.cache.Generation(user.EmpresaID)
	}

	start := time.Now()
	auth, err := s.resolveUser(ctx, user)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveResolve(time.Since(start).Seconds())

	if s.cache != nil && !s.cache.Put(auth, gen) {
		s.logger.Debug("access changed during resolution, not caching", "empresa_id", user.EmpresaID, "user_id", user.ID)
	}
	return auth, nil
}

func (s *Service) resolveUser(ctx context.Context, user *rbacDatamodel.User) (*Authorization, error) {
	auth := Empty()
	auth.UserID = user.ID
	auth.EmpresaID = user.EmpresaID
	auth.Username = user.Username

	roleIDs, err := s.repo.ListRoleIDs(ctx, user.ID)
	if err != nil {
		return nil, s.dependencyError("list roles", err)
	}
	if len(roleIDs) == 0 {
		return auth, nil
	}

	grants, err := s.repo.ListGrants(ctx, user.EmpresaID, roleIDs)
	if err != nil {
		return nil, s.dependencyError("list grants", err)
	}

	items, err := s.repo.ListActiveMenuItems(ctx, user.EmpresaID)
	if err != nil {
		return nil, s.dependencyError("list menu items", err)
	}

	merged := MergeGrants(grants)
	auth.Tree = BuildTree(items, merged)
	auth.Permissions = PermissionTable(items, merged)

	s.logger.Debug("authorization resolved",
		"user_id", user.ID,
		"empresa_id", user.EmpresaID,
		"roles", len(roleIDs),
		"resources", len(auth.Permissions))
	return auth, nil
}

func (s *Service) dependencyError(op string, err error) error {
	s.logger.Error("authorization store failure", "op", op, "error", err)
	return internal.NewDependencyError("authorization store unavailable", err)
}
