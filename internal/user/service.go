package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	rbacDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/rbac"
	"github.com/frahmantamala/vaccination-registry/internal/core/events"
	"github.com/frahmantamala/vaccination-registry/internal/tenant"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Repository getters return nil, nil when the row does not exist.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*rbacDatamodel.User, error)
	GetByUsername(ctx context.Context, username string) (*rbacDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*rbacDatamodel.User, error)
	List(ctx context.Context, empresaID int64, limit, offset int) ([]*rbacDatamodel.User, error)
	Create(ctx context.Context, u *rbacDatamodel.User) error
	SetActive(ctx context.Context, id int64, active bool) error
	SetPasswordHash(ctx context.Context, id int64, hash string) error
	// Delete drops the user's role links and clears audit references to it.
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo       Repository
	publisher  events.Publisher
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, publisher events.Publisher, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		publisher:  publisher,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) Create(ctx context.Context, p *access.Principal, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByUsername(ctx, dto.Username); err != nil {
		return nil, s.storeError("get user by username", err)
	} else if existing != nil {
		return nil, ErrDuplicateUsername
	}
	if existing, err := s.repo.GetByEmail(ctx, dto.Email); err != nil {
		return nil, s.storeError("get user by email", err)
	} else if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	u := &rbacDatamodel.User{
		EmpresaID:    p.EmpresaID,
		Username:     dto.Username,
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUsername
		}
		return nil, s.storeError("create user", err)
	}

	s.logger.Info("user created", "user_id", u.ID, "empresa_id", u.EmpresaID, "created_by", p.UserID)
	return FromDataModel(u), nil
}

func (s *Service) GetByID(ctx context.Context, p *access.Principal, id int64) (*User, error) {
	u, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(u), nil
}

func (s *Service) List(ctx context.Context, p *access.Principal, limit, offset int) ([]*User, error) {
	rows, err := s.repo.List(ctx, p.EmpresaID, limit, offset)
	if err != nil {
		return nil, s.storeError("list users", err)
	}
	users := make([]*User, 0, len(rows))
	for _, u := range rows {
		users = append(users, FromDataModel(u))
	}
	return users, nil
}

// SetActive toggles login and authorization for a user. Deactivation takes
// effect on the next request because cached authorizations are dropped.
func (s *Service) SetActive(ctx context.Context, p *access.Principal, id int64, active bool) error {
	if _, err := s.load(ctx, p, id); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return s.storeError("set user active", err)
	}

	s.logger.Info("user active flag changed", "user_id", id, "is_active", active, "changed_by", p.UserID)
	s.accessChanged(ctx, p.EmpresaID, "user.active")
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, p *access.Principal, id int64, dto ResetPasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	if _, err := s.load(ctx, p, id); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}
	if err := s.repo.SetPasswordHash(ctx, id, string(hash)); err != nil {
		return s.storeError("set password", err)
	}

	s.logger.Info("password reset", "user_id", id, "reset_by", p.UserID)
	return nil
}

func (s *Service) Delete(ctx context.Context, p *access.Principal, id int64) error {
	if id == p.UserID {
		return ErrDeleteSelf
	}
	if _, err := s.load(ctx, p, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storeError("delete user", err)
	}

	s.logger.Info("user deleted", "user_id", id, "deleted_by", p.UserID)
	s.accessChanged(ctx, p.EmpresaID, "user.deleted")
	return nil
}

func (s *Service) load(ctx context.Context, p *access.Principal, id int64) (*rbacDatamodel.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError("get user", err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	if err := tenant.Guard(p.EmpresaID, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) accessChanged(ctx context.Context, empresaID int64, reason string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSync(ctx, events.NewAccessChangedEvent(empresaID, reason)); err != nil {
		s.logger.Error("failed to publish access change", "empresa_id", empresaID, "reason", reason, "error", err)
	}
}

func (s *Service) storeError(op string, err error) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	s.logger.Error("user store failure", "op", op, "error", err)
	return internal.NewDependencyError("user store unavailable", err)
}
