package rbac

import (
	"time"

	"github.com/frahmantamala/vaccination-registry/internal/core/access"
)

type User struct {
	ID           int64     `gorm:"primaryKey"`
	EmpresaID    int64     `gorm:"column:empresa_id;not null;index"`
	Username     string    `gorm:"column:username;uniqueIndex;not null"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	Name         string    `gorm:"column:name;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	IsActive     bool      `gorm:"column:is_active"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

func (u *User) GetEmpresaID() int64 { return u.EmpresaID }

type Role struct {
	ID          int64     `gorm:"primaryKey"`
	EmpresaID   int64     `gorm:"column:empresa_id;not null;uniqueIndex:idx_roles_empresa_name"`
	Name        string    `gorm:"column:name;not null;uniqueIndex:idx_roles_empresa_name"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Role) TableName() string { return "roles" }

func (r *Role) GetEmpresaID() int64 { return r.EmpresaID }

type Permission struct {
	ID          int64     `gorm:"primaryKey"`
	EmpresaID   int64     `gorm:"column:empresa_id;not null;uniqueIndex:idx_permissions_empresa_resource_action"`
	Resource    string    `gorm:"column:resource;not null;uniqueIndex:idx_permissions_empresa_resource_action"`
	Action      string    `gorm:"column:action;not null;uniqueIndex:idx_permissions_empresa_resource_action"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Permission) TableName() string { return "permissions" }

func (p *Permission) GetEmpresaID() int64 { return p.EmpresaID }

// MenuItem is a node of the navigation tree. Children are found by querying
// parent_id, never through a back collection.
type MenuItem struct {
	ID          int64     `gorm:"primaryKey"`
	EmpresaID   int64     `gorm:"column:empresa_id;not null;uniqueIndex:idx_menu_items_empresa_resource"`
	Name        string    `gorm:"column:name;not null"`
	ResourceKey string    `gorm:"column:resource_key;not null;uniqueIndex:idx_menu_items_empresa_resource"`
	Icon        string    `gorm:"column:icon"`
	URL         string    `gorm:"column:url"`
	Controller  string    `gorm:"column:controller"`
	Action      string    `gorm:"column:action"`
	ParentID    *int64    `gorm:"column:parent_id;index"`
	Order       int       `gorm:"column:display_order;default:0"`
	IsActive    bool      `gorm:"column:is_active"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (MenuItem) TableName() string { return "menu_items" }

func (m *MenuItem) GetEmpresaID() int64 { return m.EmpresaID }

type RolePermission struct {
	RoleID           int64     `gorm:"column:role_id;primaryKey;autoIncrement:false"`
	MenuItemID       int64     `gorm:"column:menu_item_id;primaryKey;autoIncrement:false"`
	PermissionID     *int64    `gorm:"column:permission_id"`
	EmpresaID        int64     `gorm:"column:empresa_id;not null;index"`
	CanCreate        bool      `gorm:"column:can_create;not null;default:false"`
	CanRead          bool      `gorm:"column:can_read;not null;default:false"`
	CanUpdate        bool      `gorm:"column:can_update;not null;default:false"`
	CanDelete        bool      `gorm:"column:can_delete;not null;default:false"`
	CanActivate      bool      `gorm:"column:can_activate;not null;default:false"`
	CanResetPassword bool      `gorm:"column:can_reset_password;not null;default:false"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (RolePermission) TableName() string { return "role_permissions" }

func (rp *RolePermission) GetEmpresaID() int64 { return rp.EmpresaID }

func (rp *RolePermission) Capabilities() access.Capabilities {
	return access.Capabilities{
		CanCreate:        rp.CanCreate,
		CanRead:          rp.CanRead,
		CanUpdate:        rp.CanUpdate,
		CanDelete:        rp.CanDelete,
		CanActivate:      rp.CanActivate,
		CanResetPassword: rp.CanResetPassword,
	}
}

func (rp *RolePermission) SetCapabilities(c access.Capabilities) {
	rp.CanCreate = c.CanCreate
	rp.CanRead = c.CanRead
	rp.CanUpdate = c.CanUpdate
	rp.CanDelete = c.CanDelete
	rp.CanActivate = c.CanActivate
	rp.CanResetPassword = c.CanResetPassword
}

type UserRole struct {
	UserID    int64     `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	RoleID    int64     `gorm:"column:role_id;primaryKey;autoIncrement:false"`
	EmpresaID int64     `gorm:"column:empresa_id;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (UserRole) TableName() string { return "user_roles" }

func (ur *UserRole) GetEmpresaID() int64 { return ur.EmpresaID }

// Models lists the RBAC tables in dependency order.
func Models() []interface{} {
	return []interface{}{&User{}, &Role{}, &Permission{}, &MenuItem{}, &RolePermission{}, &UserRole{}}
}
