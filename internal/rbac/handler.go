package rbac

import (
	"context"
	"net/http"

	"github.com/frahmantamala/vaccination-registry/internal/transport"
)

type ServiceAPI interface {
	CreateRole(ctx context.Context, empresaID int64, dto CreateRoleDTO) (int64, error)
	DeleteRole(ctx context.Context, empresaID, roleID int64) error
	ListRoles(ctx context.Context, empresaID int64) ([]*Role, error)
	CreatePermission(ctx context.Context, empresaID int64, dto CreatePermissionDTO) (int64, error)
	DeletePermission(ctx context.Context, empresaID, permissionID int64) error
	ListPermissions(ctx context.Context, empresaID int64) ([]*Permission, error)
	CreateMenuItem(ctx context.Context, empresaID int64, dto CreateMenuItemDTO) (int64, error)
	MoveMenuItem(ctx context.Context, empresaID, id int64, dto MoveMenuItemDTO) error
	DeleteMenuItem(ctx context.Context, empresaID, id int64) error
	ListMenuItems(ctx context.Context, empresaID int64) ([]*MenuItem, error)
	GrantPermission(ctx context.Context, empresaID, roleID int64, dto GrantDTO) error
	RevokePermission(ctx context.Context, empresaID, roleID, menuItemID int64) error
	ListGrants(ctx context.Context, empresaID, roleID int64) ([]*Grant, error)
	AssignRole(ctx context.Context, empresaID, userID, roleID int64) error
	UnassignRole(ctx context.Context, empresaID, userID, roleID int64) error
	ListUserRoles(ctx context.Context, empresaID, userID int64) ([]int64, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	roles, err := h.Service.ListRoles(r.Context(), p.EmpresaID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, RolesResponse{Roles: roles})
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto CreateRoleDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	id, err := h.Service.CreateRole(r.Context(), p.EmpresaID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	roleID, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.DeleteRole(r.Context(), p.EmpresaID, roleID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	perms, err := h.Service.ListPermissions(r.Context(), p.EmpresaID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PermissionsResponse{Permissions: perms})
}

func (h *Handler) CreatePermission(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto CreatePermissionDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	id, err := h.Service.CreatePermission(r.Context(), p.EmpresaID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

func (h *Handler) DeletePermission(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.DeletePermission(r.Context(), p.EmpresaID, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListMenuItems(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	items, err := h.Service.ListMenuItems(r.Context(), p.EmpresaID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MenuItemsResponse{MenuItems: items})
}

func (h *Handler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto CreateMenuItemDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	id, err := h.Service.CreateMenuItem(r.Context(), p.EmpresaID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

func (h *Handler) MoveMenuItem(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto MoveMenuItemDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	if err := h.Service.MoveMenuItem(r.Context(), p.EmpresaID, id, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.DeleteMenuItem(r.Context(), p.EmpresaID, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListGrants(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	roleID, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	grants, err := h.Service.ListGrants(r.Context(), p.EmpresaID, roleID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, GrantsResponse{Grants: grants})
}

func (h *Handler) GrantPermission(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	roleID, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto GrantDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	if err := h.Service.GrantPermission(r.Context(), p.EmpresaID, roleID, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RevokePermission(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	roleID, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}
	menuItemID, ok := h.PathID(w, r, "menuItemID")
	if !ok {
		return
	}

	if err := h.Service.RevokePermission(r.Context(), p.EmpresaID, roleID, menuItemID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListUserRoles(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	userID, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	ids, err := h.Service.ListUserRoles(r.Context(), p.EmpresaID, userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, UserRolesResponse{UserID: userID, RoleIDs: ids})
}

func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	userID, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto AssignRoleDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	if err := h.Service.AssignRole(r.Context(), p.EmpresaID, userID, dto.RoleID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UnassignRole(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	userID, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}
	roleID, ok := h.PathID(w, r, "roleID")
	if !ok {
		return
	}

	if err := h.Service.UnassignRole(r.Context(), p.EmpresaID, userID, roleID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
