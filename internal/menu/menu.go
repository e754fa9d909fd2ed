// Package menu resolves what a user may see and do: the access filtered
// navigation tree and the merged capability table per resource.
package menu

import (
	"sort"

	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	rbacDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/rbac"
)

type Node struct {
	ID           int64               `json:"id"`
	Name         string              `json:"name"`
	ResourceKey  string              `json:"resource_key"`
	Icon         string              `json:"icon,omitempty"`
	URL          string              `json:"url,omitempty"`
	Controller   string              `json:"controller,omitempty"`
	Action       string              `json:"action,omitempty"`
	Order        int                 `json:"order"`
	Capabilities access.Capabilities `json:"capabilities"`
	// Container marks a node kept only because a descendant is readable.
	Container bool    `json:"container"`
	Children  []*Node `json:"children"`
}

// Authorization is the outcome of resolving one identity. Values handed out
// by the resolver are shared through the cache and must not be mutated.
type Authorization struct {
	UserID      int64                          `json:"user_id"`
	EmpresaID   int64                          `json:"empresa_id"`
	Username    string                         `json:"username"`
	Tree        []*Node                        `json:"tree"`
	Permissions map[string]access.Capabilities `json:"permissions"`
}

// Empty is the no-access result for anonymous, unknown or inactive users.
func Empty() *Authorization {
	return &Authorization{
		Tree:        []*Node{},
		Permissions: map[string]access.Capabilities{},
	}
}

func (a *Authorization) Principal() *access.Principal {
	return &access.Principal{
		UserID:      a.UserID,
		EmpresaID:   a.EmpresaID,
		Username:    a.Username,
		Permissions: a.Permissions,
	}
}

// MergeGrants ORs the flags of every grant per menu item.
func MergeGrants(grants []*rbacDatamodel.RolePermission) map[int64]access.Capabilities {
	merged := make(map[int64]access.Capabilities, len(grants))
	for _, g := range grants {
		merged[g.MenuItemID] = merged[g.MenuItemID].Union(g.Capabilities())
	}
	return merged
}

// BuildTree filters the tenant's items to the readable ones plus their
// ancestors. The items slice is the arena; parent links are resolved through
// an id index and children are derived, never stored on the models.
// Items whose parent is missing from the slice are unreachable and dropped.
func BuildTree(items []*rbacDatamodel.MenuItem, granted map[int64]access.Capabilities) []*Node {
	index := make(map[int64]int, len(items))
	for i, it := range items {
		index[it.ID] = i
	}

	keep := make([]bool, len(items))
	for i, it := range items {
		if !granted[it.ID].CanRead {
			continue
		}
		for j := i; !keep[j]; {
			keep[j] = true
			parent := items[j].ParentID
			if parent == nil {
				break
			}
			k, ok := index[*parent]
			if !ok {
				break
			}
			j = k
		}
	}

	children := make(map[int64][]int, len(items))
	var roots []int
	for i, it := range items {
		if !keep[i] {
			continue
		}
		if it.ParentID == nil {
			roots = append(roots, i)
			continue
		}
		children[*it.ParentID] = append(children[*it.ParentID], i)
	}

	visited := make([]bool, len(items))
	var build func(idxs []int) []*Node
	build = func(idxs []int) []*Node {
		nodes := make([]*Node, 0, len(idxs))
		for _, i := range idxs {
			if visited[i] {
				continue
			}
			visited[i] = true
			it := items[i]
			caps := granted[it.ID]
			nodes = append(nodes, &Node{
				ID:           it.ID,
				Name:         it.Name,
				ResourceKey:  it.ResourceKey,
				Icon:         it.Icon,
				URL:          it.URL,
				Controller:   it.Controller,
				Action:       it.Action,
				Order:        it.Order,
				Capabilities: caps,
				Container:    !caps.CanRead,
				Children:     build(children[it.ID]),
			})
		}
		sortSiblings(nodes)
		return nodes
	}

	return build(roots)
}

func sortSiblings(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Order != nodes[j].Order {
			return nodes[i].Order < nodes[j].Order
		}
		return nodes[i].ID < nodes[j].ID
	})
}

// PermissionTable maps resource keys to merged capabilities for every item
// carrying at least one flag.
func PermissionTable(items []*rbacDatamodel.MenuItem, granted map[int64]access.Capabilities) map[string]access.Capabilities {
	table := make(map[string]access.Capabilities)
	for _, it := range items {
		if caps := granted[it.ID]; caps.Any() {
			table[it.ResourceKey] = caps
		}
	}
	return table
}
