package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"backoffice/internal/cache"
	"backoffice/internal/errors"
	"backoffice/internal/model"
	"backoffice/internal/repository"
)

const (
	menuCacheKey = "menus:tree"
	menuCacheTTL = 5 * time.Minute
)

// MenuNode is one node of the rendered forest. Children are grouped at read
// time; the stored rows never hold live child pointers.
type MenuNode struct {
	model.Menu
	Children []*MenuNode `json:"children"`
}

// MenuInput carries the writable fields of a node.
type MenuInput struct {
	Name       string
	ParentID   *uint
	RouteOrURL string
	Icon       *string
	Active     bool
	Position   int
	Routes     []string
}

// MenuService exposes the navigation tree.
type MenuService interface {
	Tree(ctx context.Context) ([]*MenuNode, error)
	CreateMenu(ctx context.Context, in MenuInput) (*model.Menu, error)
	UpdateMenu(ctx context.Context, id uint, in MenuInput) (*model.Menu, error)
	DeleteMenu(ctx context.Context, id uint) error
}

type menuService struct {
	menus repository.MenuRepository
	cache *cache.Client
}

// NewMenuService builds a MenuService over the repository and cache.
func NewMenuService(menus repository.MenuRepository, cacheClient *cache.Client) MenuService {
	return &menuService{menus: menus, cache: cacheClient}
}

// Tree returns the rooted forest in render order: siblings ascend by
// position, ties break by id. A cycle in storage is reported as an error, not
// rendered as an infinite loop.
func (s *menuService) Tree(ctx context.Context) ([]*MenuNode, error) {
	if data, _ := s.cache.Get(ctx, menuCacheKey); data != nil {
		var cached []*MenuNode
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	menus, err := s.menus.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}

	forest, err := BuildForest(menus)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(forest); err == nil {
		_ = s.cache.Set(ctx, menuCacheKey, payload, menuCacheTTL)
	}
	return forest, nil
}

// BuildForest groups an ordered node list into roots with recursive children.
// The input must already be in (position, id) order; grouping preserves it,
// which yields the (parent, position, id) render order.
func BuildForest(menus []model.Menu) ([]*MenuNode, error) {
	nodes := make(map[uint]*MenuNode, len(menus))
	for i := range menus {
		nodes[menus[i].ID] = &MenuNode{Menu: menus[i]}
	}

	var roots []*MenuNode
	for _, m := range menus {
		node := nodes[m.ID]
		if m.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*m.ParentID]
		if !ok {
			// The FK forbids dangling parents; a row slipping through is
			// surfaced rather than silently re-rooted.
			return nil, fmt.Errorf("menu %d references missing parent %d", m.ID, *m.ParentID)
		}
		parent.Children = append(parent.Children, node)
	}

	// Every node must be reachable from a root; a shortfall means a parent
	// cycle exists somewhere off the roots.
	if reachable(roots) != len(menus) {
		return nil, errors.ErrMenuCycle
	}
	return roots, nil
}

func reachable(roots []*MenuNode) int {
	count := 0
	stack := append([]*MenuNode(nil), roots...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		stack = append(stack, node.Children...)
	}
	return count
}

// IsCurrent reports whether the node should render as active for the given
// route: either the route is in its own route list or some descendant is
// current. Pure; no mutation.
func IsCurrent(node *MenuNode, route string) bool {
	if node.Routes.Contains(route) {
		return true
	}
	for _, child := range node.Children {
		if IsCurrent(child, route) {
			return true
		}
	}
	return false
}

// CreateMenu validates the parent reference and persists a new node.
func (s *menuService) CreateMenu(ctx context.Context, in MenuInput) (*model.Menu, error) {
	if err := s.checkParent(ctx, in.ParentID, 0); err != nil {
		return nil, err
	}

	menu := &model.Menu{
		Name:       in.Name,
		ParentID:   in.ParentID,
		RouteOrURL: in.RouteOrURL,
		Icon:       in.Icon,
		Active:     in.Active,
		Position:   in.Position,
		Routes:     model.RouteList(in.Routes),
	}
	if menu.RouteOrURL == "" {
		menu.RouteOrURL = "#"
	}

	if err := s.menus.Create(ctx, menu); err != nil {
		return nil, fmt.Errorf("create menu: %w", err)
	}

	s.invalidate(ctx)
	return menu, nil
}

// UpdateMenu rewrites a node in place.
func (s *menuService) UpdateMenu(ctx context.Context, id uint, in MenuInput) (*model.Menu, error) {
	menu, err := s.menus.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrMenuNotFound
		}
		return nil, fmt.Errorf("find menu: %w", err)
	}
	if err := s.checkParent(ctx, in.ParentID, id); err != nil {
		return nil, err
	}

	menu.Name = in.Name
	menu.ParentID = in.ParentID
	menu.RouteOrURL = in.RouteOrURL
	menu.Icon = in.Icon
	menu.Active = in.Active
	menu.Position = in.Position
	menu.Routes = model.RouteList(in.Routes)
	if menu.RouteOrURL == "" {
		menu.RouteOrURL = "#"
	}

	if err := s.menus.Update(ctx, menu); err != nil {
		return nil, fmt.Errorf("update menu: %w", err)
	}

	s.invalidate(ctx)
	return menu, nil
}

// DeleteMenu removes one node; its children become roots.
func (s *menuService) DeleteMenu(ctx context.Context, id uint) error {
	if err := s.menus.Delete(ctx, id); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrMenuNotFound
		}
		return fmt.Errorf("delete menu: %w", err)
	}

	s.invalidate(ctx)
	return nil
}

func (s *menuService) checkParent(ctx context.Context, parentID *uint, selfID uint) error {
	if parentID == nil {
		return nil
	}
	if selfID != 0 && *parentID == selfID {
		return errors.ErrMenuOwnParent
	}
	exists, err := s.menus.Exists(ctx, *parentID)
	if err != nil {
		return fmt.Errorf("check parent: %w", err)
	}
	if !exists {
		return errors.ErrParentMenuNotFound
	}
	return nil
}

func (s *menuService) invalidate(ctx context.Context) {
	_ = s.cache.Delete(ctx, menuCacheKey)
}
