package service

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"backoffice/internal/errors"
	"backoffice/internal/model"
)

// fakeMenuRepository is an in-memory arena honoring the storage contract:
// list in (position, id) order, delete reparents children to root.
type fakeMenuRepository struct {
	nextID uint
	nodes  map[uint]*model.Menu
}

func newFakeMenuRepository() *fakeMenuRepository {
	return &fakeMenuRepository{nextID: 1, nodes: make(map[uint]*model.Menu)}
}

func (f *fakeMenuRepository) Create(_ context.Context, menu *model.Menu) error {
	menu.ID = f.nextID
	f.nextID++
	clone := *menu
	f.nodes[menu.ID] = &clone
	return nil
}

func (f *fakeMenuRepository) Update(_ context.Context, menu *model.Menu) error {
	if _, ok := f.nodes[menu.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *menu
	f.nodes[menu.ID] = &clone
	return nil
}

func (f *fakeMenuRepository) FindByID(_ context.Context, id uint) (*model.Menu, error) {
	menu, ok := f.nodes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *menu
	return &clone, nil
}

func (f *fakeMenuRepository) Exists(_ context.Context, id uint) (bool, error) {
	_, ok := f.nodes[id]
	return ok, nil
}

func (f *fakeMenuRepository) List(_ context.Context) ([]model.Menu, error) {
	menus := make([]model.Menu, 0, len(f.nodes))
	for _, m := range f.nodes {
		menus = append(menus, *m)
	}
	sort.Slice(menus, func(i, j int) bool {
		if menus[i].Position != menus[j].Position {
			return menus[i].Position < menus[j].Position
		}
		return menus[i].ID < menus[j].ID
	})
	return menus, nil
}

func (f *fakeMenuRepository) Delete(_ context.Context, id uint) error {
	if _, ok := f.nodes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, m := range f.nodes {
		if m.ParentID != nil && *m.ParentID == id {
			m.ParentID = nil
		}
	}
	delete(f.nodes, id)
	return nil
}

func seedMenuService(t *testing.T) MenuService {
	t.Helper()
	return NewMenuService(newFakeMenuRepository(), nil)
}

func createMenu(t *testing.T, svc MenuService, in MenuInput) *model.Menu {
	t.Helper()
	menu, err := svc.CreateMenu(context.Background(), in)
	require.NoError(t, err)
	return menu
}

func TestMenuService_TreeOrdering(t *testing.T) {
	svc := seedMenuService(t)
	ctx := context.Background()

	root := createMenu(t, svc, MenuInput{Name: "Administration", Position: 1, Active: true})
	createMenu(t, svc, MenuInput{Name: "Dashboard", Position: 0, Active: true, Routes: []string{"dashboard"}})
	// Same position: tie breaks by id, so Users renders before Menus.
	createMenu(t, svc, MenuInput{Name: "Users", ParentID: &root.ID, Position: 2, Active: true})
	createMenu(t, svc, MenuInput{Name: "Menus", ParentID: &root.ID, Position: 2, Active: true})

	forest, err := svc.Tree(ctx)
	require.NoError(t, err)

	require.Len(t, forest, 2)
	assert.Equal(t, "Dashboard", forest[0].Name)
	assert.Equal(t, "Administration", forest[1].Name)

	children := forest[1].Children
	require.Len(t, children, 2)
	assert.Equal(t, "Users", children[0].Name)
	assert.Equal(t, "Menus", children[1].Name)
}

func TestMenuService_DeleteDoesNotCascade(t *testing.T) {
	svc := seedMenuService(t)
	ctx := context.Background()

	parent := createMenu(t, svc, MenuInput{Name: "Administration", Position: 0, Active: true})
	createMenu(t, svc, MenuInput{Name: "Users", ParentID: &parent.ID, Position: 3, Active: true})
	createMenu(t, svc, MenuInput{Name: "Menus", ParentID: &parent.ID, Position: 5, Active: true})

	require.NoError(t, svc.DeleteMenu(ctx, parent.ID))

	forest, err := svc.Tree(ctx)
	require.NoError(t, err)

	// Both children survive as roots with their positions untouched.
	require.Len(t, forest, 2)
	assert.Equal(t, "Users", forest[0].Name)
	assert.Equal(t, 3, forest[0].Position)
	assert.Nil(t, forest[0].ParentID)
	assert.Equal(t, "Menus", forest[1].Name)
	assert.Equal(t, 5, forest[1].Position)
	assert.Nil(t, forest[1].ParentID)
}

func TestMenuService_DeleteMissing(t *testing.T) {
	svc := seedMenuService(t)
	err := svc.DeleteMenu(context.Background(), 404)
	assert.ErrorIs(t, err, errors.ErrMenuNotFound)
}

func TestMenuService_ParentValidation(t *testing.T) {
	svc := seedMenuService(t)
	ctx := context.Background()

	missing := uint(99)
	_, err := svc.CreateMenu(ctx, MenuInput{Name: "Orphan", ParentID: &missing})
	assert.ErrorIs(t, err, errors.ErrParentMenuNotFound)
	assert.True(t, errors.IsValidation(err))

	menu := createMenu(t, svc, MenuInput{Name: "Node", Active: true})
	_, err = svc.UpdateMenu(ctx, menu.ID, MenuInput{Name: "Node", ParentID: &menu.ID})
	assert.ErrorIs(t, err, errors.ErrMenuOwnParent)
}

func TestMenuService_DefaultTarget(t *testing.T) {
	svc := seedMenuService(t)
	menu := createMenu(t, svc, MenuInput{Name: "Placeholder", Active: true})
	assert.Equal(t, "#", menu.RouteOrURL)
}

func TestBuildForest_CycleIsFatal(t *testing.T) {
	two := uint(2)
	three := uint(3)
	menus := []model.Menu{
		{ID: 1, Name: "Root"},
		{ID: 2, Name: "A", ParentID: &three},
		{ID: 3, Name: "B", ParentID: &two},
	}

	_, err := BuildForest(menus)
	assert.ErrorIs(t, err, errors.ErrMenuCycle)
}

func TestIsCurrent(t *testing.T) {
	tree := &MenuNode{
		Menu: model.Menu{Name: "Administration"},
		Children: []*MenuNode{
			{Menu: model.Menu{Name: "Users", Routes: model.RouteList{"superuser.user.index"}}},
			{Menu: model.Menu{Name: "Menus", Routes: model.RouteList{"superuser.menu.index"}}},
		},
	}

	tests := []struct {
		name    string
		node    *MenuNode
		route   string
		current bool
	}{
		{"own route matches", tree.Children[0], "superuser.user.index", true},
		{"descendant route bubbles up", tree, "superuser.menu.index", true},
		{"unrelated route", tree, "dashboard", false},
		{"leaf ignores sibling routes", tree.Children[0], "superuser.menu.index", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.current, IsCurrent(tt.node, tt.route))
		})
	}
}
