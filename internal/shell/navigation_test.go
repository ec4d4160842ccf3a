package shell

import (
	"context"
	"testing"

	"github.com/jboilerplate/portal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticNavigation(t *testing.T) {
	user := StaticNavigation(RoleUser)
	require.NotEmpty(t, user)
	require.NotEmpty(t, user[0].Items)
	assert.Equal(t, "/user/home", user[0].Items[0].URL)

	admin := StaticNavigation(RoleAdmin)
	require.NotEmpty(t, admin)
	assert.Equal(t, "/admin/home", admin[0].Items[0].URL)

	assert.Empty(t, StaticNavigation("auditor"))
}

func TestIconFor(t *testing.T) {
	assert.Equal(t, IconUsers, IconFor("Users"))
	assert.Equal(t, DefaultIcon, IconFor("Sparkles"))
	assert.Equal(t, DefaultIcon, IconFor(""))
}

func TestMenuResolver_StoredMenuKeepsOrder(t *testing.T) {
	p := newFakePortal(t)
	p.set(func(p *fakePortal) {
		p.menus[RoleAdmin] = []models.MenuCategory{
			{ID: "b", Label: "Second", Order: 2, Items: []models.MenuItem{
				{ID: "b1", Label: "Reports", Path: "/reports", Icon: "FileText", Order: 9},
				{ID: "b2", Label: "Odd", Path: "/odd", Icon: "NoSuchIcon", Order: 1},
			}},
			{ID: "a", Label: "First", Icon: "Folder", Order: 1, Items: []models.MenuItem{}},
		}
	})
	m := NewMenuResolver(p.client(), nopLog)
	m.Load(context.Background())

	tree := m.NavigationFor(RoleAdmin)
	require.Len(t, tree, 2)
	assert.Equal(t, "Second", tree[0].Title)
	assert.Equal(t, "First", tree[1].Title)
	assert.Equal(t, IconFolder, tree[1].Icon)
	require.Len(t, tree[0].Items, 2)
	assert.Equal(t, NavItem{Title: "Reports", URL: "/reports", Icon: IconFileText}, tree[0].Items[0])
	assert.Equal(t, DefaultIcon, tree[0].Items[1].Icon)

	assert.Equal(t, StaticNavigation(RoleUser), m.NavigationFor(RoleUser), "empty stored menu falls back")
	assert.Empty(t, m.NavigationFor("auditor"))
}

func TestMenuResolver_ServerDownUsesDefaults(t *testing.T) {
	p := newFakePortal(t)
	p.set(func(p *fakePortal) { p.menuDown = true })
	m := NewMenuResolver(p.client(), nopLog)
	m.Load(context.Background())

	assert.Equal(t, StaticNavigation(RoleAdmin), m.NavigationFor(RoleAdmin))
	assert.NotEmpty(t, m.NavigationFor(RoleUser))
}

func TestMenuResolver_NotLoadedUsesDefaults(t *testing.T) {
	m := NewMenuResolver(&Client{BaseURL: "http://127.0.0.1:1"}, nopLog)
	assert.Equal(t, StaticNavigation(RoleUser), m.NavigationFor(RoleUser))
}

func TestMenuResolver_Save(t *testing.T) {
	p := newFakePortal(t)
	m := NewMenuResolver(p.client(), nopLog)
	structure := []models.MenuCategory{{ID: "main", Label: "Main", Items: []models.MenuItem{
		{ID: "h", Label: "Home", Path: "/user/home", Icon: "Home"},
	}}}

	require.NoError(t, m.Save(context.Background(), RoleUser, structure))
	assert.Equal(t, []NavGroup{{Title: "Main", Items: []NavItem{{Title: "Home", URL: "/user/home", Icon: IconHome}}}}, m.NavigationFor(RoleUser))

	p.mu.Lock()
	saved := p.savedMenus[RoleUser]
	p.mu.Unlock()
	assert.Equal(t, structure, saved)

	p.set(func(p *fakePortal) { p.menuDown = true })
	assert.Error(t, m.Save(context.Background(), RoleUser, nil))
	assert.Equal(t, IconHome, m.NavigationFor(RoleUser)[0].Items[0].Icon, "failed save keeps the shown menu")
}
