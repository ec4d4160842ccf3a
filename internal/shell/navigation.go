package shell

import (
	"context"
	"net/url"
	"sync"

	"github.com/jboilerplate/portal/internal/models"
	"github.com/rs/zerolog"
)

type Icon string

const (
	IconLayoutDashboard Icon = "LayoutDashboard"
	IconInfo            Icon = "Info"
	IconHome            Icon = "Home"
	IconUsers           Icon = "Users"
	IconSettings        Icon = "Settings"
	IconFileText        Icon = "FileText"
	IconMenu            Icon = "Menu"
	IconBell            Icon = "Bell"
	IconActivity        Icon = "Activity"
	IconFolder          Icon = "Folder"
	IconCircle          Icon = "Circle"

	// DefaultIcon stands in for icon names the dashboard does not ship.
	DefaultIcon = IconCircle
)

var knownIcons = map[string]Icon{}

func init() {
	for _, ic := range []Icon{
		IconLayoutDashboard, IconInfo, IconHome, IconUsers, IconSettings,
		IconFileText, IconMenu, IconBell, IconActivity, IconFolder, IconCircle,
	} {
		knownIcons[string(ic)] = ic
	}
}

// IconFor maps a stored icon name to a shipped icon.
func IconFor(name string) Icon {
	if ic, ok := knownIcons[name]; ok {
		return ic
	}
	return DefaultIcon
}

type NavItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Icon  Icon   `json:"icon"`
}

type NavGroup struct {
	Title string    `json:"title"`
	Icon  Icon      `json:"icon,omitempty"`
	Items []NavItem `json:"items"`
}

// HandledRoles are the roles with a menu of their own.
var HandledRoles = []string{RoleAdmin, RoleUser}

// StaticNavigation is the menu compiled into the dashboard for role. Roles
// without one get an empty menu.
func StaticNavigation(role string) []NavGroup {
	home, ok := DashboardTable[role]
	if !ok {
		return []NavGroup{}
	}
	return []NavGroup{{
		Title: "Main",
		Items: []NavItem{
			{Title: "Home", URL: home, Icon: IconLayoutDashboard},
			{Title: "About", URL: "/about", Icon: IconInfo},
		},
	}}
}

type menuResponse struct {
	Structure []models.MenuCategory `json:"structure"`
}

// MenuResolver holds the per-role navigation trees shown in the sidebar.
type MenuResolver struct {
	client *Client
	log    zerolog.Logger

	mu    sync.RWMutex
	trees map[string][]NavGroup
}

func NewMenuResolver(client *Client, log zerolog.Logger) *MenuResolver {
	return &MenuResolver{client: client, log: log, trees: make(map[string][]NavGroup)}
}

// Load fetches the stored menu of every handled role. A role with no stored
// menu, an empty one, or a failed request keeps its static menu.
func (m *MenuResolver) Load(ctx context.Context) {
	for _, role := range HandledRoles {
		var resp menuResponse
		err := m.client.Get(ctx, "/api/menu-structure?role="+url.QueryEscape(role), &resp)
		switch {
		case err != nil:
			m.log.Warn().Err(err).Str("role", role).Msg("menu structure unavailable, using default menu")
			m.set(role, StaticNavigation(role))
		case len(resp.Structure) == 0:
			m.set(role, StaticNavigation(role))
		default:
			m.set(role, toNavGroups(resp.Structure))
		}
	}
}

func (m *MenuResolver) set(role string, tree []NavGroup) {
	m.mu.Lock()
	m.trees[role] = tree
	m.mu.Unlock()
}

func (m *MenuResolver) NavigationFor(role string) []NavGroup {
	m.mu.RLock()
	tree, ok := m.trees[role]
	m.mu.RUnlock()
	if ok {
		return tree
	}
	return StaticNavigation(role)
}

// Save replaces the stored menu of role and, on success, shows it at once.
func (m *MenuResolver) Save(ctx context.Context, role string, structure []models.MenuCategory) error {
	body := map[string]any{"role": role, "structure": structure}
	if err := m.client.Post(ctx, "/api/menu-structure", body, nil); err != nil {
		return err
	}
	if len(structure) == 0 {
		m.set(role, StaticNavigation(role))
	} else {
		m.set(role, toNavGroups(structure))
	}
	return nil
}

// toNavGroups keeps the stored order; it does not sort by Order.
func toNavGroups(categories []models.MenuCategory) []NavGroup {
	groups := make([]NavGroup, 0, len(categories))
	for _, c := range categories {
		g := NavGroup{Title: c.Label, Items: make([]NavItem, 0, len(c.Items))}
		if c.Icon != "" {
			g.Icon = IconFor(c.Icon)
		}
		for _, it := range c.Items {
			g.Items = append(g.Items, NavItem{Title: it.Label, URL: it.Path, Icon: IconFor(it.Icon)})
		}
		groups = append(groups, g)
	}
	return groups
}
