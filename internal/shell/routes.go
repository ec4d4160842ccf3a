package shell

import "github.com/jboilerplate/portal/internal/manifest"

// Well-known route names and paths.
const (
	NameHome     = "home"
	NameLogin    = "login"
	NameRegister = "register"
	NameSetup    = "setup"
	NameNotFound = "not-found"

	PathHome  = "/"
	PathLogin = "/login"
	PathSetup = "/setup"
)

func dashboardMeta(title string, roles ...string) manifest.Meta {
	return manifest.Meta{RequiresAuth: true, Roles: roles, Layout: "dashboard", Title: title}
}

// StaticRoutes are the routes compiled into the dashboard. Manifest routes
// are added after them at boot.
func StaticRoutes() []Route {
	return []Route{
		{Path: PathHome, Name: NameHome, Meta: manifest.Meta{Title: "Home"}},
		{Path: "/get-started", Name: "get-started", Component: "/src/pages/get-started.vue",
			Meta: manifest.Meta{Layout: "blank", Title: "Get Started"}},
		{Path: PathSetup, Name: NameSetup, Component: "/src/pages/setup.vue",
			Meta: manifest.Meta{Layout: "blank", Title: "Setup"}},
		{Path: PathLogin, Name: NameLogin, Component: "/src/pages/login.vue",
			Meta: manifest.Meta{Layout: "auth", Title: "Login"}},

		{Path: "/admin", Redirect: "/admin/home", Meta: dashboardMeta("", RoleAdmin)},
		{Path: "/admin/home", Name: "admin-home", Component: "/src/pages/admin/dashboard/index.vue",
			Meta: dashboardMeta("Dashboard", RoleAdmin)},
		{Path: "/admin/dashboard", Redirect: "/admin/home", Meta: dashboardMeta("", RoleAdmin)},
		{Path: "/admin/page-editor", Name: "admin-page-editor", Component: "/src/pages/admin/page-editor/index.vue",
			Meta: dashboardMeta("Page Editor", RoleAdmin)},
		{Path: "/admin/menu-editor", Name: "admin-menu-editor", Component: "/src/pages/admin/menu-editor/index.vue",
			Meta: dashboardMeta("Menu Editor", RoleAdmin)},
		{Path: "/admin/system-status", Name: "admin-system-status", Component: "/src/pages/admin/system-status/index.vue",
			Meta: dashboardMeta("System Status", RoleAdmin)},

		{Path: "/user", Redirect: "/user/home", Meta: dashboardMeta("", RoleUser)},
		{Path: "/user/home", Name: "user-home", Component: "/src/pages/user/home/index.vue",
			Meta: dashboardMeta("Home", RoleUser)},

		{Path: "/notifications", Name: "notifications", Component: "/src/pages/notifications/index.vue",
			Meta: dashboardMeta("Notifications", WildcardRole)},

		{Path: "/:pathMatch(.*)*", Name: NameNotFound, Component: "/src/pages/not-found.vue",
			Meta: manifest.Meta{Layout: "blank", Title: "Page Not Found"}},
	}
}
