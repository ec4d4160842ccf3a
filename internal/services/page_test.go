package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jboilerplate/portal/internal/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageFixture struct {
	svc      *PageService
	menus    *MenuStructureService
	routes   *manifest.Store
	pagesDir string
}

func newPageFixture(t *testing.T) *pageFixture {
	t.Helper()
	db := newTestDB(t)
	dir := t.TempDir()
	routes := manifest.NewStore(filepath.Join(dir, "public", "config", "generated-routes.json"))
	menus := NewMenuStructureService(db)
	return &pageFixture{
		svc:      NewPageService(db, routes, menus, dir),
		menus:    menus,
		routes:   routes,
		pagesDir: dir,
	}
}

func TestPageService_Create(t *testing.T) {
	ctx := context.Background()
	f := newPageFixture(t)

	page, err := f.svc.Create(ctx, &CreatePageRequest{
		Name:          "Reports",
		Path:          "/admin/reports",
		ComponentPath: "@/views/admin/Reports.vue",
		Role:          RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, "dashboard", page.Layout)

	data, err := os.ReadFile(filepath.Join(f.pagesDir, "src", "views", "admin", "Reports.vue"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Welcome to Reports")
	assert.Contains(t, string(data), "src/views/admin/Reports.vue")

	entries, err := f.routes.Read()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, manifest.Meta{RequiresAuth: true, Roles: []string{RoleAdmin}, Layout: "dashboard", Title: "Reports"}, entries[0].Meta)

	pages, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, pages, 1)
}

func TestPageService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newPageFixture(t)

	_, err := f.svc.Create(ctx, &CreatePageRequest{Name: "x", Path: "/x"})
	assert.Error(t, err)

	_, err = f.svc.Create(ctx, &CreatePageRequest{Name: "x", Path: "/x", ComponentPath: "@/../../etc/passwd"})
	assert.ErrorIs(t, err, ErrInvalidComponentPath)

	pages, _ := f.svc.List(ctx)
	assert.Empty(t, pages)
}

func TestPageService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	f := newPageFixture(t)

	page, err := f.svc.Create(ctx, &CreatePageRequest{
		Name:          "Reports",
		Path:          "/shared/reports",
		ComponentPath: "@/views/generated/Reports.vue",
	})
	require.NoError(t, err)
	require.NoError(t, f.menus.Save(ctx, RoleAdmin, menuWith("/admin/home", "/shared/reports")))
	require.NoError(t, f.menus.Save(ctx, RoleUser, menuWith("/shared/reports")))
	require.NoError(t, f.menus.Save(ctx, "auditor", menuWith("/auditor/home")))

	result, err := f.svc.Delete(ctx, page.ID)
	require.NoError(t, err)
	assert.True(t, result.RemovedRoute)
	assert.Len(t, result.DeletedFiles, 1)
	assert.ElementsMatch(t, []string{RoleAdmin, RoleUser}, result.ModifiedMenus)

	entries, _ := f.routes.Read()
	assert.Empty(t, entries)

	_, err = os.Stat(filepath.Join(f.pagesDir, "src", "views", "generated"))
	assert.True(t, os.IsNotExist(err), "empty component directory should be removed")

	pages, _ := f.svc.List(ctx)
	assert.Empty(t, pages)

	_, err = f.svc.Delete(ctx, page.ID)
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestPageService_DeleteManual(t *testing.T) {
	ctx := context.Background()
	f := newPageFixture(t)

	file := filepath.Join(f.pagesDir, "src", "views", "manual", "Notes.vue")
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0755))
	require.NoError(t, os.WriteFile(file, []byte("<template/>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(file), "Other.vue"), []byte("<template/>"), 0644))
	_, err := f.routes.Add(manifest.Entry{Path: "/user/notes", Name: "notes", ComponentPath: "@/views/manual/Notes.vue"})
	require.NoError(t, err)

	_, err = f.svc.DeleteManual(ctx, &DeleteManualRequest{Path: "/user/missing", ComponentPath: "@/views/manual/Notes.vue"})
	assert.ErrorIs(t, err, ErrRouteNotFound)

	result, err := f.svc.DeleteManual(ctx, &DeleteManualRequest{Path: "/user/notes", ComponentPath: "@/views/manual/Notes.vue"})
	require.NoError(t, err)
	assert.Equal(t, []string{file}, result.DeletedFiles)
	assert.Empty(t, result.ModifiedMenus)

	_, err = os.Stat(filepath.Dir(file))
	assert.NoError(t, err, "non-empty directory must stay")
}

func TestPageService_DeleteToleratesMissingFile(t *testing.T) {
	ctx := context.Background()
	f := newPageFixture(t)

	page, err := f.svc.Create(ctx, &CreatePageRequest{Name: "Gone", Path: "/gone", ComponentPath: "@/views/Gone.vue"})
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(f.pagesDir, "src", "views", "Gone.vue")))

	result, err := f.svc.Delete(ctx, page.ID)
	require.NoError(t, err)
	assert.Empty(t, result.DeletedFiles)
}

func TestPageService_CreateRollsBackWhenManifestFails(t *testing.T) {
	ctx := context.Background()
	f := newPageFixture(t)
	require.NoError(t, os.MkdirAll(f.routes.Path(), 0755))

	_, err := f.svc.Create(ctx, &CreatePageRequest{
		Name:          "Reports",
		Path:          "/admin/reports",
		ComponentPath: "@/views/admin/Reports.vue",
	})
	require.Error(t, err)

	pages, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, pages, "page row must not be committed")

	_, err = os.Stat(filepath.Join(f.pagesDir, "src", "views", "admin", "Reports.vue"))
	assert.True(t, os.IsNotExist(err), "component stub must be removed")
	_, err = os.Stat(filepath.Join(f.pagesDir, "src", "views", "admin"))
	assert.True(t, os.IsNotExist(err), "directory created for the stub must be removed")

	require.NoError(t, os.Remove(f.routes.Path()))
	_, err = f.svc.Create(ctx, &CreatePageRequest{
		Name:          "Reports",
		Path:          "/admin/reports",
		ComponentPath: "@/views/admin/Reports.vue",
	})
	require.NoError(t, err, "retry succeeds once the manifest is writable")
	pages, _ = f.svc.List(ctx)
	assert.Len(t, pages, 1)
}

func TestPageService_CreateFailureRestoresExistingComponent(t *testing.T) {
	ctx := context.Background()
	f := newPageFixture(t)

	file := filepath.Join(f.pagesDir, "src", "views", "Hand.vue")
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0755))
	require.NoError(t, os.WriteFile(file, []byte("<template>hand written</template>"), 0644))
	require.NoError(t, os.MkdirAll(f.routes.Path(), 0755))

	_, err := f.svc.Create(ctx, &CreatePageRequest{Name: "Hand", Path: "/hand", ComponentPath: "@/views/Hand.vue"})
	require.Error(t, err)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "<template>hand written</template>", string(data))
}
