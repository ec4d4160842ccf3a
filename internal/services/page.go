package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jboilerplate/portal/internal/manifest"
	"github.com/jboilerplate/portal/internal/models"
	"github.com/jboilerplate/portal/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrPageNotFound         = errors.New("page not found")
	ErrRouteNotFound        = errors.New("route not found in generated-routes.json")
	ErrInvalidComponentPath = errors.New("component path must stay inside the source tree")
)

type CreatePageRequest struct {
	Name          string `json:"name"`
	Path          string `json:"path"`
	ComponentPath string `json:"component_path"`
	Layout        string `json:"layout"`
	Role          string `json:"role"`
}

type DeleteManualRequest struct {
	Path          string `json:"path"`
	ComponentPath string `json:"componentPath"`
}

// PageDeleteResult describes what a delete touched besides the page row.
type PageDeleteResult struct {
	RemovedRoute  bool     `json:"removedRoute"`
	DeletedFiles  []string `json:"deletedFiles"`
	ModifiedMenus []string `json:"modifiedMenus"`
}

// PageService keeps the pages table, the route manifest, the component
// files and the menu structures consistent with each other.
type PageService struct {
	db       *gorm.DB
	routes   *manifest.Store
	menus    *MenuStructureService
	pagesDir string
}

func NewPageService(db *gorm.DB, routes *manifest.Store, menus *MenuStructureService, pagesDir string) *PageService {
	return &PageService{db: db, routes: routes, menus: menus, pagesDir: pagesDir}
}

func (s *PageService) List(ctx context.Context) ([]models.Page, error) {
	var pages []models.Page
	if err := s.db.WithContext(ctx).Order("id").Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

// Create inserts the page row, writes the component stub and registers the
// route in the manifest. The row is committed only after the manifest
// write; on any failure the stub and manifest entry are rolled back.
func (s *PageService) Create(ctx context.Context, req *CreatePageRequest) (*models.Page, error) {
	if req.Name == "" || req.Path == "" || req.ComponentPath == "" {
		return nil, errors.New("name/path/component_path required")
	}
	if req.Layout == "" {
		req.Layout = "dashboard"
	}
	if req.Role == "" {
		req.Role = RoleUser
	}

	file, err := s.componentFile(req.ComponentPath)
	if err != nil {
		return nil, err
	}

	page := &models.Page{
		Name:          req.Name,
		Path:          req.Path,
		ComponentPath: req.ComponentPath,
		Layout:        req.Layout,
		Role:          req.Role,
	}

	var stub *stubWrite
	var routeAdded bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if err = tx.Create(page).Error; err != nil {
			return err
		}

		stub, err = writeStub(file, componentStub(req.Name, manifest.SourcePath(req.ComponentPath)))
		if err != nil {
			return err
		}
		logger.Infof("[Page] created page file %s", file)

		routeAdded, err = s.routes.Add(manifest.Entry{
			Path:          req.Path,
			Name:          req.Name,
			ComponentPath: req.ComponentPath,
			Meta: manifest.Meta{
				RequiresAuth: true,
				Roles:        []string{req.Role},
				Layout:       req.Layout,
				Title:        req.Name,
			},
		})
		return err
	})
	if err != nil {
		if routeAdded {
			if _, rmErr := s.routes.RemoveByPath(req.Path); rmErr != nil {
				logger.Warn().Err(rmErr).Str("path", req.Path).Msg("[Page] failed to roll back manifest entry")
			}
		}
		if stub != nil {
			stub.undo()
		}
		return nil, err
	}
	if !routeAdded {
		logger.Warnf("[Page] route %s already in manifest", req.Path)
	}
	return page, nil
}

// stubWrite remembers what a component file looked like before it was
// written so the write can be undone.
type stubWrite struct {
	file    string
	prior   []byte
	existed bool
}

func writeStub(file, content string) (*stubWrite, error) {
	w := &stubWrite{file: file}
	if prior, err := os.ReadFile(file); err == nil {
		w.prior, w.existed = prior, true
	}
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *stubWrite) undo() {
	if w.existed {
		if err := os.WriteFile(w.file, w.prior, 0644); err != nil {
			logger.Warn().Err(err).Str("file", w.file).Msg("[Page] failed to restore component file")
		}
		return
	}
	if err := os.Remove(w.file); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn().Err(err).Str("file", w.file).Msg("[Page] failed to remove component stub")
		return
	}
	removeIfEmpty(filepath.Dir(w.file))
}

// Delete removes the page row, its manifest entry, its component file and
// every menu item pointing at it.
func (s *PageService) Delete(ctx context.Context, id uint) (*PageDeleteResult, error) {
	var page models.Page
	if err := s.db.WithContext(ctx).First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(&page).Error; err != nil {
		return nil, err
	}

	result := &PageDeleteResult{}
	removed, err := s.routes.RemoveByPath(page.Path)
	if err != nil {
		return nil, err
	}
	result.RemovedRoute = removed != nil

	s.cleanup(ctx, page.Path, page.ComponentPath, result)
	return result, nil
}

// DeleteManual removes a page that only exists as a manifest entry and a
// component file.
func (s *PageService) DeleteManual(ctx context.Context, req *DeleteManualRequest) (*PageDeleteResult, error) {
	if req.Path == "" || req.ComponentPath == "" {
		return nil, errors.New("path and componentPath required")
	}
	if _, err := s.componentFile(req.ComponentPath); err != nil {
		return nil, err
	}

	removed, err := s.routes.RemoveByPath(req.Path)
	if err != nil {
		return nil, err
	}
	if removed == nil {
		return nil, ErrRouteNotFound
	}

	result := &PageDeleteResult{RemovedRoute: true}
	s.cleanup(ctx, req.Path, req.ComponentPath, result)
	return result, nil
}

// cleanup deletes the component file and prunes menus. Failures here are
// logged; the page itself is already gone.
func (s *PageService) cleanup(ctx context.Context, path, componentPath string, result *PageDeleteResult) {
	result.DeletedFiles = []string{}
	if file, err := s.componentFile(componentPath); err != nil {
		logger.Warn().Err(err).Str("component", componentPath).Msg("[Page] not deleting component file")
	} else if err := os.Remove(file); err == nil {
		logger.Infof("[Page] deleted file %s", file)
		result.DeletedFiles = append(result.DeletedFiles, file)
		removeIfEmpty(filepath.Dir(file))
	} else if !errors.Is(err, os.ErrNotExist) {
		logger.Warn().Err(err).Str("file", file).Msg("[Page] failed to delete component file")
	}

	modified, err := s.menus.RemovePath(ctx, path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("[Page] failed to prune menu structures")
	}
	if modified == nil {
		modified = []string{}
	}
	result.ModifiedMenus = modified
}

// componentFile resolves an aliased component path to a file under pagesDir.
func (s *PageService) componentFile(componentPath string) (string, error) {
	rel := filepath.FromSlash(manifest.SourcePath(componentPath))
	if filepath.IsAbs(rel) {
		return "", ErrInvalidComponentPath
	}
	root := filepath.Clean(s.pagesDir)
	full := filepath.Join(root, rel)
	src := filepath.Join(root, "src") + string(filepath.Separator)
	if !strings.HasPrefix(full, src) {
		return "", ErrInvalidComponentPath
	}
	return full, nil
}

func removeIfEmpty(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return
	}
	if err := os.Remove(dir); err == nil {
		logger.Infof("[Page] removed empty directory %s", dir)
	}
}

func componentStub(name, file string) string {
	return fmt.Sprintf(`<script setup lang="ts">
import { ref } from 'vue';

const data = ref();
</script>

<template>
  <div class="container mx-auto p-6 space-y-6">
    <div>
      <h1 class="text-3xl font-bold tracking-tight">%[1]s</h1>
      <p class="text-muted-foreground">Welcome to %[1]s</p>
    </div>

    <div class="bg-muted/50 rounded-lg p-8 text-center">
      <p class="text-muted-foreground">This page is ready for customization.</p>
      <p class="text-sm text-muted-foreground mt-2">Edit this file at: <code class="bg-background px-2 py-1 rounded">%[2]s</code></p>
    </div>
  </div>
</template>
`, name, file)
}
