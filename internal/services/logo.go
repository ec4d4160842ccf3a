package services

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/jboilerplate/portal/pkg/logger"
)

var (
	ErrInvalidLogoType   = errors.New("logo type must be light or dark")
	ErrInvalidLogoFormat = errors.New("invalid file format. Only PNG and SVG are allowed")
	ErrLogoTooLarge      = errors.New("file size exceeds 2MB limit")
)

// MaxLogoSize bounds an uploaded logo.
const MaxLogoSize = 2 << 20

var logoMIMETypes = map[string]string{
	".png": "image/png",
	".svg": "image/svg+xml",
}

// LogoInfo locates the logo file the dashboard should show.
type LogoInfo struct {
	Path      string `json:"path"`
	Extension string `json:"extension"`
	Type      string `json:"type"`
}

// LogoService resolves logos under <public>/assets/logo. Each type has an
// uploaded file logo-<type>.png|.svg and a shipped logo-<type>-default.svg.
type LogoService struct {
	dir string
}

func NewLogoService(dir string) *LogoService {
	return &LogoService{dir: dir}
}

func LogoTypes() []string {
	return []string{"light", "dark"}
}

var logoExtensions = []string{".png", ".svg"}

// Info returns the uploaded logo for logoType, falling back to the shipped
// default. An empty type means light.
func (s *LogoService) Info(logoType string) (*LogoInfo, error) {
	if logoType == "" {
		logoType = "light"
	}
	if logoType != "light" && logoType != "dark" {
		return nil, ErrInvalidLogoType
	}

	for _, ext := range logoExtensions {
		name := fmt.Sprintf("logo-%s%s", logoType, ext)
		if _, err := os.Stat(filepath.Join(s.dir, name)); err == nil {
			return &LogoInfo{Path: "/assets/logo/" + name, Extension: ext, Type: logoType}, nil
		}
	}
	return &LogoInfo{
		Path:      fmt.Sprintf("/assets/logo/logo-%s-default.svg", logoType),
		Extension: ".svg",
		Type:      logoType,
	}, nil
}

// RestoreMissing copies the shipped default over any logo type that has no
// uploaded file. Returns the types restored.
func (s *LogoService) RestoreMissing() ([]string, error) {
	var restored []string
	var errs []error
	for _, logoType := range LogoTypes() {
		if s.hasUploaded(logoType) {
			continue
		}
		src := filepath.Join(s.dir, fmt.Sprintf("logo-%s-default.svg", logoType))
		if _, err := os.Stat(src); err != nil {
			continue
		}
		dst := filepath.Join(s.dir, fmt.Sprintf("logo-%s.svg", logoType))
		if err := copyFile(src, dst); err != nil {
			errs = append(errs, fmt.Errorf("restore %s logo: %w", logoType, err))
			continue
		}
		logger.Infof("[Logo] restored missing %s logo from default", logoType)
		restored = append(restored, logoType)
	}
	return restored, errors.Join(errs...)
}

// Upload stores a logo as logo-<type><ext>, replacing any earlier upload of
// that type in either format. filename only supplies the extension.
func (s *LogoService) Upload(logoType, filename, mimeType string, r io.Reader) (*LogoInfo, error) {
	if logoType == "" {
		logoType = "light"
	}
	if logoType != "light" && logoType != "dark" {
		return nil, ErrInvalidLogoType
	}
	ext := strings.ToLower(filepath.Ext(filename))
	want, ok := logoMIMETypes[ext]
	if !ok {
		return nil, ErrInvalidLogoFormat
	}
	if mimeType != "" && !strings.EqualFold(strings.TrimSpace(strings.Split(mimeType, ";")[0]), want) {
		return nil, ErrInvalidLogoFormat
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxLogoSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxLogoSize {
		return nil, ErrLogoTooLarge
	}
	if ext == ".png" && http.DetectContentType(data) != "image/png" {
		return nil, ErrInvalidLogoFormat
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("logo-%s%s", logoType, ext)
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return nil, err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return nil, err
	}

	for other := range logoMIMETypes {
		if other == ext {
			continue
		}
		stale := filepath.Join(s.dir, fmt.Sprintf("logo-%s%s", logoType, other))
		if err := os.Remove(stale); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn().Err(err).Str("file", stale).Msg("[Logo] failed to remove replaced logo")
		}
	}
	logger.Infof("[Logo] saved %s logo: %s", logoType, name)
	return &LogoInfo{Path: "/assets/logo/" + name, Extension: ext, Type: logoType}, nil
}

func (s *LogoService) hasUploaded(logoType string) bool {
	for _, ext := range logoExtensions {
		if _, err := os.Stat(filepath.Join(s.dir, fmt.Sprintf("logo-%s%s", logoType, ext))); err == nil {
			return true
		}
	}
	return false
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
