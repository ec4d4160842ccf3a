package services

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jboilerplate/portal/pkg/logger"
)

var (
	ErrInvalidImage  = errors.New("image must be a base64 png, jpeg, gif, webp or svg")
	ErrImageTooLarge = errors.New("image exceeds 5MB limit")
)

// MaxImageSize bounds a decoded content image.
const MaxImageSize = 5 << 20

var (
	dataURLPrefix   = regexp.MustCompile(`^data:image/[\w.+-]+;base64,`)
	imageExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".svg": true}
)

// UploadedImage is where a content image ended up.
type UploadedImage struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// ImageService stores images pasted into page content under
// <public>/uploads with a timestamped name.
type ImageService struct {
	dir string
	now func() time.Time
}

func NewImageService(dir string, now func() time.Time) *ImageService {
	if now == nil {
		now = time.Now
	}
	return &ImageService{dir: dir, now: now}
}

// Save decodes image (a data URL or bare base64) and writes it as
// <name>-<unix ms><ext>.
func (s *ImageService) Save(filename, image string) (*UploadedImage, error) {
	base := filepath.Base(filepath.Clean("/" + filename))
	ext := strings.ToLower(filepath.Ext(base))
	if !imageExtensions[ext] || image == "" {
		return nil, ErrInvalidImage
	}
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		name = "image"
	}

	payload := dataURLPrefix.ReplaceAllString(image, "")
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize+2 {
		return nil, ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidImage
	}
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, err
	}
	unique := fmt.Sprintf("%s-%d%s", name, s.now().UnixMilli(), ext)
	if err := os.WriteFile(filepath.Join(s.dir, unique), data, 0644); err != nil {
		return nil, err
	}
	logger.Infof("[Upload] saved image %s", unique)
	return &UploadedImage{Path: "/uploads/" + unique, Filename: unique}, nil
}
