package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxUploadSize 是单个上传文件的上限。
const MaxUploadSize = 5 << 20

var (
	// ErrFileTooLarge 表示文件超过 MaxUploadSize。
	ErrFileTooLarge = errors.New("file exceeds 5MB limit")
	// ErrUnsupportedMedia 表示文件不是可解码的位图。
	ErrUnsupportedMedia = errors.New("only image files are allowed")

	folderPattern = regexp.MustCompile(`^[a-z0-9_-]{1,40}$`)
)

// StoredMedia 描述保存后的文件。
type StoredMedia struct {
	URL         string `json:"url"`
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// MediaService 把上传的图片保存到本地目录，并通过 urlPath 对外提供。
type MediaService struct {
	dir     string
	urlPath string
	now     func() time.Time
}

// NewMediaService 创建 MediaService。
func NewMediaService(dir, urlPath string) *MediaService {
	if strings.TrimSpace(dir) == "" {
		dir = "uploads"
	}
	urlPath = "/" + strings.Trim(strings.TrimSpace(urlPath), "/")
	if urlPath == "/" {
		urlPath = "/uploads"
	}
	return &MediaService{dir: dir, urlPath: urlPath, now: time.Now}
}

// Dir returns the storage root.
func (s *MediaService) Dir() string {
	return s.dir
}

// URLPath returns the public prefix.
func (s *MediaService) URLPath() string {
	return s.urlPath
}

// Save 校验并保存图片。文件类型以内容嗅探为准，不信任客户端声明。
func (s *MediaService) Save(r io.Reader, folder string) (*StoredMedia, error) {
	folder = strings.ToLower(strings.TrimSpace(folder))
	if folder == "" {
		folder = "general"
	}
	if !folderPattern.MatchString(folder) {
		return nil, invalid("folder", "may only contain a-z, 0-9, dash and underscore")
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxUploadSize {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, invalid("file", "is required")
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, ErrUnsupportedMedia
	}
	config, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUnsupportedMedia
	}

	name := fmt.Sprintf("%s-%s%s", s.now().UTC().Format("20060102"), uuid.NewString(), mtype.Extension())
	targetDir := filepath.Join(s.dir, folder)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	target := filepath.Join(targetDir, name)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	return &StoredMedia{
		URL:         path.Join(s.urlPath, folder, name),
		Path:        target,
		ContentType: mtype.String(),
		Size:        int64(len(data)),
		Width:       config.Width,
		Height:      config.Height,
	}, nil
}

// Delete 删除由 Save 生成的文件，url 必须位于 urlPath 之下。
func (s *MediaService) Delete(url string) error {
	prefix := s.urlPath + "/"
	if !strings.HasPrefix(url, prefix) {
		return invalid("url", "is not a managed upload")
	}
	rel := strings.TrimPrefix(path.Clean(url), prefix)
	parts := strings.Split(rel, "/")
	if len(parts) != 2 || !folderPattern.MatchString(parts[0]) || strings.HasPrefix(parts[1], ".") {
		return invalid("url", "is not a managed upload")
	}
	if err := os.Remove(filepath.Join(s.dir, parts[0], parts[1])); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
