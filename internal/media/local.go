package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalUploader copia los archivos a un directorio servido como estático.
// Pensado para desarrollo local sin bucket.
type LocalUploader struct {
	dir     string
	baseURL string
	now     func() time.Time
}

func NewLocalUploader(dir, baseURL string) (*LocalUploader, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("media dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &LocalUploader{
		dir:     dir,
		baseURL: baseURL,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (u *LocalUploader) Upload(ctx context.Context, localPath string) (Asset, error) {
	if strings.TrimSpace(localPath) == "" {
		return Asset{}, ErrNoFile
	}
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}
	contentType, ext, err := sniff(localPath)
	if err != nil {
		return Asset{}, fmt.Errorf("detect content type: %w", err)
	}

	key := objectKey("images", u.now(), ext)
	dst := filepath.Join(u.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Asset{}, fmt.Errorf("create media subdir: %w", err)
	}
	if err := copyFile(localPath, dst); err != nil {
		return Asset{}, err
	}

	return Asset{
		URL:         joinURL(u.baseURL, key),
		Key:         key,
		ContentType: contentType,
	}, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy media file: %w", err)
	}
	return out.Close()
}
