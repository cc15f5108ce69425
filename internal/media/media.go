// Package media sube archivos locales temporales a un almacenamiento externo
// y devuelve la URL pública resultante.
package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrNoFile          = errors.New("media: no file to upload")
	ErrNoURL           = errors.New("media: upload returned no url")
	ErrUnsupportedType = errors.New("media: file is not a supported image")
)

// allowedImages mapea el MIME detectado a la extensión con la que se guarda.
var allowedImages = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Asset describe un archivo ya almacenado.
type Asset struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
}

// Uploader es el contrato upload(localPath) -> {url}.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (Asset, error)
}

// objectKey arma claves del tipo images/2026/10/17/<uuid>.png.
func objectKey(prefix string, now time.Time, ext string) string {
	return fmt.Sprintf("%s/%d/%02d/%02d/%s%s", prefix, now.Year(), now.Month(), now.Day(), uuid.NewString(), ext)
}

// sniff detecta el content type por contenido. El nombre del archivo no se
// usa: solo se aceptan las imágenes de allowedImages.
func sniff(localPath string) (contentType, ext string, err error) {
	mt, err := mimetype.DetectFile(localPath)
	if err != nil {
		return "", "", err
	}
	for m := mt; m != nil; m = m.Parent() {
		if ext, ok := allowedImages[m.String()]; ok {
			return m.String(), ext, nil
		}
	}
	return "", "", fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
