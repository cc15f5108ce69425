package http

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// stagedFiles guarda archivos multipart en un directorio temporal y los
// borra al terminar el request, haya subido o no.
type stagedFiles struct {
	dir    string
	logger *zap.Logger
	paths  []string
}

// stage devuelve "" cuando el campo no vino o el request no es multipart.
func (s *stagedFiles) stage(c *gin.Context, field string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", err
	}

	// El nombre del cliente se descarta; el tipo real lo decide media por contenido.
	dst := filepath.Join(s.dir, "upload-"+uuid.NewString())
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		return "", err
	}
	s.paths = append(s.paths, dst)
	return dst, nil
}

func (s *stagedFiles) cleanup() {
	for _, p := range s.paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) && s.logger != nil {
			s.logger.Warn("remove staged upload failed", zap.String("path", p), zap.Error(err))
		}
	}
	s.paths = nil
}
