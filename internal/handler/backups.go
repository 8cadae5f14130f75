package handler

import (
	"net/http"
	"path/filepath"

	"pharmapos/internal/apierror"
	"pharmapos/internal/dto"
	"pharmapos/internal/worker"

	"github.com/gin-gonic/gin"
)

type BackupsHandler struct{ cfg worker.BackupConfig }

func NewBackupsHandler(cfg worker.BackupConfig) *BackupsHandler {
	return &BackupsHandler{cfg: cfg}
}

// Create writes a backup now, regardless of the auto backup setting.
func (h *BackupsHandler) Create(c *gin.Context) {
	path, err := worker.RunBackup(c.Request.Context(), h.cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"file": filepath.Base(path)})
}

func (h *BackupsHandler) List(c *gin.Context) {
	files, err := worker.ListBackups(h.cfg.Dir)
	if err != nil {
		writeError(c, err)
		return
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	c.JSON(http.StatusOK, gin.H{"files": names})
}

// Restore upserts every record of a listed backup file. Records created
// after the backup are kept.
func (h *BackupsHandler) Restore(c *gin.Context) {
	var req dto.RestoreBackupRequest
	if !bindAndValidate(c, &req) {
		return
	}
	files, err := worker.ListBackups(h.cfg.Dir)
	if err != nil {
		writeError(c, err)
		return
	}
	path := ""
	for _, f := range files {
		if filepath.Base(f) == req.File {
			path = f
			break
		}
	}
	if path == "" {
		c.JSON(http.StatusNotFound, apierror.New("Backup not found"))
		return
	}

	n, err := worker.RestoreBackup(c.Request.Context(), h.cfg.Engine, path)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"file": req.File, "records": n})
}
