package handler

import (
	"io"
	"net/http"
	"time"

	"pharmapos/internal/apierror"
	"pharmapos/internal/settings"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct{ store *settings.Store }

func NewSettingsHandler(store *settings.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	p := h.store.Pharmacy()
	c.JSON(http.StatusOK, gin.H{
		"pharmacySettings": p,
		"systemSettings":   h.store.System(),
		"currencySymbol":   settings.CurrencySymbol(p.Currency),
	})
}

func (h *SettingsHandler) SavePharmacy(c *gin.Context) {
	var req settings.PharmacyPatch
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.store.SavePharmacy(req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SettingsHandler) SaveSystem(c *gin.Context) {
	var req settings.SystemPatch
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.store.SaveSystem(req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SettingsHandler) Reset(c *gin.Context) {
	if err := h.store.Reset(); err != nil {
		writeError(c, err)
		return
	}
	h.Get(c)
}

func (h *SettingsHandler) Export(c *gin.Context) {
	now := time.Now()
	data, err := h.store.Export(now)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="pharmacy-settings-`+now.Format("2006-01-02")+`.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

func (h *SettingsHandler) Import(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Could not read body"))
		return
	}
	if err := h.store.Import(data); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	h.Get(c)
}
