package handler

import (
	"net/http"

	"colectas/internal/dto"
	"colectas/internal/service"

	"github.com/gin-gonic/gin"
)

type EstacionHandler struct {
	svc service.EstacionService
}

func NewEstacionHandler(svc service.EstacionService) *EstacionHandler {
	return &EstacionHandler{svc: svc}
}

// Setup runs the one-time station configuration. Public, but rejected with
// 409 once the station exists.
func (h *EstacionHandler) Setup(c *gin.Context) {
	var req dto.SetupRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Setup(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *EstacionHandler) Obtener(c *gin.Context) {
	resp, err := h.svc.Obtener(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Folios ───────────────────────────────────────────────────────────────────

type FoliosHandler struct {
	folios   service.FolioService
	auth     service.AuthService
	estacion service.EstacionService
}

func NewFoliosHandler(folios service.FolioService, auth service.AuthService, estacion service.EstacionService) *FoliosHandler {
	return &FoliosHandler{folios: folios, auth: auth, estacion: estacion}
}

// Reiniciar sets the current month's counter back to zero (step-up gated)
// and leaves an audit entry.
func (h *FoliosHandler) Reiniciar(c *gin.Context) {
	var req dto.ResetFolioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	sup, err := h.auth.GateSupervisor(c.Request.Context(), actor, req.PinSupervisor)
	if err != nil {
		writeError(c, err)
		return
	}
	est, err := h.estacion.Obtener(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.folios.Reiniciar(c.Request.Context(), est.Codigo, sup.Nombre); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Bitacora lists the append-only audit trail of folio resets.
func (h *FoliosHandler) Bitacora(c *gin.Context) {
	est, err := h.estacion.Obtener(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	resp, err := h.folios.Bitacora(c.Request.Context(), est.Codigo)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
