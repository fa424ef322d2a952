package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"colectas/internal/apierror"
	"colectas/internal/dto"
	"colectas/internal/infra"
	"colectas/internal/middleware"
	"colectas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DepositosHandler struct{ svc service.DepositoService }

func NewDepositosHandler(svc service.DepositoService) *DepositosHandler {
	return &DepositosHandler{svc: svc}
}

// Crear records a deposit: folio assignment, date/time stamps, user snapshot,
// and a queued ticket print.
func (h *DepositosHandler) Crear(c *gin.Context) {
	var req dto.CrearDepositoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.Crear(c.Request.Context(), actor, claims.Nombre, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar returns the day's deposits for the station, creation order.
func (h *DepositosHandler) Listar(c *gin.Context) {
	fecha := c.Query("fecha")
	incluirCancelados := c.Query("incluir_cancelados") == "true"

	resp, err := h.svc.Listar(c.Request.Context(), fecha, incluirCancelados)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Corte returns the day's KPIs (OK count, per-user totals, grand total).
func (h *DepositosHandler) Corte(c *gin.Context) {
	resp, err := h.svc.Corte(c.Request.Context(), c.Query("fecha"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Anular cancels a deposit (supervisor only, one-way, idempotent).
func (h *DepositosHandler) Anular(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Anular(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reimprimir regenerates the two-copy ticket PDF for an existing deposit.
func (h *DepositosHandler) Reimprimir(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	dep, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := infra.GenerarTicket(dep, &buf); err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="ticket_%s.pdf"`, dep.Folio))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// LimpiarDia physically deletes the day's rows for the station.
func (h *DepositosHandler) LimpiarDia(c *gin.Context) {
	var req dto.LimpiarDiaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	n, err := h.svc.LimpiarDia(c.Request.Context(), actor, req.Fecha)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"eliminados": n})
}

// ExportarCSV streams the day's CSV. With incluir_cancelados=true it is the
// supervisor ALL export and requires the step-up PIN in X-Supervisor-Pin.
func (h *DepositosHandler) ExportarCSV(c *gin.Context) {
	fecha := c.Query("fecha")
	incluirCancelados := c.Query("incluir_cancelados") == "true"
	pin := c.GetHeader("X-Supervisor-Pin")

	actor, ok := actorID(c)
	if !ok {
		return
	}
	nombre, csv, err := h.svc.ExportarCSV(c.Request.Context(), actor, pin, fecha, incluirCancelados)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, nombre))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", csv)
}

// EnviarCorte queues the day's CSV to the configured report address.
func (h *DepositosHandler) EnviarCorte(c *gin.Context) {
	var req dto.CorteEmailRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	if err := h.svc.EnviarCorteEmail(c.Request.Context(), actor, c.Query("fecha"), req); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
