package handler

import (
	"net/http"

	"colectas/internal/apierror"
	"colectas/internal/dto"
	"colectas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login authenticates a PIN against the selected user and returns the
// session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Roster returns the user picker for the login screen. Names and roles
// only, no digests and no timestamps. Served without auth.
func (h *AuthHandler) Roster(c *gin.Context) {
	resp, err := h.svc.ListarUsuarios(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	for i := range resp {
		resp[i].CreatedAt = ""
	}
	c.JSON(http.StatusOK, resp)
}

// ── Usuarios Handler ─────────────────────────────────────────────────────────

type UsuariosHandler struct{ svc service.AuthService }

func NewUsuariosHandler(svc service.AuthService) *UsuariosHandler {
	return &UsuariosHandler{svc: svc}
}

func (h *UsuariosHandler) Crear(c *gin.Context) {
	var req dto.CrearUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	resp, err := h.svc.CrearUsuario(c.Request.Context(), actor, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UsuariosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.ListarUsuarios(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsuariosHandler) Eliminar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.EliminarUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	if err := h.svc.EliminarUsuario(c.Request.Context(), actor, id, req.PinSupervisor); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
