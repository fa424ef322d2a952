package handler

import (
	"errors"
	"net/http"
	"reflect"

	"colectas/internal/apierror"
	"colectas/internal/middleware"
	"colectas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds the JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// actorID extracts the authenticated user's id from the JWT claims.
func actorID(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Sesion no valida"))
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps domain errors to HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPinFormato),
		errors.Is(err, service.ErrMontoInvalido),
		errors.Is(err, service.ErrFirmaRequerida),
		errors.Is(err, service.ErrNombreRequerido),
		errors.Is(err, service.ErrPinNoCoincide):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case errors.Is(err, service.ErrPinIncorrecto):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	case errors.Is(err, service.ErrNoAutorizado), errors.Is(err, service.ErrSupervisorProtegido):
		c.JSON(http.StatusForbidden, apierror.New(err.Error()))
	case errors.Is(err, service.ErrUsuarioNoEncontrado),
		errors.Is(err, service.ErrDepositoNoEncontrado),
		errors.Is(err, service.ErrNoConfigurada):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrNombreDuplicado), errors.Is(err, service.ErrYaConfigurada):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	default:
		// Persistence and other internal failures
		_ = c.Error(err)
	}
}
