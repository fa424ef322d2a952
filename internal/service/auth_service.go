package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
	"time"

	"colectas/internal/config"
	"colectas/internal/dto"
	"colectas/internal/model"
	"colectas/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// pinRegexp is checked before any lookup or hashing: fail fast on bad input.
var pinRegexp = regexp.MustCompile(`^\d{4,6}$`)

var titulador = cases.Title(language.Spanish)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	// VerificarSupervisor re-reads the acting user from the store and checks
	// the SUPERVISOR role. Gated actions never trust the cached JWT role.
	VerificarSupervisor(ctx context.Context, actorID uuid.UUID) (*model.Usuario, error)
	// GateSupervisor is the step-up confirmation: the already-logged-in
	// supervisor re-enters their own PIN before a sensitive action.
	GateSupervisor(ctx context.Context, actorID uuid.UUID, pin string) (*model.Usuario, error)
	CrearUsuario(ctx context.Context, actorID uuid.UUID, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	EliminarUsuario(ctx context.Context, actorID uuid.UUID, usuarioID uuid.UUID, pinSupervisor string) error
	ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error)
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

// PinDigest computes the deterministic PIN verifier: hex SHA-256 of the fixed
// prefix plus the PIN. Deliberately not a password hash — this is offline
// convenience auth for a shared station terminal, not a security boundary.
func PinDigest(pin string) string {
	sum := sha256.Sum256([]byte("colectas|" + pin))
	return hex.EncodeToString(sum[:])
}

// NormalizarNombre collapses whitespace and title-cases the display name:
// "  ana   lopez " → "Ana Lopez".
func NormalizarNombre(nombre string) string {
	nombre = strings.Join(strings.Fields(nombre), " ")
	return titulador.String(strings.ToLower(nombre))
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if !pinRegexp.MatchString(req.Pin) {
		return nil, ErrPinFormato
	}

	id, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, ErrUsuarioNoEncontrado
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUsuarioNoEncontrado
		}
		return nil, err
	}

	if PinDigest(req.Pin) != user.PinHash {
		return nil, ErrPinIncorrecto
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   s.cfg.JWTExpirationHours * 3600,
		User: dto.UsuarioResponse{
			ID:     user.ID.String(),
			Nombre: user.Nombre,
			Rol:    user.Rol,
		},
	}, nil
}

func (s *authService) VerificarSupervisor(ctx context.Context, actorID uuid.UUID) (*model.Usuario, error) {
	actor, err := s.repo.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUsuarioNoEncontrado
		}
		return nil, err
	}
	if actor.Rol != model.RolSupervisor {
		return nil, ErrNoAutorizado
	}
	return actor, nil
}

func (s *authService) GateSupervisor(ctx context.Context, actorID uuid.UUID, pin string) (*model.Usuario, error) {
	if !pinRegexp.MatchString(pin) {
		return nil, ErrPinFormato
	}
	actor, err := s.VerificarSupervisor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if PinDigest(pin) != actor.PinHash {
		return nil, ErrPinIncorrecto
	}
	return actor, nil
}

func (s *authService) CrearUsuario(ctx context.Context, actorID uuid.UUID, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	// Step-up gate first: abort with no partial effect
	if _, err := s.GateSupervisor(ctx, actorID, req.PinSupervisor); err != nil {
		return nil, err
	}

	nombre := NormalizarNombre(req.Nombre)
	if nombre == "" {
		return nil, ErrNombreRequerido
	}
	if !pinRegexp.MatchString(req.Pin) {
		return nil, ErrPinFormato
	}

	if _, err := s.repo.FindByNombre(ctx, nombre); err == nil {
		return nil, ErrNombreDuplicado
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &model.Usuario{
		ID:      uuid.New(),
		Nombre:  nombre,
		PinHash: PinDigest(req.Pin),
		Rol:     model.RolOperador,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return &dto.UsuarioResponse{ID: user.ID.String(), Nombre: user.Nombre, Rol: user.Rol}, nil
}

func (s *authService) EliminarUsuario(ctx context.Context, actorID, usuarioID uuid.UUID, pinSupervisor string) error {
	if _, err := s.GateSupervisor(ctx, actorID, pinSupervisor); err != nil {
		return err
	}

	user, err := s.repo.FindByID(ctx, usuarioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUsuarioNoEncontrado
		}
		return err
	}
	// No code path deletes or demotes a SUPERVISOR
	if user.Rol == model.RolSupervisor {
		return ErrSupervisorProtegido
	}
	return s.repo.Delete(ctx, usuarioID)
}

func (s *authService) ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i, u := range users {
		resp[i] = dto.UsuarioResponse{
			ID:        u.ID.String(),
			Nombre:    u.Nombre,
			Rol:       u.Rol,
			CreatedAt: u.CreatedAt.Format(time.RFC3339),
		}
	}
	return resp, nil
}

func (s *authService) generateToken(user *model.Usuario) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"nombre":  user.Nombre,
		"rol":     user.Rol,
		"exp":     time.Now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
