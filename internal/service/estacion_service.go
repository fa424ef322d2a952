package service

import (
	"context"
	"errors"
	"time"

	"colectas/internal/dto"
	"colectas/internal/model"
	"colectas/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type EstacionService interface {
	// Setup runs the one-time station configuration: station code plus the
	// single SUPERVISOR account. Rejected once anything exists.
	Setup(ctx context.Context, req dto.SetupRequest) (*dto.EstacionResponse, error)
	Obtener(ctx context.Context) (*dto.EstacionResponse, error)
	// Configurada reports whether setup already ran (used to route the client
	// to the setup or login view).
	Configurada(ctx context.Context) (bool, error)
}

type estacionService struct {
	repo     repository.EstacionRepository
	usuarios repository.UsuarioRepository
}

func NewEstacionService(repo repository.EstacionRepository, usuarios repository.UsuarioRepository) EstacionService {
	return &estacionService{repo: repo, usuarios: usuarios}
}

func (s *estacionService) Setup(ctx context.Context, req dto.SetupRequest) (*dto.EstacionResponse, error) {
	configurada, err := s.Configurada(ctx)
	if err != nil {
		return nil, err
	}
	if configurada {
		return nil, ErrYaConfigurada
	}

	nombre := NormalizarNombre(req.NombreSupervisor)
	if nombre == "" {
		return nil, ErrNombreRequerido
	}
	if !pinRegexp.MatchString(req.Pin) {
		return nil, ErrPinFormato
	}
	if req.Pin != req.PinConfirmacion {
		return nil, ErrPinNoCoincide
	}

	est := &model.Estacion{Codigo: req.Estacion}
	sup := &model.Usuario{
		ID:      uuid.New(),
		Nombre:  nombre,
		PinHash: PinDigest(req.Pin),
		Rol:     model.RolSupervisor,
	}
	if err := s.repo.CreateWithSupervisor(ctx, est, sup); err != nil {
		return nil, err
	}

	log.Info().Str("estacion", est.Codigo).Str("supervisor", sup.Nombre).
		Msg("estacion configurada")
	return &dto.EstacionResponse{
		Codigo:    est.Codigo,
		CreatedAt: est.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (s *estacionService) Obtener(ctx context.Context) (*dto.EstacionResponse, error) {
	est, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoConfigurada
		}
		return nil, err
	}
	return &dto.EstacionResponse{
		Codigo:    est.Codigo,
		CreatedAt: est.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (s *estacionService) Configurada(ctx context.Context) (bool, error) {
	if _, err := s.repo.Get(ctx); err == nil {
		return true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	// A station without users is still in setup (mirrors the original boot check)
	n, err := s.usuarios.Count(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
