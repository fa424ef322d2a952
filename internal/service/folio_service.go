package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"colectas/internal/dto"
	"colectas/internal/repository"

	"github.com/rs/zerolog/log"
)

type FolioService interface {
	// Siguiente issues the next monthly folio string for the station:
	// "{estacion}-{YYYY-MM}-{counter padded to 6 digits}".
	Siguiente(ctx context.Context, estacion string) (string, error)
	// Reiniciar sets the current month's counter back to zero and records
	// the action in the bitácora.
	Reiniciar(ctx context.Context, estacion, por string) error
	Bitacora(ctx context.Context, estacion string) ([]dto.BitacoraResponse, error)
}

type folioService struct {
	repo  repository.FolioRepository
	ahora func() time.Time

	// One mutex per (estacion, mes): the DB row lock already serializes the
	// increment, this guard additionally stops a rapid double-submit from
	// racing through the rest of the deposit flow.
	mu       sync.Mutex
	candados map[string]*sync.Mutex
}

func NewFolioService(repo repository.FolioRepository) FolioService {
	return &folioService{
		repo:     repo,
		ahora:    time.Now,
		candados: make(map[string]*sync.Mutex),
	}
}

func (s *folioService) candado(clave string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.candados[clave]
	if !ok {
		m = &sync.Mutex{}
		s.candados[clave] = m
	}
	return m
}

func (s *folioService) mes() string {
	return s.ahora().Format("2006-01")
}

func (s *folioService) Siguiente(ctx context.Context, estacion string) (string, error) {
	mes := s.mes()
	m := s.candado(estacion + "|" + mes)
	m.Lock()
	defer m.Unlock()

	valor, err := s.repo.Incrementar(ctx, estacion, mes)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%06d", estacion, mes, valor), nil
}

func (s *folioService) Reiniciar(ctx context.Context, estacion, por string) error {
	mes := s.mes()
	m := s.candado(estacion + "|" + mes)
	m.Lock()
	defer m.Unlock()

	if err := s.repo.Reiniciar(ctx, estacion, mes, por); err != nil {
		return err
	}
	log.Info().Str("estacion", estacion).Str("mes", mes).Str("por", por).
		Msg("folio mensual reiniciado")
	return nil
}

func (s *folioService) Bitacora(ctx context.Context, estacion string) ([]dto.BitacoraResponse, error) {
	entradas, err := s.repo.ListBitacora(ctx, estacion)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.BitacoraResponse, len(entradas))
	for i, e := range entradas {
		resp[i] = dto.BitacoraResponse{
			Estacion:  e.Estacion,
			Mes:       e.Mes,
			Accion:    e.Accion,
			Por:       e.Por,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		}
	}
	return resp, nil
}
