package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"colectas/internal/config"
	"colectas/internal/dto"
	"colectas/internal/firma"
	"colectas/internal/model"
	"colectas/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const corteCacheTTL = 60 * time.Second

// Encolador enqueues async side effects (ticket printing, corte email).
// Implemented by worker.Dispatcher; faked in tests.
type Encolador interface {
	EncolarTicket(ctx context.Context, depositoID string) error
	EncolarEmail(ctx context.Context, para, asunto, cuerpo, nombreArchivo string, adjunto []byte) error
}

type DepositoService interface {
	Crear(ctx context.Context, actorID uuid.UUID, actorNombre string, req dto.CrearDepositoRequest) (*dto.DepositoResponse, error)
	// Anular performs the one-way OK → CANCELED transition. Supervisor only;
	// a second call on an already-canceled deposit is a no-op.
	Anular(ctx context.Context, actorID, depositoID uuid.UUID) (*dto.DepositoResponse, error)
	Obtener(ctx context.Context, depositoID uuid.UUID) (*model.Deposito, error)
	Listar(ctx context.Context, fecha string, incluirCancelados bool) ([]dto.DepositoResponse, error)
	Corte(ctx context.Context, fecha string) (*dto.CorteResponse, error)
	LimpiarDia(ctx context.Context, actorID uuid.UUID, fecha string) (int64, error)
	// ExportarCSV serializes the filtered day. Including canceled rows is the
	// supervisor "ALL" export and requires the step-up PIN.
	ExportarCSV(ctx context.Context, actorID uuid.UUID, pinSupervisor, fecha string, incluirCancelados bool) (string, []byte, error)
	EnviarCorteEmail(ctx context.Context, actorID uuid.UUID, fecha string, req dto.CorteEmailRequest) error
}

type depositoService struct {
	repo      repository.DepositoRepository
	estacion  repository.EstacionRepository
	folios    FolioService
	auth      AuthService
	encolador Encolador
	rdb       *redis.Client
	cfg       *config.Config
	ahora     func() time.Time
}

func NewDepositoService(
	repo repository.DepositoRepository,
	estacion repository.EstacionRepository,
	folios FolioService,
	auth AuthService,
	encolador Encolador,
	rdb *redis.Client,
	cfg *config.Config,
) DepositoService {
	return &depositoService{
		repo:      repo,
		estacion:  estacion,
		folios:    folios,
		auth:      auth,
		encolador: encolador,
		rdb:       rdb,
		cfg:       cfg,
		ahora:     time.Now,
	}
}

func (s *depositoService) codigoEstacion(ctx context.Context) (string, error) {
	est, err := s.estacion.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNoConfigurada
		}
		return "", err
	}
	return est.Codigo, nil
}

func (s *depositoService) Crear(ctx context.Context, actorID uuid.UUID, actorNombre string, req dto.CrearDepositoRequest) (*dto.DepositoResponse, error) {
	estacion, err := s.codigoEstacion(ctx)
	if err != nil {
		return nil, err
	}

	// Round first, then validate: 0.004 rounds to 0.00 and is rejected
	monto := req.Monto.Round(2)
	if !monto.IsPositive() {
		return nil, ErrMontoInvalido
	}

	// The ink-presence predicate, not merely "a bitmap exists"
	img, err := firma.Decodificar(req.FirmaDataURL)
	if err != nil || !firma.TieneTinta(img) {
		return nil, ErrFirmaRequerida
	}

	folio, err := s.folios.Siguiente(ctx, estacion)
	if err != nil {
		return nil, err
	}

	ahora := s.ahora()
	dep := &model.Deposito{
		ID:            uuid.New(),
		Estacion:      estacion,
		Folio:         folio,
		Fecha:         ahora.Format("2006-01-02"),
		Hora:          ahora.Format("15:04"),
		Isla:          req.Isla,
		Turno:         req.Turno,
		Monto:         monto,
		UsuarioID:     actorID,
		UsuarioNombre: actorNombre,
		FirmaDataURL:  req.FirmaDataURL,
		Estado:        model.EstadoOK,
	}

	// Persist first; caches and side effects only after the write commits
	if err := s.repo.Create(ctx, dep); err != nil {
		return nil, err
	}
	s.invalidarCorte(ctx, estacion, dep.Fecha)

	// Single print trigger per successful creation
	if err := s.encolador.EncolarTicket(ctx, dep.ID.String()); err != nil {
		log.Error().Err(err).Str("folio", dep.Folio).Msg("no se pudo encolar el ticket")
	}

	return depositoADTO(dep), nil
}

func (s *depositoService) Anular(ctx context.Context, actorID, depositoID uuid.UUID) (*dto.DepositoResponse, error) {
	actor, err := s.auth.VerificarSupervisor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	dep, err := s.repo.FindByID(ctx, depositoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepositoNoEncontrado
		}
		return nil, err
	}

	// Idempotent: a second cancel keeps the original stamps
	if dep.Estado == model.EstadoCancelado {
		return depositoADTO(dep), nil
	}

	ahora := s.ahora()
	dep.Estado = model.EstadoCancelado
	dep.CanceladoAt = &ahora
	dep.CanceladoPor = &actor.Nombre
	if err := s.repo.Update(ctx, dep); err != nil {
		return nil, err
	}
	s.invalidarCorte(ctx, dep.Estacion, dep.Fecha)

	log.Info().Str("folio", dep.Folio).Str("por", actor.Nombre).Msg("deposito cancelado")
	return depositoADTO(dep), nil
}

func (s *depositoService) Obtener(ctx context.Context, depositoID uuid.UUID) (*model.Deposito, error) {
	dep, err := s.repo.FindByID(ctx, depositoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepositoNoEncontrado
		}
		return nil, err
	}
	return dep, nil
}

func (s *depositoService) Listar(ctx context.Context, fecha string, incluirCancelados bool) ([]dto.DepositoResponse, error) {
	estacion, err := s.codigoEstacion(ctx)
	if err != nil {
		return nil, err
	}
	if fecha == "" {
		fecha = s.ahora().Format("2006-01-02")
	}
	deps, err := s.repo.ListByDia(ctx, estacion, fecha, incluirCancelados)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.DepositoResponse, len(deps))
	for i := range deps {
		resp[i] = *depositoADTO(&deps[i])
	}
	return resp, nil
}

func (s *depositoService) Corte(ctx context.Context, fecha string) (*dto.CorteResponse, error) {
	estacion, err := s.codigoEstacion(ctx)
	if err != nil {
		return nil, err
	}
	if fecha == "" {
		fecha = s.ahora().Format("2006-01-02")
	}

	cacheKey := "corte:" + estacion + ":" + fecha
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp dto.CorteResponse
			if json.Unmarshal(cached, &resp) == nil {
				return &resp, nil
			}
		}
	}

	// Totals always cover OK rows only
	deps, err := s.repo.ListByDia(ctx, estacion, fecha, false)
	if err != nil {
		return nil, err
	}

	porUsuario := make(map[string]decimal.Decimal)
	gran := decimal.Zero
	for _, d := range deps {
		porUsuario[d.UsuarioNombre] = porUsuario[d.UsuarioNombre].Add(d.Monto)
		gran = gran.Add(d.Monto)
	}
	nombres := make([]string, 0, len(porUsuario))
	for n := range porUsuario {
		nombres = append(nombres, n)
	}
	sort.Strings(nombres)

	totales := make([]dto.TotalUsuario, len(nombres))
	for i, n := range nombres {
		totales[i] = dto.TotalUsuario{Usuario: n, Total: porUsuario[n]}
	}

	resp := &dto.CorteResponse{
		Estacion:        estacion,
		Fecha:           fecha,
		TransaccionesOK: len(deps),
		TotalPorUsuario: totales,
		GranTotal:       gran,
	}

	// Populate cache — best effort, invalidated by every mutation
	if s.rdb != nil {
		if b, err := json.Marshal(resp); err == nil {
			_ = s.rdb.Set(ctx, cacheKey, b, corteCacheTTL).Err()
		}
	}
	return resp, nil
}

func (s *depositoService) LimpiarDia(ctx context.Context, actorID uuid.UUID, fecha string) (int64, error) {
	actor, err := s.auth.VerificarSupervisor(ctx, actorID)
	if err != nil {
		return 0, err
	}
	estacion, err := s.codigoEstacion(ctx)
	if err != nil {
		return 0, err
	}
	if fecha == "" {
		fecha = s.ahora().Format("2006-01-02")
	}
	n, err := s.repo.DeleteDia(ctx, estacion, fecha)
	if err != nil {
		return 0, err
	}
	s.invalidarCorte(ctx, estacion, fecha)
	log.Warn().Str("estacion", estacion).Str("fecha", fecha).Int64("registros", n).
		Str("por", actor.Nombre).Msg("registros del dia eliminados")
	return n, nil
}

func (s *depositoService) ExportarCSV(ctx context.Context, actorID uuid.UUID, pinSupervisor, fecha string, incluirCancelados bool) (string, []byte, error) {
	// The ALL view (canceled included) is a gated supervisor export
	if incluirCancelados {
		if _, err := s.auth.GateSupervisor(ctx, actorID, pinSupervisor); err != nil {
			return "", nil, err
		}
	}
	estacion, err := s.codigoEstacion(ctx)
	if err != nil {
		return "", nil, err
	}
	if fecha == "" {
		fecha = s.ahora().Format("2006-01-02")
	}
	deps, err := s.repo.ListByDia(ctx, estacion, fecha, incluirCancelados)
	if err != nil {
		return "", nil, err
	}

	nombre := fmt.Sprintf("colectas_%s_%s.csv", estacion, fecha)
	if incluirCancelados {
		nombre = fmt.Sprintf("colectas_%s_%s_ALL.csv", estacion, fecha)
	}
	return nombre, construirCSV(deps), nil
}

func (s *depositoService) EnviarCorteEmail(ctx context.Context, actorID uuid.UUID, fecha string, req dto.CorteEmailRequest) error {
	actor, err := s.auth.GateSupervisor(ctx, actorID, req.PinSupervisor)
	if err != nil {
		return err
	}

	para := s.cfg.ReporteEmail
	if req.Para != nil && *req.Para != "" {
		para = *req.Para
	}
	if para == "" {
		return errors.New("Destinatario del reporte no configurado")
	}

	estacion, err := s.codigoEstacion(ctx)
	if err != nil {
		return err
	}
	if fecha == "" {
		fecha = s.ahora().Format("2006-01-02")
	}
	deps, err := s.repo.ListByDia(ctx, estacion, fecha, true)
	if err != nil {
		return err
	}

	nombre := fmt.Sprintf("colectas_%s_%s_ALL.csv", estacion, fecha)
	asunto := fmt.Sprintf("Corte de colectas %s — %s", estacion, fecha)
	cuerpo := fmt.Sprintf("Corte del dia %s en la estacion %s, enviado por %s.", fecha, estacion, actor.Nombre)
	return s.encolador.EncolarEmail(ctx, para, asunto, cuerpo, nombre, construirCSV(deps))
}

func (s *depositoService) invalidarCorte(ctx context.Context, estacion, fecha string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, "corte:"+estacion+":"+fecha).Err(); err != nil {
		log.Warn().Err(err).Msg("no se pudo invalidar el cache del corte")
	}
}

func depositoADTO(d *model.Deposito) *dto.DepositoResponse {
	resp := &dto.DepositoResponse{
		ID:            d.ID.String(),
		Estacion:      d.Estacion,
		Folio:         d.Folio,
		Fecha:         d.Fecha,
		Hora:          d.Hora,
		Isla:          d.Isla,
		Turno:         d.Turno,
		Monto:         d.Monto,
		UsuarioID:     d.UsuarioID.String(),
		UsuarioNombre: d.UsuarioNombre,
		Estado:        d.Estado,
		CreatedAt:     d.CreatedAt.Format(time.RFC3339),
		CanceladoPor:  d.CanceladoPor,
	}
	if d.CanceladoAt != nil {
		t := d.CanceladoAt.Format(time.RFC3339)
		resp.CanceladoAt = &t
	}
	return resp
}
