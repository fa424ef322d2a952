package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"colectas/internal/dto"
	"colectas/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// ── In-memory Repository Stubs ────────────────────────────────────────────────

type stubDepositoRepo struct {
	deps map[uuid.UUID]*model.Deposito
}

func newStubDepositoRepo() *stubDepositoRepo {
	return &stubDepositoRepo{deps: make(map[uuid.UUID]*model.Deposito)}
}

func (r *stubDepositoRepo) Create(_ context.Context, d *model.Deposito) error {
	d.CreatedAt = time.Now()
	r.deps[d.ID] = d
	return nil
}

func (r *stubDepositoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Deposito, error) {
	d, ok := r.deps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func (r *stubDepositoRepo) Update(_ context.Context, d *model.Deposito) error {
	r.deps[d.ID] = d
	return nil
}

func (r *stubDepositoRepo) ListByDia(_ context.Context, estacion, fecha string, incluirCancelados bool) ([]model.Deposito, error) {
	out := []model.Deposito{}
	for _, d := range r.deps {
		if d.Estacion != estacion || d.Fecha != fecha {
			continue
		}
		if !incluirCancelados && d.Estado == model.EstadoCancelado {
			continue
		}
		out = append(out, *d)
	}
	// Display order: oldest first
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Folio < out[i].Folio {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *stubDepositoRepo) DeleteDia(_ context.Context, estacion, fecha string) (int64, error) {
	var n int64
	for id, d := range r.deps {
		if d.Estacion == estacion && d.Fecha == fecha {
			delete(r.deps, id)
			n++
		}
	}
	return n, nil
}

type stubEstacionRepo struct {
	est *model.Estacion
	// usuarios receives the supervisor written by CreateWithSupervisor
	usuarios *stubUsuarioRepo
	// fallaSupervisor simulates the second insert failing; the simulated
	// transaction then rolls back and nothing persists
	fallaSupervisor bool
}

func (r *stubEstacionRepo) CreateWithSupervisor(_ context.Context, e *model.Estacion, sup *model.Usuario) error {
	if r.fallaSupervisor {
		return errors.New("insert usuario: connection reset")
	}
	r.est = e
	if r.usuarios != nil {
		r.usuarios.users[sup.ID] = sup
	}
	return nil
}

func (r *stubEstacionRepo) Get(_ context.Context) (*model.Estacion, error) {
	if r.est == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.est, nil
}

// fakeEncolador records enqueued jobs instead of touching Redis.
type fakeEncolador struct {
	tickets []string
	emails  []string
	csv     []byte
}

func (f *fakeEncolador) EncolarTicket(_ context.Context, depositoID string) error {
	f.tickets = append(f.tickets, depositoID)
	return nil
}

func (f *fakeEncolador) EncolarEmail(_ context.Context, para, _, _, _ string, adjunto []byte) error {
	f.emails = append(f.emails, para)
	f.csv = adjunto
	return nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func firmaDataURL(conTinta bool) string {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.White)
		}
	}
	if conTinta {
		for x := 5; x < 30; x++ {
			img.Set(x, 10, color.Black)
			img.Set(x, 11, color.Black)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

type depositoFixture struct {
	svc       *depositoService
	repo      *stubDepositoRepo
	usuarios  *stubUsuarioRepo
	encolador *fakeEncolador
	operador  *model.Usuario
	jefa      *model.Usuario
}

func newDepositoFixture(t *testing.T) *depositoFixture {
	t.Helper()
	usuarios := newStubUsuarioRepo()
	operador := seedUsuario(usuarios, "Ana Lopez", "1234", model.RolOperador)
	jefa := seedUsuario(usuarios, "Jefa Turno", "5678", model.RolSupervisor)

	estaciones := &stubEstacionRepo{est: &model.Estacion{Codigo: "A1"}}
	repo := newStubDepositoRepo()
	encolador := &fakeEncolador{}

	auth := NewAuthService(usuarios, newTestCfg())
	folios := newTestFolioService(newStubFolioRepo(), mayo2024)

	cfg := newTestCfg()
	cfg.ReporteEmail = "corte@estacion.test"

	svc := NewDepositoService(repo, estaciones, folios, auth, encolador, nil, cfg).(*depositoService)
	svc.ahora = func() time.Time { return mayo2024 }

	return &depositoFixture{
		svc: svc, repo: repo, usuarios: usuarios,
		encolador: encolador, operador: operador, jefa: jefa,
	}
}

func (f *depositoFixture) crear(t *testing.T, monto string) *dto.DepositoResponse {
	t.Helper()
	resp, err := f.svc.Crear(context.Background(), f.operador.ID, f.operador.Nombre, dto.CrearDepositoRequest{
		Isla: "3", Turno: "matutino",
		Monto:        decimal.RequireFromString(monto),
		FirmaDataURL: firmaDataURL(true),
	})
	assert.NoError(t, err)
	return resp
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestCrearDeposito_Success(t *testing.T) {
	f := newDepositoFixture(t)

	resp := f.crear(t, "150.50")

	assert.Equal(t, "A1", resp.Estacion)
	assert.Equal(t, "A1-2024-05-000001", resp.Folio)
	assert.Equal(t, "2024-05-15", resp.Fecha)
	assert.Equal(t, "10:30", resp.Hora)
	assert.Equal(t, model.EstadoOK, resp.Estado)
	assert.Equal(t, "Ana Lopez", resp.UsuarioNombre)
	assert.True(t, resp.Monto.Equal(decimal.RequireFromString("150.50")))

	// Exactly one print job per successful creation
	assert.Equal(t, []string{resp.ID}, f.encolador.tickets)
}

func TestCrearDeposito_RedondeoMedioArriba(t *testing.T) {
	f := newDepositoFixture(t)

	resp := f.crear(t, "10.005")

	assert.Equal(t, "10.01", resp.Monto.StringFixed(2))
}

func TestCrearDeposito_MontoInvalido(t *testing.T) {
	f := newDepositoFixture(t)

	for _, monto := range []string{"0", "-5", "0.004"} {
		_, err := f.svc.Crear(context.Background(), f.operador.ID, f.operador.Nombre, dto.CrearDepositoRequest{
			Isla: "3", Turno: "matutino",
			Monto:        decimal.RequireFromString(monto),
			FirmaDataURL: firmaDataURL(true),
		})
		assert.ErrorIs(t, err, ErrMontoInvalido, "monto %s", monto)
	}
	assert.Empty(t, f.encolador.tickets)
}

func TestCrearDeposito_FirmaSinTinta(t *testing.T) {
	f := newDepositoFixture(t)

	_, err := f.svc.Crear(context.Background(), f.operador.ID, f.operador.Nombre, dto.CrearDepositoRequest{
		Isla: "3", Turno: "matutino",
		Monto:        decimal.RequireFromString("100"),
		FirmaDataURL: firmaDataURL(false),
	})
	assert.ErrorIs(t, err, ErrFirmaRequerida)

	_, err = f.svc.Crear(context.Background(), f.operador.ID, f.operador.Nombre, dto.CrearDepositoRequest{
		Isla: "3", Turno: "matutino",
		Monto:        decimal.RequireFromString("100"),
		FirmaDataURL: "data:image/jpeg;base64,AAAA",
	})
	assert.ErrorIs(t, err, ErrFirmaRequerida)

	assert.Empty(t, f.encolador.tickets)
}

func TestAnular_Success(t *testing.T) {
	f := newDepositoFixture(t)
	dep := f.crear(t, "200")

	resp, err := f.svc.Anular(context.Background(), f.jefa.ID, uuid.MustParse(dep.ID))

	assert.NoError(t, err)
	assert.Equal(t, model.EstadoCancelado, resp.Estado)
	assert.NotNil(t, resp.CanceladoAt)
	assert.Equal(t, "Jefa Turno", *resp.CanceladoPor)
}

func TestAnular_Idempotente(t *testing.T) {
	f := newDepositoFixture(t)
	dep := f.crear(t, "200")

	primero, err := f.svc.Anular(context.Background(), f.jefa.ID, uuid.MustParse(dep.ID))
	assert.NoError(t, err)

	// A second cancel keeps the original stamps
	f.svc.ahora = func() time.Time { return mayo2024.Add(time.Hour) }
	segundo, err := f.svc.Anular(context.Background(), f.jefa.ID, uuid.MustParse(dep.ID))
	assert.NoError(t, err)
	assert.Equal(t, *primero.CanceladoAt, *segundo.CanceladoAt)
	assert.Equal(t, *primero.CanceladoPor, *segundo.CanceladoPor)
}

func TestAnular_OperadorRechazado(t *testing.T) {
	f := newDepositoFixture(t)
	dep := f.crear(t, "200")

	_, err := f.svc.Anular(context.Background(), f.operador.ID, uuid.MustParse(dep.ID))

	assert.ErrorIs(t, err, ErrNoAutorizado)
	guardado, _ := f.repo.FindByID(context.Background(), uuid.MustParse(dep.ID))
	assert.Equal(t, model.EstadoOK, guardado.Estado)
	assert.Nil(t, guardado.CanceladoAt)
}

func TestCorte_SoloDepositosOK(t *testing.T) {
	f := newDepositoFixture(t)
	f.crear(t, "100")
	f.crear(t, "50.25")
	cancelado := f.crear(t, "999")
	_, err := f.svc.Anular(context.Background(), f.jefa.ID, uuid.MustParse(cancelado.ID))
	assert.NoError(t, err)

	corte, err := f.svc.Corte(context.Background(), "2024-05-15")

	assert.NoError(t, err)
	assert.Equal(t, 2, corte.TransaccionesOK)
	assert.Equal(t, "150.25", corte.GranTotal.StringFixed(2))
	assert.Len(t, corte.TotalPorUsuario, 1)
	assert.Equal(t, "Ana Lopez", corte.TotalPorUsuario[0].Usuario)
	assert.Equal(t, "150.25", corte.TotalPorUsuario[0].Total.StringFixed(2))
}

func TestLimpiarDia_OperadorRechazado(t *testing.T) {
	f := newDepositoFixture(t)
	f.crear(t, "100")

	_, err := f.svc.LimpiarDia(context.Background(), f.operador.ID, "2024-05-15")

	assert.ErrorIs(t, err, ErrNoAutorizado)
	deps, _ := f.repo.ListByDia(context.Background(), "A1", "2024-05-15", true)
	assert.Len(t, deps, 1)
}

func TestLimpiarDia_Success(t *testing.T) {
	f := newDepositoFixture(t)
	f.crear(t, "100")
	f.crear(t, "200")

	n, err := f.svc.LimpiarDia(context.Background(), f.jefa.ID, "2024-05-15")

	assert.NoError(t, err)
	assert.EqualValues(t, 2, n)
	deps, _ := f.repo.ListByDia(context.Background(), "A1", "2024-05-15", true)
	assert.Empty(t, deps)
}

func TestExportarCSV_Formato(t *testing.T) {
	f := newDepositoFixture(t)
	f.crear(t, "150.5")

	nombre, csv, err := f.svc.ExportarCSV(context.Background(), f.operador.ID, "", "2024-05-15", false)

	assert.NoError(t, err)
	assert.Equal(t, "colectas_A1_2024-05-15.csv", nombre)

	lineas := strings.Split(string(csv), "\n")
	assert.Len(t, lineas, 2)
	// Header row is unquoted; data fields are always quoted
	assert.Equal(t,
		"stationCode,folio,date,time,turno,isla,monto,status,userName,userId,createdAt,canceledAt,canceledBy",
		lineas[0])
	assert.Contains(t, lineas[1], `"A1","A1-2024-05-000001","2024-05-15","10:30","matutino","3","150.50","OK","Ana Lopez"`)
	// No trailing newline
	assert.False(t, strings.HasSuffix(string(csv), "\n"))
}

func TestExportarCSV_TodoRequiereGate(t *testing.T) {
	f := newDepositoFixture(t)
	f.crear(t, "100")

	// The ALL export without a valid supervisor PIN is rejected
	_, _, err := f.svc.ExportarCSV(context.Background(), f.operador.ID, "1234", "2024-05-15", true)
	assert.ErrorIs(t, err, ErrNoAutorizado)

	nombre, csv, err := f.svc.ExportarCSV(context.Background(), f.jefa.ID, "5678", "2024-05-15", true)
	assert.NoError(t, err)
	assert.Equal(t, "colectas_A1_2024-05-15_ALL.csv", nombre)
	assert.NotEmpty(t, csv)
}

func TestExportarCSV_Deterministico(t *testing.T) {
	f := newDepositoFixture(t)
	f.crear(t, "100")
	f.crear(t, "200")

	_, a, err := f.svc.ExportarCSV(context.Background(), f.operador.ID, "", "2024-05-15", false)
	assert.NoError(t, err)
	_, b, err := f.svc.ExportarCSV(context.Background(), f.operador.ID, "", "2024-05-15", false)
	assert.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestEnviarCorteEmail_Success(t *testing.T) {
	f := newDepositoFixture(t)
	f.crear(t, "100")

	err := f.svc.EnviarCorteEmail(context.Background(), f.jefa.ID, "2024-05-15", dto.CorteEmailRequest{
		PinSupervisor: "5678",
	})

	assert.NoError(t, err)
	assert.Equal(t, []string{"corte@estacion.test"}, f.encolador.emails)
	assert.Contains(t, string(f.encolador.csv), "A1-2024-05-000001")
}

func TestEnviarCorteEmail_GateRechazado(t *testing.T) {
	f := newDepositoFixture(t)
	f.crear(t, "100")

	err := f.svc.EnviarCorteEmail(context.Background(), f.operador.ID, "2024-05-15", dto.CorteEmailRequest{
		PinSupervisor: "1234",
	})

	assert.ErrorIs(t, err, ErrNoAutorizado)
	assert.Empty(t, f.encolador.emails)
}
