package service

import (
	"context"
	"strings"
	"testing"

	"colectas/internal/config"
	"colectas/internal/dto"
	"colectas/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// ── In-memory Repository Stub ─────────────────────────────────────────────────

type stubUsuarioRepo struct {
	users map[uuid.UUID]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{users: make(map[uuid.UUID]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUsuarioRepo) FindByNombre(_ context.Context, nombre string) (*model.Usuario, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Nombre, nombre) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	users := make([]model.Usuario, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, *u)
	}
	return users, nil
}

func (r *stubUsuarioRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUsuarioRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func newTestCfg() *config.Config {
	return &config.Config{
		JWTSecret:          "test_jwt_secret_32_chars_minimum!",
		JWTExpirationHours: 8,
	}
}

func seedUsuario(repo *stubUsuarioRepo, nombre, pin, rol string) *model.Usuario {
	u := &model.Usuario{
		ID:      uuid.New(),
		Nombre:  nombre,
		PinHash: PinDigest(pin),
		Rol:     rol,
	}
	repo.users[u.ID] = u
	return u
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	repo := newStubUsuarioRepo()
	u := seedUsuario(repo, "Ana Lopez", "1234", model.RolOperador)
	svc := NewAuthService(repo, newTestCfg())

	resp, err := svc.Login(context.Background(), dto.LoginRequest{UserID: u.ID.String(), Pin: "1234"})

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "Ana Lopez", resp.User.Nombre)
	assert.Equal(t, model.RolOperador, resp.User.Rol)
}

func TestLogin_PinFormatoInvalido(t *testing.T) {
	repo := newStubUsuarioRepo()
	u := seedUsuario(repo, "Ana Lopez", "1234", model.RolOperador)
	svc := NewAuthService(repo, newTestCfg())

	for _, pin := range []string{"", "12", "1234567", "12a4", "12 34"} {
		_, err := svc.Login(context.Background(), dto.LoginRequest{UserID: u.ID.String(), Pin: pin})
		assert.ErrorIs(t, err, ErrPinFormato, "pin %q", pin)
	}
}

func TestLogin_UsuarioNoEncontrado(t *testing.T) {
	svc := NewAuthService(newStubUsuarioRepo(), newTestCfg())

	_, err := svc.Login(context.Background(), dto.LoginRequest{UserID: uuid.NewString(), Pin: "1234"})

	assert.ErrorIs(t, err, ErrUsuarioNoEncontrado)
}

func TestLogin_PinIncorrecto(t *testing.T) {
	repo := newStubUsuarioRepo()
	u := seedUsuario(repo, "Ana Lopez", "1234", model.RolOperador)
	svc := NewAuthService(repo, newTestCfg())

	_, err := svc.Login(context.Background(), dto.LoginRequest{UserID: u.ID.String(), Pin: "9999"})

	assert.ErrorIs(t, err, ErrPinIncorrecto)
}

func TestPinDigest_Deterministico(t *testing.T) {
	assert.Equal(t, PinDigest("1234"), PinDigest("1234"))
	assert.NotEqual(t, PinDigest("1234"), PinDigest("1235"))
	assert.Len(t, PinDigest("1234"), 64)
}

func TestNormalizarNombre(t *testing.T) {
	assert.Equal(t, "Ana Lopez", NormalizarNombre("  ana   lopez "))
	assert.Equal(t, "Ana Lopez", NormalizarNombre("ANA LOPEZ"))
	assert.Equal(t, "", NormalizarNombre("   "))
}

func TestCrearUsuario_Success(t *testing.T) {
	repo := newStubUsuarioRepo()
	sup := seedUsuario(repo, "Jefa Turno", "5678", model.RolSupervisor)
	svc := NewAuthService(repo, newTestCfg())

	resp, err := svc.CrearUsuario(context.Background(), sup.ID, dto.CrearUsuarioRequest{
		Nombre: "  ana   lopez ", Pin: "1234", PinSupervisor: "5678",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Ana Lopez", resp.Nombre)
	assert.Equal(t, model.RolOperador, resp.Rol)
}

func TestCrearUsuario_NombreDuplicado(t *testing.T) {
	repo := newStubUsuarioRepo()
	sup := seedUsuario(repo, "Jefa Turno", "5678", model.RolSupervisor)
	seedUsuario(repo, "Ana Lopez", "1234", model.RolOperador)
	svc := NewAuthService(repo, newTestCfg())

	// Same name after normalization counts as a duplicate
	_, err := svc.CrearUsuario(context.Background(), sup.ID, dto.CrearUsuarioRequest{
		Nombre: "ANA LOPEZ", Pin: "4321", PinSupervisor: "5678",
	})

	assert.ErrorIs(t, err, ErrNombreDuplicado)
}

func TestCrearUsuario_GateRechazado(t *testing.T) {
	repo := newStubUsuarioRepo()
	sup := seedUsuario(repo, "Jefa Turno", "5678", model.RolSupervisor)
	op := seedUsuario(repo, "Ana Lopez", "1234", model.RolOperador)
	svc := NewAuthService(repo, newTestCfg())

	// Wrong step-up PIN
	_, err := svc.CrearUsuario(context.Background(), sup.ID, dto.CrearUsuarioRequest{
		Nombre: "Nuevo Operador", Pin: "1111", PinSupervisor: "0000",
	})
	assert.ErrorIs(t, err, ErrPinIncorrecto)

	// Operators cannot pass the gate even with their own valid PIN
	_, err = svc.CrearUsuario(context.Background(), op.ID, dto.CrearUsuarioRequest{
		Nombre: "Nuevo Operador", Pin: "1111", PinSupervisor: "1234",
	})
	assert.ErrorIs(t, err, ErrNoAutorizado)

	// No partial effect: only the two seeded users remain
	n, _ := repo.Count(context.Background())
	assert.EqualValues(t, 2, n)
}

func TestEliminarUsuario_Success(t *testing.T) {
	repo := newStubUsuarioRepo()
	sup := seedUsuario(repo, "Jefa Turno", "5678", model.RolSupervisor)
	op := seedUsuario(repo, "Ana Lopez", "1234", model.RolOperador)
	svc := NewAuthService(repo, newTestCfg())

	err := svc.EliminarUsuario(context.Background(), sup.ID, op.ID, "5678")

	assert.NoError(t, err)
	_, err = repo.FindByID(context.Background(), op.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestEliminarUsuario_SupervisorProtegido(t *testing.T) {
	repo := newStubUsuarioRepo()
	sup := seedUsuario(repo, "Jefa Turno", "5678", model.RolSupervisor)
	svc := NewAuthService(repo, newTestCfg())

	err := svc.EliminarUsuario(context.Background(), sup.ID, sup.ID, "5678")

	assert.ErrorIs(t, err, ErrSupervisorProtegido)
	_, err = repo.FindByID(context.Background(), sup.ID)
	assert.NoError(t, err)
}

func TestGateSupervisor_Formato(t *testing.T) {
	repo := newStubUsuarioRepo()
	sup := seedUsuario(repo, "Jefa Turno", "5678", model.RolSupervisor)
	svc := NewAuthService(repo, newTestCfg())

	_, err := svc.GateSupervisor(context.Background(), sup.ID, "abc")
	assert.ErrorIs(t, err, ErrPinFormato)

	actor, err := svc.GateSupervisor(context.Background(), sup.ID, "5678")
	assert.NoError(t, err)
	assert.Equal(t, sup.ID, actor.ID)
}
