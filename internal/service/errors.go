package service

import "errors"

// Domain errors. Handlers map these to HTTP statuses; messages are surfaced
// to the operator verbatim.
var (
	// Auth
	ErrPinFormato          = errors.New("PIN invalido (4-6 digitos)")
	ErrUsuarioNoEncontrado = errors.New("Usuario no encontrado")
	ErrPinIncorrecto       = errors.New("PIN incorrecto")
	ErrNoAutorizado        = errors.New("Solo supervisor puede realizar esta accion")
	ErrNombreRequerido     = errors.New("Nombre requerido")
	ErrNombreDuplicado     = errors.New("Ya existe un usuario con ese nombre")
	ErrSupervisorProtegido = errors.New("El supervisor no puede darse de baja")

	// Depósitos
	ErrMontoInvalido        = errors.New("Monto invalido. Captura un valor mayor a 0")
	ErrFirmaRequerida       = errors.New("Firma obligatoria. Captura la firma antes de imprimir")
	ErrDepositoNoEncontrado = errors.New("Registro no encontrado")

	// Estación
	ErrYaConfigurada = errors.New("La estacion ya esta configurada")
	ErrNoConfigurada = errors.New("La estacion no esta configurada")
	ErrPinNoCoincide = errors.New("Confirmacion de PIN no coincide")
)
