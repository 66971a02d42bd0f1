package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los adaptadores y casos de uso envuelven estos sentinels con fmt.Errorf("%w: ...")
// para añadir detalle; los handlers los comparan con errors.Is.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	// ErrConflict: la transacción agotó los reintentos por escrituras concurrentes.
	// El llamador puede reenviar la operación.
	ErrConflict = errors.New("conflicto de concurrencia, reintente")
	// ErrPersistence: el almacén de documentos no está disponible o falló.
	ErrPersistence = errors.New("error de persistencia")
)
