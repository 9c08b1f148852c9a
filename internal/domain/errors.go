package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrInvalidQuantity        = errors.New("cantidad inválida: el lote no puede quedar en negativo")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInvalidStateTransition = errors.New("transición de estado inválida")

	// ErrConcurrencyConflict indica que otra escritura concurrente invalidó la precondición
	// de la unidad de trabajo (saldo anterior desactualizado o bloqueo ocupado). Es el único
	// error que se reintenta automáticamente.
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintente")

	// ErrNotificationFailed fallo del despachador de notificaciones. Solo se registra en log.
	ErrNotificationFailed = errors.New("fallo al entregar la notificación")
)
