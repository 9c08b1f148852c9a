package alert

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jhoicas/Inventario-farmacia/internal/domain"
	"github.com/jhoicas/Inventario-farmacia/pkg/logger"
)

const notifyTimeout = 5 * time.Second

// Emitter evalúa eventos de stock de forma asíncrona y entrega las señales al Notifier.
// Publish nunca bloquea ni falla: un error de notificación no puede afectar la mutación que lo originó.
type Emitter struct {
	notifier Notifier
	log      *logger.Logger
	events   chan StockChanged

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewEmitter arranca el worker con un buffer de eventos del tamaño indicado.
func NewEmitter(notifier Notifier, log *logger.Logger, buffer int) *Emitter {
	if buffer <= 0 {
		buffer = 256
	}
	e := &Emitter{
		notifier: notifier,
		log:      log,
		events:   make(chan StockChanged, buffer),
	}
	e.wg.Add(1)
	go e.run()
	return e
}

// Publish encola el evento. Si el buffer está lleno o el emisor cerrado, el evento se descarta con un warning.
func (e *Emitter) Publish(evt StockChanged) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		e.log.Warn().Str("product_id", evt.ProductID).Msg("alertas: emisor cerrado, evento descartado")
		return
	}
	select {
	case e.events <- evt:
	default:
		e.log.Warn().Str("product_id", evt.ProductID).Msg("alertas: buffer lleno, evento descartado")
	}
}

// Close deja de aceptar eventos y espera a que se procesen los pendientes.
func (e *Emitter) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.events)
	e.mu.Unlock()
	e.wg.Wait()
}

func (e *Emitter) run() {
	defer e.wg.Done()
	for evt := range e.events {
		e.handle(evt)
	}
}

func (e *Emitter) handle(evt StockChanged) {
	sig := Evaluate(evt)
	if sig == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := e.notifier.Notify(ctx, *sig); err != nil {
		if !errors.Is(err, domain.ErrNotificationFailed) {
			err = errors.Join(domain.ErrNotificationFailed, err)
		}
		e.log.Error().Err(err).
			Str("product_id", sig.ProductID).
			Str("kind", string(sig.Kind)).
			Msg("alertas: no se pudo entregar la señal")
		return
	}
	e.log.Debug().Str("product_id", sig.ProductID).Str("kind", string(sig.Kind)).Msg("alertas: señal entregada")
}
