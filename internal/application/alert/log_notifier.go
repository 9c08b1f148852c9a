package alert

import (
	"context"

	"github.com/jhoicas/Inventario-farmacia/pkg/logger"
)

// LogNotifier escribe las señales en el log. Se usa cuando no hay broker configurado.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el notificador de log.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify registra la señal como warning.
func (n *LogNotifier) Notify(_ context.Context, s Signal) error {
	ev := n.log.Warn().
		Str("company_id", s.CompanyID).
		Str("product_id", s.ProductID).
		Str("product_name", s.ProductName).
		Str("kind", string(s.Kind)).
		Str("current_quantity", s.CurrentQuantity.String())
	if s.Threshold != nil {
		ev = ev.Str("threshold", s.Threshold.String())
	}
	ev.Msg("alerta de stock")
	return nil
}
