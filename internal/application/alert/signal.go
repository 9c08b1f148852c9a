package alert

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Kind tipo de señal de stock.
type Kind string

const (
	KindLow Kind = "low"
	KindOut Kind = "out"
)

// Signal señal entregada al despachador de notificaciones.
type Signal struct {
	CompanyID       string           `json:"company_id"`
	ProductID       string           `json:"product_id"`
	ProductName     string           `json:"product_name"`
	Kind            Kind             `json:"kind"`
	CurrentQuantity decimal.Decimal  `json:"current_quantity"`
	Threshold       *decimal.Decimal `json:"threshold,omitempty"`
	OccurredAt      time.Time        `json:"occurred_at"`
}

// StockChanged evento publicado después de cada mutación de stock confirmada.
type StockChanged struct {
	CompanyID     string
	ProductID     string
	ProductName   string
	NewTotal      decimal.Decimal
	ReorderPoint  decimal.Decimal
	TransactionID string
	OccurredAt    time.Time
}

// Notifier despachador externo de notificaciones. La entrega y los reintentos son su responsabilidad.
type Notifier interface {
	Notify(ctx context.Context, signal Signal) error
}

// Evaluate aplica los umbrales sobre el nuevo total: 0 → agotado; menor al punto de reorden → stock bajo;
// en otro caso nada. Nunca devuelve más de una señal.
func Evaluate(evt StockChanged) *Signal {
	var kind Kind
	switch {
	case evt.NewTotal.IsZero():
		kind = KindOut
	case evt.NewTotal.LessThan(evt.ReorderPoint):
		kind = KindLow
	default:
		return nil
	}
	sig := &Signal{
		CompanyID:       evt.CompanyID,
		ProductID:       evt.ProductID,
		ProductName:     evt.ProductName,
		Kind:            kind,
		CurrentQuantity: evt.NewTotal,
		OccurredAt:      evt.OccurredAt,
	}
	if kind == KindLow {
		threshold := evt.ReorderPoint
		sig.Threshold = &threshold
	}
	return sig
}
