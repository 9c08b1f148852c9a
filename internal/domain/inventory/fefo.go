package inventory

import (
	"sort"

	"github.com/jhoicas/Inventario-farmacia/internal/domain"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SortFEFO ordena los lotes por vencimiento ascendente (first-expired, first-out).
// Los lotes sin vencimiento van al final; los empates se resuelven por fecha de recepción y luego por ID
// para que el orden sea determinista.
func SortFEFO(batches []*entity.Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i], batches[j]
		switch {
		case a.ExpiryDate == nil && b.ExpiryDate != nil:
			return false
		case a.ExpiryDate != nil && b.ExpiryDate == nil:
			return true
		case a.ExpiryDate != nil && b.ExpiryDate != nil && !a.ExpiryDate.Equal(*b.ExpiryDate):
			return a.ExpiryDate.Before(*b.ExpiryDate)
		}
		if !a.ReceivedDate.Equal(b.ReceivedDate) {
			return a.ReceivedDate.Before(b.ReceivedDate)
		}
		return a.ID < b.ID
	})
}

// Draw cantidad a descontar de un lote concreto.
type Draw struct {
	Batch    *entity.Batch
	Quantity decimal.Decimal
}

// PlanDepletion recorre los lotes (ya en orden FEFO) tomando min(pendiente, disponible del lote)
// hasta cubrir qty. Si los lotes no alcanzan devuelve ErrInsufficientStock y ningún plan:
// nunca hay descuento parcial.
func PlanDepletion(batches []*entity.Batch, qty decimal.Decimal) ([]Draw, error) {
	if !qty.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	remaining := qty
	var plan []Draw
	for _, b := range batches {
		if remaining.IsZero() {
			break
		}
		if !b.Active {
			continue
		}
		avail := b.Available()
		if !avail.IsPositive() {
			continue
		}
		take := decimal.Min(remaining, avail)
		plan = append(plan, Draw{Batch: b, Quantity: take})
		remaining = remaining.Sub(take)
	}
	if remaining.IsPositive() {
		return nil, domain.ErrInsufficientStock
	}
	return plan, nil
}

// PlanRelease libera reservas en orden inverso a FEFO (primero lo que vence más tarde),
// dejando reservado lo más próximo a vencer.
func PlanRelease(batches []*entity.Batch, qty decimal.Decimal) ([]Draw, error) {
	if !qty.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	remaining := qty
	var plan []Draw
	for i := len(batches) - 1; i >= 0 && remaining.IsPositive(); i-- {
		b := batches[i]
		if !b.ReservedQuantity.IsPositive() {
			continue
		}
		take := decimal.Min(remaining, b.ReservedQuantity)
		plan = append(plan, Draw{Batch: b, Quantity: take})
		remaining = remaining.Sub(take)
	}
	if remaining.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	return plan, nil
}

// Totals suma cantidad en mano y reservada de los lotes activos.
func Totals(batches []*entity.Batch) (onHand, reserved decimal.Decimal) {
	onHand, reserved = decimal.Zero, decimal.Zero
	for _, b := range batches {
		if !b.Active {
			continue
		}
		onHand = onHand.Add(b.Quantity)
		reserved = reserved.Add(b.ReservedQuantity)
	}
	return onHand, reserved
}

// DrawValue valor total al costo de cada lote de un plan de descuento.
func DrawValue(plan []Draw) decimal.Decimal {
	total := decimal.Zero
	for _, d := range plan {
		total = total.Add(d.Quantity.Mul(d.Batch.UnitCost))
	}
	return total
}
