package entity

import (
	"strings"

	"github.com/jhoicas/Inventario-farmacia/internal/domain"
)

// AdjustmentReason motivo obligatorio de un ajuste manual (enumeración cerrada).
type AdjustmentReason string

const (
	ReasonCountCorrection AdjustmentReason = "count_correction"
	ReasonDamage          AdjustmentReason = "damage"
	ReasonTheft           AdjustmentReason = "theft"
	ReasonExpiry          AdjustmentReason = "expiry"
	ReasonQualityIssue    AdjustmentReason = "quality_issue"
	ReasonDataEntryError  AdjustmentReason = "data_entry_error"
	ReasonInitialStock    AdjustmentReason = "initial_stock"
	ReasonOther           AdjustmentReason = "other"
)

var adjustmentReasons = map[AdjustmentReason]struct{}{
	ReasonCountCorrection: {},
	ReasonDamage:          {},
	ReasonTheft:           {},
	ReasonExpiry:          {},
	ReasonQualityIssue:    {},
	ReasonDataEntryError:  {},
	ReasonInitialStock:    {},
	ReasonOther:           {},
}

// ParseAdjustmentReason valida el código recibido. Acepta guiones o guiones bajos ("data-entry-error").
func ParseAdjustmentReason(s string) (AdjustmentReason, error) {
	r := AdjustmentReason(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if _, ok := adjustmentReasons[r]; !ok {
		return "", domain.ErrInvalidInput
	}
	return r, nil
}

// AdjustmentType dirección de un ajuste manual.
type AdjustmentType string

const (
	AdjustmentAdd    AdjustmentType = "add"
	AdjustmentRemove AdjustmentType = "remove"
)

// ParseAdjustmentType valida el tipo de ajuste.
func ParseAdjustmentType(s string) (AdjustmentType, error) {
	switch t := AdjustmentType(strings.ToLower(strings.TrimSpace(s))); t {
	case AdjustmentAdd, AdjustmentRemove:
		return t, nil
	}
	return "", domain.ErrInvalidInput
}
