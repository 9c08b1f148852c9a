// Package pdf genera el documento de la orden de compra que se envía al proveedor.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: ORDEN DE COMPRA + estado │ N° Orden + Fechas       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PROVEEDOR: Nombre + NIT + contacto                         │
//	│  ENTREGAR EN: Bodega + dirección                            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | SKU | Producto | P.Unit | Desc% | Total      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / TOTAL                                  │
//	│  NOTAS + QR con el número de orden                          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-farmacia/internal/application/purchasing"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 110, Blue: 80}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var statusLabels = map[entity.PurchaseOrderStatus]string{
	entity.PurchaseOrderDraft:     "BORRADOR",
	entity.PurchaseOrderSent:      "ENVIADA",
	entity.PurchaseOrderConfirmed: "CONFIRMADA",
	entity.PurchaseOrderReceived:  "RECIBIDA",
	entity.PurchaseOrderCancelled: "CANCELADA",
}

// ── Generator ─────────────────────────────────────────────────────────────────

var _ purchasing.PDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa purchasing.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GeneratePurchaseOrderPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GeneratePurchaseOrderPDF(_ context.Context, doc purchasing.PurchaseOrderDocument) ([]byte, error) {
	if doc.Order == nil {
		return nil, fmt.Errorf("pdf: orden vacía")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Orden de compra "+doc.Order.OrderNumber, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc.Order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(supplierRow(doc.Supplier))
	m.AddRows(warehouseRow(doc.Warehouse))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableItemRows(doc.Order.Items, doc.Products)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc.Order))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(doc.Order))

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(o *entity.PurchaseOrder) core.Row {
	dates := "Fecha: " + o.OrderDate.Format("02/01/2006")
	if o.ExpectedDate != nil {
		dates += "   Entrega: " + o.ExpectedDate.Format("02/01/2006")
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New("ORDEN DE COMPRA", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Estado: "+nonEmpty(statusLabels[o.Status], string(o.Status)), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(o.OrderNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New(dates, props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func supplierRow(s *entity.Supplier) core.Row {
	name, taxID, email, phone := "—", "—", "—", "—"
	if s != nil {
		name, taxID = s.Name, s.TaxID
		email, phone = nonEmpty(s.Email, "—"), nonEmpty(s.Phone, "—")
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("PROVEEDOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("NIT: %s   |   Email: %s   |   Tel: %s", taxID, email, phone),
				props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func warehouseRow(w *entity.Warehouse) core.Row {
	name, address := "—", "—"
	if w != nil {
		name, address = w.Name, nonEmpty(w.Address, "—")
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("ENTREGAR EN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   %s", name, address), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("SKU", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Desc%", 1, align.Center),
		h("Total", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableItemRows(items []entity.PurchaseOrderItem, products map[string]*entity.Product) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		sku, name := "", it.ProductID
		if p, ok := products[it.ProductID]; ok && p != nil {
			sku, name = p.SKU, p.Name
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(it.QuantityOrdered.String(), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(sku, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New("$"+formatMoney(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(it.DiscountPercent.StringFixed(0)+"%", props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New("$"+formatMoney(it.LineTotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalsRow(o *entity.PurchaseOrder) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(14).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", 1),
			label("TOTAL:", 7),
		),
		col.New(3).Add(
			value("$"+formatMoney(o.Subtotal), 1),
			text.New("$"+formatMoney(o.Total), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 7,
			}),
		),
	)
}

// footerRow: notas de la orden y QR con el número para que bodega la identifique al recibir.
func footerRow(o *entity.PurchaseOrder) core.Row {
	return row.New(40).Add(
		col.New(8).Add(
			text.New("NOTAS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(o.Notes, "—"), props.Text{Size: 8, Top: 6, Color: colorGray}),
		),
		col.New(4).Add(code.NewQr(o.OrderNumber, props.Rect{Percent: 90, Center: true})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney formatea con puntos de miles y coma decimal.
// Ej: 25000 → "25.000,00", 1234567.5 → "1.234.567,50"
func formatMoney(v decimal.Decimal) string {
	s := v.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + "," + frac
}
