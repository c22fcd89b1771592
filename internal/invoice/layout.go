// Package invoice формирует печатный счёт по продаже: layout строит
// последовательность инструкций отрисовки, backend переносит их в PDF.
package invoice

import (
	"fmt"
	"time"

	"github.com/mmeshcher/bearphone-pos/internal/model"
)

// Страница A4 в пунктах, книжная ориентация.
const (
	pageWidth  = 595.28
	pageHeight = 841.89
	margin     = 40.0
)

// Color — цвет в RGB.
type Color struct {
	R, G, B int
}

var (
	colorBrand     = Color{R: 37, G: 99, B: 235}   // #2563eb
	colorInk       = Color{R: 30, G: 58, B: 95}    // #1e3a5f
	colorSeparator = Color{R: 229, G: 231, B: 235} // #e5e7eb
	colorText      = Color{R: 55, G: 65, B: 81}    // #374151
	colorDark      = Color{R: 31, G: 41, B: 55}    // #1f2937
	colorTableHead = Color{R: 243, G: 244, B: 246} // #f3f4f6
	colorBorder    = Color{R: 209, G: 213, B: 219} // #d1d5db
	colorDebt      = Color{R: 220, G: 38, B: 38}   // #dc2626
	colorPaid      = Color{R: 5, G: 150, B: 105}   // #059669
	colorMuted     = Color{R: 107, G: 114, B: 128} // #6b7280
	colorFooter    = Color{R: 156, G: 163, B: 175} // #9ca3af
	colorWhite     = Color{R: 255, G: 255, B: 255}
)

// Op — одна инструкция отрисовки счёта.
type Op interface {
	isOp()
}

// TextOp выводит строку в прямоугольнике с выравниванием "L", "C" или "R".
type TextOp struct {
	X, Y  float64
	W, H  float64
	Text  string
	Align string
	Bold  bool
	Size  float64
	Color Color
}

// RectOp рисует прямоугольник с заливкой и/или обводкой.
type RectOp struct {
	X, Y      float64
	W, H      float64
	Fill      *Color
	Stroke    *Color
	LineWidth float64
}

// LineOp рисует отрезок.
type LineOp struct {
	X1, Y1 float64
	X2, Y2 float64
	Color  Color
	Width  float64
}

// CircleOp рисует закрашенный круг (эмблема магазина).
type CircleOp struct {
	X, Y float64
	R    float64
	Fill Color
}

func (TextOp) isOp()   {}
func (RectOp) isOp()   {}
func (LineOp) isOp()   {}
func (CircleOp) isOp() {}

func formatAmount(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}

func formatDateTime(t time.Time) string {
	return t.Format("2006-01-02 03:04:05 PM")
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// Layout строит полный список инструкций отрисовки счёта для одной продажи.
// Функция чистая: одинаковая запись всегда даёт одинаковый список. Колонки
// таблицы отмеряются от правого поля внутрь — текст счёта идёт справа налево.
func Layout(s *model.Sale) []Op {
	var ops []Op

	contentWidth := pageWidth - 2*margin
	rightEdge := pageWidth - margin
	y := 30.0

	// Эмблема.
	ops = append(ops, CircleOp{X: pageWidth / 2, Y: y + 35, R: 35, Fill: colorBrand})
	y += 85

	// Название магазина и заголовок счёта.
	ops = append(ops, TextOp{
		X: margin, Y: y, W: contentWidth, H: 26,
		Text: "BEAR PHONE", Align: "C", Bold: true, Size: 22, Color: colorInk,
	})
	y += 28

	ops = append(ops, TextOp{
		X: margin, Y: y, W: contentWidth, H: 22,
		Text: "دب فون", Align: "C", Size: 18, Color: colorBrand,
	})
	y += 35

	ops = append(ops, TextOp{
		X: margin, Y: y, W: contentWidth, H: 20,
		Text: "فاتورة بيع ضريبية مبسطة", Align: "C", Bold: true, Size: 16, Color: colorInk,
	})
	y += 40

	// Разделитель и метаданные: номер счёта слева, дата и клиент справа.
	ops = append(ops, LineOp{X1: margin, Y1: y, X2: rightEdge, Y2: y, Color: colorSeparator, Width: 1})
	y += 15

	ops = append(ops, TextOp{
		X: margin, Y: y, W: contentWidth, H: 14,
		Text: "التاريخ: " + formatDateTime(s.SaleDate), Align: "R", Size: 11, Color: colorText,
	})
	ops = append(ops, TextOp{
		X: margin, Y: y, W: contentWidth, H: 15,
		Text: fmt.Sprintf("رقم الفاتورة: %d", s.ID), Align: "L", Bold: true, Size: 12, Color: colorInk,
	})
	y += 20

	ops = append(ops, TextOp{
		X: margin, Y: y, W: contentWidth, H: 14,
		Text: "المكرم: " + s.CustomerName, Align: "R", Size: 11, Color: colorText,
	})
	y += 35

	// Таблица из одной строки. Колонки (справа налево):
	// الاجمالي | السعر | العدد | الصنف.
	colWidths := []float64{90, 70, 50, 180}
	headers := []string{"الاجمالي", "السعر", "العدد", "الصنف"}

	lineTotal := int64(s.Quantity) * s.PriceCents
	values := []string{
		formatAmount(lineTotal),
		formatAmount(s.PriceCents),
		fmt.Sprintf("%d", s.Quantity),
		s.ItemDescription,
	}

	headFill := colorTableHead
	ops = append(ops, RectOp{X: margin, Y: y, W: contentWidth, H: 30, Fill: &headFill})

	colX := rightEdge
	for i, h := range headers {
		colX -= colWidths[i]
		ops = append(ops, TextOp{
			X: colX + 5, Y: y + 8, W: colWidths[i] - 10, H: 14,
			Text: h, Align: "C", Bold: true, Size: 11, Color: colorDark,
		})
	}
	y += 30

	rowFill := colorWhite
	ops = append(ops, RectOp{X: margin, Y: y, W: contentWidth, H: 30, Fill: &rowFill})

	colX = rightEdge
	for i, v := range values {
		colX -= colWidths[i]
		align := "C"
		if i == len(values)-1 {
			align = "R" // наименование товара прижимается вправо
		}
		ops = append(ops, TextOp{
			X: colX + 5, Y: y + 8, W: colWidths[i] - 10, H: 14,
			Text: v, Align: align, Size: 11, Color: colorText,
		})
	}

	// Рамка таблицы и разделители колонок.
	stroke := colorBorder
	ops = append(ops, RectOp{X: margin, Y: y - 30, W: contentWidth, H: 60, Stroke: &stroke, LineWidth: 0.5})

	lineX := rightEdge
	for i := 0; i < len(colWidths)-1; i++ {
		lineX -= colWidths[i]
		ops = append(ops, LineOp{X1: lineX, Y1: y - 30, X2: lineX, Y2: y + 30, Color: colorBorder, Width: 0.5})
	}
	y += 50

	// Блок итогов.
	const (
		labelWidth = 120.0
		valueWidth = 80.0
		rowHeight  = 22.0
	)
	labelX := rightEdge - labelWidth - valueWidth
	valueX := rightEdge - valueWidth

	remainingCents := s.RemainingCents
	if remainingCents < 0 {
		// Переплата показывается как полностью оплаченный счёт.
		remainingCents = 0
	}
	remainingColor := colorPaid
	if remainingCents > 0 {
		remainingColor = colorDebt
	}

	totals := []struct {
		label string
		value string
		bold  bool
		lc    Color
		vc    Color
	}{
		{label: "الاجمالي:", value: formatAmount(lineTotal), lc: colorText, vc: colorDark},
		{label: "الخصم:", value: formatAmount(s.DiscountCents), lc: colorText, vc: colorDebt},
		{label: "الصافي:", value: formatAmount(s.NetAmountCents), bold: true, lc: colorPaid, vc: colorPaid},
		{label: "المدفوع:", value: formatAmount(s.PaidCents), lc: colorText, vc: colorDark},
		{label: "المتبقي على العميل:", value: formatAmount(remainingCents), lc: colorText, vc: remainingColor},
	}

	for _, row := range totals {
		ops = append(ops, TextOp{
			X: labelX, Y: y, W: labelWidth, H: 14,
			Text: row.label, Align: "R", Bold: row.bold, Size: 11, Color: row.lc,
		})
		ops = append(ops, TextOp{
			X: valueX, Y: y, W: valueWidth, H: 14,
			Text: row.value, Align: "L", Bold: row.bold, Size: 11, Color: row.vc,
		})
		y += rowHeight
	}
	y += 10

	// Гарантия выводится только если она есть.
	if s.WarrantyDuration != model.WarrantyNone {
		ops = append(ops, TextOp{
			X: margin, Y: y, W: contentWidth, H: 13,
			Text: "الضمان: " + string(s.WarrantyDuration), Align: "L", Size: 10, Color: colorMuted,
		})
		if s.WarrantyExpiry != nil {
			ops = append(ops, TextOp{
				X: margin, Y: y + 15, W: contentWidth, H: 13,
				Text: "تاريخ الانتهاء: " + formatDate(*s.WarrantyExpiry), Align: "L", Size: 10, Color: colorMuted,
			})
		}
		y += 40
	}

	// Примечания.
	ops = append(ops, LineOp{X1: margin, Y1: y, X2: rightEdge, Y2: y, Color: colorSeparator, Width: 0.5})
	y += 15

	ops = append(ops, TextOp{
		X: margin, Y: y, W: contentWidth, H: 14,
		Text: "ملاحظات:", Align: "R", Bold: true, Size: 11, Color: colorText,
	})
	y += 18

	ops = append(ops, TextOp{
		X: margin, Y: y, W: contentWidth, H: 13,
		Text: s.NotesOrPlaceholder(), Align: "R", Size: 10, Color: colorMuted,
	})

	// Подвал.
	footerY := pageHeight - 60
	ops = append(ops, LineOp{X1: 100, Y1: footerY - 10, X2: pageWidth - 100, Y2: footerY - 10, Color: colorSeparator, Width: 1})
	ops = append(ops, TextOp{
		X: margin, Y: footerY, W: contentWidth, H: 12,
		Text: "شكراً لتعاملكم مع دب فون", Align: "C", Size: 9, Color: colorFooter,
	})
	ops = append(ops, TextOp{
		X: margin, Y: footerY + 14, W: contentWidth, H: 12,
		Text: "للاستفسارات: 966500000000+", Align: "C", Size: 9, Color: colorFooter,
	})

	return ops
}
