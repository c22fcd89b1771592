package invoice

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"github.com/mmeshcher/bearphone-pos/internal/model"
)

const fallbackFamily = "Helvetica"

// Renderer переносит инструкции отрисовки счёта в PDF-документ.
type Renderer struct {
	assetsDir string
}

// NewRenderer создаёт рендерер счетов. В assetsDir ищутся шрифты
// Cairo-Regular.ttf и Cairo-Bold.ttf для арабского текста; без них
// используется встроенная Helvetica.
func NewRenderer(assetsDir string) *Renderer {
	return &Renderer{assetsDir: assetsDir}
}

// Render записывает PDF-счёт по продаже в w. Результат детерминирован:
// служебные даты документа берутся из самой записи, поэтому повторная
// отрисовка одной продажи даёт байт-в-байт тот же документ.
func (r *Renderer) Render(w io.Writer, s *model.Sale) error {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetCreationDate(s.CreatedAt)
	pdf.SetModificationDate(s.CreatedAt)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(margin, margin, margin)

	family := fallbackFamily
	regular := filepath.Join(r.assetsDir, "Cairo-Regular.ttf")
	bold := filepath.Join(r.assetsDir, "Cairo-Bold.ttf")
	if fileExists(regular) && fileExists(bold) {
		pdf.AddUTF8Font("Cairo", "", regular)
		pdf.AddUTF8Font("Cairo", "B", bold)
		family = "Cairo"
	}

	pdf.AddPage()

	for _, op := range Layout(s) {
		switch o := op.(type) {
		case TextOp:
			style := ""
			if o.Bold {
				style = "B"
			}
			pdf.SetFont(family, style, o.Size)
			pdf.SetTextColor(o.Color.R, o.Color.G, o.Color.B)
			pdf.SetXY(o.X, o.Y)
			pdf.CellFormat(o.W, o.H, o.Text, "", 0, o.Align, false, 0, "")

		case RectOp:
			if o.Fill != nil {
				pdf.SetFillColor(o.Fill.R, o.Fill.G, o.Fill.B)
				pdf.Rect(o.X, o.Y, o.W, o.H, "F")
			}
			if o.Stroke != nil {
				pdf.SetDrawColor(o.Stroke.R, o.Stroke.G, o.Stroke.B)
				pdf.SetLineWidth(o.LineWidth)
				pdf.Rect(o.X, o.Y, o.W, o.H, "D")
			}

		case LineOp:
			pdf.SetDrawColor(o.Color.R, o.Color.G, o.Color.B)
			pdf.SetLineWidth(o.Width)
			pdf.Line(o.X1, o.Y1, o.X2, o.Y2)

		case CircleOp:
			pdf.SetFillColor(o.Fill.R, o.Fill.G, o.Fill.B)
			pdf.Circle(o.X, o.Y, o.R, "F")
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
