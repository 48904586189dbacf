// Package preview draws an assembled fragment stream onto a raster canvas.
// It is the reference consumer of the engine output: the engine never imports
// it, and a printing or export surface can replace it wholesale.
package preview

import (
	"image"
	"image/color"
	"os"

	"github.com/fogleman/gg"

	"github.com/posprint/receipt-templates/internal/assemble"
)

const (
	defaultFontSize = 18.0
	lineSpacing     = 8.0
)

// Renderer draws fragments top to bottom onto a growing canvas.
type Renderer struct {
	width   int
	height  int
	padding int
	ctx     *gg.Context
	y       float64
}

// New creates a renderer for a paper width in pixels.
func New(widthPx, padding int) *Renderer {
	initialHeight := 1000

	ctx := gg.NewContext(widthPx, initialHeight)
	ctx.SetColor(color.White)
	ctx.Clear()
	ctx.SetColor(color.Black)

	return &Renderer{
		width:   widthPx,
		height:  initialHeight,
		padding: padding,
		ctx:     ctx,
		y:       float64(padding),
	}
}

// Render draws an assembled document and returns the cropped image.
func Render(doc *assemble.RenderedDocument) image.Image {
	r := New(doc.PaperWidthPx, doc.Padding)

	for _, fragment := range doc.Fragments {
		r.renderFragment(fragment)
	}

	return r.cropToContent()
}

func (r *Renderer) renderFragment(f assemble.Fragment) {
	switch f.Kind {
	case assemble.FragmentText:
		r.renderText(f)
	case assemble.FragmentLine:
		r.renderLine(f.Style)
	case assemble.FragmentSpace:
		height := f.Height
		if height == 0 {
			height = 10
		}
		r.ensureHeight(height)
		r.y += float64(height)
	case assemble.FragmentImage:
		r.renderImage(f)
	case assemble.FragmentTableHeader:
		r.renderCells(f.Cells)
		if f.Style != "" && f.Style != "none" {
			r.renderLine(f.Style)
		}
	case assemble.FragmentTableRow:
		r.renderCells(f.Cells)
	}
}

func (r *Renderer) renderText(f assemble.Fragment) {
	text := f.Text
	if f.Label != "" {
		text = f.Label + ": " + f.Text
	}

	size := float64(f.FontSize)
	if size == 0 {
		size = defaultFontSize
	}

	r.loadFont(size)

	if f.MarginTop > 0 {
		r.y += float64(f.MarginTop)
	}

	textWidth, textHeight := r.ctx.MeasureString(text)

	var x float64
	switch f.Alignment {
	case "center":
		x = float64(r.width)/2 - textWidth/2
	case "right":
		x = float64(r.width) - textWidth - float64(r.padding)
	default: // left
		x = float64(r.padding)
	}

	r.ensureHeight(int(textHeight) + 20)
	r.ctx.DrawString(text, x, r.y+textHeight)
	r.y += textHeight + lineSpacing

	if f.MarginBottom > 0 {
		r.y += float64(f.MarginBottom)
	}
}

// renderCells draws one table line: each cell in its percentage slot.
func (r *Renderer) renderCells(cells []assemble.Cell) {
	r.loadFont(defaultFontSize)

	available := float64(r.width - 2*r.padding)
	maxHeight := 0.0
	offset := 0

	for _, cell := range cells {
		size := float64(cell.FontSize)
		if size == 0 {
			size = defaultFontSize
		}
		r.loadFont(size)

		cellX := float64(r.padding) + available*float64(offset)/100
		cellWidth := available * float64(cell.WidthPercent) / 100

		textWidth, textHeight := r.ctx.MeasureString(cell.Text)
		if textHeight > maxHeight {
			maxHeight = textHeight
		}

		var x float64
		switch cell.Alignment {
		case "center":
			x = cellX + cellWidth/2 - textWidth/2
		case "right":
			x = cellX + cellWidth - textWidth
		default:
			x = cellX
		}

		r.ensureHeight(int(textHeight) + 20)
		r.ctx.DrawString(cell.Text, x, r.y+textHeight)

		offset += cell.WidthPercent
	}

	r.y += maxHeight + lineSpacing
}

func (r *Renderer) renderLine(style string) {
	r.ensureHeight(15)

	y := r.y + 7
	x1 := float64(r.padding)
	x2 := float64(r.width - r.padding)

	r.ctx.SetLineWidth(2)

	switch style {
	case "double":
		r.ctx.DrawLine(x1, y-2, x2, y-2)
		r.ctx.Stroke()
		r.ctx.DrawLine(x1, y+2, x2, y+2)
		r.ctx.Stroke()

	case "dashed":
		dashLength := 10.0
		gapLength := 5.0
		x := x1
		for x < x2 {
			endX := x + dashLength
			if endX > x2 {
				endX = x2
			}
			r.ctx.DrawLine(x, y, endX, y)
			r.ctx.Stroke()
			x += dashLength + gapLength
		}

	default: // solid
		r.ctx.DrawLine(x1, y, x2, y)
		r.ctx.Stroke()
	}

	r.y += 15
}

func (r *Renderer) ensureHeight(neededHeight int) {
	if int(r.y)+neededHeight <= r.height {
		return
	}

	newHeight := r.height * 2
	if newHeight < int(r.y)+neededHeight {
		newHeight = int(r.y) + neededHeight + 1000
	}

	newCtx := gg.NewContext(r.width, newHeight)
	newCtx.SetColor(color.White)
	newCtx.Clear()
	newCtx.DrawImage(r.ctx.Image(), 0, 0)
	newCtx.SetColor(color.Black)

	r.ctx = newCtx
	r.height = newHeight
}

func (r *Renderer) cropToContent() image.Image {
	finalHeight := int(r.y) + r.padding + 20
	if finalHeight > r.height {
		finalHeight = r.height
	}

	img := r.ctx.Image()
	return img.(interface {
		SubImage(r image.Rectangle) image.Image
	}).SubImage(image.Rect(0, 0, r.width, finalHeight))
}

func (r *Renderer) loadFont(size float64) {
	systemFonts := []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
		"/System/Library/Fonts/Supplemental/Arial.ttf",
		"C:\\Windows\\Fonts\\arial.ttf",
	}

	for _, font := range systemFonts {
		if _, err := os.Stat(font); err == nil {
			if err := r.ctx.LoadFontFace(font, size); err == nil {
				return
			}
		}
	}
	// No loadable font: gg falls back to its built-in face.
}
