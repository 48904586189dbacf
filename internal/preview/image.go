package preview

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/posprint/receipt-templates/internal/assemble"
)

// renderImage decodes the fragment source (base64 data or file path),
// scales it to the paper width and draws it. A source that cannot be
// decoded is skipped with a warning.
func (r *Renderer) renderImage(f assemble.Fragment) {
	img, err := decodeImageSource(f.Source)
	if err != nil {
		log.Printf("warning: skipping image field %s: %v", f.FieldID, err)
		return
	}

	maxWidth := r.width - 2*r.padding
	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	bounds := img.Bounds()
	r.ensureHeight(bounds.Dy() + 20)

	x := (r.width - bounds.Dx()) / 2
	r.ctx.DrawImage(img, x, int(r.y))
	r.y += float64(bounds.Dy()) + lineSpacing
}

func decodeImageSource(source string) (image.Image, error) {
	if idx := strings.Index(source, ";base64,"); idx >= 0 {
		source = source[idx+len(";base64,"):]
	}

	if data, err := base64.StdEncoding.DecodeString(source); err == nil {
		if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
			return img, nil
		}
	}

	file, err := os.Open(source)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	return img, err
}
