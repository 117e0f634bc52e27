// Package preview renders entry previews for a terminal: images as coloured
// half-block cells and JSON as a highlighted code block.
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp"
)

// Info describes a decoded image before it was scaled for the terminal.
type Info struct {
	Format      string `json:"format"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Orientation int    `json:"orientation,omitempty"`
}

const (
	upperHalf = "▀"
	lowerHalf = "▄"
)

// RenderImage decodes data and draws it into at most cols x rows terminal
// cells. Each cell carries two vertical pixels.
func RenderImage(data []byte, cols, rows int) (string, Info, error) {
	img, name, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", Info{}, fmt.Errorf("preview: decode image: %w", err)
	}
	b := img.Bounds()
	info := Info{Format: name, Width: b.Dx(), Height: b.Dy()}

	if name == "jpeg" {
		info.Orientation = orientation(data)
		img = applyOrientation(img, info.Orientation)
	}

	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	fitted := imaging.Fit(img, cols, rows*2, imaging.Lanczos)
	return halfBlocks(fitted), info, nil
}

// orientation returns the EXIF orientation tag, or 1 when absent.
func orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

func applyOrientation(img image.Image, o int) image.Image {
	switch o {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func halfBlocks(img image.Image) string {
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			top, topOK := hexColor(img.At(x, y))
			bottom, bottomOK := lipgloss.Color(""), false
			if y+1 < b.Max.Y {
				bottom, bottomOK = hexColor(img.At(x, y+1))
			}
			switch {
			case topOK && bottomOK:
				sb.WriteString(lipgloss.NewStyle().Foreground(top).Background(bottom).Render(upperHalf))
			case topOK:
				sb.WriteString(lipgloss.NewStyle().Foreground(top).Render(upperHalf))
			case bottomOK:
				sb.WriteString(lipgloss.NewStyle().Foreground(bottom).Render(lowerHalf))
			default:
				sb.WriteByte(' ')
			}
		}
	}
	return sb.String()
}

// hexColor reports false for mostly transparent pixels.
func hexColor(c color.Color) (lipgloss.Color, bool) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A < 0x80 {
		return "", false
	}
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)), true
}
