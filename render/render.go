// Package render holds the draw instructions scan loops produce and the queue
// a renderer drains once per display tick.
package render

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

type Style uint8

const (
	Circle Style = iota
	Box
	Text
)

func (s Style) String() string {
	switch s {
	case Circle:
		return "circle"
	case Box:
		return "box"
	case Text:
		return "text"
	default:
		return fmt.Sprintf("style(%d)", uint8(s))
	}
}

// Palette
var (
	White     = colorful.Color{R: 1, G: 1, B: 1}
	Red       = colorful.Color{R: 1, G: 0, B: 0}
	Green     = colorful.Color{R: 0, G: 1, B: 0}
	Blue      = colorful.Color{R: 0, G: 0, B: 1}
	Goldenrod = colorful.Color{R: 0.9, G: 0.8, B: 0.1}
	Brown     = colorful.Color{R: 0.70, G: 0.42, B: 0.31}
)

// DrawInstruction is one primitive in screen space. For circles X/Y is the
// center, for boxes it is the top-center, for text it is the label center.
type DrawInstruction struct {
	X, Y          float64
	Width, Height float64
	Label         string
	FontSize      uint32
	Style         Style
	Color         colorful.Color
}

func (d DrawInstruction) String() string {
	return fmt.Sprintf("%s %s (%.0f,%.0f %.0fx%.0f) %q", d.Style, d.Color.Hex(), d.X, d.Y, d.Width, d.Height, d.Label)
}

// Label builds a text instruction.
func Label(x, y float64, text string, fontSize uint32, c colorful.Color) DrawInstruction {
	return DrawInstruction{X: x, Y: y, Width: 15, Height: 15, Label: text, FontSize: fontSize, Style: Text, Color: c}
}

// Marker builds a circle instruction of the given diameter.
func Marker(x, y, size float64, c colorful.Color) DrawInstruction {
	return DrawInstruction{X: x, Y: y, Width: size, Height: size, FontSize: 8, Style: Circle, Color: c}
}

// Frame builds a box instruction hanging from (x, y).
func Frame(x, y, width, height float64, c colorful.Color) DrawInstruction {
	return DrawInstruction{X: x, Y: y, Width: width, Height: height, FontSize: 1, Style: Box, Color: c}
}
