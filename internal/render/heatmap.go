package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/JonMunkholm/surveyviz/internal/survey"
	chart "github.com/wcharczuk/go-chart/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	marginTop   = 48
	marginLeft  = 140
	marginRight = 24
	marginBot   = 24
	legendWidth = 16
)

var face = basicfont.Face7x13

// encodeHeatmap draws one cell per matrix entry, coloured on a fixed -1..1
// Viridis scale and annotated with the rounded coefficient.
func encodeHeatmap(w io.Writer, h survey.Heatmap, width, height int) error {
	n := h.Matrix.Size()
	if n == 0 {
		return encodePlaceholder(w, h.Title, "no data", width, height)
	}

	img := newCanvas(width, height)
	drawCentered(img, h.Title, width/2, 24, color.Black)

	gridW := width - marginLeft - marginRight - legendWidth*3
	gridH := height - marginTop - marginBot
	cellW := gridW / n
	cellH := gridH / n
	if cellW < 1 || cellH < 1 {
		return fmt.Errorf("render heatmap: %dx%d is too small for %d cells", width, height, n)
	}

	formatted := h.Matrix.Formatted()
	for i, row := range h.Matrix {
		y0 := marginTop + i*cellH
		for j, v := range row {
			x0 := marginLeft + j*cellW
			cell := image.Rect(x0, y0, x0+cellW-1, y0+cellH-1)
			fill := chart.Viridis(v, -1, 1)
			draw.Draw(img, cell, image.NewUniform(fill), image.Point{}, draw.Src)
			drawCentered(img, formatted[i][j], x0+cellW/2, y0+cellH/2+4, textOn(fill))
		}
		if i < len(h.RowLabels) {
			drawRight(img, h.RowLabels[i], marginLeft-8, y0+cellH/2+4)
		}
	}
	for j := 0; j < n && j < len(h.ColumnLabels); j++ {
		drawCentered(img, h.ColumnLabels[j], marginLeft+j*cellW+cellW/2, marginTop-6, color.Black)
	}

	drawLegend(img, marginLeft+n*cellW+legendWidth, marginTop, gridH)

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("render heatmap: %w", err)
	}
	return nil
}

// drawLegend paints the colour scale from 1 at the top to -1 at the bottom.
func drawLegend(img *image.RGBA, x, y, h int) {
	for dy := 0; dy < h; dy++ {
		v := 1 - 2*float64(dy)/float64(h-1)
		line := image.Rect(x, y+dy, x+legendWidth, y+dy+1)
		draw.Draw(img, line, image.NewUniform(chart.Viridis(v, -1, 1)), image.Point{}, draw.Src)
	}
	drawString(img, "1", x+legendWidth+3, y+10, color.Black)
	drawString(img, "-1", x+legendWidth+3, y+h, color.Black)
}

// encodePlaceholder renders a titled blank image for datasets with nothing
// to plot.
func encodePlaceholder(w io.Writer, title, msg string, width, height int) error {
	img := newCanvas(width, height)
	drawCentered(img, title, width/2, 24, color.Black)
	drawCentered(img, msg, width/2, height/2, color.Gray{Y: 96})
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("render placeholder: %w", err)
	}
	return nil
}

func newCanvas(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}

// textOn picks black or white for legibility over c.
func textOn(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	lum := (299*r + 587*g + 114*b) / 1000
	if lum > 0x8000 {
		return color.Black
	}
	return color.White
}

func drawString(img draw.Image, s string, x, y int, c color.Color) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func drawCentered(img draw.Image, s string, cx, y int, c color.Color) {
	width := font.MeasureString(face, s).Ceil()
	drawString(img, s, cx-width/2, y, c)
}

func drawRight(img draw.Image, s string, right, y int) {
	width := font.MeasureString(face, s).Ceil()
	drawString(img, s, right-width, y, color.Black)
}

