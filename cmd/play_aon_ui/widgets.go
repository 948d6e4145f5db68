package main

import (
	"image"
	"image/color"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

func (g *game) drawPanel(screen *ebiten.Image, rect image.Rectangle) {
	fillRect(screen, rect, panelColor)
	drawBorder(screen, rect)
}

func (g *game) drawSunkenPanel(screen *ebiten.Image, rect image.Rectangle) {
	fillRect(screen, rect, sunkenBgColor)
	drawSunkenBorder(screen, rect)
}

func (g *game) drawDarkPanel(screen *ebiten.Image, rect image.Rectangle) {
	fillRect(screen, rect, color.RGBA{0, 0, 0, 255})
	drawSunkenBorder(screen, rect)
}

func (g *game) drawButton(screen *ebiten.Image, rect image.Rectangle, label string, fill color.Color) {
	fillRect(screen, rect, fill)
	drawBorder(screen, rect)
	labelW := len([]rune(label)) * charW
	g.drawText(screen, label, rect.Min.X+(rect.Dx()-labelW)/2, rect.Min.Y+(rect.Dy()-lineH)/2)
}

func fillRect(screen *ebiten.Image, rect image.Rectangle, c color.Color) {
	ebitenutil.DrawRect(screen, float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()), c)
}

// drawBorder draws a raised bevel: light top-left, shadow bottom-right.
func drawBorder(screen *ebiten.Image, rect image.Rectangle) {
	bevel(screen, rect, bevelLight, bevelDarker, borderColor, false)
}

// drawSunkenBorder is drawBorder with the light and shadow swapped.
func drawSunkenBorder(screen *ebiten.Image, rect image.Rectangle) {
	bevel(screen, rect, borderColor, bevelLight, bevelDarker, true)
}

func bevel(screen *ebiten.Image, rect image.Rectangle, topLeft, bottomRight, inner color.Color, innerTopLeft bool) {
	x := float64(rect.Min.X)
	y := float64(rect.Min.Y)
	w := float64(rect.Dx())
	h := float64(rect.Dy())
	ebitenutil.DrawRect(screen, x, y, w-1, 1, topLeft)
	ebitenutil.DrawRect(screen, x, y+1, 1, h-2, topLeft)
	ebitenutil.DrawRect(screen, x, y+h-1, w, 1, bottomRight)
	ebitenutil.DrawRect(screen, x+w-1, y, 1, h, bottomRight)
	if innerTopLeft {
		ebitenutil.DrawRect(screen, x+1, y+1, w-3, 1, inner)
		ebitenutil.DrawRect(screen, x+1, y+2, 1, h-4, inner)
		return
	}
	ebitenutil.DrawRect(screen, x+1, y+h-2, w-3, 1, inner)
	ebitenutil.DrawRect(screen, x+w-2, y+1, 1, h-3, inner)
}

// drawText renders embossed debug-font text, caching one image per string.
func (g *game) drawText(screen *ebiten.Image, msg string, x int, y int) {
	if msg == "" {
		return
	}
	img := g.textCache[msg]
	if img == nil {
		img = ebiten.NewImage(max(1, len([]rune(msg))*7), 14)
		ebitenutil.DebugPrintAt(img, msg, 0, 0)
		if len(g.textCache) > 3000 {
			g.textCache = make(map[string]*ebiten.Image, 1024)
		}
		g.textCache[msg] = img
	}
	shadow := &ebiten.DrawImageOptions{}
	shadow.GeoM.Scale(textScale, textScale)
	shadow.GeoM.Translate(float64(x+2), float64(y+2))
	shadow.ColorScale.Scale(0, 0, 0, 1)
	screen.DrawImage(img, shadow)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(textScale, textScale)
	op.GeoM.Translate(float64(x), float64(y))
	screen.DrawImage(img, op)
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

func shortenEnd(s string, maxChars int) string {
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	if maxChars <= 3 {
		return string(r[:max(0, maxChars)])
	}
	return string(r[:maxChars-3]) + "..."
}

func shortenMiddle(s string, maxChars int) string {
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	if maxChars <= 7 {
		return shortenEnd(s, maxChars)
	}
	left := (maxChars - 3) / 2
	right := maxChars - 3 - left
	return string(r[:left]) + "..." + string(r[len(r)-right:])
}

func clamp(v, minV, maxV float64) float64 {
	return min(max(v, minV), maxV)
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return image.Pt(x, y).In(rect)
}
