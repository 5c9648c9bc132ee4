package gallery

import (
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const (
	wheelNotch = float32(40)
	// pinchPerNotch is the finger spread of one wheel notch.
	pinchPerNotch = 1.1
)

func isZoomModifierActive() bool {
	app := fyne.CurrentApp()
	if app == nil {
		return false
	}
	d, ok := app.Driver().(desktop.Driver)
	if !ok {
		return false
	}

	return d.CurrentKeyModifiers()&(fyne.KeyModifierControl|fyne.KeyModifierShortcutDefault) != 0
}

// zoomScrollOverlay catches modifier+wheel and reports whole notches with the
// pointer position. Without the modifier it is invisible so plain scrolling
// reaches the page.
type zoomScrollOverlay struct {
	widget.BaseWidget
	onStep   func(at fyne.Position, steps int)
	modifier func() bool
	accDY    float32
}

func newZoomScrollOverlay(onStep func(at fyne.Position, steps int)) *zoomScrollOverlay {
	z := &zoomScrollOverlay{onStep: onStep, modifier: isZoomModifierActive}
	z.ExtendBaseWidget(z)
	return z
}

func (z *zoomScrollOverlay) Visible() bool {
	if !z.BaseWidget.Visible() {
		return false
	}
	return z.modifier()
}

func (z *zoomScrollOverlay) Scrolled(e *fyne.ScrollEvent) {
	if z.onStep == nil {
		return
	}

	dy := float64(e.Scrolled.DY)
	if math.IsNaN(dy) || math.IsInf(dy, 0) {
		return
	}

	// One wheel notch is 40 units; touchpads send fractions of it.
	z.accDY += e.Scrolled.DY
	steps := int(z.accDY / wheelNotch)
	z.accDY -= float32(steps) * wheelNotch
	if steps != 0 {
		z.onStep(e.Position, steps)
	}
}

func (z *zoomScrollOverlay) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(canvas.NewRectangle(color.Transparent))
}

var _ fyne.Scrollable = (*zoomScrollOverlay)(nil)

// pinchScale converts wheel notches into a finger spread for a synthetic
// pinch. Scrolling up zooms in.
func pinchScale(steps int) float64 {
	return math.Pow(pinchPerNotch, float64(steps))
}
