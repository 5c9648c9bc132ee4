package gallery

import (
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

// pinchRadius is the half distance between the two synthetic fingers of an
// emulated pinch, in pixels.
const pinchRadius = 100

// TouchSurface turns fyne pointer and touch callbacks into TouchEvents.
// fyne reports a single pointer, so two finger input only comes from Pinch.
type TouchSurface struct {
	widget.BaseWidget

	handler func(TouchEvent)
	now     func() time.Time

	down bool
	last Vec2
}

var (
	_ TouchSource       = (*TouchSurface)(nil)
	_ desktop.Mouseable = (*TouchSurface)(nil)
	_ fyne.Draggable    = (*TouchSurface)(nil)
	_ mobile.Touchable  = (*TouchSurface)(nil)
)

func NewTouchSurface() *TouchSurface {
	s := &TouchSurface{now: time.Now}
	s.ExtendBaseWidget(s)
	return s
}

func (s *TouchSurface) SetTouchHandler(fn func(TouchEvent)) {
	s.handler = fn
	if fn == nil {
		s.down = false
	}
}

func (s *TouchSurface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(canvas.NewRectangle(color.Transparent))
}

func (s *TouchSurface) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	s.press(e.Position)
}

func (s *TouchSurface) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	s.release(e.Position)
}

func (s *TouchSurface) Dragged(e *fyne.DragEvent) {
	if !s.down {
		return
	}
	p := toVec(e.Position)
	s.last = p
	s.emit(TouchMove, []Vec2{p}, []Vec2{p})
}

// DragEnd is followed by MouseUp or TouchUp, which end the touch.
func (s *TouchSurface) DragEnd() {}

func (s *TouchSurface) TouchDown(e *mobile.TouchEvent) { s.press(e.Position) }

func (s *TouchSurface) TouchUp(e *mobile.TouchEvent) { s.release(e.Position) }

func (s *TouchSurface) TouchCancel(*mobile.TouchEvent) {
	if !s.down {
		return
	}
	s.down = false
	s.emit(TouchCancel, nil, []Vec2{s.last})
}

// Pinch emits a complete two finger gesture centered on center. A scale
// above 1 spreads the fingers apart, which zooms in.
func (s *TouchSurface) Pinch(center fyne.Position, scale float64) {
	if s.down || scale <= 0 {
		return
	}
	c := toVec(center)
	spread := func(r float64) []Vec2 {
		return []Vec2{{X: c.X - r, Y: c.Y}, {X: c.X + r, Y: c.Y}}
	}

	start := spread(pinchRadius)
	end := spread(pinchRadius * scale)
	s.emit(TouchStart, start, start)
	s.emit(TouchMove, end, end)
	s.emit(TouchEnd, nil, end)
}

func (s *TouchSurface) press(pos fyne.Position) {
	if s.down {
		return
	}
	p := toVec(pos)
	s.down = true
	s.last = p
	s.emit(TouchStart, []Vec2{p}, []Vec2{p})
}

func (s *TouchSurface) release(pos fyne.Position) {
	if !s.down {
		return
	}
	s.down = false
	s.emit(TouchEnd, nil, []Vec2{toVec(pos)})
}

func (s *TouchSurface) emit(phase TouchPhase, touches, changed []Vec2) {
	if s.handler == nil {
		return
	}
	s.handler(TouchEvent{
		Phase:   phase,
		Touches: touches,
		Changed: changed,
		Time:    s.now(),
	})
}

func toVec(p fyne.Position) Vec2 {
	return Vec2{X: float64(p.X), Y: float64(p.Y)}
}
