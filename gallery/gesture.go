package gallery

import (
	"math"
	"time"
)

type TouchPhase uint8

const (
	TouchStart TouchPhase = iota
	TouchMove
	TouchEnd
	TouchCancel
)

// TouchEvent is one raw touch update in screen pixels.
type TouchEvent struct {
	Phase TouchPhase
	// Touches holds every point still down after the event.
	Touches []Vec2
	// Changed holds the points that went down, moved or lifted.
	Changed []Vec2
	Time    time.Time
}

// IntentKind discriminates what a gesture asks of the camera.
type IntentKind uint8

const (
	IntentNone IntentKind = iota
	IntentPan             // move the target by Delta (world units)
	IntentZoomTo          // set the target zoom to Zoom
	IntentPick            // select the image under Point (screen pixels)
	IntentResetZoom       // back to the default zoom
)

type Intent struct {
	Kind  IntentKind
	Delta Vec2
	Zoom  float64
	Point Vec2
}

// CameraView is the camera state a touch event is interpreted against.
type CameraView struct {
	// Zoom is the smoothed zoom, used to scale pan deltas.
	Zoom float64
	// TargetZoom is where the camera is heading.
	TargetZoom float64
	Viewport   Size
}

type gestureMode uint8

const (
	gestureIdle gestureMode = iota
	gesturePending
	gestureDragging
	gesturePinching
)

// GestureController turns raw touches into intents: a short touch is a pick,
// a moving touch pans, two touch starts in quick succession reset the zoom,
// and two fingers pinch-zoom.
//
// It has no timers of its own. A tap schedules a pick deadline that Poll
// resolves, so a following double tap can cancel it by clearing the field.
type GestureController struct {
	doubleTapWindow time.Duration
	tapSlop         float64
	panGain         float64
	pinchExponent   float64
	defaultZoom     float64
	minZoom         float64
	maxZoom         float64

	mode         gestureMode
	origin, last Vec2
	lastTapStart time.Time

	pinchStartDistance float64
	pinchStartZoom     float64

	// queuedZoom is the target zoom the queued intents lead to. A pinch
	// started before they are applied builds on it instead of on the stale
	// camera view.
	queuedZoom    float64
	hasQueuedZoom bool

	pickPending         bool
	pickPoint           Vec2
	pickDeadline        time.Time
	pickSuppressedUntil time.Time

	intents []Intent
}

func NewGestureController(cfg Config) *GestureController {
	return &GestureController{
		doubleTapWindow: cfg.DoubleTapWindow.Duration,
		tapSlop:         cfg.TapSlop,
		panGain:         cfg.PanGain,
		pinchExponent:   cfg.PinchExponent,
		defaultZoom:     cfg.DefaultZoom,
		minZoom:         cfg.MinZoom,
		maxZoom:         cfg.MaxZoom,
	}
}

// HandleTouch feeds one event through the state machine. Resulting intents
// are queued for Poll.
func (g *GestureController) HandleTouch(ev TouchEvent, view CameraView) {
	switch ev.Phase {
	case TouchStart:
		switch len(ev.Touches) {
		case 1:
			g.touchStart(ev.Touches[0], ev.Time)
		case 2:
			g.pinchStart(ev.Touches[0], ev.Touches[1], view)
		}
	case TouchMove:
		if len(ev.Touches) == 1 && (g.mode == gesturePending || g.mode == gestureDragging) {
			g.drag(ev.Touches[0], view)
		} else if len(ev.Touches) == 2 && g.mode == gesturePinching {
			g.pinch(ev.Touches[0], ev.Touches[1])
		}
	case TouchEnd:
		if len(ev.Touches) == 0 {
			g.touchEnd(ev.Changed, ev.Time, view)
		}
	case TouchCancel:
		if len(ev.Touches) == 0 {
			g.mode = gestureIdle
		}
	}
}

func (g *GestureController) touchStart(p Vec2, now time.Time) {
	g.origin = p
	g.last = p

	if !g.lastTapStart.IsZero() && now.Sub(g.lastTapStart) < g.doubleTapWindow {
		g.doubleTap(now)
		// A third tap starts over instead of counting as another double tap.
		g.lastTapStart = time.Time{}
		g.mode = gestureIdle
		return
	}
	g.lastTapStart = now
	g.mode = gesturePending
}

func (g *GestureController) doubleTap(now time.Time) {
	g.pickPending = false
	g.pickSuppressedUntil = now.Add(g.doubleTapWindow)
	g.intents = append(g.intents, Intent{Kind: IntentResetZoom})
	g.queueZoom(g.defaultZoom)
}

func (g *GestureController) queueZoom(z float64) {
	g.queuedZoom = math.Max(g.minZoom, math.Min(g.maxZoom, z))
	g.hasQueuedZoom = true
}

func (g *GestureController) pinchStart(a, b Vec2, view CameraView) {
	g.mode = gesturePinching
	g.pinchStartDistance = b.Sub(a).Len()
	g.pinchStartZoom = view.TargetZoom
	if g.hasQueuedZoom {
		g.pinchStartZoom = g.queuedZoom
	}
}

func (g *GestureController) drag(p Vec2, view CameraView) {
	d := p.Sub(g.last)
	g.last = p

	if g.mode == gesturePending && p.Sub(g.origin).Len() >= g.tapSlop {
		g.mode = gestureDragging
	}

	width := view.Viewport.Width
	if width <= 0 {
		return
	}
	// Both axes are divided by the width: the vertical view extent is
	// zoom/aspect, so dy/height/aspect == dy/width.
	scale := g.panGain * view.Zoom / width
	g.intents = append(g.intents, Intent{
		Kind:  IntentPan,
		Delta: Vec2{X: -d.X * scale, Y: d.Y * scale},
	})
}

func (g *GestureController) pinch(a, b Vec2) {
	dist := b.Sub(a).Len()
	if dist <= 0 || g.pinchStartDistance <= 0 {
		return
	}
	// Fingers closing in mean zooming out; the exponent makes the response
	// progressive.
	zoom := g.pinchStartZoom * math.Pow(g.pinchStartDistance/dist, g.pinchExponent)
	g.intents = append(g.intents, Intent{Kind: IntentZoomTo, Zoom: zoom})
	g.queueZoom(zoom)
}

func (g *GestureController) touchEnd(changed []Vec2, now time.Time, view CameraView) {
	defer func() { g.mode = gestureIdle }()

	if g.mode != gesturePending {
		return
	}
	p := g.last
	if len(changed) > 0 {
		p = changed[0]
	}
	if p.Sub(g.origin).Len() >= g.tapSlop || now.Before(g.pickSuppressedUntil) {
		return
	}

	// At the default zoom nothing a double tap would do is visible, so the
	// pick does not wait for one.
	var delay time.Duration
	if math.Abs(view.TargetZoom-g.defaultZoom) > 1e-9 {
		delay = g.doubleTapWindow
	}
	g.pickPending = true
	g.pickPoint = p
	g.pickDeadline = now.Add(delay)
}

// Poll returns the queued intents plus a deferred pick whose deadline has
// passed, and empties the queue.
func (g *GestureController) Poll(now time.Time) []Intent {
	if g.pickPending && !now.Before(g.pickDeadline) {
		g.pickPending = false
		if !now.Before(g.pickSuppressedUntil) {
			g.intents = append(g.intents, Intent{Kind: IntentPick, Point: g.pickPoint})
		}
	}
	out := g.intents
	g.intents = nil
	g.hasQueuedZoom = false
	return out
}

// Reset drops the current session, any pending pick and queued intents.
func (g *GestureController) Reset() {
	g.mode = gestureIdle
	g.lastTapStart = time.Time{}
	g.pickPending = false
	g.intents = nil
	g.hasQueuedZoom = false
}
