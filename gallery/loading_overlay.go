package gallery

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/FyshOS/fancyfs"
)

// LoadingOverlay covers the gallery until it is primed. It shows download
// progress over a dim backdrop, or over the folder's own background image when
// the images come from a local folder that sets one.
type LoadingOverlay struct {
	widget.BaseWidget

	backdrop   *canvas.Rectangle
	background *canvas.Image
	label      *widget.Label
	progress   *widget.ProgressBar
}

var _ Indicator = (*LoadingOverlay)(nil)

func NewLoadingOverlay() *LoadingOverlay {
	o := &LoadingOverlay{
		backdrop:   canvas.NewRectangle(color.NRGBA{A: 0xc0}),
		background: &canvas.Image{FillMode: canvas.ImageFillContain},
		label:      widget.NewLabel("Loading images…"),
		progress:   widget.NewProgressBar(),
	}
	o.label.Alignment = fyne.TextAlignCenter
	o.background.Hide()
	o.ExtendBaseWidget(o)
	o.Hide()
	return o
}

func (o *LoadingOverlay) CreateRenderer() fyne.WidgetRenderer {
	box := container.NewVBox(o.label, o.progress)
	return widget.NewSimpleRenderer(container.NewStack(
		o.backdrop,
		o.background,
		container.NewCenter(container.NewPadded(box)),
	))
}

// SetFolder looks for fancyfs folder details on base and uses its background
// when there is one. Non-local or plain folders keep the dim backdrop.
func (o *LoadingOverlay) SetFolder(base fyne.URI) {
	if base == nil || base.Scheme() != "file" {
		return
	}
	if isDir, _ := storage.CanList(base); !isDir {
		return
	}
	details, err := fancyfs.DetailsForFolder(base)
	if err != nil || details == nil {
		return
	}

	switch {
	case details.BackgroundURI != nil:
		o.background.File = details.BackgroundURI.Path()
		o.background.FillMode = details.BackgroundFill
	case details.BackgroundResource != nil:
		o.background.Resource = details.BackgroundResource
	default:
		return
	}
	o.background.Show()
	o.background.Refresh()
	o.backdrop.FillColor = theme.Color(theme.ColorNameOverlayBackground)
	o.backdrop.Refresh()
}

// SetProgress reports how many images have arrived. It is safe to call from
// any goroutine.
func (o *LoadingOverlay) SetProgress(done, total int) {
	if total <= 0 {
		return
	}
	fyne.Do(func() {
		o.progress.SetValue(float64(done) / float64(total))
	})
}

// Fail replaces the progress with a short error message.
func (o *LoadingOverlay) Fail(err error) {
	if err == nil {
		return
	}
	o.label.SetText("Could not load images")
	o.progress.Hide()
}

// Reset clears progress and any error from an earlier batch.
func (o *LoadingOverlay) Reset() {
	o.label.SetText("Loading images…")
	o.progress.SetValue(0)
	o.progress.Show()
	o.Hide()
}

func (o *LoadingOverlay) ShowLoading() { o.Show() }

func (o *LoadingOverlay) HideLoading() { o.Hide() }
