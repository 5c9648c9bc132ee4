//go:build flatpak && !windows && !android && !ios && !wasm && !js

package gallery

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/storage"

	"github.com/rymdport/portal"
	"github.com/rymdport/portal/filechooser"
)

// ChooseManifest asks the desktop portal for a manifest file. onChosen runs
// on the main goroutine with a nil URI when the user cancels.
func ChooseManifest(parent fyne.Window, onChosen func(fyne.URI, error)) {
	filter := &filechooser.Filter{
		Name: lang.L("Image lists"),
		Rules: []filechooser.Rule{
			{Type: filechooser.GlobPattern, Pattern: "*.txt"},
			{Type: filechooser.MIMEType, Pattern: "text/plain"},
		},
	}
	options := &filechooser.OpenFileOptions{
		AcceptLabel:   lang.L("Open"),
		Filters:       []*filechooser.Filter{filter},
		CurrentFilter: filter,
	}
	windowHandle := windowHandleForPortal(parent)

	go func() {
		uris, err := filechooser.OpenFile(windowHandle, lang.L("Open Image List"), options)
		var uri fyne.URI
		if err == nil && len(uris) > 0 {
			uri, err = storage.ParseURI(uris[0])
		}
		fyne.Do(func() { onChosen(uri, err) })
	}()
}

func windowHandleForPortal(window fyne.Window) string {
	native, ok := window.(driver.NativeWindow)
	if !ok {
		return ""
	}

	windowHandle := ""
	native.RunNative(func(context any) {
		if x11, ok := context.(driver.X11WindowContext); ok {
			windowHandle = portal.FormatX11WindowHandle(x11.WindowHandle)
		}
	})
	return windowHandle
}
