//go:build !flatpak || windows || android || ios || wasm || js

package gallery

import (
	"fyne.io/fyne/v2"
	fynedialog "fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// ChooseManifest shows a file dialog for a manifest file. onChosen runs on
// the main goroutine with a nil URI when the user cancels.
func ChooseManifest(parent fyne.Window, onChosen func(fyne.URI, error)) {
	d := fynedialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		var uri fyne.URI
		if reader != nil {
			uri = reader.URI()
			_ = reader.Close()
		}
		onChosen(uri, err)
	}, parent)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".txt"}))
	d.Show()
}
