package gallery

import (
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Fetcher loads one manifest entry. Implementations must be safe for
// concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (*Resource, error)
}

// URIFetcher resolves identifiers under a base URI, decodes JPEG, PNG or WebP
// and scales the result down to the texture width.
type URIFetcher struct {
	Base         fyne.URI
	TextureWidth int
	// Cache is optional.
	Cache *TextureCache
}

func (f *URIFetcher) Fetch(ctx context.Context, id string) (*Resource, error) {
	uri, err := resolveID(f.Base, id)
	if err != nil {
		return nil, err
	}

	if f.Cache != nil {
		if img, ok := f.Cache.Load(uri, f.TextureWidth); ok {
			return &Resource{ID: id, Image: img}, nil
		}
	}

	rc, err := openURI(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, err
	}
	img = scaleTexture(img, f.TextureWidth)

	if f.Cache != nil {
		if err := f.Cache.Store(uri, f.TextureWidth, img); err != nil {
			fyne.LogError("could not cache texture "+id, err)
		}
	}
	return &Resource{ID: id, Image: img}, nil
}

// resolveID joins id onto base, escaping each path segment.
func resolveID(base fyne.URI, id string) (fyne.URI, error) {
	if base.Scheme() == "file" {
		return storage.NewFileURI(strings.TrimSuffix(base.Path(), "/") + "/" + id), nil
	}
	segments := strings.Split(id, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return storage.ParseURI(strings.TrimSuffix(base.String(), "/") + "/" + strings.Join(segments, "/"))
}

// scaleTexture shrinks img to at most width pixels wide, keeping its aspect.
// Smaller images are returned untouched.
func scaleTexture(img image.Image, width int) image.Image {
	src := img.Bounds()
	if width <= 0 || src.Dx() <= width || src.Dy() == 0 {
		return img
	}
	height := int(float64(src.Dy()) * float64(width) / float64(src.Dx()))
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	// ApproxBiLinear for speed, these end up as small quads.
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	return dst
}
