package gallery

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"time"

	"fyne.io/fyne/v2"
)

// TextureCache keeps scaled textures on disk so a second start does not hit
// the network. Entries are evicted oldest-first once the directory grows past
// its size or file limits.
type TextureCache struct {
	dir      string
	maxSize  int64
	maxFiles int
}

// DefaultTextureCacheDir is the per-user cache location.
func DefaultTextureCacheDir() (string, error) {
	userCache, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userCache, "xgallery"), nil
}

// NewTextureCache creates dir if needed.
func NewTextureCache(dir string, maxSize int64, maxFiles int) (*TextureCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &TextureCache{dir: dir, maxSize: maxSize, maxFiles: maxFiles}, nil
}

// Load returns a cached texture for uri. A hit refreshes the entry's
// modification time, which is what eviction orders by.
func (c *TextureCache) Load(uri fyne.URI, width int) (image.Image, bool) {
	key, err := c.generateCacheKey(uri, width)
	if err != nil {
		return nil, false
	}
	path := filepath.Join(c.dir, key+".jpg")
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	img, err := jpeg.Decode(f)
	if err != nil {
		return nil, false
	}
	now := time.Now()
	_ = os.Chtimes(path, now, now)
	return img, true
}

// Store writes img for uri. Concurrent stores of the same key are safe, the
// last rename wins.
func (c *TextureCache) Store(uri fyne.URI, width int, img image.Image) error {
	key, err := c.generateCacheKey(uri, width)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	if err := jpeg.Encode(tmp, img, &jpeg.Options{Quality: 85}); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(c.dir, key+".jpg"))
}

func (c *TextureCache) generateCacheKey(uri fyne.URI, width int) (string, error) {
	h := sha256.New()
	h.Write([]byte(uri.String()))
	fmt.Fprintf(h, "|%d", width)

	// Local files also key on size and mtime so an edited image is reloaded.
	if uri.Scheme() == "file" {
		info, err := os.Stat(uri.Path())
		if err != nil {
			return "", err
		}
		h.Write([]byte(info.ModTime().String()))
		fmt.Fprintf(h, "|%d", info.Size())
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Cleanup evicts the least recently used entries down to 80% of the limits.
func (c *TextureCache) Cleanup() {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		fyne.LogError("could not list texture cache", err)
		return
	}

	type fileInfo struct {
		name string
		size int64
		time time.Time
	}

	var cachedFiles []fileInfo
	var totalSize int64

	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".jpg" {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		cachedFiles = append(cachedFiles, fileInfo{
			name: f.Name(),
			size: info.Size(),
			time: info.ModTime(),
		})
		totalSize += info.Size()
	}

	if totalSize <= c.maxSize && len(cachedFiles) <= c.maxFiles {
		return
	}

	sort.Slice(cachedFiles, func(i, j int) bool {
		return cachedFiles[i].time.Before(cachedFiles[j].time)
	})

	sizeMark := int64(float64(c.maxSize) * 0.8)
	filesMark := int(float64(c.maxFiles) * 0.8)
	for len(cachedFiles) > 0 {
		if totalSize <= sizeMark && len(cachedFiles) <= filesMark {
			break
		}
		f := cachedFiles[0]
		_ = os.Remove(filepath.Join(c.dir, f.name))
		totalSize -= f.size
		cachedFiles = cachedFiles[1:]
	}
}
