package imagepkg

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"
)

// GlyphStore maps a Symbol to its pre-rendered cell image.
type GlyphStore interface {
	Glyph(s Symbol) (image.Image, error)
}

// DirGlyphStore reads digit-<c>.png files from a directory on every call.
type DirGlyphStore struct {
	Dir    string
	Width  int
	Height int
}

func NewDirGlyphStore(cfg Config) *DirGlyphStore {
	return &DirGlyphStore{Dir: cfg.AssetDir, Width: cfg.CellWidth, Height: cfg.CellHeight}
}

// GlyphFile is the asset file name for s.
func GlyphFile(s Symbol) string {
	return fmt.Sprintf("digit-%c.png", byte(s))
}

// ModTime reports when the asset for s last changed.
func (d *DirGlyphStore) ModTime(s Symbol) (time.Time, error) {
	if !s.Valid() {
		return time.Time{}, newError("glyph", ErrAssetMissing, fmt.Errorf("symbol %q outside alphabet", byte(s)))
	}
	info, err := os.Stat(filepath.Join(d.Dir, GlyphFile(s)))
	if err != nil {
		return time.Time{}, newError("glyph", ErrAssetMissing, err)
	}
	return info.ModTime(), nil
}

func (d *DirGlyphStore) Glyph(s Symbol) (image.Image, error) {
	if !s.Valid() {
		return nil, newError("glyph", ErrAssetMissing, fmt.Errorf("symbol %q outside alphabet", byte(s)))
	}
	path := filepath.Join(d.Dir, GlyphFile(s))
	if _, err := os.Stat(path); err != nil {
		return nil, newError("glyph", ErrAssetMissing, err)
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, newError("glyph", ErrAssetMissing, fmt.Errorf("decoding %s: %w", path, err))
	}
	b := img.Bounds()
	if b.Dx() != d.Width || b.Dy() != d.Height {
		return nil, newError("glyph", ErrAssetMissing,
			fmt.Errorf("%s is %dx%d, want %dx%d", path, b.Dx(), b.Dy(), d.Width, d.Height))
	}
	return img, nil
}

// modTimer is implemented by stores backed by files that can change under a
// running process.
type modTimer interface {
	ModTime(s Symbol) (time.Time, error)
}

type cachedGlyph struct {
	img image.Image
	mod time.Time
}

// CachedGlyphStore keeps decoded glyphs in an LRU in front of another store.
// Failures are not cached. When the next store reports modification times,
// every hit is checked against it so a removed asset still fails.
type CachedGlyphStore struct {
	next  GlyphStore
	cache *lru.Cache[Symbol, cachedGlyph]
}

func NewCachedGlyphStore(next GlyphStore, size int) (*CachedGlyphStore, error) {
	cache, err := lru.New[Symbol, cachedGlyph](size)
	if err != nil {
		return nil, fmt.Errorf("glyph cache: %w", err)
	}
	return &CachedGlyphStore{next: next, cache: cache}, nil
}

func (c *CachedGlyphStore) Glyph(s Symbol) (image.Image, error) {
	var mod time.Time
	if mt, ok := c.next.(modTimer); ok {
		var err error
		if mod, err = mt.ModTime(s); err != nil {
			c.cache.Remove(s)
			return nil, err
		}
	}
	if e, ok := c.cache.Get(s); ok && e.mod.Equal(mod) {
		return e.img, nil
	}
	img, err := c.next.Glyph(s)
	if err != nil {
		c.cache.Remove(s)
		return nil, err
	}
	c.cache.Add(s, cachedGlyph{img: img, mod: mod})
	return img, nil
}
