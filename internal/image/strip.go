package imagepkg

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// Strip is the output of one composite step. It is written once and only
// read back by the following step.
type Strip struct {
	Step   StepIndex
	Path   string
	Width  int
	Height int
}

// Composer builds strips inside a single run directory.
type Composer struct {
	cfg    Config
	glyphs GlyphStore
	dir    string
}

func NewComposer(cfg Config, glyphs GlyphStore, dir string) *Composer {
	return &Composer{cfg: cfg, glyphs: glyphs, dir: dir}
}

func (c *Composer) stepPath(i StepIndex) string {
	return filepath.Join(c.dir, fmt.Sprintf("result-%d.png", i))
}

// CompositeStep lays the glyph for s at the bottom-right of a new canvas and
// the previous strip at its bottom-left. Step 0 takes no previous strip; any
// other step needs the strip produced by step-1 in this run directory.
func (c *Composer) CompositeStep(s Symbol, prev *Strip, step StepIndex) (*Strip, error) {
	const op = "composite step"
	if !step.Valid() {
		return nil, newError(op, ErrCompositeFailure, fmt.Errorf("%w: step %d beyond %d", ErrStepOrder, step, LastStep))
	}
	glyph, err := c.glyphs.Glyph(s)
	if err != nil {
		return nil, err
	}

	w, h := c.cfg.StripSize(step)
	canvas := imaging.New(w, h, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0})

	prevImg, err := c.loadPrevious(prev, step)
	if err != nil {
		return nil, err
	}
	// cells never overlap, so pasting onto the transparent canvas is exact
	if prevImg != nil {
		canvas = imaging.Paste(canvas, prevImg, image.Pt(0, h-prevImg.Bounds().Dy()))
	}
	gb := glyph.Bounds()
	canvas = imaging.Paste(canvas, glyph, image.Pt(w-gb.Dx(), h-gb.Dy()))

	out := sharpen(canvas)
	path := c.stepPath(step)
	if err := imaging.Save(out, path); err != nil {
		return nil, newError(op, ErrCompositeFailure, fmt.Errorf("writing %s: %w", path, err))
	}
	return &Strip{Step: step, Path: path, Width: w, Height: h}, nil
}

// loadPrevious reads back exactly the file step-1 wrote, refusing anything
// missing, foreign or of the wrong size.
func (c *Composer) loadPrevious(prev *Strip, step StepIndex) (image.Image, error) {
	const op = "composite step"
	if step == 0 {
		if prev != nil {
			return nil, newError(op, ErrCompositeFailure, fmt.Errorf("%w: step 0 given a previous strip", ErrStepOrder))
		}
		return nil, nil
	}
	if prev == nil {
		return nil, newError(op, ErrCompositeFailure, fmt.Errorf("%w: step %d without previous strip", ErrStepOrder, step))
	}
	if prev.Step != step-1 || prev.Path != c.stepPath(step-1) {
		return nil, newError(op, ErrCompositeFailure,
			fmt.Errorf("%w: step %d given strip %d at %s", ErrStepOrder, step, prev.Step, prev.Path))
	}
	if _, err := os.Stat(prev.Path); err != nil {
		return nil, newError(op, ErrCompositeFailure, fmt.Errorf("%w: %v", ErrStepOrder, err))
	}
	img, err := imaging.Open(prev.Path)
	if err != nil {
		return nil, newError(op, ErrCompositeFailure, fmt.Errorf("decoding %s: %w", prev.Path, err))
	}
	wantW, wantH := c.cfg.StripSize(step - 1)
	if b := img.Bounds(); b.Dx() != wantW || b.Dy() != wantH {
		return nil, newError(op, ErrCompositeFailure,
			fmt.Errorf("%w: previous strip is %dx%d, want %dx%d", ErrStepOrder, b.Dx(), b.Dy(), wantW, wantH))
	}
	return img, nil
}
