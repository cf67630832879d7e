package imagepkg

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Policy decides what Generate does while another generation is running.
type Policy string

const (
	PolicyQueue  Policy = "queue"
	PolicyReject Policy = "reject"
)

// Config is the immutable render configuration handed to NewRenderer.
type Config struct {
	AssetDir   string // digit-<c>.png glyphs and the base image
	BaseImage  string // relative to AssetDir unless absolute
	WorkDir    string // run directories for intermediate strips
	OutputPath string

	CellWidth  int
	CellHeight int
	Margin     int // empty band above the digits, leaves room for the base artwork
	Quality    int

	Policy Policy
	// GlyphCache is the LRU size; 0 disables caching. Cached glyphs are
	// revalidated against the file's modification time on every hit, so a
	// deleted or replaced asset is noticed without a restart.
	GlyphCache int
	KeepStrips bool // keep the run directory after a successful generation

	// SweepAge is how long a run directory must sit untouched before a sweep
	// removes it. Other processes sharing WorkDir may still be writing to
	// younger ones. 0 removes every run directory.
	SweepAge time.Duration
}

// DefaultConfig matches the shipped assets: 160x200 glyphs over a 470px band.
func DefaultConfig() Config {
	return Config{
		AssetDir:   "content",
		BaseImage:  "base.jpg",
		WorkDir:    "temp",
		OutputPath: "thumbnail.jpg",
		CellWidth:  160,
		CellHeight: 200,
		Margin:     470,
		Quality:    72,
		Policy:     PolicyQueue,
		GlyphCache: 11,
		SweepAge:   10 * time.Minute,
	}
}

func (c Config) Validate() error {
	switch {
	case c.AssetDir == "":
		return fmt.Errorf("asset dir is required")
	case c.WorkDir == "":
		return fmt.Errorf("work dir is required")
	case c.OutputPath == "":
		return fmt.Errorf("output path is required")
	case c.CellWidth <= 0 || c.CellHeight <= 0:
		return fmt.Errorf("cell size must be positive, got %dx%d", c.CellWidth, c.CellHeight)
	case c.Margin < 0:
		return fmt.Errorf("margin must not be negative, got %d", c.Margin)
	case c.Quality < 1 || c.Quality > 100:
		return fmt.Errorf("quality must be in [1,100], got %d", c.Quality)
	case c.SweepAge < 0:
		return fmt.Errorf("sweep age must not be negative, got %s", c.SweepAge)
	}
	if c.Policy != PolicyQueue && c.Policy != PolicyReject {
		return fmt.Errorf("unknown policy %q", c.Policy)
	}
	return nil
}

func (c Config) basePath() string {
	if filepath.IsAbs(c.BaseImage) {
		return c.BaseImage
	}
	return filepath.Join(c.AssetDir, c.BaseImage)
}

// Preview derives a configuration for on-demand renders. It writes to its own
// output file and work directory so previews never replace the thumbnail the
// updater is about to upload.
func (c Config) Preview() Config {
	p := c
	p.WorkDir = filepath.Join(c.WorkDir, "preview")
	ext := filepath.Ext(c.OutputPath)
	p.OutputPath = strings.TrimSuffix(c.OutputPath, ext) + "-preview" + ext
	return p
}

// StripSize is the canvas size of the strip at step i.
func (c Config) StripSize(i StepIndex) (w, h int) {
	return c.CellWidth * (int(i) + 1), c.CellHeight + c.Margin
}
