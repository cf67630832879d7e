package imagepkg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/youruser/likethumb/internal/util"
)

const runPrefix = "run-"

// Renderer turns a count into a thumbnail. Generations are serialised
// because they share the output file; each one also gets its own run
// directory for intermediate strips.
type Renderer struct {
	cfg    Config
	glyphs GlyphStore
	sem    *semaphore.Weighted
}

func NewRenderer(cfg Config) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, newError("new renderer", ErrInvalidInput, err)
	}
	var glyphs GlyphStore = NewDirGlyphStore(cfg)
	if cfg.GlyphCache > 0 {
		cached, err := NewCachedGlyphStore(glyphs, cfg.GlyphCache)
		if err != nil {
			return nil, err
		}
		glyphs = cached
	}
	return &Renderer{cfg: cfg, glyphs: glyphs, sem: semaphore.NewWeighted(1)}, nil
}

func (r *Renderer) Config() Config { return r.cfg }

// Generate pads n to Digits cells, composes the strip one step at a time and
// overlays it on the base image. Any failure aborts the whole run.
func (r *Renderer) Generate(ctx context.Context, n int64) (*Thumbnail, error) {
	digits, err := Pad(n)
	if err != nil {
		return nil, err
	}
	if err := r.acquire(ctx); err != nil {
		return nil, err
	}
	defer r.sem.Release(1)

	if err := r.sweep(); err != nil {
		log.Warn().Err(err).Str("work_dir", r.cfg.WorkDir).Msg("sweeping stale run directories")
	}

	dir := filepath.Join(r.cfg.WorkDir, runPrefix+uuid.NewString())
	if err := util.EnsureDir(dir); err != nil {
		return nil, newError("generate", ErrWrite, err)
	}
	composer := NewComposer(r.cfg, r.glyphs, dir)

	var strip *Strip
	for i, s := range digits {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generate %s: %w", digits, err)
		}
		strip, err = composer.CompositeStep(s, strip, StepIndex(i))
		if err != nil {
			return nil, err
		}
	}

	thumb, err := ComposeThumbnail(r.cfg, strip)
	if err != nil {
		return nil, err
	}
	thumb.Digits = digits.String()

	if !r.cfg.KeepStrips {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("removing run directory")
		}
	}
	log.Debug().
		Int64("count", n).
		Str("digits", thumb.Digits).
		Str("path", thumb.Path).
		Int64("size", thumb.Size).
		Msg("thumbnail generated")
	return thumb, nil
}

// Sweep removes run directories left behind by aborted generations. Only
// directories untouched for cfg.SweepAge are removed, since another process
// sharing WorkDir may own the younger ones.
func (r *Renderer) Sweep(ctx context.Context) error {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer r.sem.Release(1)
	return r.sweep()
}

// sweep must be called with the semaphore held.
func (r *Renderer) sweep() error {
	entries, err := os.ReadDir(r.cfg.WorkDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	cutoff := time.Now().Add(-r.cfg.SweepAge)
	var result *multierror.Error
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), runPrefix) {
			continue
		}
		if r.cfg.SweepAge > 0 {
			info, err := e.Info()
			if err != nil {
				if !os.IsNotExist(err) {
					result = multierror.Append(result, err)
				}
				continue
			}
			// each step writes into the run dir, so a live run keeps it fresh
			if info.ModTime().After(cutoff) {
				continue
			}
		}
		if err := os.RemoveAll(filepath.Join(r.cfg.WorkDir, e.Name())); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (r *Renderer) acquire(ctx context.Context) error {
	if r.cfg.Policy == PolicyReject {
		if !r.sem.TryAcquire(1) {
			return newError("generate", ErrBusy, nil)
		}
		return nil
	}
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("generate: waiting for running generation: %w", err)
	}
	return nil
}
