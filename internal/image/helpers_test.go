package imagepkg

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"github.com/youruser/likethumb/internal/util"
)

const (
	testCellW  = 16
	testCellH  = 20
	testMargin = 10
)

var alphabet = []Symbol{Blank, '0', '1', '2', '3', '4', '5', '6', '7', '8', '9'}

// glyphColor gives every digit a distinct opaque colour; Blank is transparent.
func glyphColor(s Symbol) color.NRGBA {
	if s == Blank {
		return color.NRGBA{}
	}
	d := uint8(s - '0')
	return color.NRGBA{R: 20 + d*20, G: 200 - d*15, B: 40 + d*10, A: 0xff}
}

func writeGlyphs(t *testing.T, dir string) {
	t.Helper()
	for _, s := range alphabet {
		img := imaging.New(testCellW, testCellH, glyphColor(s))
		require.NoError(t, imaging.Save(img, filepath.Join(dir, GlyphFile(s))))
	}
}

func writeBase(t *testing.T, path string, w, h int) {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 0x30, G: 0x60, B: 0x90, A: 0xff})
	require.NoError(t, imaging.Save(img, path))
}

// testConfig lays out assets, work dir and output under a fresh temp root.
func testConfig(t *testing.T) Config {
	t.Helper()
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.AssetDir = filepath.Join(root, "content")
	cfg.WorkDir = filepath.Join(root, "temp")
	cfg.OutputPath = filepath.Join(root, "out", "thumbnail.jpg")
	cfg.CellWidth = testCellW
	cfg.CellHeight = testCellH
	cfg.Margin = testMargin

	require.NoError(t, util.EnsureDir(cfg.AssetDir))
	writeGlyphs(t, cfg.AssetDir)
	writeBase(t, filepath.Join(cfg.AssetDir, cfg.BaseImage), 128, 72)
	return cfg
}
