package imagepkg

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/jpegli"

	"github.com/youruser/likethumb/internal/util"
)

// Thumbnail describes the file written by the compositor. Data holds the
// encoded bytes of this generation; the file at Path may already have been
// replaced by a later one, so consumers upload or serve Data.
type Thumbnail struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Size   int64  `json:"size"`
	Digits string `json:"digits"`
	Data   []byte `json:"-"`
}

// encodeJPEG keeps full chroma resolution so digit edges stay sharp.
func encodeJPEG(w io.Writer, img image.Image, quality int) error {
	return jpegli.Encode(w, img, &jpegli.EncodingOptions{
		Quality:           quality,
		ChromaSubsampling: image.YCbCrSubsampleRatio444,
	})
}

// ComposeThumbnail overlays the final strip on the base image at the top-left
// corner and replaces the output file with the encoded result.
func ComposeThumbnail(cfg Config, final *Strip) (*Thumbnail, error) {
	const op = "compose thumbnail"
	if final == nil || final.Step != LastStep {
		return nil, newError(op, ErrCompositeFailure, fmt.Errorf("%w: thumbnail needs strip %d", ErrStepOrder, LastStep))
	}
	base, err := imaging.Open(cfg.basePath())
	if err != nil {
		return nil, newError(op, ErrAssetMissing, fmt.Errorf("base image: %w", err))
	}
	strip, err := imaging.Open(final.Path)
	if err != nil {
		return nil, newError(op, ErrCompositeFailure, fmt.Errorf("%w: final strip: %v", ErrStepOrder, err))
	}

	bb, sb := base.Bounds(), strip.Bounds()
	if sb.Dx() > bb.Dx() || sb.Dy() > bb.Dy() {
		return nil, newError(op, ErrStripOverflow,
			fmt.Errorf("strip %dx%d, base %dx%d", sb.Dx(), sb.Dy(), bb.Dx(), bb.Dy()))
	}

	out := sharpen(imaging.Overlay(base, strip, image.Pt(0, 0), 1.0))

	var buf bytes.Buffer
	if err := encodeJPEG(&buf, out, cfg.Quality); err != nil {
		return nil, newError(op, ErrEncode, err)
	}
	if err := util.WriteFileAtomic(cfg.OutputPath, buf.Bytes(), 0o644); err != nil {
		return nil, newError(op, ErrWrite, err)
	}
	return &Thumbnail{
		Path:   cfg.OutputPath,
		Width:  out.Bounds().Dx(),
		Height: out.Bounds().Dy(),
		Format: "jpeg",
		Size:   int64(buf.Len()),
		Data:   buf.Bytes(),
	}, nil
}
