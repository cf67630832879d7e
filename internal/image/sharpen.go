package imagepkg

import (
	"image"

	"github.com/disintegration/imaging"
)

// mild 3x3 sharpen, normalised by the kernel sum (24)
var sharpenKernel = [9]float64{
	-1, -1, -1,
	-1, 32, -1,
	-1, -1, -1,
}

func sharpen(img image.Image) *image.NRGBA {
	return imaging.Convolve3x3(img, sharpenKernel, &imaging.ConvolveOptions{Normalize: true})
}
