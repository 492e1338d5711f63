package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"openworld/internal/noise"
	"openworld/internal/util"
)

// textureParams shapes the noise used for textures: features up to 16
// pixels with geometric falloff
func textureParams(seed int64) noise.Params {
	return noise.Params{
		LargestFeature: 16,
		Persistence:    0.6,
		Seed:           seed,
		Amplitude:      noise.AmplitudeGeometric,
		Basis:          noise.BasisSimplex,
	}
}

// tileable samples f so the result wraps seamlessly over a w x h image by
// blending the four periodic copies of each point
func tileable(f *noise.Field, x, y, w, h float64) float64 {
	fx := x / w
	fy := y / h
	a := f.Sample(x, y)
	b := f.Sample(x-w, y)
	c := f.Sample(x, y-h)
	d := f.Sample(x-w, y-h)
	return util.Lerp(util.Lerp(a, b, fx), util.Lerp(c, d, fx), fy)
}

// unit maps a sample of f into [0, 1]
func unit(f *noise.Field, v float64) float64 {
	return util.Clamp(v/f.Bound()*0.5+0.5, 0, 1)
}

func channel(v float64) uint8 {
	return uint8(util.Clamp(v, 0, 1)*255 + 0.5)
}

// grassTexture paints a tileable green ground texture
func grassTexture(size int, seed int64) (*image.RGBA, error) {
	coarse, err := noise.New(textureParams(seed))
	if err != nil {
		return nil, err
	}
	fine, err := noise.New(textureParams(seed + 1))
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	s := float64(size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx, fy := float64(x), float64(y)
			shade := 0.7 + 0.45*unit(coarse, tileable(coarse, fx, fy, s, s))
			blade := 0.85 + 0.3*unit(fine, tileable(fine, fx*4, fy*4, s*4, s*4))
			light := shade * blade
			img.SetRGBA(x, y, color.RGBA{
				R: channel(0.22 * light),
				G: channel(0.48 * light),
				B: channel(0.12 * light),
				A: 255,
			})
		}
	}
	return img, nil
}

// dudvTexture paints a tileable two-channel displacement map centred on 0.5
func dudvTexture(size int, seed int64) (*image.RGBA, error) {
	du, err := noise.New(textureParams(seed))
	if err != nil {
		return nil, err
	}
	dv, err := noise.New(textureParams(seed + 7))
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	s := float64(size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx, fy := float64(x), float64(y)
			img.SetRGBA(x, y, color.RGBA{
				R: channel(unit(du, tileable(du, fx, fy, s, s))),
				G: channel(unit(dv, tileable(dv, fx, fy, s, s))),
				B: 0,
				A: 255,
			})
		}
	}
	return img, nil
}

func writePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create %s: %v", filepath.Dir(path), err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %v", path, err)
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("encode %s: %v", path, err)
	}
	return file.Close()
}
