//go:build ignore

// gen_fixtures creates small test images for the E2E smoke test.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	os.MkdirAll(filepath.Join(dir, "blocks"), 0o755)

	// Gradient (JPEG, 64x48)
	writeJPEG(filepath.Join(dir, "gradient.jpg"), gradient(64, 48))

	// Flat blocks (PNG, 8x8 each): mid-gray encodes to all zeros, white to a lone DC.
	writeImage(filepath.Join(dir, "blocks", "gray.png"), solid(8, 8, color.NRGBA{128, 128, 128, 255}))
	writeImage(filepath.Join(dir, "blocks", "white.png"), solid(8, 8, color.NRGBA{255, 255, 255, 255}))

	// Checkerboard (binary PGM, 16x16) exercises the highest frequencies.
	writePGM(filepath.Join(dir, "checker.pgm"), 16, 16, func(x, y int) uint8 {
		if (x+y)%2 == 0 {
			return 255
		}
		return 0
	})

	// Color ramp (16-bit binary PPM, 24x8)
	writePPM16(filepath.Join(dir, "ramp.ppm"), gradient(24, 8))

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 5 fixtures in %s\n", dir)
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func writeImage(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		panic(err)
	}
}

func writeJPEG(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 85}); err != nil {
		panic(err)
	}
}

func writePGM(path string, w, h int, at func(x, y int) uint8) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "P5\n# gen_fixtures\n%d %d\n255\n", w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			bw.WriteByte(at(x, y))
		}
	}
	if err := bw.Flush(); err != nil {
		panic(err)
	}
}

func writePPM16(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	b := img.Bounds()
	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "P6\n%d %d\n65535\n", b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			for _, v := range []uint8{c.R, c.G, c.B} {
				// 8-bit to 16-bit by byte replication.
				bw.WriteByte(v)
				bw.WriteByte(v)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		panic(err)
	}
}
