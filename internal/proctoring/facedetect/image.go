package facedetect

import "proctor/internal/proctoring/media"

const (
	pixelMean  = 127.0
	pixelScale = 128.0
)

// Preprocess resizes frame to width x height with bilinear sampling and returns
// a planar CHW tensor normalised to (p-127)/128.
func Preprocess(frame media.Frame, width, height int) []float32 {
	plane := width * height
	out := make([]float32, 3*plane)
	xScale := float64(frame.Width) / float64(width)
	yScale := float64(frame.Height) / float64(height)

	for y := 0; y < height; y++ {
		sy := (float64(y)+0.5)*yScale - 0.5
		y0, y1, fy := neighbours(sy, frame.Height)
		for x := 0; x < width; x++ {
			sx := (float64(x)+0.5)*xScale - 0.5
			x0, x1, fx := neighbours(sx, frame.Width)
			for c := 0; c < 3; c++ {
				top := lerp(pixel(frame, x0, y0, c), pixel(frame, x1, y0, c), fx)
				bottom := lerp(pixel(frame, x0, y1, c), pixel(frame, x1, y1, c), fx)
				v := lerp(top, bottom, fy)
				out[c*plane+y*width+x] = float32((v - pixelMean) / pixelScale)
			}
		}
	}
	return out
}

func neighbours(pos float64, size int) (lo, hi int, frac float64) {
	if pos < 0 {
		pos = 0
	}
	lo = int(pos)
	if lo >= size-1 {
		return size - 1, size - 1, 0
	}
	return lo, lo + 1, pos - float64(lo)
}

func pixel(frame media.Frame, x, y, c int) float64 {
	return float64(frame.Pix[(y*frame.Width+x)*3+c])
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
