package facedetect

import "sort"

// Box is a detection in normalised [0,1] corner coordinates.
type Box struct {
	X1, Y1, X2, Y2 float32
	Score          float32
}

func (b Box) area() float32 {
	w, h := b.X2-b.X1, b.Y2-b.Y1
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// IoU is the intersection-over-union of a and b.
func IoU(a, b Box) float32 {
	ix1, iy1 := max(a.X1, b.X1), max(a.Y1, b.Y1)
	ix2, iy2 := min(a.X2, b.X2), min(a.Y2, b.Y2)
	inter := Box{X1: ix1, Y1: iy1, X2: ix2, Y2: iy2}.area()
	union := a.area() + b.area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Decode reads UltraFace-style outputs: scores is [n,2] (background, face) and
// boxes is [n,4] corners. Anchors whose face score is below threshold are skipped.
func Decode(scores, boxes []float32, threshold float32) []Box {
	n := min(len(scores)/2, len(boxes)/4)
	var out []Box
	for i := 0; i < n; i++ {
		score := scores[i*2+1]
		if score < threshold {
			continue
		}
		out = append(out, Box{
			X1:    clamp01(boxes[i*4]),
			Y1:    clamp01(boxes[i*4+1]),
			X2:    clamp01(boxes[i*4+2]),
			Y2:    clamp01(boxes[i*4+3]),
			Score: score,
		})
	}
	return out
}

// NMS keeps the highest-scoring box of every cluster whose pairwise IoU
// exceeds iouThreshold. The input slice is reordered.
func NMS(boxes []Box, iouThreshold float32) []Box {
	sort.SliceStable(boxes, func(i, j int) bool { return boxes[i].Score > boxes[j].Score })
	suppressed := make([]bool, len(boxes))
	var kept []Box
	for i := range boxes {
		if suppressed[i] {
			continue
		}
		kept = append(kept, boxes[i])
		for j := i + 1; j < len(boxes); j++ {
			if !suppressed[j] && IoU(boxes[i], boxes[j]) > iouThreshold {
				suppressed[j] = true
			}
		}
	}
	return kept
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
