package facedetect

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ort "github.com/yalue/onnxruntime_go"

	"proctor/internal/proctoring/media"
)

func solidFrame(w, h int, v byte) media.Frame {
	pix := make([]byte, w*h*3)
	for i := range pix {
		pix[i] = v
	}
	return media.Frame{Width: w, Height: h, Pix: pix}
}

func TestPreprocessNormalisesAndResizes(t *testing.T) {
	out := Preprocess(solidFrame(64, 48, 255), 32, 24)
	require.Len(t, out, 3*32*24)
	for _, v := range out {
		assert.InDelta(t, (255.0-127.0)/128.0, v, 1e-6)
	}

	out = Preprocess(solidFrame(4, 4, 127), 8, 8)
	for _, v := range out {
		assert.InDelta(t, 0, v, 1e-6)
	}
}

func TestPreprocessIsPlanar(t *testing.T) {
	// A 1x1 red pixel becomes R=+1-ish, G and B at the negative extreme.
	frame := media.Frame{Width: 1, Height: 1, Pix: []byte{255, 0, 0}}
	out := Preprocess(frame, 2, 2)
	require.Len(t, out, 12)
	assert.InDelta(t, 128.0/128.0, out[0], 1e-6)
	assert.InDelta(t, -127.0/128.0, out[4], 1e-6)
	assert.InDelta(t, -127.0/128.0, out[8], 1e-6)
}

func TestDecodeFiltersByScore(t *testing.T) {
	scores := []float32{0.9, 0.1, 0.2, 0.8, 0.5, 0.5}
	boxes := []float32{
		0, 0, 0.1, 0.1,
		-0.1, 0.2, 0.5, 1.3,
		0.3, 0.3, 0.4, 0.4,
	}
	got := Decode(scores, boxes, 0.7)
	require.Len(t, got, 1)
	assert.Equal(t, Box{X1: 0, Y1: 0.2, X2: 0.5, Y2: 1, Score: 0.8}, got[0])
}

func TestIoU(t *testing.T) {
	a := Box{X1: 0, Y1: 0, X2: 0.5, Y2: 0.5}
	assert.InDelta(t, 1, IoU(a, a), 1e-6)
	assert.InDelta(t, 0, IoU(a, Box{X1: 0.6, Y1: 0.6, X2: 1, Y2: 1}), 1e-6)
	b := Box{X1: 0.25, Y1: 0, X2: 0.75, Y2: 0.5}
	assert.InDelta(t, 1.0/3.0, IoU(a, b), 1e-6)
	assert.Zero(t, IoU(Box{}, Box{}))
}

func TestNMSCollapsesOverlappingDetections(t *testing.T) {
	boxes := []Box{
		{X1: 0.10, Y1: 0.10, X2: 0.30, Y2: 0.40, Score: 0.80},
		{X1: 0.11, Y1: 0.10, X2: 0.31, Y2: 0.41, Score: 0.95},
		{X1: 0.60, Y1: 0.20, X2: 0.80, Y2: 0.50, Score: 0.75},
		{X1: 0.61, Y1: 0.21, X2: 0.81, Y2: 0.49, Score: 0.90},
	}
	kept := NMS(boxes, DefaultIoUThreshold)
	require.Len(t, kept, 2)
	assert.InDelta(t, 0.95, kept[0].Score, 1e-6)
	assert.InDelta(t, 0.90, kept[1].Score, 1e-6)
}

func TestBindTensors(t *testing.T) {
	d := &Detector{}
	err := d.bindTensors(
		[]ort.InputOutputInfo{{Name: "input", Dimensions: ort.NewShape(1, 3, 240, 320)}},
		[]ort.InputOutputInfo{
			{Name: "boxes", Dimensions: ort.NewShape(1, 4420, 4)},
			{Name: "scores", Dimensions: ort.NewShape(1, 4420, 2)},
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "input", d.inputName)
	assert.Equal(t, "scores", d.scoresName)
	assert.Equal(t, "boxes", d.boxesName)
	assert.Equal(t, int64(4420), d.anchors)

	err = (&Detector{}).bindTensors(
		[]ort.InputOutputInfo{{Name: "input"}},
		[]ort.InputOutputInfo{{Name: "embeddings", Dimensions: ort.NewShape(1, 128)}},
	)
	assert.Error(t, err)
}

func TestNewRejectsMissingModel(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.onnx"))
	assert.ErrorContains(t, err, "missing.onnx")
}

func TestDetectFacesRejectsBadInputBeforeInference(t *testing.T) {
	d := &Detector{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.DetectFaces(ctx, solidFrame(2, 2, 0))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = d.DetectFaces(context.Background(), media.Frame{Width: 2, Height: 2})
	assert.ErrorContains(t, err, "invalid frame")
}
