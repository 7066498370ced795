// Package facedetect counts faces with an UltraFace-style ONNX model
// (input [1,3,H,W], outputs scores [1,N,2] and boxes [1,N,4]).
package facedetect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"proctor/internal/platform/tracer"
	"proctor/internal/proctoring/media"
)

const (
	DefaultInputWidth     = 320
	DefaultInputHeight    = 240
	DefaultScoreThreshold = 0.7
	DefaultIoUThreshold   = 0.3
)

// The ONNX Runtime environment is process-wide and initialised once.
var ortEnv struct {
	once sync.Once
	err  error
}

func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

type Detector struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	scoresName string
	boxesName  string
	anchors    int64

	libPath        string
	width, height  int
	scoreThreshold float32
	iouThreshold   float32
	tracer         tracer.Tracer

	// ORT sessions tolerate concurrent Run, but the sampler never overlaps
	// calls, so the mutex only guards Close.
	mu     sync.RWMutex
	closed bool
}

type Option func(*Detector)

// WithLibraryPath points at libonnxruntime; empty uses the platform default.
func WithLibraryPath(path string) Option {
	return func(d *Detector) {
		d.libPath = path
	}
}

func WithInputSize(width, height int) Option {
	return func(d *Detector) {
		if width > 0 && height > 0 {
			d.width, d.height = width, height
		}
	}
}

func WithScoreThreshold(v float32) Option {
	return func(d *Detector) {
		if v > 0 && v < 1 {
			d.scoreThreshold = v
		}
	}
}

func WithIoUThreshold(v float32) Option {
	return func(d *Detector) {
		if v > 0 && v < 1 {
			d.iouThreshold = v
		}
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(d *Detector) {
		if t != nil {
			d.tracer = t
		}
	}
}

func New(modelPath string, opts ...Option) (*Detector, error) {
	d := &Detector{
		width:          DefaultInputWidth,
		height:         DefaultInputHeight,
		scoreThreshold: DefaultScoreThreshold,
		iouThreshold:   DefaultIoUThreshold,
		tracer:         tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("facedetect: model %q: %w", modelPath, err)
	}
	if err := initORT(d.libPath); err != nil {
		return nil, fmt.Errorf("facedetect: initialize onnx runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("facedetect: read model info: %w", err)
	}
	if err := d.bindTensors(inputs, outputs); err != nil {
		return nil, err
	}

	sessOpts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("facedetect: session options: %w", err)
	}
	defer sessOpts.Destroy()
	if err := sessOpts.SetIntraOpNumThreads(2); err != nil {
		return nil, fmt.Errorf("facedetect: session options: %w", err)
	}

	d.session, err = ort.NewDynamicAdvancedSession(modelPath,
		[]string{d.inputName}, []string{d.scoresName, d.boxesName}, sessOpts)
	if err != nil {
		return nil, fmt.Errorf("facedetect: create session: %w", err)
	}
	return d, nil
}

// bindTensors picks the single image input and tells the two outputs apart by
// their last dimension (2 for scores, 4 for boxes).
func (d *Detector) bindTensors(inputs, outputs []ort.InputOutputInfo) error {
	if len(inputs) != 1 {
		return fmt.Errorf("facedetect: expected one input tensor, got %d", len(inputs))
	}
	d.inputName = inputs[0].Name

	for _, out := range outputs {
		dims := out.Dimensions
		if len(dims) != 3 {
			continue
		}
		switch dims[2] {
		case 2:
			d.scoresName, d.anchors = out.Name, dims[1]
		case 4:
			d.boxesName = out.Name
		}
	}
	if d.scoresName == "" || d.boxesName == "" {
		return errors.New("facedetect: model must expose [1,N,2] scores and [1,N,4] boxes outputs")
	}
	return nil
}

// DetectFaces implements media.FaceDetector.
func (d *Detector) DetectFaces(ctx context.Context, frame media.Frame) (count int, err error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !frame.Valid() {
		return 0, fmt.Errorf("facedetect: invalid frame %dx%d", frame.Width, frame.Height)
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return 0, errors.New("facedetect: detector closed")
	}

	_, span := d.tracer.Start(ctx, tracer.SpanOnnxInference,
		tracer.Int64(tracer.AttrFrameWidth, int64(frame.Width)),
		tracer.Int64(tracer.AttrFrameHeight, int64(frame.Height)),
	)
	defer func() {
		span.SetAttributes(tracer.Int64(tracer.AttrFaceCount, int64(count)))
		span.End(err)
	}()

	scores, boxes, err := d.infer(Preprocess(frame, d.width, d.height))
	if err != nil {
		return 0, err
	}
	return len(NMS(Decode(scores, boxes, d.scoreThreshold), d.iouThreshold)), nil
}

func (d *Detector) infer(pixels []float32) ([]float32, []float32, error) {
	input, err := ort.NewTensor(ort.NewShape(1, 3, int64(d.height), int64(d.width)), pixels)
	if err != nil {
		return nil, nil, fmt.Errorf("facedetect: input tensor: %w", err)
	}
	defer input.Destroy()

	scores, err := ort.NewEmptyTensor[float32](ort.NewShape(1, d.anchors, 2))
	if err != nil {
		return nil, nil, fmt.Errorf("facedetect: scores tensor: %w", err)
	}
	defer scores.Destroy()

	boxes, err := ort.NewEmptyTensor[float32](ort.NewShape(1, d.anchors, 4))
	if err != nil {
		return nil, nil, fmt.Errorf("facedetect: boxes tensor: %w", err)
	}
	defer boxes.Destroy()

	if err := d.session.Run([]ort.Value{input}, []ort.Value{scores, boxes}); err != nil {
		return nil, nil, fmt.Errorf("facedetect: inference: %w", err)
	}
	return append([]float32(nil), scores.GetData()...), append([]float32(nil), boxes.GetData()...), nil
}

func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.session.Destroy()
}

var _ media.FaceDetector = (*Detector)(nil)
