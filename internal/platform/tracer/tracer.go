// Package tracer is a small tracing abstraction so proctoring components can
// emit spans without importing OpenTelemetry directly.
//
// Implementations:
//   - NoopTracer for tests and when tracing is disabled
//   - OTelTracer backed by the global OpenTelemetry provider
package tracer

import (
	"context"
	"time"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span. A non-nil err marks it failed.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
//
//	ctx, span := t.Start(ctx, tracer.SpanFaceDetect, tracer.Int64(tracer.AttrFrameWidth, 640))
//	defer span.End(err)
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

const (
	SpanFaceDetect    = "proctoring.face.detect"
	SpanOnnxInference = "proctoring.face.onnx_inference"
	SpanSubmit        = "proctoring.submit"
)

const (
	AttrSessionID   = "session_id"
	AttrFrameWidth  = "frame.width"
	AttrFrameHeight = "frame.height"
	AttrFaceCount   = "face.count"
	AttrDegraded    = "face.degraded"
	AttrTerminated  = "submit.terminated"
)

const (
	EventDetectorFailed = "detector.failed"
)
