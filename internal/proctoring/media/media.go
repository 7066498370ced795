// Package media declares the capabilities the proctoring engine consumes.
// Concrete implementations live outside the core: a browser bridge in
// production, scripted traces in tests and replays.
package media

//go:generate mockgen -source=media.go -destination=mocks/mocks.go -package=mocks Provider,CameraStream,MicrophoneStream,ScreenShareStream,Signals,FaceDetector

import (
	"context"

	"proctor/internal/proctoring/models"
)

// Frame is a decoded video frame in packed 8-bit RGB.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// Valid reports whether Pix holds exactly Width*Height RGB pixels.
func (f Frame) Valid() bool {
	return f.Width > 0 && f.Height > 0 && len(f.Pix) == f.Width*f.Height*3
}

// Stream is an acquired device handle. Stop releases it and must be idempotent.
type Stream interface {
	Stop()
}

type CameraStream interface {
	Stream
	Frame(ctx context.Context) (Frame, error)
}

type MicrophoneStream interface {
	Stream
	// FrequencyData returns byte FFT magnitudes (0..255), lowest bin first.
	FrequencyData() []byte
}

type ScreenShareStream interface {
	Stream
	// Ended is closed when the user stops sharing.
	Ended() <-chan struct{}
}

// Provider acquires device streams. Errors wrap sentinel.ErrPermissionDenied
// or sentinel.ErrUnavailable.
type Provider interface {
	AcquireCamera(ctx context.Context) (CameraStream, error)
	AcquireMicrophone(ctx context.Context) (MicrophoneStream, error)
	AcquireScreenShare(ctx context.Context) (ScreenShareStream, error)
}

// Signals delivers browser state changes such as visibility and fullscreen.
type Signals interface {
	Subscribe(fn func(models.BrowserEvent)) (unsubscribe func())
	Fullscreen() bool
}

// FaceDetector counts faces in a frame. Implementations may be slow and must
// honour ctx cancellation.
type FaceDetector interface {
	DetectFaces(ctx context.Context, frame Frame) (int, error)
}

// FaceDetectorFunc adapts a function to FaceDetector.
type FaceDetectorFunc func(ctx context.Context, frame Frame) (int, error)

func (f FaceDetectorFunc) DetectFaces(ctx context.Context, frame Frame) (int, error) {
	return f(ctx, frame)
}

// NoSignals is used when the host exposes no browser signals.
type NoSignals struct{}

func (NoSignals) Subscribe(func(models.BrowserEvent)) func() { return func() {} }

func (NoSignals) Fullscreen() bool { return false }
