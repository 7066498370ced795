package models

import "time"

// FaceReading is one face-presence sample. Degraded marks a sample where the
// detector failed and the optimistic single-face value was substituted.
type FaceReading struct {
	FaceCount int
	At        time.Time
	Degraded  bool
}

// AudioReading carries mid-band energy in 0..255 byte-spectrum units.
type AudioReading struct {
	Level float64
	At    time.Time
}

type BrowserEventKind string

const (
	BrowserEventVisibility  BrowserEventKind = "visibility"
	BrowserEventFullscreen  BrowserEventKind = "fullscreen"
	BrowserEventScreenShare BrowserEventKind = "screen_share"
	BrowserEventCamera      BrowserEventKind = "camera"
	BrowserEventMicrophone  BrowserEventKind = "microphone"
)

func (k BrowserEventKind) IsValid() bool {
	switch k {
	case BrowserEventVisibility, BrowserEventFullscreen, BrowserEventScreenShare,
		BrowserEventCamera, BrowserEventMicrophone:
		return true
	}
	return false
}

// BrowserEvent reports a state change of a browser or device signal.
// Active=false means hidden, exited, ended, or switched off.
type BrowserEvent struct {
	Kind   BrowserEventKind
	Active bool
	At     time.Time
}

// Requirements enumerates which checks are mandatory for a session.
type Requirements struct {
	RequireCamera      bool `json:"requireCamera" yaml:"require_camera"`
	DetectFaces        bool `json:"detectFaces" yaml:"detect_faces"`
	RequireFullScreen  bool `json:"requireFullScreen" yaml:"require_full_screen"`
	MonitorAudio       bool `json:"monitorAudio" yaml:"monitor_audio"`
	RequireScreenShare bool `json:"requireScreenShare" yaml:"require_screen_share"`
}

// NeedsCamera is true when either the camera itself or face detection is required.
func (r Requirements) NeedsCamera() bool {
	return r.RequireCamera || r.DetectFaces
}

// Capability names a media or browser capability a session may require.
type Capability string

const (
	CapabilityCamera      Capability = "camera"
	CapabilityMicrophone  Capability = "microphone"
	CapabilityScreenShare Capability = "screen_share"
	CapabilityFullscreen  Capability = "fullscreen"
)
