// Package replay drives a proctoring session from a scripted YAML trace. A
// Player stands in for the browser: it grants or denies devices, reports face
// counts and audio levels along a timeline, and fires browser events.
package replay

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"proctor/internal/proctoring/models"
	"proctor/pkg/validation"
)

// Access is how a device request is answered.
type Access string

const (
	AccessGranted     Access = "granted"
	AccessDenied      Access = "denied"
	AccessUnavailable Access = "unavailable"
)

type Trace struct {
	Session      SessionSpec         `yaml:"session"`
	Requirements models.Requirements `yaml:"requirements"`
	Devices      Devices             `yaml:"devices"`
	Duration     time.Duration       `yaml:"duration" validate:"gt=0"`
	Faces        []FacePoint         `yaml:"faces" validate:"dive"`
	Audio        []AudioPoint        `yaml:"audio" validate:"dive"`
	Events       []EventPoint        `yaml:"events" validate:"dive"`
}

type SessionSpec struct {
	SessionID     string `yaml:"session_id"`
	CandidateID   string `yaml:"candidate_id"`
	TestSessionID string `yaml:"test_session_id"`
	UserAgent     string `yaml:"user_agent"`
}

type Devices struct {
	Camera      Access `yaml:"camera" validate:"omitempty,oneof=granted denied unavailable"`
	Microphone  Access `yaml:"microphone" validate:"omitempty,oneof=granted denied unavailable"`
	ScreenShare Access `yaml:"screen_share" validate:"omitempty,oneof=granted denied unavailable"`
	Fullscreen  bool   `yaml:"fullscreen"`
}

// FacePoint sets the face count from At onwards. A non-empty Error makes the
// detector fail instead.
type FacePoint struct {
	At    time.Duration `yaml:"at" validate:"gte=0"`
	Count int           `yaml:"count" validate:"gte=0"`
	Error string        `yaml:"error"`
}

// AudioPoint sets the mid-band level (0..255) from At onwards.
type AudioPoint struct {
	At    time.Duration `yaml:"at" validate:"gte=0"`
	Level int           `yaml:"level" validate:"gte=0,lte=255"`
}

type EventPoint struct {
	At     time.Duration           `yaml:"at" validate:"gte=0"`
	Kind   models.BrowserEventKind `yaml:"kind" validate:"required,oneof=visibility fullscreen screen_share camera microphone"`
	Active bool                    `yaml:"active"`
}

func Load(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses, defaults, validates, and time-sorts a trace.
func Decode(r io.Reader) (*Trace, error) {
	var t Trace
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	t.applyDefaults()
	if err := validation.Validate(t); err != nil {
		return nil, err
	}
	sort.SliceStable(t.Faces, func(i, j int) bool { return t.Faces[i].At < t.Faces[j].At })
	sort.SliceStable(t.Audio, func(i, j int) bool { return t.Audio[i].At < t.Audio[j].At })
	sort.SliceStable(t.Events, func(i, j int) bool { return t.Events[i].At < t.Events[j].At })
	return &t, nil
}

func (t *Trace) applyDefaults() {
	for _, a := range []*Access{&t.Devices.Camera, &t.Devices.Microphone, &t.Devices.ScreenShare} {
		if *a == "" {
			*a = AccessGranted
		}
	}
}

func (t *Trace) SessionInfo() models.SessionInfo {
	return models.SessionInfo{
		SessionID:     t.Session.SessionID,
		CandidateID:   t.Session.CandidateID,
		TestSessionID: t.Session.TestSessionID,
	}
}

// faceAt returns the last face point at or before elapsed. With no point yet a
// single face is assumed.
func (t *Trace) faceAt(elapsed time.Duration) FacePoint {
	p := FacePoint{Count: 1}
	for _, f := range t.Faces {
		if f.At > elapsed {
			break
		}
		p = f
	}
	return p
}

func (t *Trace) audioAt(elapsed time.Duration) int {
	level := 0
	for _, a := range t.Audio {
		if a.At > elapsed {
			break
		}
		level = a.Level
	}
	return level
}
