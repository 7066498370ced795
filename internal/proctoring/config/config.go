// Package config holds the detection and escalation thresholds of the
// proctoring engine. Values are plain data; loading them from the
// environment is the agent's job.
package config

import (
	"fmt"
	"time"

	dErrors "proctor/pkg/domain-errors"
)

const (
	DefaultFacePollInterval           = 500 * time.Millisecond
	DefaultAudioPollInterval          = 200 * time.Millisecond
	DefaultVoiceThreshold             = 70.0
	DefaultVoiceMinDuration           = 1000 * time.Millisecond
	DefaultThrottleWindow             = 3000 * time.Millisecond
	DefaultTabSwitchStrikes           = 2
	DefaultHighSeverityViolationLimit = 5
	DefaultAudioBandLow               = 10
	DefaultAudioBandHigh              = 50
	DefaultRecentViolationsKept       = 3
)

type Config struct {
	FacePollInterval  time.Duration
	AudioPollInterval time.Duration

	// VoiceThreshold is compared strictly: a level equal to it is silence.
	VoiceThreshold   float64
	VoiceMinDuration time.Duration

	// ThrottleWindow is the minimum spacing between two emitted events of one type.
	ThrottleWindow time.Duration

	TabSwitchStrikes           int
	HighSeverityViolationLimit int

	// AudioBandLow and AudioBandHigh select the half-open bin range [low, high).
	AudioBandLow  int
	AudioBandHigh int

	RecentViolationsKept int
}

func DefaultConfig() Config {
	return Config{
		FacePollInterval:           DefaultFacePollInterval,
		AudioPollInterval:          DefaultAudioPollInterval,
		VoiceThreshold:             DefaultVoiceThreshold,
		VoiceMinDuration:           DefaultVoiceMinDuration,
		ThrottleWindow:             DefaultThrottleWindow,
		TabSwitchStrikes:           DefaultTabSwitchStrikes,
		HighSeverityViolationLimit: DefaultHighSeverityViolationLimit,
		AudioBandLow:               DefaultAudioBandLow,
		AudioBandHigh:              DefaultAudioBandHigh,
		RecentViolationsKept:       DefaultRecentViolationsKept,
	}
}

func (c Config) Validate() error {
	switch {
	case c.FacePollInterval <= 0:
		return invalid("face poll interval must be positive")
	case c.AudioPollInterval <= 0:
		return invalid("audio poll interval must be positive")
	case c.VoiceThreshold < 0 || c.VoiceThreshold > 255:
		return invalid(fmt.Sprintf("voice threshold %.1f outside 0..255", c.VoiceThreshold))
	case c.VoiceMinDuration < 0:
		return invalid("voice minimum duration cannot be negative")
	case c.ThrottleWindow < 0:
		return invalid("throttle window cannot be negative")
	case c.TabSwitchStrikes < 1:
		return invalid("tab switch strikes must be at least 1")
	case c.HighSeverityViolationLimit < 1:
		return invalid("violation limit must be at least 1")
	case c.AudioBandLow < 0 || c.AudioBandHigh <= c.AudioBandLow:
		return invalid(fmt.Sprintf("audio band [%d,%d) is empty or inverted", c.AudioBandLow, c.AudioBandHigh))
	case c.RecentViolationsKept < 0:
		return invalid("recent violations kept cannot be negative")
	}
	return nil
}

func invalid(msg string) error {
	return dErrors.New(dErrors.CodeValidation, msg)
}
