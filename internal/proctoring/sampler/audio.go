package sampler

import (
	"context"
	"log/slog"
	"time"

	"proctor/internal/proctoring/media"
	"proctor/internal/proctoring/metrics"
	"proctor/internal/proctoring/models"
)

const audioSamplerName = "audio"

// AudioSampler reports the mean energy of a fixed frequency band. The band
// excludes the lowest and highest bins, where keyboard clicks and hiss live.
type AudioSampler struct {
	mic      media.MicrophoneStream
	consume  func(models.AudioReading)
	interval time.Duration
	bandLow  int
	bandHigh int
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	loop     loop
}

func NewAudioSampler(mic media.MicrophoneStream, interval time.Duration, bandLow, bandHigh int, consume func(models.AudioReading), opts ...Option) *AudioSampler {
	o := applyOptions(opts)
	return &AudioSampler{
		mic:      mic,
		consume:  consume,
		interval: interval,
		bandLow:  bandLow,
		bandHigh: bandHigh,
		logger:   o.logger,
		metrics:  o.metrics,
		now:      o.now,
	}
}

func (s *AudioSampler) Start(ctx context.Context) bool {
	return s.loop.start(ctx, s.interval, s.tick, func(n int) {
		for i := 0; i < n; i++ {
			s.metrics.IncrementSkippedTick(audioSamplerName)
		}
	})
}

func (s *AudioSampler) Stop() {
	s.loop.stop()
}

func (s *AudioSampler) Running() bool {
	return s.loop.running()
}

func (s *AudioSampler) tick(ctx context.Context) {
	reading := s.Sample()
	if ctx.Err() != nil {
		return
	}
	s.consume(reading)
}

func (s *AudioSampler) Sample() models.AudioReading {
	bins := s.mic.FrequencyData()
	if len(bins) == 0 {
		s.logger.Debug("audio_spectrum_empty")
	}
	return models.AudioReading{
		Level: BandEnergy(bins, s.bandLow, s.bandHigh),
		At:    s.now(),
	}
}

// BandEnergy is the mean of bins[lo:hi], with the range clamped to the slice.
// An empty range has zero energy.
func BandEnergy(bins []byte, lo, hi int) float64 {
	lo = max(lo, 0)
	hi = min(hi, len(bins))
	if hi <= lo {
		return 0
	}
	var sum int
	for _, b := range bins[lo:hi] {
		sum += int(b)
	}
	return float64(sum) / float64(hi-lo)
}
