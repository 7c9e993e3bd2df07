package main

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"
)

const chimeRate = beep.SampleRate(44100)

// chime plays a short tone when a path arrives. The zero value is silent.
type chime struct {
	enabled bool
}

// newChime opens the speaker. Audio is optional, so a failure only disables the chime.
func newChime(log *zap.Logger) *chime {
	if err := speaker.Init(chimeRate, chimeRate.N(time.Second/10)); err != nil {
		log.Warn("audio initialization failed", zap.Error(err))
		return &chime{}
	}
	return &chime{enabled: true}
}

// play sounds a high tone for a found path and a low one for the fallback segment.
func (c *chime) play(fallback bool) {
	if !c.enabled {
		return
	}
	freq := 880.0
	if fallback {
		freq = 220
	}
	sine, err := generators.SineTone(chimeRate, freq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(chimeRate.N(80*time.Millisecond), sine))
}

func (c *chime) close() {
	if c.enabled {
		speaker.Close()
	}
}
