// Package noise generates the multi-channel simplex forcing field and injects
// it into the fluid velocity between solver steps.
package noise

import (
	"math"
	"math/rand"

	"github.com/sandydoo/flux-sub000/config"
	"github.com/sandydoo/flux-sub000/grid"
)

// blendThreshold is the phase value past which a channel starts cross-fading
// to a fresh phase, so the noise never visibly loops.
const blendThreshold = 1000.0

// Channel is the running phase state for one configured noise layer.
type Channel struct {
	ScaleX, ScaleY float32
	Offset1        float32
	Offset2        float32
	BlendFactor    float32
	Multiplier     float32

	settings config.NoiseChannelConfig
	ratio    grid.ScalingRatio
}

// NewChannel seeds a channel at a random phase so multiple runs with
// different seeds decorrelate immediately.
func NewChannel(settings config.NoiseChannelConfig, ratio grid.ScalingRatio, rng *rand.Rand) *Channel {
	return &Channel{
		ScaleX:      float32(settings.Scale) * ratio.X,
		ScaleY:      float32(settings.Scale) * ratio.Y,
		Offset1:     blendThreshold * rng.Float32(),
		Offset2:     0,
		BlendFactor: 0,
		Multiplier:  float32(settings.Multiplier),
		settings:    settings,
		ratio:       ratio,
	}
}

// Update swaps in new channel parameters without resetting the phase.
func (c *Channel) Update(settings config.NoiseChannelConfig, ratio grid.ScalingRatio) {
	c.settings = settings
	c.ratio = ratio
}

// Tick advances the channel phase by one sub-step. The spatial scale wobbles
// slowly with elapsed time; once the primary phase crosses the blend
// threshold the secondary phase and blend factor advance until the channel
// resets onto the fresh phase.
func (c *Channel) Tick(elapsedTime float32) {
	wobble := 1.0 + 0.15*float32(math.Sin(0.01*float64(elapsedTime)*2*math.Pi))
	c.ScaleX = float32(c.settings.Scale) * c.ratio.X * wobble
	c.ScaleY = float32(c.settings.Scale) * c.ratio.Y * wobble
	c.Multiplier = float32(c.settings.Multiplier)

	inc := float32(c.settings.OffsetIncrement)
	c.Offset1 += inc
	if c.Offset1 > blendThreshold {
		c.BlendFactor += inc
		c.Offset2 += inc
	}
	if c.BlendFactor > 1.0 {
		c.Offset1 = c.Offset2
		c.Offset2 = 0
		c.BlendFactor = 0
	}
}
