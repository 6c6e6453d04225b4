package rgb

import (
	"math"

	"github.com/pkg/errors"
)

// Mode names a lighting animation.
type Mode string

const (
	ModeSolid Mode = "solid"
	ModeBlink Mode = "blink"
	ModeCycle Mode = "cycle"
	ModeWave  Mode = "wave"
	ModePulse Mode = "pulse"
)

// Frame counts per animation. At the 20ms device cadence a blink phase
// lasts half a second and a full cycle/wave revolution 3.6 seconds.
const (
	blinkPhaseFrames = 25
	cycleFrames      = 180
	pulseFrames      = 100
)

// Modes lists every supported mode name.
func Modes() []string {
	return []string{
		string(ModeSolid), string(ModeBlink), string(ModeCycle),
		string(ModeWave), string(ModePulse),
	}
}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSolid, ModeBlink, ModeCycle, ModeWave, ModePulse:
		return Mode(s), nil
	}
	return "", errors.Errorf("unknown mode %q", s)
}

// Encode builds the command sequence for one animation pass. The result's
// length is always a positive multiple of FrameStride; the controller
// replays it indefinitely.
func Encode(mode Mode, c Color, brightness uint8) ([]byte, error) {
	c = c.scale(brightness)
	switch mode {
	case ModeSolid:
		return frame(nil, c, c), nil
	case ModeBlink:
		return encodeBlink(c), nil
	case ModeCycle:
		return encodeCycle(brightness), nil
	case ModeWave:
		return encodeWave(brightness), nil
	case ModePulse:
		return encodePulse(c), nil
	}
	return nil, errors.Errorf("unknown mode %q", mode)
}

func encodeBlink(c Color) []byte {
	var seq []byte
	off := Color{}
	for i := 0; i < blinkPhaseFrames; i++ {
		seq = frame(seq, c, c)
	}
	for i := 0; i < blinkPhaseFrames; i++ {
		seq = frame(seq, off, off)
	}
	return seq
}

func encodeCycle(brightness uint8) []byte {
	var seq []byte
	for i := 0; i < cycleFrames; i++ {
		c := hueColor(float64(i) / cycleFrames).scale(brightness)
		seq = frame(seq, c, c)
	}
	return seq
}

// encodeWave rotates the same hue wheel but keeps the ring half a
// revolution ahead of the capsule.
func encodeWave(brightness uint8) []byte {
	var seq []byte
	for i := 0; i < cycleFrames; i++ {
		phase := float64(i) / cycleFrames
		mic := hueColor(phase).scale(brightness)
		ring := hueColor(math.Mod(phase+0.5, 1)).scale(brightness)
		seq = frame(seq, mic, ring)
	}
	return seq
}

// encodePulse ramps the chosen color up and back down.
func encodePulse(c Color) []byte {
	var seq []byte
	for i := 0; i < pulseFrames; i++ {
		level := float64(i) / (pulseFrames - 1)
		if i >= pulseFrames/2 {
			level = float64(pulseFrames-1-i) / (pulseFrames - 1)
		}
		level *= 2
		if level > 1 {
			level = 1
		}
		dim := Color{
			R: uint8(float64(c.R) * level),
			G: uint8(float64(c.G) * level),
			B: uint8(float64(c.B) * level),
		}
		seq = frame(seq, dim, dim)
	}
	return seq
}

// hueColor maps a position on the hue wheel (0..1) to a fully saturated
// color.
func hueColor(h float64) Color {
	h = math.Mod(h, 1) * 6
	sector := int(h)
	frac := h - float64(sector)
	up := uint8(255 * frac)
	down := uint8(255 * (1 - frac))
	switch sector {
	case 0:
		return Color{255, up, 0}
	case 1:
		return Color{down, 255, 0}
	case 2:
		return Color{0, 255, up}
	case 3:
		return Color{0, down, 255}
	case 4:
		return Color{up, 0, 255}
	default:
		return Color{255, 0, down}
	}
}
