// Package rgb encodes lighting modes into the fixed-stride color-command
// sequences the controller streams to the microphone. The controller treats
// its output as opaque bytes; everything about color semantics lives here.
package rgb

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// FrameStride is the byte length of one color-command entry: two 16-byte
// group commands, one for the mic capsule LEDs and one for the ring.
const FrameStride = 32

const groupSize = 16

// LED group selectors inside a group command.
const (
	groupMic  = 0x01
	groupRing = 0x02
)

// Color is an 8-bit RGB triple.
type Color struct {
	R, G, B uint8
}

var namedColors = map[string]Color{
	"red":     {0xFF, 0x00, 0x00},
	"green":   {0x00, 0xFF, 0x00},
	"blue":    {0x00, 0x00, 0xFF},
	"white":   {0xFF, 0xFF, 0xFF},
	"yellow":  {0xFF, 0xFF, 0x00},
	"cyan":    {0x00, 0xFF, 0xFF},
	"magenta": {0xFF, 0x00, 0xFF},
	"orange":  {0xFF, 0x5A, 0x00},
	"purple":  {0x80, 0x00, 0x80},
	"pink":    {0xFF, 0x14, 0x93},
}

// ParseColor accepts a color name or a hex triple ("ff0000", "#ff0000").
func ParseColor(s string) (Color, error) {
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return Color{}, errors.Errorf("invalid color %q: want a name or RRGGBB hex", s)
	}
	var c Color
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return Color{}, errors.Errorf("invalid color %q: want a name or RRGGBB hex", s)
	}
	return c, nil
}

// scale applies a 0-100 brightness percentage.
func (c Color) scale(brightness uint8) Color {
	if brightness > 100 {
		brightness = 100
	}
	b := uint16(brightness)
	return Color{
		R: uint8(uint16(c.R) * b / 100),
		G: uint8(uint16(c.G) * b / 100),
		B: uint8(uint16(c.B) * b / 100),
	}
}

// frame appends one command entry setting the mic group to mic and the ring
// group to ring.
func frame(seq []byte, mic, ring Color) []byte {
	entry := make([]byte, FrameStride)
	entry[0] = groupMic
	entry[1] = mic.R
	entry[2] = mic.G
	entry[3] = mic.B
	entry[groupSize] = groupRing
	entry[groupSize+1] = ring.R
	entry[groupSize+2] = ring.G
	entry[groupSize+3] = ring.B
	return append(seq, entry...)
}
