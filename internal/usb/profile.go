package usb

// PacketSize is the fixed length of every control-transfer packet the
// firmware accepts, header and data alike.
const PacketSize = 64

// Profile describes one firmware protocol variant. A profile is selected
// once at discovery time from the matched product id; the transmission path
// stays profile-agnostic and only consumes the header template and frame
// stride.
type Profile struct {
	Name string

	// Header template fields. Byte 0 carries the opcode, byte 1 the
	// display command, byte 8 the packet-count code; the rest of the
	// packet is zero.
	HeaderOpcode    byte
	DisplayCode     byte
	PacketCountCode byte

	// FrameStride is the byte length of one color-command entry in the
	// externally supplied sequence.
	FrameStride int

	// Quadcast 2S firmware facts. Unused by the legacy profile.
	LEDCount         int
	SolidPacketCount int
}

var (
	// ProfileLegacy drives the original Quadcast S and the HP re-issues,
	// including DuoCast.
	ProfileLegacy = Profile{
		Name:            "legacy",
		HeaderOpcode:    0x04,
		DisplayCode:     0xF2,
		PacketCountCode: 0x01,
		FrameStride:     32,
	}

	// Profile2S matches the Quadcast 2S firmware. Its constants are known
	// but no allow-listed product selects it yet, so it is never chosen by
	// ProfileFor.
	Profile2S = Profile{
		Name:             "2s",
		HeaderOpcode:     0x44,
		DisplayCode:      0xF2,
		PacketCountCode:  0x01,
		FrameStride:      32,
		LEDCount:         108,
		SolidPacketCount: 6,
	}
)

// product2S is the Quadcast 2S product id, kept out of the allow-list until
// its transmission path is confirmed.
const product2S uint16 = 0x02B5

// ProfileFor returns the protocol profile for a matched identity.
func ProfileFor(id Identity) Profile {
	if id.Product == product2S {
		return Profile2S
	}
	return ProfileLegacy
}

// Header builds the 64-byte header packet announcing one data packet.
func (p Profile) Header() []byte {
	h := make([]byte, PacketSize)
	h[0] = p.HeaderOpcode
	h[1] = p.DisplayCode
	h[8] = p.PacketCountCode
	return h
}
