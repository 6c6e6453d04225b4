package usb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompatibleAllowList(t *testing.T) {
	for _, id := range AllowList() {
		assert.True(t, Compatible(id), "allow-listed %04x:%04x should match", id.Vendor, id.Product)
	}

	incompatible := []Identity{
		{Vendor: 0x0951, Product: 0x0001},
		{Vendor: 0x03F0, Product: 0x171F}, // right product, wrong vendor
		{Vendor: 0x1234, Product: 0x098C},
		{Vendor: 0x0000, Product: 0x0000},
	}
	for _, id := range incompatible {
		assert.False(t, Compatible(id), "%04x:%04x should not match", id.Vendor, id.Product)
	}
}

func TestProfileSelection(t *testing.T) {
	for _, id := range AllowList() {
		assert.Equal(t, "legacy", ProfileFor(id).Name,
			"every allow-listed product drives the legacy profile")
	}

	// The 2S profile exists but nothing in the allow-list reaches it.
	assert.Equal(t, "2s", ProfileFor(Identity{Vendor: VendorKingston, Product: product2S}).Name)
	assert.False(t, Compatible(Identity{Vendor: VendorKingston, Product: product2S}))
}

func TestLegacyHeaderLayout(t *testing.T) {
	h := ProfileLegacy.Header()

	assert.Len(t, h, PacketSize)
	assert.Equal(t, byte(0x04), h[0])
	assert.Equal(t, byte(0xF2), h[1])
	assert.Equal(t, byte(0x01), h[8])
	for i, b := range h {
		if i == 0 || i == 1 || i == 8 {
			continue
		}
		assert.Zerof(t, b, "byte %d must be zero padding", i)
	}
}

func Test2SHeaderOpcode(t *testing.T) {
	h := Profile2S.Header()
	assert.Equal(t, byte(0x44), h[0])
	assert.Equal(t, byte(0x01), h[8])
	assert.Equal(t, 108, Profile2S.LEDCount)
	assert.Equal(t, 6, Profile2S.SolidPacketCount)
}
