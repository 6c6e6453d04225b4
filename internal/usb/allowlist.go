package usb

// Vendor ids of the supported microphone families.
const (
	VendorKingston uint16 = 0x0951
	VendorHP       uint16 = 0x03F0
)

// allowedProducts is the fixed identity allow-list. Membership is exact;
// devices outside this table are never touched.
var allowedProducts = map[uint16][]uint16{
	VendorKingston: {0x171F},
	VendorHP:       {0x0F8B, 0x028C, 0x048C, 0x068C, 0x098C},
}

// Compatible reports whether id names a supported microphone.
func Compatible(id Identity) bool {
	for _, pid := range allowedProducts[id.Vendor] {
		if pid == id.Product {
			return true
		}
	}
	return false
}

// AllowList returns a copy of every supported identity pair, for display.
func AllowList() []Identity {
	var ids []Identity
	for _, vid := range []uint16{VendorKingston, VendorHP} {
		for _, pid := range allowedProducts[vid] {
			ids = append(ids, Identity{Vendor: vid, Product: pid})
		}
	}
	return ids
}
