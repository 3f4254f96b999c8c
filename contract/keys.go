package contract

import "okinoko_gallery/sdk"

// Keys are a single prefix byte followed by little endian ids and raw address bytes.
// Each contract owns its own prefix table, the host already namespaces per contract.

// packU64LEInline sprinkles a uint64 into dst in little-endian order so our keys stay compact.
func packU64LEInline(x uint64, dst []byte) {
	dst[0] = byte(x)
	dst[1] = byte(x >> 8)
	dst[2] = byte(x >> 16)
	dst[3] = byte(x >> 24)
	dst[4] = byte(x >> 32)
	dst[5] = byte(x >> 40)
	dst[6] = byte(x >> 48)
	dst[7] = byte(x >> 56)
}

// packU64LE appends the encoded number to dst and returns the new slice.
func packU64LE(x uint64, dst []byte) []byte {
	return append(dst,
		byte(x),
		byte(x>>8),
		byte(x>>16),
		byte(x>>24),
		byte(x>>32),
		byte(x>>40),
		byte(x>>48),
		byte(x>>56),
	)
}

// Key is the bare prefix key, used for singletons like config slots and counters.
func Key(prefix byte) string {
	return string([]byte{prefix})
}

// KeyU64 builds prefix|id.
// Example payload: contract.KeyU64(0x01, 7)
func KeyU64(prefix byte, id uint64) string {
	var buf [9]byte
	buf[0] = prefix
	packU64LEInline(id, buf[1:])
	return string(buf[:])
}

// KeyU64U64 builds prefix|a|b, e.g. gallery then submission.
func KeyU64U64(prefix byte, a, b uint64) string {
	var buf [17]byte
	buf[0] = prefix
	packU64LEInline(a, buf[1:9])
	packU64LEInline(b, buf[9:])
	return string(buf[:])
}

// KeyU64U64U64 builds prefix|a|b|c, used for casts (gallery, nft, cast).
func KeyU64U64U64(prefix byte, a, b, c uint64) string {
	buf := make([]byte, 0, 25)
	buf = append(buf, prefix)
	buf = packU64LE(a, buf)
	buf = packU64LE(b, buf)
	buf = packU64LE(c, buf)
	return string(buf)
}

// KeyAddr builds prefix|address.
func KeyAddr(prefix byte, addr sdk.Address) string {
	buf := make([]byte, 0, 1+len(addr))
	buf = append(buf, prefix)
	buf = append(buf, addr...)
	return string(buf)
}

// KeyU64Addr builds prefix|id|address, e.g. a ticket of a user for one gallery.
func KeyU64Addr(prefix byte, id uint64, addr sdk.Address) string {
	buf := make([]byte, 0, 9+len(addr))
	buf = append(buf, prefix)
	buf = packU64LE(id, buf)
	buf = append(buf, addr...)
	return string(buf)
}

// KeyAddrU64 builds prefix|address|0x00|id, the 0x00 keeps variable length addresses apart.
func KeyAddrU64(prefix byte, addr sdk.Address, id uint64) string {
	buf := make([]byte, 0, 10+len(addr))
	buf = append(buf, prefix)
	buf = append(buf, addr...)
	buf = append(buf, 0x00)
	buf = packU64LE(id, buf)
	return string(buf)
}

// KeyAddrAddr builds prefix|a|0x00|b, used for allowances and operator approvals.
func KeyAddrAddr(prefix byte, a, b sdk.Address) string {
	buf := make([]byte, 0, 2+len(a)+len(b))
	buf = append(buf, prefix)
	buf = append(buf, a...)
	buf = append(buf, 0x00)
	buf = append(buf, b...)
	return string(buf)
}
