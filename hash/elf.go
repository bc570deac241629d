package hash

const elfHighNibble = 0xF000000000000000

// ELF64 is the classic ELF symbol hash widened to 64 bits. Each byte is
// shifted in four bits at a time and the top nibble is folded back into
// the low bits before being cleared.
func ELF64(b []byte) uint64 {
	var h uint64
	for _, c := range b {
		h = h<<4 + uint64(c)
		if g := h & elfHighNibble; g != 0 {
			h ^= g >> 56
			h &^= g
		}
	}
	return h
}
