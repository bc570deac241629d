package hash

import "encoding/binary"

const (
	murmurM = 0xc6a4a7935bd1e995
	murmurR = 47
)

// Murmur64 is MurmurHash64A with seed 0.
func Murmur64(b []byte) uint64 {
	return Murmur64Seed(b, 0)
}

// Murmur64Seed is MurmurHash64A (Austin Appleby) for 64-bit platforms.
// Blocks are read little-endian.
func Murmur64Seed(b []byte, seed uint64) uint64 {
	h := seed ^ uint64(len(b))*murmurM

	for len(b) >= 8 {
		k := binary.LittleEndian.Uint64(b)
		k *= murmurM
		k ^= k >> murmurR
		k *= murmurM

		h ^= k
		h *= murmurM
		b = b[8:]
	}

	switch len(b) {
	case 7:
		h ^= uint64(b[6]) << 48
		fallthrough
	case 6:
		h ^= uint64(b[5]) << 40
		fallthrough
	case 5:
		h ^= uint64(b[4]) << 32
		fallthrough
	case 4:
		h ^= uint64(b[3]) << 24
		fallthrough
	case 3:
		h ^= uint64(b[2]) << 16
		fallthrough
	case 2:
		h ^= uint64(b[1]) << 8
		fallthrough
	case 1:
		h ^= uint64(b[0])
		h *= murmurM
	}

	h ^= h >> murmurR
	h *= murmurM
	h ^= h >> murmurR
	return h
}
