// Package hash maps byte buffers to the 64-bit keys used by the sorted
// hash map. All functions are pure: no state, no allocation, and an empty
// input never touches the buffer.
//
// The key functions feed ordered containers whose contents may outlive a
// process, so their outputs are fixed. City64 and Murmur64 reproduce the
// published reference implementations bit for bit.
package hash

import "github.com/cespare/xxhash/v2"

// Func computes a 64-bit key from a byte buffer.
type Func func(b []byte) uint64

// Default is the key function used when none is configured.
var Default Func = City64

var byName = map[string]Func{
	"elf64":    ELF64,
	"murmur64": Murmur64,
	"city64":   City64,
	"xxh64":    XXH64,
}

// ByName returns the key function registered under name.
func ByName(name string) (Func, bool) {
	f, ok := byName[name]
	return f, ok
}

// String hashes s with f.
func String(f Func, s string) uint64 {
	return f([]byte(s))
}

// XXH64 returns the xxHash64 of b with seed 0.
func XXH64(b []byte) uint64 {
	return xxhash.Sum64(b)
}
