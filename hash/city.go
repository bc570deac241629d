package hash

import (
	"encoding/binary"
	"math/bits"
)

// CityHash v1.1 primes.
const (
	k0 uint64 = 0xc3a5c85c97cb3127
	k1 uint64 = 0xb492b66fbe98f273
	k2 uint64 = 0x9ae16a3b2f90404f

	kMul uint64 = 0x9ddfea08eb382d69
)

func fetch64(b []byte, i int) uint64 { return binary.LittleEndian.Uint64(b[i:]) }
func fetch32(b []byte, i int) uint64 { return uint64(binary.LittleEndian.Uint32(b[i:])) }

func rotr(v uint64, shift int) uint64 { return bits.RotateLeft64(v, -shift) }

func shiftMix(v uint64) uint64 { return v ^ (v >> 47) }

func hashLen16Mul(u, v, mul uint64) uint64 {
	a := (u ^ v) * mul
	a ^= a >> 47
	b := (v ^ a) * mul
	b ^= b >> 47
	return b * mul
}

func hashLen16(u, v uint64) uint64 { return hashLen16Mul(u, v, kMul) }

func hashLen0to16(b []byte) uint64 {
	n := len(b)
	switch {
	case n >= 8:
		mul := k2 + uint64(n)*2
		a := fetch64(b, 0) + k2
		c := fetch64(b, n-8)
		d := rotr(c, 37)*mul + a
		e := (rotr(a, 25) + c) * mul
		return hashLen16Mul(d, e, mul)
	case n >= 4:
		mul := k2 + uint64(n)*2
		a := fetch32(b, 0)
		return hashLen16Mul(uint64(n)+a<<3, fetch32(b, n-4), mul)
	case n > 0:
		y := uint32(b[0]) + uint32(b[n>>1])<<8
		z := uint32(n) + uint32(b[n-1])<<2
		return shiftMix(uint64(y)*k2^uint64(z)*k0) * k2
	}
	return k2
}

func hashLen17to32(b []byte) uint64 {
	n := len(b)
	mul := k2 + uint64(n)*2
	a := fetch64(b, 0) * k1
	c := fetch64(b, 8)
	d := fetch64(b, n-8) * mul
	e := fetch64(b, n-16) * k2
	return hashLen16Mul(rotr(a+c, 43)+rotr(d, 30)+e, a+rotr(c+k2, 18)+d, mul)
}

func hashLen33to64(b []byte) uint64 {
	n := len(b)
	mul := k2 + uint64(n)*2
	a := fetch64(b, 0) * k2
	c := fetch64(b, 8)
	d := fetch64(b, n-24)
	e := fetch64(b, n-32)
	f := fetch64(b, 16) * k2
	g := fetch64(b, 24) * 9
	h := fetch64(b, n-8)
	i := fetch64(b, n-16) * mul

	u := rotr(a+h, 43) + (rotr(c, 30)+d)*9
	v := ((a + h) ^ e) + g + 1
	w := bits.ReverseBytes64((u+v)*mul) + i
	x := rotr(f+g, 42) + d
	y := (bits.ReverseBytes64((v+w)*mul) + h) * mul
	z := f + g + d
	a = bits.ReverseBytes64((x+z)*mul+y) + c
	c = shiftMix((z+a)*mul+e+i) * mul
	return c + x
}

// weakHashLen32 mixes the 32 bytes at b[i:] with seeds a and c.
func weakHashLen32(b []byte, i int, a, c uint64) (uint64, uint64) {
	w, x, y, z := fetch64(b, i), fetch64(b, i+8), fetch64(b, i+16), fetch64(b, i+24)
	a += w
	c = rotr(c+a+z, 21)
	t := a
	a += x
	a += y
	c += rotr(a, 44)
	return a + z, c + t
}

// City64 is CityHash64 v1.1.
func City64(b []byte) uint64 {
	n := len(b)
	switch {
	case n <= 16:
		return hashLen0to16(b)
	case n <= 32:
		return hashLen17to32(b)
	case n <= 64:
		return hashLen33to64(b)
	}

	// Hash the tail first, then walk 64-byte blocks keeping 56 bytes of state.
	x := fetch64(b, n-40)
	y := fetch64(b, n-16) + fetch64(b, n-56)
	z := hashLen16(fetch64(b, n-48)+uint64(n), fetch64(b, n-24))
	v0, v1 := weakHashLen32(b, n-64, uint64(n), z)
	w0, w1 := weakHashLen32(b, n-32, y+k1, x)
	x = x*k1 + fetch64(b, 0)

	end := (n - 1) &^ 63
	for p := 0; p < end; p += 64 {
		x = rotr(x+y+v0+fetch64(b, p+8), 37) * k1
		y = rotr(y+v1+fetch64(b, p+48), 42) * k1
		x ^= w1
		y += v0 + fetch64(b, p+40)
		z = rotr(z+w0, 33) * k1
		v0, v1 = weakHashLen32(b, p, v1*k1, x+w0)
		w0, w1 = weakHashLen32(b, p+32, z+w1, y+fetch64(b, p+16))
		z, x = x, z
	}

	return hashLen16(hashLen16(v0, w0)+shiftMix(y)*k1+z, hashLen16(v1, w1)+x)
}

// City64Seed is CityHash64WithSeed.
func City64Seed(b []byte, seed uint64) uint64 {
	return City64Seeds(b, k2, seed)
}

// City64Seeds is CityHash64WithSeeds.
func City64Seeds(b []byte, seed0, seed1 uint64) uint64 {
	return hashLen16(City64(b)-seed0, seed1)
}
