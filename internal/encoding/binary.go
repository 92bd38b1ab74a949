package encoding

import (
	"image"
)

// Split32 uint32 to two uint16
func Split32(in uint32) (uint16, uint16) {
	return uint16(in >> 16), uint16(in)
}

// Merge16 two uint16 to uint32
func Merge16(a, b uint16) uint32 {
	return (uint32(a) << 16) + uint32(b)
}

// PointKey packs a grid point into a single uint32, x in the high 16 bits.
// Both coords must be in [0, 65535]; callers bounds check first.
func PointKey(p image.Point) uint32 {
	return Merge16(uint16(p.X), uint16(p.Y))
}

// KeyPoint is the inverse of PointKey
func KeyPoint(k uint32) image.Point {
	x, y := Split32(k)
	return image.Pt(int(x), int(y))
}
