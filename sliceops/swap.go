// Package sliceops holds small byte-slice helpers shared by the wire
// decoding layers. Multi-byte values arrive little-endian, so display
// code reverses them into the order humans expect.
package sliceops

// Reversed returns a reversed copy of in. The input is not modified.
func Reversed(in []byte) []byte {
	a := make([]byte, 0, len(in))
	a = append(a, in...)
	for i := len(a)/2 - 1; i >= 0; i-- {
		opp := len(a) - 1 - i
		a[i], a[opp] = a[opp], a[i]
	}

	return a
}
