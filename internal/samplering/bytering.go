package samplering

// ByteRing is a byte-oriented variant of SampleRing used by device-reading
// glue to absorb transient short reads (spec §4.13) before raw bytes are
// converted into I/Q samples. It is grounded on the `cbuffer` circular byte
// buffer found in original_source/radio/tools/cbuffer, which the newer
// iteration of the reference implementation interposes between the device
// read() call and I/Q conversion for the same reason.
type ByteRing = SampleRing[byte]

// NewByteRing is a convenience constructor matching New's signature,
// specialized to bytes.
func NewByteRing(capacity int, allowOverflow bool) (*ByteRing, error) {
	return New[byte](capacity, allowOverflow)
}
