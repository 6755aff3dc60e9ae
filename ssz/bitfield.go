package ssz

import "errors"

var errNegativeLength = errors.New("ssz: bitfield length out of range")

// Bitlist is a variable-length SSZ bitlist: a bit array that records its
// own length explicitly (no sentinel bit is stored). It backs
// Attestation.AggregationBits, whose length is bounded by the committee
// size but not fixed to it.
type Bitlist struct {
	bits   []bool
	length int
}

// NewBitlist allocates a Bitlist of the given length, all bits clear.
func NewBitlist(length int) (Bitlist, error) {
	if length < 0 {
		return Bitlist{}, errNegativeLength
	}
	return Bitlist{bits: make([]bool, length), length: length}, nil
}

// Len reports the number of bits the list was constructed with.
func (b Bitlist) Len() int { return b.length }

// Set marks bit i as participating.
func (b Bitlist) Set(i int) { b.bits[i] = true }

// Get reports whether bit i is set.
func (b Bitlist) Get(i int) bool { return b.bits[i] }

// BitlistHashTreeRoot computes the hash tree root of a Bitlist, treating
// it as a List[bool, maxLength]: the packed bits (without the length
// sentinel) are merkleized to the chunk limit maxLength demands, then the
// list's own bit length is mixed in.
func BitlistHashTreeRoot(b Bitlist, maxLength int) [32]byte {
	packed := make([]byte, (b.length+7)/8)
	for i := 0; i < b.length; i++ {
		if b.bits[i] {
			packed[i/8] |= 1 << uint(i%8)
		}
	}
	limitChunks := (maxLength + 255) / 256
	root := Merkleize(Pack(packed), limitChunks)
	return MixInLength(root, uint64(b.length))
}

// Bitvector is a fixed-length SSZ bit vector: no length sentinel, the bit
// count is part of the type. It backs
// SyncCommitteeContribution.AggregationBits, whose width is fixed by the
// active sync committee size.
type Bitvector struct {
	bits   []bool
	length int
}

// NewBitvector allocates a Bitvector of the given length, all bits clear.
func NewBitvector(length int) (Bitvector, error) {
	if length <= 0 {
		return Bitvector{}, errNegativeLength
	}
	return Bitvector{bits: make([]bool, length), length: length}, nil
}

// Len reports the vector's fixed bit width.
func (bv Bitvector) Len() int { return bv.length }

// Set marks bit i as participating.
func (bv Bitvector) Set(i int) { bv.bits[i] = true }

// Get reports whether bit i is set.
func (bv Bitvector) Get(i int) bool { return bv.bits[i] }

// BitvectorHashTreeRoot computes the hash tree root of a Bitvector,
// treating it as a Vector[bool, N]: the packed bits are merkleized to the
// chunk count the bit width demands, with no length mixed in since the
// width is fixed by the type.
func BitvectorHashTreeRoot(bv Bitvector) [32]byte {
	packed := make([]byte, (bv.length+7)/8)
	for i := 0; i < bv.length; i++ {
		if bv.bits[i] {
			packed[i/8] |= 1 << uint(i%8)
		}
	}
	return Merkleize(Pack(packed), 0)
}
