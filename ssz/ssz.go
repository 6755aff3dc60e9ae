// Package ssz implements the slice of Simple Serialize (SSZ) Merkleization
// that a consensus-layer signing root needs: packing basic values into
// 32-byte chunks, binary Merkle tree hashing over those chunks, and the
// fixed-size container/vector/bitfield roots the signer's message types are
// built from. It does not implement SSZ encoding/decoding or variable-length
// list/union support — those concerns have no signing-root caller in this
// module.
//
// Spec: https://github.com/ethereum/consensus-specs/blob/dev/ssz/simple-serialize.md
package ssz

import (
	"crypto/sha256"
	"encoding/binary"
)

// bytesPerChunk is the leaf size of an SSZ Merkle tree.
const bytesPerChunk = 32

func hash(a, b [32]byte) [32]byte {
	var buf [64]byte
	copy(buf[:32], a[:])
	copy(buf[32:], b[:])
	return sha256.Sum256(buf[:])
}

// zeroHashes builds the zero-hash column for a tree of the given depth:
// zeroHashes[0] is the zero chunk, zeroHashes[i] is the root of a subtree
// of height i containing only zero leaves.
func zeroHashes(depth int) [][32]byte {
	z := make([][32]byte, depth+1)
	for i := 1; i <= depth; i++ {
		z[i] = hash(z[i-1], z[i-1])
	}
	return z
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Pack splits serialized bytes into 32-byte chunks, zero-padding the final
// chunk. An empty input packs to a single zero chunk, per the SSZ spec's
// treatment of empty basic-type vectors.
func Pack(serialized []byte) [][32]byte {
	if len(serialized) == 0 {
		return [][32]byte{{}}
	}
	n := (len(serialized) + bytesPerChunk - 1) / bytesPerChunk
	chunks := make([][32]byte, n)
	for i := 0; i < n; i++ {
		start := i * bytesPerChunk
		end := start + bytesPerChunk
		if end > len(serialized) {
			end = len(serialized)
		}
		copy(chunks[i][:], serialized[start:end])
	}
	return chunks
}

// Merkleize computes the root of a binary Merkle tree over chunks, padded
// with zero chunks up to limit leaves (or to the next power of two of
// len(chunks) if limit is 0 or smaller than the chunk count).
func Merkleize(chunks [][32]byte, limit int) [32]byte {
	count := len(chunks)
	if limit < count {
		limit = count
	}
	limit = nextPowerOfTwo(limit)

	if count == 0 {
		chunks = [][32]byte{{}}
		count = 1
	}

	depth := 0
	for (1 << uint(depth)) < limit {
		depth++
	}
	zeros := zeroHashes(depth)

	layer := make([][32]byte, limit)
	copy(layer, chunks)
	for i := count; i < limit; i++ {
		layer[i] = zeros[0]
	}

	for d := 0; d < depth; d++ {
		next := make([][32]byte, len(layer)/2)
		for i := range next {
			next[i] = hash(layer[2*i], layer[2*i+1])
		}
		layer = next
	}
	return layer[0]
}

// MixInLength folds a little-endian length value into a Merkle root, used
// wherever a variable-size type's root must commit to its own length.
func MixInLength(root [32]byte, length uint64) [32]byte {
	var lengthChunk [32]byte
	binary.LittleEndian.PutUint64(lengthChunk[:8], length)
	return hash(root, lengthChunk)
}

// HashTreeRootUint64 is the hash tree root of a bare uint64: little-endian
// encoded into the low 8 bytes of a chunk. Used directly (not inside a
// container) for the two signable kinds whose signed object is a raw slot
// or epoch rather than a struct.
func HashTreeRootUint64(v uint64) [32]byte {
	var chunk [32]byte
	binary.LittleEndian.PutUint64(chunk[:8], v)
	return chunk
}

// HashTreeRootBytes32 is the identity: a 32-byte vector already fills
// exactly one chunk.
func HashTreeRootBytes32(b [32]byte) [32]byte {
	return b
}

// HashTreeRootBytes48 is the hash tree root of a 48-byte fixed vector
// (a BLS12-381 public key).
func HashTreeRootBytes48(b [48]byte) [32]byte {
	return Merkleize(Pack(b[:]), 0)
}

// HashTreeRootBytes96 is the hash tree root of a 96-byte fixed vector
// (a BLS12-381 signature).
func HashTreeRootBytes96(b [96]byte) [32]byte {
	return Merkleize(Pack(b[:]), 0)
}

// HashTreeRootAddress is the hash tree root of a 20-byte execution address,
// left-aligned and zero-padded to fill a chunk.
func HashTreeRootAddress(addr [20]byte) [32]byte {
	var chunk [32]byte
	copy(chunk[:20], addr[:])
	return chunk
}
