package node

import (
	"encoding/binary"
	"encoding/hex"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// Digest is a fingerprint of a node tree. Two trees have the same digest if
// and only if they are Equal (collisions aside).
type Digest [blake2b.Size256]byte

// String returns the lowercase hex form of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Fingerprint computes the digest of the tree rooted at n. Every string is
// written with a length prefix so that different trees cannot produce the
// same byte stream.
func Fingerprint(n *Node) Digest {
	h, err := blake2b.New256(nil)
	if err != nil {
		// Only a key longer than 64 bytes can fail.
		panic(err)
	}
	writeNode(h, n)
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func writeNode(h hash.Hash, n *Node) {
	if n == nil {
		writeUint(h, 0)
		return
	}
	writeUint(h, 1)
	writeString(h, n.Name)
	writeUint(h, uint64(len(n.Attrs)))
	for _, a := range n.Attrs {
		writeString(h, a.Name)
		writeString(h, a.Value)
	}
	writeString(h, n.Text)
	writeUint(h, uint64(len(n.Children)))
	for _, c := range n.Children {
		writeNode(h, c)
	}
}

func writeString(h hash.Hash, s string) {
	writeUint(h, uint64(len(s)))
	h.Write([]byte(s))
}

func writeUint(h hash.Hash, n uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	h.Write(buf[:])
}
