// Package buffer provides an append-only byte arena with stable addressing.
// Bytes are stored in fixed-capacity blocks that are never reallocated, so a
// slice handed out for a given offset stays valid across later appends.
package buffer

const defaultBlockSize = 256 * 1024

// Arena is an append-only byte buffer addressed by global offset.
// A single writer appends; concurrent readers are coordinated by the caller.
type Arena struct {
	blocks    [][]byte
	blockSize int
	size      int64
}

// NewArena creates an arena with the default block size
func NewArena() *Arena {
	return NewArenaSize(defaultBlockSize)
}

// NewArenaSize creates an arena with the given block capacity
func NewArenaSize(blockSize int) *Arena {
	if blockSize <= 0 {
		blockSize = defaultBlockSize
	}
	return &Arena{blockSize: blockSize}
}

// Len returns the total number of bytes appended
func (a *Arena) Len() int64 {
	return a.size
}

// Append copies p into the arena, spilling across block boundaries as needed.
// Existing blocks are never moved or grown beyond their preallocated capacity.
func (a *Arena) Append(p []byte) {
	for len(p) > 0 {
		if len(a.blocks) == 0 || len(a.last()) == cap(a.last()) {
			a.blocks = append(a.blocks, make([]byte, 0, a.blockSize))
		}
		block := a.last()
		room := cap(block) - len(block)
		n := len(p)
		if n > room {
			n = room
		}
		a.blocks[len(a.blocks)-1] = append(block, p[:n]...)
		a.size += int64(n)
		p = p[n:]
	}
}

// Slice returns the n bytes starting at global offset off. Within a single
// block the result aliases arena storage; a range straddling blocks is
// returned as a fresh copy. Either way the result stays valid forever.
func (a *Arena) Slice(off int64, n int) []byte {
	if n <= 0 || off < 0 || off+int64(n) > a.size {
		return nil
	}

	blk := int(off / int64(a.blockSize))
	pos := int(off % int64(a.blockSize))

	if pos+n <= len(a.blocks[blk]) {
		b := a.blocks[blk]
		return b[pos : pos+n : pos+n]
	}

	out := make([]byte, 0, n)
	for n > 0 {
		b := a.blocks[blk]
		take := len(b) - pos
		if take > n {
			take = n
		}
		out = append(out, b[pos:pos+take]...)
		n -= take
		pos = 0
		blk++
	}
	return out
}

func (a *Arena) last() []byte {
	return a.blocks[len(a.blocks)-1]
}
