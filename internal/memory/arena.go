// Package memory implements a fixed-capacity contiguous memory allocator:
// an arena modelled as an ordered sequence of PROCESS/HOLE blocks, with a
// sorted-by-size holes index supporting best-fit admission and coalescing
// free.
package memory

import "github.com/arctir/schedsim/internal/seq"

// Capacity is the total size, in bytes, of the simulated arena.
const Capacity = 2048

// BlockType distinguishes a block owned by a process from free space.
type BlockType int

const (
	Process BlockType = iota
	Hole
)

func (t BlockType) String() string {
	if t == Hole {
		return "HOLE"
	}
	return "PROCESS"
}

// Block is a single contiguous region of the arena.
type Block struct {
	Type  BlockType
	Start int
	Size  int
}

// Handle is a stable reference to a block within an Arena. A process records
// its Handle to free its memory in O(1) at completion; the holes index
// stores Handles rather than sizes directly so splits and merges mutate a
// single shared block.
type Handle = *seq.Node[Block]

// Arena is the allocator's address space. With infinite=true it tracks
// nothing and every admission succeeds immediately (the "infinite" memory
// strategy); otherwise it maintains the block sequence and holes index.
type Arena struct {
	infinite bool
	blocks   *seq.List[Block]
	holes    *seq.List[Handle]
}

// New returns an arena. When infinite is true, Admit never fails and Free is
// a no-op, matching the "infinite" memory strategy.
func New(infinite bool) *Arena {
	a := &Arena{
		infinite: infinite,
		blocks:   seq.New[Block](),
		holes:    seq.New[Handle](),
	}
	if !infinite {
		init := a.blocks.PushBack(Block{Type: Hole, Start: 0, Size: Capacity})
		a.holes.PushBack(init)
	}
	return a
}

// Admit attempts to place a region of the given size. Under "infinite" it
// always succeeds with address 0 and a nil handle (no real placement is
// tracked). Under "best-fit" it walks the holes index ascending by size and
// stops at the first hole large enough; if none fits, ok is false and the
// caller should retry the same process on a later tick.
func (a *Arena) Admit(size int) (handle Handle, addr int, ok bool) {
	if a.infinite {
		return nil, 0, true
	}

	var best *seq.Node[Handle]
	for n := a.holes.Front(); n != nil; n = n.Next() {
		if n.Value.Value.Size >= size {
			best = n
			break
		}
	}
	if best == nil {
		return nil, 0, false
	}

	blockHandle := best.Value
	a.holes.Remove(best)
	return a.split(blockHandle, size)
}

// split carves a PROCESS block of the requested size out of the front of the
// given hole, shrinking (or removing) the remainder.
func (a *Arena) split(hole Handle, size int) (handle Handle, addr int, ok bool) {
	start := hole.Value.Start
	remaining := hole.Value.Size - size

	newBlock := a.blocks.InsertBefore(Block{Type: Process, Start: start, Size: size}, hole)

	if remaining == 0 {
		a.blocks.Remove(hole)
	} else {
		hole.Value.Start = start + size
		hole.Value.Size = remaining
		a.holesInsertSorted(hole)
	}

	return newBlock, start, true
}

// Free releases the block referenced by handle back to the arena, merging
// with any adjacent holes. It is a no-op under the infinite strategy
// (handle is always nil there) or when handle is nil.
func (a *Arena) Free(handle Handle) {
	if a.infinite || handle == nil {
		return
	}

	handle.Value.Type = Hole

	// merge right while the neighbour is also a hole
	for next := handle.Next(); next != nil && next.Value.Type == Hole; next = handle.Next() {
		a.holesRemove(next)
		handle.Value.Size += next.Value.Size
		a.blocks.Remove(next)
	}
	// merge left while the neighbour is also a hole
	for prev := handle.Prev(); prev != nil && prev.Value.Type == Hole; prev = handle.Prev() {
		a.holesRemove(prev)
		prev.Value.Size += handle.Value.Size
		a.blocks.Remove(handle)
		handle = prev
	}

	a.holesInsertSorted(handle)
}

// holesInsertSorted inserts handle into the holes index, keeping it sorted
// ascending by size with insertion-order tie-break.
func (a *Arena) holesInsertSorted(handle Handle) {
	for n := a.holes.Front(); n != nil; n = n.Next() {
		if n.Value.Value.Size > handle.Value.Size {
			a.holes.InsertBefore(handle, n)
			return
		}
	}
	a.holes.PushBack(handle)
}

// holesRemove removes the holes-index entry referencing handle. Handles are
// compared by identity, not value, since two holes may share a size.
func (a *Arena) holesRemove(handle Handle) {
	for n := a.holes.Front(); n != nil; n = n.Next() {
		if n.Value == handle {
			a.holes.Remove(n)
			return
		}
	}
}

// Blocks returns a snapshot of the arena's blocks in address order, for
// invariant checks and diagnostics.
func (a *Arena) Blocks() []Block {
	return a.blocks.Values()
}

// HoleSizes returns the sizes currently present in the holes index, in
// index order (ascending by size).
func (a *Arena) HoleSizes() []int {
	out := make([]int, 0, a.holes.Len())
	for n := a.holes.Front(); n != nil; n = n.Next() {
		out = append(out, n.Value.Value.Size)
	}
	return out
}
