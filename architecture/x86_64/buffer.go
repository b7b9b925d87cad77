package x86_64

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// pageSize is assumed rather than queried: the codec targets the common
// x86-64 Linux page size, and Buffer sizes are rounded up to it.
const pageSize = 4096

// Buffer is a contiguous, writable-and-executable byte region backed by an
// anonymous mmap. A rewriter reads instructions out of one Buffer and
// encodes them into another; Current tracks the next unread (on an input
// buffer) or next-write (on an output buffer) offset.
type Buffer struct {
	mem          []byte
	Current      int
	LogicalStart uint64
}

// NewBuffer acquires size bytes (rounded up to a page) of RWX memory. The
// logicalStart is the address the running program must observe for this
// region's contents, which may differ from the host mapping's address when
// code is staged off to the side before the original image is unmapped.
func NewBuffer(size int, logicalStart uint64) (*Buffer, error) {
	size = roundUpPage(size)
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("mmap rwx buffer: %w", err)
	}
	return &Buffer{mem: mem, LogicalStart: logicalStart}, nil
}

// Capacity returns the allocation size in bytes.
func (b *Buffer) Capacity() int { return len(b.mem) }

// Bytes exposes the full backing region for Decode/Encode to operate on.
func (b *Buffer) Bytes() []byte { return b.mem }

// LogicalRIP returns the address the running program must observe for
// Current: logical_start + (current - start).
func (b *Buffer) LogicalRIP() uint64 {
	return b.LogicalStart + uint64(b.Current)
}

// Reallocate replaces the buffer's backing memory. Size 0 frees it; size >
// 0 frees the old mapping (if any) and acquires a fresh one. This is
// explicitly throw-away: because re-encoded instructions can change
// length, no existing output can be reused, and callers restart the
// rewrite into the new, larger allocation. Reallocate resets Current to 0.
func (b *Buffer) Reallocate(size int) error {
	if b.mem != nil {
		if err := unix.Munmap(b.mem); err != nil {
			return fmt.Errorf("munmap buffer: %w", err)
		}
		b.mem = nil
	}
	b.Current = 0
	if size == 0 {
		return nil
	}
	size = roundUpPage(size)
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return fmt.Errorf("mmap rwx buffer: %w", err)
	}
	b.mem = mem
	return nil
}

// Reprotect changes the page protection of the whole buffer. It exists for
// hosts that forbid simultaneous write+execute (W^X): a caller there
// cannot request RWX up front and must instead flip a batch of pages from
// RW to RX around each rewrite pass, as a deliberate action rather than a
// silent default. Not used by NewBuffer, which still requests simultaneous
// RWX.
func (b *Buffer) Reprotect(prot int) error {
	if err := unix.Mprotect(b.mem, prot); err != nil {
		return fmt.Errorf("mprotect buffer: %w", err)
	}
	return nil
}

// Close releases the buffer's pages.
func (b *Buffer) Close() error {
	return b.Reallocate(0)
}

func roundUpPage(n int) int {
	if n <= 0 {
		return pageSize
	}
	return (n + pageSize - 1) &^ (pageSize - 1)
}

// ReadInsn decodes the next instruction from the buffer's current
// position, advancing Current on success. Destined for use by a rewriter
// walking a mapped image basic block by basic block.
func (b *Buffer) ReadInsn() (Instruction, ReadStatus) {
	ins, next, status := Decode(b.mem, b.Current, b.LogicalRIP())
	if status == ReadCont {
		b.Current = next
	}
	return ins, status
}

// WriteInsn encodes ins into the buffer at its current position, advancing
// Current on success. Returns WriteEOBUF without advancing if the
// remaining capacity is too small; the caller must Reallocate and restart
// its rewrite pass.
func (b *Buffer) WriteInsn(ins *Instruction) (int, WriteStatus) {
	n, status := Encode(ins, b.mem[b.Current:])
	if status == WriteCont {
		b.Current += n
	}
	return n, status
}
