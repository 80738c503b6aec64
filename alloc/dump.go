package alloc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/segalloc/segalloc/bufiox"
	"github.com/segalloc/segalloc/hash/xfnv"
	"github.com/segalloc/segalloc/internal/hack"
)

// dumpMagic tags the start of a Dump payload so LoadDump can reject
// data that isn't one before it gets far enough to misread garbage as
// a block count.
const dumpMagic = "SGAL"

// dumpRecordSize is the encoded size of one BlockRecord: offset, size,
// and a one-byte allocation flag.
const dumpRecordSize = wordSize + wordSize + 1

// BlockRecord is one block's entry in a Dump payload.
type BlockRecord struct {
	Offset int
	Size   int
	Alloc  bool
}

// DumpReport is what LoadDump hands back: every block in walk order,
// plus HeapHi, the end offset of the last block in the dump (where the
// epilogue header sat; the region itself extends one word further).
type DumpReport struct {
	HeapHi int
	Blocks []BlockRecord
}

var errBadChecksum = errors.New("alloc: dump checksum mismatch")

// Dump writes a stable snapshot of every block currently in the arena,
// in walk order, to w. It never mutates the heap and is safe to call
// concurrently with nothing else touching the same Heap (the allocator
// itself has no internal locking, per the single-mutator model).
//
// The format is: a 4-byte magic, a 4-byte block count, one
// dumpRecordSize record per block, and an 8-byte xfnv checksum of the
// record bytes (the magic and the count are not covered).
func (h *Heap) Dump(w io.Writer) error {
	arena := h.arena()
	var records []BlockRecord
	heapHi := h.p.HeapHi()
	for off := firstBlockOff; off < heapHi; {
		size, alloc := readHeader(arena, off)
		if size == 0 {
			break // epilogue
		}
		records = append(records, BlockRecord{Offset: off, Size: size, Alloc: alloc})
		off += size
	}

	bw := bufiox.NewDefaultWriter(w)
	buf, err := bw.Malloc(len(dumpMagic) + wordSize)
	if err != nil {
		return fmt.Errorf("alloc: dump header: %w", err)
	}
	copy(buf, dumpMagic)
	binary.LittleEndian.PutUint32(buf[len(dumpMagic):], uint32(len(records)))

	for _, r := range records {
		rb, err := bw.Malloc(dumpRecordSize)
		if err != nil {
			return fmt.Errorf("alloc: dump record: %w", err)
		}
		binary.LittleEndian.PutUint32(rb[0:], uint32(r.Offset))
		binary.LittleEndian.PutUint32(rb[4:], uint32(r.Size))
		if r.Alloc {
			rb[8] = 1
		} else {
			rb[8] = 0
		}
	}

	sum := checksumRecords(records)
	tail, err := bw.Malloc(8)
	if err != nil {
		return fmt.Errorf("alloc: dump checksum: %w", err)
	}
	binary.LittleEndian.PutUint64(tail, sum)

	return bw.Flush()
}

// LoadDump parses a payload produced by Dump without touching any live
// Heap: it's a read-only decoder for tooling that wants to inspect a
// previously captured layout.
func LoadDump(r io.Reader) (*DumpReport, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("alloc: reading dump: %w", err)
	}
	br := bufiox.NewBytesReader(raw)

	header, err := br.Next(len(dumpMagic) + wordSize)
	if err != nil {
		return nil, fmt.Errorf("alloc: dump header: %w", err)
	}
	if hack.ByteSliceToString(header[:len(dumpMagic)]) != dumpMagic {
		return nil, errors.New("alloc: not a dump payload")
	}
	count := int(binary.LittleEndian.Uint32(header[len(dumpMagic):]))

	records := make([]BlockRecord, 0, count)
	var heapHi int
	for i := 0; i < count; i++ {
		rb, err := br.Next(dumpRecordSize)
		if err != nil {
			return nil, fmt.Errorf("alloc: dump record %d: %w", i, err)
		}
		rec := BlockRecord{
			Offset: int(binary.LittleEndian.Uint32(rb[0:])),
			Size:   int(binary.LittleEndian.Uint32(rb[4:])),
			Alloc:  rb[8] != 0,
		}
		records = append(records, rec)
		if end := rec.Offset + rec.Size; end > heapHi {
			heapHi = end
		}
	}

	tail, err := br.Next(8)
	if err != nil {
		return nil, fmt.Errorf("alloc: dump checksum: %w", err)
	}
	want := binary.LittleEndian.Uint64(tail)
	if got := checksumRecords(records); got != want {
		return nil, errBadChecksum
	}

	return &DumpReport{HeapHi: heapHi, Blocks: records}, nil
}

// checksumRecords hashes the same bytes Dump writes for its records, so
// LoadDump can detect truncated or corrupted payloads. Dump stores the
// value in its trailer and LoadDump recomputes it from the records it
// read. xfnv's result depends on the host's byte order, so a dump
// verifies only on a host with the same byte order as the one that
// wrote it.
func checksumRecords(records []BlockRecord) uint64 {
	buf := make([]byte, len(records)*dumpRecordSize)
	for i, r := range records {
		off := i * dumpRecordSize
		binary.LittleEndian.PutUint32(buf[off:], uint32(r.Offset))
		binary.LittleEndian.PutUint32(buf[off+4:], uint32(r.Size))
		if r.Alloc {
			buf[off+8] = 1
		}
	}
	return xfnv.Hash(buf)
}
