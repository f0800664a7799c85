// Copyright (c) 2018 Arista Networks, Inc.  All rights reserved.
// Arista Networks, Inc. Confidential and Proprietary.

// Shared value types for the crash-consistency test harness. A recorded
// workload is a sequence of DiskWrite records, in the order the block layer
// saw them.
package crashmonkey

import "github.com/JiajieSun/crashmonkey/utils"

// Flag bits as reported by the bio tracer
const (
	FlagWrite uint = 1 << iota
	FlagFlush
	FlagFlushSeq
	FlagFUA
	FlagMeta
	FlagBarrier
	FlagCheckpoint
)

// DiskWrite is a single recorded block-layer operation. Sector and Size
// delimit the byte range [Sector, Sector+Size) touched by the bio, in the
// units the tracer produced.
type DiskWrite struct {
	Sector uint32
	Size   uint32
	Flags  uint
}

func (dw DiskWrite) HasWriteFlag() bool {
	return utils.BitFlagsSet(dw.Flags, FlagWrite)
}

func (dw DiskWrite) HasFlushFlag() bool {
	return utils.BitFlagsSet(dw.Flags, FlagFlush)
}

func (dw DiskWrite) HasFlushSeqFlag() bool {
	return utils.BitFlagsSet(dw.Flags, FlagFlushSeq)
}

func (dw DiskWrite) HasFUAFlag() bool {
	return utils.BitFlagsSet(dw.Flags, FlagFUA)
}

func (dw DiskWrite) HasBarrierFlag() bool {
	return utils.BitFlagsSet(dw.Flags, FlagBarrier)
}

func (dw DiskWrite) IsMeta() bool {
	return utils.BitFlagsSet(dw.Flags, FlagMeta)
}

// IsCheckpoint returns whether this record is a synthetic durability marker
// injected by the harness rather than a real bio.
func (dw DiskWrite) IsCheckpoint() bool {
	return utils.BitFlagsSet(dw.Flags, FlagCheckpoint)
}

// IsBarrierWrite returns whether this bio imposes an ordering constraint on
// the device: an explicit barrier, any cache flush, or a forced-unit-access
// write.
func (dw DiskWrite) IsBarrierWrite() bool {
	if utils.BitAnyFlagSet(dw.Flags, FlagBarrier|FlagFlush|FlagFlushSeq) {
		return true
	}
	return utils.BitFlagsSet(dw.Flags, FlagFUA|FlagWrite)
}

func (dw *DiskWrite) SetFlushFlag() {
	dw.Flags |= FlagFlush
}

func (dw *DiskWrite) ClearFlushFlag() {
	dw.Flags &^= FlagFlush
}

func (dw *DiskWrite) SetFlushSeqFlag() {
	dw.Flags |= FlagFlushSeq
}

func (dw *DiskWrite) ClearFlushSeqFlag() {
	dw.Flags &^= FlagFlushSeq
}

// Checkpoint returns the synthetic marker record the tracer interleaves at
// test-defined durability points.
func Checkpoint() DiskWrite {
	return DiskWrite{Flags: FlagCheckpoint}
}
