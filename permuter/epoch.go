// Copyright (c) 2018 Arista Networks, Inc.  All rights reserved.
// Arista Networks, Inc. Confidential and Proprietary.

// Package permuter partitions a recorded bio trace into barrier-delimited
// epochs and synthesizes unique candidate crash states from them.
package permuter

import (
	"github.com/JiajieSun/crashmonkey"
	"github.com/JiajieSun/crashmonkey/qlog"
)

// EpochOp is one bio plus its 0-based position in the original trace after
// checkpoints are skipped. When a flush+data barrier is split, both halves
// carry the barrier's index.
type EpochOp struct {
	AbsIndex uint32
	Op       crashmonkey.DiskWrite
}

// Epoch is a maximal contiguous run of bios terminated by at most one
// barrier. If HasBarrier is set the barrier is the last element of Ops.
type Epoch struct {
	NumMeta         uint32
	CheckpointEpoch int32
	HasBarrier      bool
	Overlaps        bool
	Ops             []EpochOp
}

// EpochBuilderConfig adjusts epoch construction. ResetOverlapsPerEpoch
// discards recorded sector ranges at each epoch boundary instead of
// accumulating them over the whole trace. The accumulating default matches
// the profiling tool's historical behavior; leave it off unless you know
// you want per-epoch overlap detection.
type EpochBuilderConfig struct {
	ResetOverlapsPerEpoch bool
}

type sectorRange struct {
	start uint32
	end   uint32
}

// recordRange walks the ordered range list for [start, end). It flags an
// overlap when start or end falls inside a recorded range (a new range that
// strictly covers a recorded one is not flagged); otherwise it inserts the
// new range before the first recorded range starting past end, or appends it.
func recordRange(ranges []sectorRange, start uint32,
	end uint32) ([]sectorRange, bool) {

	for i, r := range ranges {
		if (r.start <= start && r.end >= start) ||
			(r.start <= end && r.end >= end) {

			return ranges, true
		} else if r.start > end {
			ranges = append(ranges, sectorRange{})
			copy(ranges[i+1:], ranges[i:])
			ranges[i] = sectorRange{start: start, end: end}
			return ranges, false
		}
	}
	return append(ranges, sectorRange{start: start, end: end}), false
}

// BuildEpochs scans the trace once and returns its epoch decomposition.
// Checkpoint markers are stripped but still consume abs-index slots. A
// barrier carrying both data and a flush (without FUA) is split: the flush
// half terminates the current epoch and the data half opens the next one,
// both halves sharing the barrier's abs index.
func BuildEpochs(c *crashmonkey.Ctx,
	trace []crashmonkey.DiskWrite) []Epoch {

	return BuildEpochsConfig(c, trace, EpochBuilderConfig{})
}

func BuildEpochsConfig(c *crashmonkey.Ctx, trace []crashmonkey.DiskWrite,
	config EpochBuilderConfig) []Epoch {

	var epochs []Epoch
	var ranges []sectorRange
	var dataHalf crashmonkey.DiskWrite
	var dataHalfIndex uint32
	prevEpochFlushOp := false

	// The first checkpoint seen must begin epoch 0, not 1.
	currCheckpointEpoch := int32(-1)

	// Aligns with the index of the bio in the profile dump, 0 indexed.
	absIndex := uint32(0)

	currOp := 0
	for currOp < len(trace) || prevEpochFlushOp {
		currentEpoch := Epoch{
			CheckpointEpoch: currCheckpointEpoch,
		}

		if config.ResetOverlapsPerEpoch {
			ranges = ranges[:0]
		}

		// The data half of a split barrier becomes the first op of
		// this epoch, keeping the index recorded at the split.
		if prevEpochFlushOp {
			currentEpoch.Ops = append(currentEpoch.Ops, EpochOp{
				AbsIndex: dataHalfIndex,
				Op:       dataHalf,
			})
			if dataHalf.IsMeta() {
				currentEpoch.NumMeta++
			}
			prevEpochFlushOp = false
		}

		// Gather ops until the next barrier.
		for currOp < len(trace) && !trace[currOp].IsBarrierWrite() {
			op := trace[currOp]

			// Checkpoints advance the checkpoint epoch of the
			// epoch under construction but must not appear in the
			// bio stream handed to permuters.
			if op.IsCheckpoint() {
				currCheckpointEpoch++
				currentEpoch.CheckpointEpoch =
					currCheckpointEpoch
				currOp++
				absIndex++
				continue
			}

			var overlapped bool
			ranges, overlapped = recordRange(ranges, op.Sector,
				op.Sector+op.Size)
			if overlapped {
				currentEpoch.Overlaps = true
			}

			currentEpoch.Ops = append(currentEpoch.Ops, EpochOp{
				AbsIndex: absIndex,
				Op:       op,
			})
			if op.IsMeta() {
				currentEpoch.NumMeta++
			}
			absIndex++
			currOp++
		}

		if currOp < len(trace) {
			op := trace[currOp]

			// A barrier with a flush flag and data is divided in
			// two: the flush half stays here, the data half is
			// only visible from the start of the next epoch. FUA
			// barriers are not divided.
			if op.HasWriteFlag() && !op.HasFUAFlag() &&
				(op.HasFlushFlag() || op.HasFlushSeqFlag()) {

				var flagHalf crashmonkey.DiskWrite
				dataHalf = op

				if op.HasFlushFlag() {
					flagHalf.SetFlushFlag()
					dataHalf.ClearFlushFlag()
				}

				if op.HasFlushSeqFlag() {
					flagHalf.SetFlushSeqFlag()
					dataHalf.ClearFlushSeqFlag()
				}

				currentEpoch.Ops = append(currentEpoch.Ops,
					EpochOp{
						AbsIndex: absIndex,
						Op:       flagHalf,
					})
				if flagHalf.IsMeta() {
					currentEpoch.NumMeta++
				}
				currentEpoch.HasBarrier = true
				dataHalfIndex = absIndex
				prevEpochFlushOp = true
			} else {
				currentEpoch.Ops = append(currentEpoch.Ops,
					EpochOp{
						AbsIndex: absIndex,
						Op:       op,
					})
				if op.IsMeta() {
					currentEpoch.NumMeta++
				}
				currentEpoch.HasBarrier = true
			}
			absIndex++
			currOp++
		}

		epochs = append(epochs, currentEpoch)
	}

	c.Dlog(qlog.LogEpoch, "built %d epochs from %d trace records",
		len(epochs), len(trace))
	return epochs
}
