// Copyright (c) 2018 Arista Networks, Inc.  All rights reserved.
// Arista Networks, Inc. Confidential and Proprietary.

package permuter

import (
	"math/rand"

	"github.com/seehuhn/mt19937"

	"github.com/JiajieSun/crashmonkey"
	"github.com/JiajieSun/crashmonkey/utils"
)

// Both generators use a fixed seed so that a failing crash state can be
// regenerated from the bug report alone.
const randomSeed = 42

// Emission policies for the trailing, truncated epoch.
const (
	ModeSubset  = "subset"
	ModeShuffle = "shuffle"
)

func newTwister(seed int64) *rand.Rand {
	src := mt19937.New()
	src.Seed(seed)
	return rand.New(src)
}

// RandomPermuter picks a random prefix of epochs and truncates the last one
// to a random subset. The rand stream decides how many epochs and how many
// ops; subsetRand is consumed by the subset shuffle. In the default subset
// mode the surviving ops keep their trace order; the legacy shuffle mode
// emits them in shuffled order instead.
type RandomPermuter struct {
	epochs     []Epoch
	rand       *rand.Rand
	subsetRand *rand.Rand
	mode       string
}

// NewRandomPermuter constructs the strategy. conf selects the trailing
// epoch policy, ModeSubset when empty.
func NewRandomPermuter(conf string) *RandomPermuter {
	mode := ModeSubset
	if conf == ModeShuffle {
		mode = ModeShuffle
	}
	return &RandomPermuter{
		rand:       newTwister(randomSeed),
		subsetRand: newTwister(randomSeed),
		mode:       mode,
	}
}

func (rp *RandomPermuter) InitData(epochs []Epoch) {
	rp.epochs = epochs
}

func (rp *RandomPermuter) GenOneState(res *[]EpochOp,
	logData *crashmonkey.PermuteTestResult) bool {

	// Nothing to permute, no crash state to generate.
	if len(rp.epochs) == 0 {
		return false
	}

	numEpochs := 1 + rp.rand.Intn(len(rp.epochs))
	target := &rp.epochs[numEpochs-1]

	// Draw over the full size so a complete epoch can be sent. A
	// degenerate empty epoch forces zero requests.
	numRequests := 0
	if len(target.Ops) > 0 {
		numRequests = 1 + rp.rand.Intn(len(target.Ops))
	}

	totalElements := numRequests
	for i := 0; i < numEpochs-1; i++ {
		totalElements += len(rp.epochs[i].Ops)
	}

	*res = resizeOps(*res, totalElements)
	logData.CrashState = resizeIndexes(logData.CrashState, totalElements)

	// Report the most recent checkpoint durable in this state. The
	// target epoch's own checkpoint counts only when the whole epoch is
	// sent; a truncated target never made its barrier durable, so fall
	// back to the epoch before it.
	if numRequests != len(target.Ops) {
		logData.LastCheckpoint = 0
		if numEpochs > 1 {
			logData.LastCheckpoint =
				rp.epochs[numEpochs-2].CheckpointEpoch
		}
	} else {
		logData.LastCheckpoint = target.CheckpointEpoch
	}

	curr := 0
	for i := 0; i < numEpochs; i++ {
		// Epochs before the crash point are reproduced verbatim; only
		// the epoch we crash in drops bios.
		if i == numEpochs-1 && numRequests < len(target.Ops) {
			out := (*res)[curr : curr+numRequests]
			if rp.mode == ModeShuffle {
				rp.permuteEpoch(out, target)
			} else {
				rp.subsetEpoch(out, target)
			}
			curr += numRequests
		} else {
			curr += copy((*res)[curr:], rp.epochs[i].Ops)
		}
	}

	for i := range *res {
		logData.CrashState[i] = (*res)[i].AbsIndex
	}
	return true
}

// subsetEpoch fills out with len(out) ops picked uniformly from the epoch,
// emitted in their original trace order. The terminal barrier is never
// picked; it is appended only when every other op was.
func (rp *RandomPermuter) subsetEpoch(out []EpochOp, epoch *Epoch) {
	reqSize := len(out)
	utils.Assert(reqSize <= len(epoch.Ops),
		"subset of %d ops from an epoch of %d", reqSize,
		len(epoch.Ops))

	// Any bio but the barrier (if present) may be picked.
	slots := len(epoch.Ops)
	if epoch.HasBarrier {
		slots--
	}

	// Shuffle the slot indexes and keep the first reqSize of them; the
	// bitmap scan below restores trace order.
	bitmap := make([]bool, len(epoch.Ops))
	indices := make([]int, slots)
	for i := range indices {
		indices[i] = i
	}
	rp.subsetRand.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	for i := 0; i < reqSize && i < slots; i++ {
		bitmap[indices[i]] = true
	}

	filled := 0
	for idx := 0; idx < len(bitmap) && filled < reqSize; idx++ {
		if bitmap[idx] {
			out[filled] = epoch.Ops[idx]
			filled++
		}
	}

	// We placed only part of the epoch.
	if filled == reqSize {
		return
	}

	utils.Assert(epoch.HasBarrier,
		"%d unfilled slots in an epoch without a barrier",
		reqSize-filled)
	out[filled] = epoch.Ops[len(epoch.Ops)-1]
}

// permuteEpoch is the legacy policy: the picked ops are emitted in shuffled
// order rather than trace order.
func (rp *RandomPermuter) permuteEpoch(out []EpochOp, epoch *Epoch) {
	reqSize := len(out)
	utils.Assert(reqSize <= len(epoch.Ops),
		"permutation of %d ops from an epoch of %d", reqSize,
		len(epoch.Ops))

	slots := len(epoch.Ops)
	if epoch.HasBarrier {
		slots--
	}

	emptySlots := make([]int, slots)
	for i := range emptySlots {
		emptySlots[i] = i
	}

	filled := 0
	for filled < reqSize && len(emptySlots) > 0 {
		pick := rp.rand.Intn(len(emptySlots))
		out[filled] = epoch.Ops[emptySlots[pick]]
		emptySlots = append(emptySlots[:pick], emptySlots[pick+1:]...)
		filled++
	}

	if filled == reqSize {
		return
	}

	utils.Assert(epoch.HasBarrier,
		"%d unfilled slots in an epoch without a barrier",
		reqSize-filled)
	out[filled] = epoch.Ops[len(epoch.Ops)-1]
}

func resizeOps(s []EpochOp, n int) []EpochOp {
	if cap(s) < n {
		return make([]EpochOp, n)
	}
	return s[:n]
}

func resizeIndexes(s []uint32, n int) []uint32 {
	if cap(s) < n {
		return make([]uint32, n)
	}
	return s[:n]
}
