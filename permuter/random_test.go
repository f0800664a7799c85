// Copyright (c) 2018 Arista Networks, Inc.  All rights reserved.
// Arista Networks, Inc. Confidential and Proprietary.

package permuter

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/JiajieSun/crashmonkey"
)

// threeEpochTrace builds epochs of sizes 3, 3 and 2 (each terminated by a
// barrier) with a checkpoint between the first and second.
func threeEpochTrace() []crashmonkey.DiskWrite {
	return []crashmonkey.DiskWrite{
		wr(w, 0, 512),
		wr(w, 1024, 512),
		wr(w|b, 2048, 512),
		crashmonkey.Checkpoint(),
		wr(w, 4096, 512),
		wr(w|m, 5120, 512),
		wr(w|b, 6144, 512),
		wr(w, 8192, 512),
		wr(w|b, 9216, 512),
	}
}

type randomTests struct {
	suite.Suite
	c      *crashmonkey.Ctx
	epochs []Epoch
	rp     *RandomPermuter
}

func (t *randomTests) SetupTest() {
	t.c = crashmonkey.TestCtx()
	t.epochs = BuildEpochs(t.c, threeEpochTrace())
	t.rp = NewRandomPermuter("")
	t.rp.InitData(t.epochs)
}

func (t *randomTests) TestNoEpochs() {
	rp := NewRandomPermuter("")
	rp.InitData(nil)

	var res []EpochOp
	var logData crashmonkey.PermuteTestResult
	t.Require().False(rp.GenOneState(&res, &logData))
}

// verifyState checks the crash-state invariants: all epochs before the
// crash point are reproduced verbatim, the final epoch is an
// order-preserving subset, the barrier only appears with the full epoch,
// the log matches the emitted ops, and the reported checkpoint follows the
// truncation rule.
func (t *randomTests) verifyState(res []EpochOp,
	logData *crashmonkey.PermuteTestResult) {

	t.Require().Equal(len(res), len(logData.CrashState))
	for i := range res {
		t.Require().Equal(res[i].AbsIndex, logData.CrashState[i])
	}

	// Consume fully reproduced epochs.
	pos := 0
	full := 0
	for full < len(t.epochs) {
		ops := t.epochs[full].Ops
		if pos+len(ops) > len(res) {
			break
		}
		match := true
		for i := range ops {
			if res[pos+i].AbsIndex != ops[i].AbsIndex {
				match = false
				break
			}
		}
		if !match {
			break
		}
		pos += len(ops)
		full++
	}

	if pos == len(res) {
		// The state ends on a complete epoch, whose checkpoint epoch
		// must be the one reported.
		t.Require().Greater(full, 0)
		t.Require().Equal(t.epochs[full-1].CheckpointEpoch,
			logData.LastCheckpoint)
		return
	}

	// The remainder must be a strict, order-preserving subset of the
	// next epoch's non-barrier ops.
	t.Require().Less(full, len(t.epochs))
	target := t.epochs[full]
	remainder := res[pos:]
	t.Require().Less(len(remainder), len(target.Ops))

	slots := len(target.Ops)
	if target.HasBarrier {
		slots--
	}
	src := 0
	for _, eo := range remainder {
		found := false
		for src < slots {
			if target.Ops[src].AbsIndex == eo.AbsIndex {
				found = true
				src++
				break
			}
			src++
		}
		t.Require().True(found,
			"op %d out of trace order or not in epoch %d",
			eo.AbsIndex, full)
	}

	expected := int32(0)
	if full > 0 {
		expected = t.epochs[full-1].CheckpointEpoch
	}
	t.Require().Equal(expected, logData.LastCheckpoint)
}

func (t *randomTests) TestStatesHonorInvariants() {
	var res []EpochOp
	var logData crashmonkey.PermuteTestResult
	for i := 0; i < 500; i++ {
		t.Require().True(t.rp.GenOneState(&res, &logData))
		t.verifyState(res, &logData)
	}
}

func (t *randomTests) TestDeterministicSequences() {
	other := NewRandomPermuter("")
	other.InitData(t.epochs)

	var resA, resB []EpochOp
	var logA, logB crashmonkey.PermuteTestResult
	for i := 0; i < 200; i++ {
		t.Require().True(t.rp.GenOneState(&resA, &logA))
		t.Require().True(other.GenOneState(&resB, &logB))
		t.Require().Equal(logA.CrashState, logB.CrashState)
		t.Require().Equal(logA.LastCheckpoint, logB.LastCheckpoint)
	}
}

// A single-op trace has exactly one possible crash state.
func (t *randomTests) TestSingleOpTrace() {
	trace := []crashmonkey.DiskWrite{wr(w, 0, 512)}
	epochs := BuildEpochs(t.c, trace)
	rp := NewRandomPermuter("")
	rp.InitData(epochs)

	var res []EpochOp
	var logData crashmonkey.PermuteTestResult
	for i := 0; i < 10; i++ {
		t.Require().True(rp.GenOneState(&res, &logData))
		t.Require().Len(res, 1)
		t.Require().Equal(uint32(0), res[0].AbsIndex)
		t.Require().Equal(int32(-1), logData.LastCheckpoint)
	}
}

// The shuffle mode may reorder the truncated epoch but must still confine
// itself to the target's non-barrier ops and keep earlier epochs verbatim.
func (t *randomTests) TestShuffleModeLegacy() {
	rp := NewRandomPermuter(ModeShuffle)
	rp.InitData(t.epochs)

	var res []EpochOp
	var logData crashmonkey.PermuteTestResult
	for i := 0; i < 200; i++ {
		t.Require().True(rp.GenOneState(&res, &logData))
		t.Require().Equal(len(res), len(logData.CrashState))

		pos := 0
		full := 0
		for full < len(t.epochs) {
			ops := t.epochs[full].Ops
			if pos+len(ops) > len(res) {
				break
			}
			match := true
			for j := range ops {
				if res[pos+j].AbsIndex != ops[j].AbsIndex {
					match = false
					break
				}
			}
			if !match {
				break
			}
			pos += len(ops)
			full++
		}
		if pos == len(res) {
			continue
		}

		target := t.epochs[full]
		seen := map[uint32]int{}
		for _, eo := range target.Ops[:len(target.Ops)-1] {
			seen[eo.AbsIndex]++
		}
		for _, eo := range res[pos:] {
			t.Require().Contains(seen, eo.AbsIndex)
			seen[eo.AbsIndex]--
			t.Require().GreaterOrEqual(seen[eo.AbsIndex], 0)
		}
	}
}

// Determinism must also hold through the registry.
func (t *randomTests) TestLookupStrategy() {
	st := LookupStrategy("random", "")
	t.Require().NotNil(st)
	st.InitData(t.epochs)

	var resA, resB []EpochOp
	var logA, logB crashmonkey.PermuteTestResult
	t.Require().True(t.rp.GenOneState(&resA, &logA))
	t.Require().True(st.GenOneState(&resB, &logB))
	t.Require().Equal(logA.CrashState, logB.CrashState)

	t.Require().Nil(LookupStrategy("exhaustive", ""))
	t.Require().Contains(StrategyNames(), "random")
}

func TestRandomPermuter(t *testing.T) {
	suite.Run(t, new(randomTests))
}
