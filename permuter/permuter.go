// Copyright (c) 2018 Arista Networks, Inc.  All rights reserved.
// Arista Networks, Inc. Confidential and Proprietary.

package permuter

import (
	"encoding/binary"

	"github.com/JiajieSun/crashmonkey"
	"github.com/JiajieSun/crashmonkey/qlog"
)

const (
	// The multiplier was chosen in the hope that it is a decent
	// heuristic: a small explored space terminates quickly while a large
	// one has room left to probe.
	kRetryMultiplier = 2
	kMinRetries      = 1000
)

// Strategy is the contract a concrete permutation algorithm implements.
// GenOneState populates res with one candidate crash state and returns
// false once no further states can be produced. A strategy must be
// deterministic given its construction seed so that filesystem bug reports
// can be reproduced.
type Strategy interface {
	InitData(epochs []Epoch)
	GenOneState(res *[]EpochOp,
		logData *crashmonkey.PermuteTestResult) bool
}

// Permuter drives a Strategy: it builds the epoch model once, then hands
// out crash states that have not been seen before, fingerprinted by their
// abs-index sequences. A Permuter is not safe for concurrent use; parallel
// exploration wants independent instances over independent traces.
type Permuter struct {
	epochs                []Epoch
	completedPermutations map[string]struct{}
	strategy              Strategy
}

func NewPermuter(strategy Strategy) *Permuter {
	return &Permuter{
		completedPermutations: make(map[string]struct{}),
		strategy:              strategy,
	}
}

// InitDataVector loads the epoch model for the given trace. The trace is
// only borrowed for the duration of the call.
func (p *Permuter) InitDataVector(c *crashmonkey.Ctx,
	data []crashmonkey.DiskWrite) {

	p.epochs = BuildEpochs(c, data)
	p.strategy.InitData(p.epochs)
}

func (p *Permuter) Epochs() []Epoch {
	return p.epochs
}

// fingerprint encodes the abs-index sequence of a crash state as a map key.
// The encoding is positional, so equality is order sensitive.
func fingerprint(state []EpochOp) string {
	buf := make([]byte, 4*len(state))
	for i := range state {
		binary.BigEndian.PutUint32(buf[i*4:], state[i].AbsIndex)
	}
	return string(buf)
}

// GenerateCrashState produces one crash state the Permuter has not returned
// before. It returns false on exhaustion: either the strategy reported no
// more states, or the retry budget ran out on duplicates. res is populated
// either way so the caller may still inspect the final attempt.
func (p *Permuter) GenerateCrashState(c *crashmonkey.Ctx,
	res *[]crashmonkey.DiskWrite,
	logData *crashmonkey.PermuteTestResult) bool {

	var crashState []EpochOp
	var key string
	retries := 0
	newState := true
	exists := false

	maxRetries := kMinRetries
	if scaled := kRetryMultiplier *
		len(p.completedPermutations); scaled > maxRetries {

		maxRetries = scaled
	}

	for {
		newState = p.strategy.GenOneState(&crashState, logData)
		key = fingerprint(crashState)

		retries++
		_, exists = p.completedPermutations[key]
		if !newState || retries >= maxRetries {
			break
		}
		if !exists {
			break
		}
	}

	*res = (*res)[:0]
	for i := range crashState {
		*res = append(*res, crashState[i].Op)
	}

	if !exists {
		p.completedPermutations[key] = struct{}{}
		return newState
	}

	// We stopped because no unseen state turned up within the budget.
	c.Dlog(qlog.LogPermute,
		"no unique crash state within %d retries, %d states found",
		retries, len(p.completedPermutations))
	return false
}

// BioIndexesOfLastEpoch reports which positions of a crash state belong to
// the trailing epoch the state reaches into, identified by abs index. It
// returns false when either the state or the epoch model is empty.
func (p *Permuter) BioIndexesOfLastEpoch(crashState []uint32,
	lastEpoch *[]int) bool {

	*lastEpoch = (*lastEpoch)[:0]
	if len(crashState) == 0 || len(p.epochs) == 0 {
		return false
	}

	// A split barrier shares its index between two epochs, so take the
	// last epoch claiming the final op of the state.
	last := crashState[len(crashState)-1]
	target := -1
	for i := range p.epochs {
		for _, eo := range p.epochs[i].Ops {
			if eo.AbsIndex == last {
				target = i
				break
			}
		}
	}
	if target == -1 {
		return false
	}

	members := make(map[uint32]struct{}, len(p.epochs[target].Ops))
	for _, eo := range p.epochs[target].Ops {
		members[eo.AbsIndex] = struct{}{}
	}
	for i, idx := range crashState {
		if _, ok := members[idx]; ok {
			*lastEpoch = append(*lastEpoch, i)
		}
	}
	return true
}
