// Copyright (c) 2018 Arista Networks, Inc.  All rights reserved.
// Arista Networks, Inc. Confidential and Proprietary.

package crashmonkey

// PermuteTestResult is the log record the test runner keeps for each crash
// state it replays. CrashState holds the abs-index sequence of the emitted
// state; LastCheckpoint is the most recent checkpoint epoch known durable in
// that state.
type PermuteTestResult struct {
	CrashState     []uint32
	LastCheckpoint int32
}
