// Copyright (c) 2018 Arista Networks, Inc.  All rights reserved.
// Arista Networks, Inc. Confidential and Proprietary.

package qlog

// This file contains specifics that shouldn't be part of qlog, but aren't nicely
// factored out for the time being.

import "math"

const (
	LogEpoch LogSubsystem = iota
	LogPermute
	LogTest
	LogQlog
	logSubsystemMax = LogQlog
)

var logSubsystemList = []logSubsystemPair{
	{"Epoch", LogEpoch},
	{"Permute", LogPermute},
	{"Test", LogTest},
	{"Qlog", LogQlog},
}

const (
	TestReqId uint64 = math.MaxUint64 - iota
	QlogReqId
	MinFixedReqId
)

const (
	MinSpecialReqId = uint64(0xb) << 48
)

func specialReq(reqId uint64) string {
	switch reqId {
	case TestReqId:
		return "[Test]"
	case QlogReqId:
		return "[Qlog]"
	}
	return "UNKNOWN"
}
