// Copyright (c) 2018 Arista Networks, Inc.  All rights reserved.
// Arista Networks, Inc. Confidential and Proprietary.

package qlog

// This file contains all crashmonkey logging support

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const timeFormat = "2006-01-02T15:04:05.000000000"

const logEnvTag = "TRACE"
const maxLogLevels = 4

type LogSubsystem uint8

func (enum LogSubsystem) String() string {
	if enum <= logSubsystemMax {
		return logSubsystem[enum]
	}
	return ""
}

var logSubsystem = []string{}
var logSubsystemMap = map[string]LogSubsystem{}

func init() {
	for _, v := range logSubsystemList {
		addLogSubsystem(v.name, v.logger)
	}
}

type logSubsystemPair struct {
	name   string
	logger LogSubsystem
}

func addLogSubsystem(sys string, l LogSubsystem) {
	logSubsystem = append(logSubsystem, sys)
	logSubsystemMap[strings.ToLower(sys)] = l
}

func getSubsystem(sys string) (LogSubsystem, bool) {
	if m, ok := logSubsystemMap[strings.ToLower(sys)]; ok {
		return m, true
	}
	return LogPermute, false
}

type Qlog struct {
	// This is the logging system level store. Increase size as the number of
	// LogSubsystems increases past your capacity
	LogLevels uint32

	Write func(format string, args ...interface{}) error

	// Maximum level to log at all, regardless of subsystem
	maxLevel uint8
}

func PrintToStdout(format string, args ...interface{}) error {
	format += "\n"
	_, err := fmt.Printf(format, args...)
	return err
}

// NewQlog returns a logger writing to stdout with levels taken from the
// TRACE environment variable.
func NewQlog() *Qlog {
	return NewQlogExt(PrintToStdout)
}

func NewQlogExt(outLog func(format string, args ...interface{}) error) *Qlog {
	q := Qlog{
		LogLevels: 0,
		Write:     outLog,
		maxLevel:  maxLogLevels - 1,
	}
	q.SetLogLevels(os.Getenv(logEnvTag))

	return &q
}

func (q *Qlog) SetWriter(w func(format string, args ...interface{}) error) {
	q.Write = w
}

func (q *Qlog) SetMaxLevel(level uint8) {
	q.maxLevel = level
}

// Get whether, given the subsystem, the given level is active for logs
func (q *Qlog) getLogLevel(idx LogSubsystem, level uint8) bool {
	var mask uint32 = (1 << uint32((uint8(idx)*maxLogLevels)+level))
	return (q.LogLevels & mask) != 0
}

func (q *Qlog) setLogLevelBitmask(sys LogSubsystem, level uint8) {
	idx := uint8(sys)
	q.LogLevels &= ^(((1 << maxLogLevels) - 1) << (idx * maxLogLevels))
	q.LogLevels |= uint32(level) << uint32(idx*maxLogLevels)
}

// Load desired log levels from a specification string such as
// "Epoch/2,Permute|1". A "/" level is cumulative (levels 0 through N), a "|"
// value is taken as a raw bitmask of levels and "*" enables everything for
// that subsystem.
func (q *Qlog) SetLogLevels(levels string) {
	// reset all levels
	defaultSetting := uint8(1)
	if levels == "*/*" {
		defaultSetting = ^uint8(0)
	}

	for i := 0; i <= int(logSubsystemMax); i++ {
		q.setLogLevelBitmask(LogSubsystem(i), defaultSetting)
	}

	bases := strings.Split(levels, ",")

	for i := range bases {
		cummulative := true
		tokens := strings.Split(bases[i], "/")
		if len(tokens) != 2 {
			tokens = strings.Split(bases[i], "|")
			cummulative = false
			if len(tokens) != 2 {
				continue
			}
		}

		var level int = 0
		if tokens[1] == "*" {
			level = int(maxLogLevels)
			cummulative = true
		} else {
			var e error
			level, e = strconv.Atoi(tokens[1])
			if e != nil {
				continue
			}
		}

		// if it's cummulative, turn it into a cummulative mask
		if cummulative {
			if level >= int(maxLogLevels) {
				level = int(maxLogLevels - 1)
			}
			level = (1 << uint8(level+1)) - 1
		}

		idx, ok := getSubsystem(tokens[0])
		if !ok {
			continue
		}

		q.setLogLevelBitmask(idx, uint8(level))
	}
}

func formatString(idx LogSubsystem, reqId uint64, t time.Time,
	format string) string {

	var front string
	if reqId < MinSpecialReqId {
		const frontFmt = "%s | %12s %7d: "
		front = fmt.Sprintf(frontFmt, t.Format(timeFormat),
			idx, reqId)
	} else {
		const frontFmt = "%s | %12s % 7s: "
		front = fmt.Sprintf(frontFmt, t.Format(timeFormat),
			idx, specialReq(reqId))
	}

	return front + format
}

func (q *Qlog) Log(idx LogSubsystem, reqId uint64, level uint8, format string,
	args ...interface{}) {

	if level <= q.maxLevel {
		q.Log_(time.Now(), idx, reqId, level, format, args...)
	}
}

// Should only be used by tests
func (q *Qlog) Log_(t time.Time, idx LogSubsystem, reqId uint64, level uint8,
	format string, args ...interface{}) {

	if q.getLogLevel(idx, level) {
		q.Write(formatString(idx, reqId, t, format), args...)
	}
}
