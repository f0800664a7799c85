// Copyright (c) 2018 Arista Networks, Inc.  All rights reserved.
// Arista Networks, Inc. Confidential and Proprietary.

package utils

import "fmt"

// BitFlagsSet for a given a bitflag field and an integer of flags,
// returns whether the flags are set or not as a boolean.
func BitFlagsSet(field uint, flags uint) bool {
	if field&flags == flags {
		return true
	}
	return false
}

// BitAnyFlagSet for a given a bitflag field and an integer of flags,
// returns whether any flag is set or not as a boolean.
func BitAnyFlagSet(field uint, flags uint) bool {
	if field&flags != 0 {
		return true
	}
	return false
}

// Assert the condition is true. If it is not true then panic with the given
// message.
func Assert(condition bool, format string, args ...interface{}) {
	if !condition {
		msg := fmt.Sprintf(format, args...)
		panic(msg)
	}
}

func AssertNoErr(err error) {
	if err != nil {
		Assert(false, err.Error())
	}
}
