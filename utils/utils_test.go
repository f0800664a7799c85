// Copyright (c) 2018 Arista Networks, Inc.  All rights reserved.
// Arista Networks, Inc. Confidential and Proprietary.

package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitFlags(t *testing.T) {
	require.True(t, BitFlagsSet(0b111, 0b101))
	require.False(t, BitFlagsSet(0b100, 0b101))
	require.True(t, BitAnyFlagSet(0b100, 0b101))
	require.False(t, BitAnyFlagSet(0b010, 0b101))
}

func TestAssert(t *testing.T) {
	require.NotPanics(t, func() {
		Assert(true, "should not fire")
	})
	require.PanicsWithValue(t, "value 7 out of range", func() {
		Assert(false, "value %d out of range", 7)
	})
}
