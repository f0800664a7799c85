// Copyright (c) 2018 Arista Networks, Inc.  All rights reserved.
// Arista Networks, Inc. Confidential and Proprietary.

// Utility functions necessary for permutation strategies to register
// themselves to be valid options for the test runner to load by name.
package permuter

type StrategyConstructor func(conf string) Strategy

type strategy struct {
	Name        string
	Constructor StrategyConstructor
}

var strategies []strategy

func registerStrategy(name string, constructor StrategyConstructor) {
	s := strategy{
		Name:        name,
		Constructor: constructor,
	}

	strategies = append(strategies, s)
}

// LookupStrategy instantiates the named strategy, passing conf through to
// its constructor. It returns nil for an unknown name.
func LookupStrategy(name string, conf string) Strategy {
	for _, s := range strategies {
		if s.Name == name {
			return s.Constructor(conf)
		}
	}
	return nil
}

// StrategyNames lists the registered strategies.
func StrategyNames() []string {
	names := make([]string, 0, len(strategies))
	for _, s := range strategies {
		names = append(names, s.Name)
	}
	return names
}

func init() {
	registerStrategy("random", func(conf string) Strategy {
		return NewRandomPermuter(conf)
	})
}
