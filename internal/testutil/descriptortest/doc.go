// SPDX-License-Identifier: MPL-2.0

// Package descriptortest builds module and target descriptors and sealed
// stores for tests.
//
// It is separate from testutil, which imports no modgraph packages.
//
// # Usage
//
//	s := descriptortest.SealedStore(t,
//	    descriptortest.Module("Core"),
//	    descriptortest.Module("Engine", descriptortest.Public("Core")),
//	    descriptortest.Target("Game", descriptor.TargetGame, "Engine"),
//	)
package descriptortest
