// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the modgraph command-line interface.
//
// Every command is built by a newXCommand(app) constructor and receives the
// App composition root, so tests can swap the configuration provider and
// the output streams.
package cmd
