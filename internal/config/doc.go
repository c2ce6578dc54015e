// SPDX-License-Identifier: MPL-2.0

// Package config handles modgraph configuration using Viper with CUE as the
// file format.
//
// The file is looked up at $XDG_CONFIG_HOME/modgraph/config.cue (or the
// platform equivalent), then ./modgraph.cue in the working directory. A path
// given with --config is used exclusively. Every key can be overridden by a
// MODGRAPH_-prefixed environment variable, dots replaced by underscores
// (MODGRAPH_PLANNING_PARALLELISM=8).
//
// Files are validated against the embedded config_schema.cue before they
// reach Viper.
package config
