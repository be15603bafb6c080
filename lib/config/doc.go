// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads and validates pipeline configuration.
//
// Configuration comes from a single file, YAML or JSON (with
// comments) selected by extension. There is no automatic discovery
// and environment variables never override file values; the only
// expansion performed is ${VAR} and ${VAR:-default} in path and
// credential fields, which keeps configs portable across machines
// without hidden overrides.
package config
