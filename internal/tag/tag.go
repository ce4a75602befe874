//go:build !debug

// Package tag provides build tag constants.
package tag

// Debug enables expensive runtime checks. Build with `-tags debug` to set it.
const Debug = false
