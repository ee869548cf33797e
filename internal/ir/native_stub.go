//go:build !amd64

package ir

// Non-amd64 builds carry no machine-code emitter (native_amd64.go); every
// Item runs through the closure interpreter.
type nativeBinaryFunc func(a, b int64) int64

func tryAssembleNativeBinary(it *Item) nativeBinaryFunc { return nil }
