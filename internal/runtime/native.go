package runtime

import "github.com/lattisc/jitvm/pkg/arena"

// Native is the fixed set of native routines spec.md §4.5.3 requires to
// exist regardless of program content, bound to one arena per VM instance
// (mirrors go-dws's internal/bytecode VM owning one allocator for its
// lifetime).
type Native struct {
	Arena *arena.Arena
	Box   *Box
}

func NewNative(a *arena.Arena) *Native {
	return &Native{Arena: a, Box: NewBox()}
}

// Malloc allocates n raw, zeroed bytes from the VM's arena.
func (n *Native) Malloc(size int) []byte { return n.Arena.AllocBytes(size) }

// Memcpy copies min(len(dst), len(src)) bytes from src into dst, returning
// the number of bytes copied.
func (n *Native) Memcpy(dst, src []byte) int { return copy(dst, src) }

// Realloc grows or shrinks a previous allocation, preserving its prefix.
func (n *Native) Realloc(old []byte, newSize int) []byte {
	grown := n.Arena.AllocBytes(newSize)
	copy(grown, old)
	return grown
}
