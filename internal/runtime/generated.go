package runtime

import (
	"strings"

	"github.com/lattisc/jitvm/internal/types"
)

// The array/string routine table spec.md §4.5.3 lists as "generated on
// demand" rather than fixed natives. Every routine is a plain Go function
// shared by all callers; nothing is generated or linked per program.
// internal/ir.Link does not resolve calls to them: the interpreter tier
// calls StringConcat directly, and no other routine here has a caller in
// internal/ir.

func ArrayPush(arr []Any, v Any) []Any { return append(arr, v) }

func ArrayPop(arr []Any) ([]Any, Any) {
	if len(arr) == 0 {
		panic(NewPanic("pop from empty array"))
	}
	last := arr[len(arr)-1]
	return arr[:len(arr)-1], last
}

func ArrayClear(arr []Any) []Any { return arr[:0] }

// ArrayReserve realloc's arr to exactly n elements, panicking on a
// negative n and default-initializing every newly added slot so a
// subsequent read never observes an untagged zero word (spec.md §4.5.3).
func ArrayReserve(reg *types.Registry, elem *types.DataType, arr []Any, n int) []Any {
	if n < 0 {
		panic(NewPanic("array reserve: negative length"))
	}
	if n <= len(arr) {
		return arr[:n]
	}
	grown := make([]Any, n)
	copy(grown, arr)
	zero := DefaultValue(reg, elem)
	for i := len(arr); i < n; i++ {
		grown[i] = zero
	}
	return grown
}

func ArrayToString(reg *types.Registry, box *Box, arr []Any) string {
	return Stringify(reg, box, arr, nil)
}

func ArrayIndexOf(arr []Any, v Any) int {
	for i, e := range arr {
		if e == v {
			return i
		}
	}
	return -1
}

func ArrayCount(arr []Any, v Any) int {
	n := 0
	for _, e := range arr {
		if e == v {
			n++
		}
	}
	return n
}

func StringConcat(a, b string) string { return a + b }

// StringPad prefixes s with width-len(s) copies of with, per spec.md
// §4.5.3's "Prefix n spaces" (generalized to a caller-supplied pad byte).
func StringPad(s string, width int, with byte) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(string(with), width-len(s)) + s
}

func StringIndexOf(s, sub string) int { return strings.Index(s, sub) }

func StringCount(s, sub string) int { return strings.Count(s, sub) }

func StringReplace(s, old, new string) string { return strings.ReplaceAll(s, old, new) }

func StringTrim(s string) string { return strings.TrimSpace(s) }

func StringStartsWith(s, prefix string) bool { return strings.HasPrefix(s, prefix) }

func StringEndsWith(s, suffix string) bool { return strings.HasSuffix(s, suffix) }

func StringContains(s, sub string) bool { return strings.Contains(s, sub) }

func StringSplit(s, sep string) []string { return strings.Split(s, sep) }

func StringJoin(parts []string, sep string) string { return strings.Join(parts, sep) }
