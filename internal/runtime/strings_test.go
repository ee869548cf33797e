package runtime

import (
	"testing"

	"github.com/lattisc/jitvm/internal/types"
)

func TestStringifyPrimitives(t *testing.T) {
	reg := types.NewRegistry()
	box := NewBox()
	cases := []struct {
		v    any
		want string
	}{
		{nil, "null"},
		{int32(42), "42"},
		{float32(1.5), "1.5"},
		{true, "true"},
		{rune('q'), "q"},
		{"already a string", "already a string"},
	}
	for _, c := range cases {
		if got := Stringify(reg, box, c.v, nil); got != c.want {
			t.Errorf("Stringify(%v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestStringifyArrayCycleDetection(t *testing.T) {
	reg := types.NewRegistry()
	box := NewBox()
	arr := make([]Any, 1)
	// A self-referential array would need a pointer-shaped element in a
	// real program; here we only confirm repeated stringification of the
	// same backing array within one call is deduplicated rather than
	// recursing forever.
	seen := map[uintptr]bool{}
	first := Stringify(reg, box, arr, seen)
	second := Stringify(reg, box, arr, seen)
	if second != "[...]" {
		t.Errorf("revisiting the same array should short-circuit, got %q", second)
	}
	_ = first
}

// TestStringifyValueRecursesIntoArrayElements confirms a tagged array Any
// renders each element's unboxed value rather than the raw packed word
// (spec.md §4.5.1's array-to-string helper).
func TestStringifyValueRecursesIntoArrayElements(t *testing.T) {
	reg := types.NewRegistry()
	box := NewBox()
	inner := []Any{PackInt(reg, 1), PackInt(reg, 2)}
	packed := PackArray(reg, box, types.TInteger, inner)

	got := StringifyValue(reg, box, packed, nil)
	if want := "[1, 2]"; got != want {
		t.Errorf("StringifyValue(array) = %q, want %q", got, want)
	}
}

func TestGeneratedArrayRoutines(t *testing.T) {
	var arr []Any
	arr = ArrayPush(arr, Any(1))
	arr = ArrayPush(arr, Any(2))
	if len(arr) != 2 {
		t.Fatalf("expected 2 elements after two pushes, got %d", len(arr))
	}
	arr, popped := ArrayPop(arr)
	if popped != Any(2) || len(arr) != 1 {
		t.Fatalf("pop returned %v with remaining %v", popped, arr)
	}
	if idx := ArrayIndexOf(arr, Any(1)); idx != 0 {
		t.Errorf("ArrayIndexOf = %d, want 0", idx)
	}
	if n := ArrayCount(arr, Any(1)); n != 1 {
		t.Errorf("ArrayCount = %d, want 1", n)
	}
	arr = ArrayClear(arr)
	if len(arr) != 0 {
		t.Errorf("ArrayClear left %d elements", len(arr))
	}
}

func TestArrayPopEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic popping an empty array")
		}
	}()
	ArrayPop(nil)
}

func TestArrayReserveGrowsAndDefaultInits(t *testing.T) {
	reg := types.NewRegistry()
	arr := []Any{PackInt(reg, 7)}

	grown := ArrayReserve(reg, types.TInteger, arr, 3)
	if len(grown) != 3 {
		t.Fatalf("expected length 3 after reserve, got %d", len(grown))
	}
	if UnpackInt(grown[0]) != 7 {
		t.Errorf("existing element clobbered: got %d", UnpackInt(grown[0]))
	}
	for i := 1; i < 3; i++ {
		if grown[i].TypeID() != reg.TypeID(types.TInteger) {
			t.Errorf("new slot %d not tagged as int", i)
		}
		if UnpackInt(grown[i]) != 0 {
			t.Errorf("new slot %d not zero-valued: %d", i, UnpackInt(grown[i]))
		}
	}
}

func TestArrayReserveNegativePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic reserving a negative length")
		}
	}()
	ArrayReserve(types.NewRegistry(), types.TInteger, nil, -1)
}

func TestGeneratedStringRoutines(t *testing.T) {
	if got := StringConcat("foo", "bar"); got != "foobar" {
		t.Errorf("StringConcat = %q, want foobar", got)
	}
	if got := StringPad("ab", 5, '-'); got != "---ab" {
		t.Errorf("StringPad = %q, want ---ab", got)
	}
	if !StringStartsWith("hello", "he") {
		t.Error("expected StringStartsWith true")
	}
	if !StringEndsWith("hello", "lo") {
		t.Error("expected StringEndsWith true")
	}
	if !StringContains("hello", "ell") {
		t.Error("expected StringContains true")
	}
	if got := StringReplace("aXbXc", "X", "-"); got != "a-b-c" {
		t.Errorf("StringReplace = %q, want a-b-c", got)
	}
	if got := StringSplit("a,b,c", ","); len(got) != 3 {
		t.Errorf("StringSplit produced %d parts, want 3", len(got))
	}
	if got := StringJoin([]string{"a", "b"}, "-"); got != "a-b" {
		t.Errorf("StringJoin = %q, want a-b", got)
	}
}
