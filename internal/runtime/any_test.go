package runtime

import (
	"testing"

	"github.com/lattisc/jitvm/internal/types"
)

func TestPackUnpackPrimitivesRoundTrip(t *testing.T) {
	reg := types.NewRegistry()

	if got := UnpackInt(PackInt(reg, -7)); got != -7 {
		t.Errorf("int round trip = %d, want -7", got)
	}
	if got := UnpackBool(PackBool(reg, true)); got != true {
		t.Errorf("bool round trip = %v, want true", got)
	}
	if got := UnpackBool(PackBool(reg, false)); got != false {
		t.Errorf("bool round trip = %v, want false", got)
	}
	if got := UnpackChar(PackChar(reg, 'x')); got != 'x' {
		t.Errorf("char round trip = %q, want 'x'", got)
	}
	if got := UnpackFloat(PackFloat(reg, 3.5)); got != 3.5 {
		t.Errorf("float round trip = %v, want 3.5", got)
	}
}

func TestPackUnpackStringRoundTrip(t *testing.T) {
	reg := types.NewRegistry()
	box := NewBox()
	a := PackString(reg, box, "hello")
	if got := UnpackString(a, box); got != "hello" {
		t.Errorf("string round trip = %q, want %q", got, "hello")
	}
}

func TestPackArrayRoundTrip(t *testing.T) {
	reg := types.NewRegistry()
	box := NewBox()
	elems := []Any{PackInt(reg, 1), PackInt(reg, 2)}
	a := PackArray(reg, box, types.TInteger, elems)
	got := UnpackArray(a, box)
	if len(got) != 2 || UnpackInt(got[0]) != 1 || UnpackInt(got[1]) != 2 {
		t.Errorf("array round trip = %v, want [1 2]", got)
	}
}

func TestTypeIDDistinguishesKinds(t *testing.T) {
	reg := types.NewRegistry()
	i := PackInt(reg, 0)
	f := PackFloat(reg, 0)
	if i.TypeID() == f.TypeID() {
		t.Fatalf("int and float must not share a type id")
	}
}

func TestBoxZeroIndexNeverAliasesLiveEntry(t *testing.T) {
	box := NewBox()
	if got := box.get(0); got != nil {
		t.Fatalf("index 0 should be reserved as nil, got %v", got)
	}
	var zero Any
	if got := UnpackPointer(zero, box); got != nil {
		t.Fatalf("a zero Any must not resolve to a live box entry, got %v", got)
	}
}

func TestUnpackStringWrongKindReturnsEmpty(t *testing.T) {
	reg := types.NewRegistry()
	box := NewBox()
	notAString := PackInt(reg, 5)
	if got := UnpackString(notAString, box); got != "" {
		t.Errorf("unpacking a non-string payload as a string = %q, want empty", got)
	}
}
