package strategy

import (
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	ctor, err := Resolve("ema_crossover")
	if err != nil {
		t.Fatalf("resolve known unit: %v", err)
	}
	unit := ctor(nil)
	if unit.Name() != "ema_crossover" {
		t.Fatalf("unit name: got %s", unit.Name())
	}

	_, err = Resolve("momentum")
	if err == nil {
		t.Fatal("unknown unit should fail")
	}
	if !strings.Contains(err.Error(), "ema_crossover") {
		t.Fatalf("error should enumerate valid names, got: %v", err)
	}
}

func TestList(t *testing.T) {
	infos := List()
	if len(infos) != 1 {
		t.Fatalf("got %d registered units, want 1", len(infos))
	}
	if infos[0].Name != "ema_crossover" {
		t.Fatalf("got %s", infos[0].Name)
	}
	if infos[0].DefaultParams.Int("ema_fast", 0) != 9 {
		t.Fatalf("default ema_fast: got %d", infos[0].DefaultParams.Int("ema_fast", 0))
	}
}

func TestParamsAccessors(t *testing.T) {
	p := Params{
		"f":     1.5,
		"i":     float64(21), // decoded JSON numbers arrive as float64
		"s":     "CNC",
		"empty": "",
	}

	if got := p.Float("f", 0); got != 1.5 {
		t.Fatalf("float: got %v", got)
	}
	if got := p.Float("missing", 9.9); got != 9.9 {
		t.Fatalf("float fallback: got %v", got)
	}
	if got := p.Int("i", 0); got != 21 {
		t.Fatalf("int from float64: got %d", got)
	}
	if got := p.Int("s", 7); got != 7 {
		t.Fatalf("int fallback on mistype: got %d", got)
	}
	if got := p.String("s", "X"); got != "CNC" {
		t.Fatalf("string: got %s", got)
	}
	if got := p.String("empty", "X"); got != "X" {
		t.Fatalf("empty string should fall back: got %s", got)
	}
}

func TestMerge(t *testing.T) {
	defaults := Params{"a": 1, "b": 2}
	overrides := Params{"b": 3, "c": 4}

	merged := Merge(defaults, overrides)
	if merged.Int("a", 0) != 1 || merged.Int("b", 0) != 3 || merged.Int("c", 0) != 4 {
		t.Fatalf("merge mismatch: %+v", merged)
	}
	if defaults.Int("b", 0) != 2 {
		t.Fatal("merge must not mutate defaults")
	}
}
