package warnings

import (
	"testing"
	"time"
)

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("2=4h,3=24h")
	if err != nil {
		t.Fatalf("ParsePolicy() returned error: %v", err)
	}

	action, ok := p.Escalate(2)
	if !ok {
		t.Fatal("Escalate(2) should find a table entry")
	}
	if action.Kind != ActionMute {
		t.Errorf("Kind = %v, want %v", action.Kind, ActionMute)
	}
	if action.Duration != 4*time.Hour {
		t.Errorf("Duration = %v, want %v", action.Duration, 4*time.Hour)
	}

	action, ok = p.Escalate(3)
	if !ok || action.Duration != 24*time.Hour {
		t.Errorf("Escalate(3) = %v, %v, want 24h mute", action, ok)
	}
}

func TestEscalateUnknownCounts(t *testing.T) {
	p, err := ParsePolicy("2=4h,3=24h")
	if err != nil {
		t.Fatalf("ParsePolicy() returned error: %v", err)
	}

	// Exact-match lookup: counts without an entry get no automatic action,
	// including counts past the highest configured one.
	for _, count := range []int{0, 1, 4, 5, 100} {
		if action, ok := p.Escalate(count); ok {
			t.Errorf("Escalate(%d) = %v, want no action", count, action)
		}
	}
}

func TestEscalateIsPure(t *testing.T) {
	p, _ := ParsePolicy("2=30m")

	first, _ := p.Escalate(2)
	second, _ := p.Escalate(2)
	if first != second {
		t.Errorf("Escalate(2) returned %v then %v, want identical results", first, second)
	}
}

func TestParsePolicyInvalid(t *testing.T) {
	invalid := []string{
		"abc",
		"2=notaduration",
		"x=4h",
		"-1=4h",
	}

	for _, spec := range invalid {
		if _, err := ParsePolicy(spec); err == nil {
			t.Errorf("ParsePolicy(%q) should return an error", spec)
		}
	}
}

func TestParsePolicyEmpty(t *testing.T) {
	p, err := ParsePolicy("")
	if err != nil {
		t.Fatalf("ParsePolicy(\"\") returned error: %v", err)
	}
	if _, ok := p.Escalate(2); ok {
		t.Error("An empty policy should never recommend an action")
	}
}
