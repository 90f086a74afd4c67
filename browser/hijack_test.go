package browser

import (
	"testing"

	"github.com/go-rod/rod/lib/proto"
)

func TestBlockedSet(t *testing.T) {
	got := blockedSet([]string{"Image", "Font", "Script", "bogus"})
	if len(got) != 2 {
		t.Fatalf("expected 2 blocked types, got %d: %v", len(got), got)
	}
	for _, rt := range []proto.NetworkResourceType{proto.NetworkResourceTypeImage, proto.NetworkResourceTypeFont} {
		if _, ok := got[rt]; !ok {
			t.Errorf("expected %s to be blocked", rt)
		}
	}
	if _, ok := got[proto.NetworkResourceTypeScript]; ok {
		t.Error("scripts must never be blocked")
	}
}

func TestBlockedSet_Empty(t *testing.T) {
	if got := blockedSet(nil); len(got) != 0 {
		t.Errorf("expected empty set, got %v", got)
	}
}
