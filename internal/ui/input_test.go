package ui

import (
	"testing"

	"github.com/atomicstack/dwin-panel/internal/input"
	"github.com/charmbracelet/bubbles/key"
)

func TestKeyMapTranslatesToKnob(t *testing.T) {
	cases := []struct {
		key  string
		want input.Event
	}{
		{"right", input.CW},
		{"down", input.CW},
		{"j", input.CW},
		{"left", input.CCW},
		{"up", input.CCW},
		{"k", input.CCW},
		{"enter", input.Press},
		{"space", input.Press},
	}
	for _, tc := range cases {
		p := newTestPanel(t, Config{})
		p.h.Key(tc.key)
		if got := p.queue.Poll(); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.key, tc.want, got)
		}
	}
}

func TestUnboundKeysAreIgnored(t *testing.T) {
	p := newTestPanel(t, Config{})
	p.h.Key("x")
	if p.queue.Len() != 0 {
		t.Fatalf("unbound key queued an event")
	}
}

func TestShortHelpListsEveryBinding(t *testing.T) {
	keys := defaultKeyMap()
	bindings := keys.ShortHelp()
	if len(bindings) != 5 {
		t.Fatalf("expected 5 bindings, got %d", len(bindings))
	}
	for _, b := range bindings {
		if !b.Enabled() || len(b.Keys()) == 0 {
			t.Fatalf("binding %q has no keys", b.Help().Desc)
		}
	}
	if !key.Matches(keyMsg("backspace"), keys.Back) {
		t.Fatalf("backspace should go back")
	}
}
