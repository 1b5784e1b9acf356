package theme

import "testing"

func TestDefaultPaletteIsActive(t *testing.T) {
	if got := CurrentName(); got != DefaultName {
		t.Fatalf("expected %q to be active, got %q", DefaultName, got)
	}
	if Current().Primary.Dark == "" {
		t.Fatal("expected active palette to define a primary color")
	}
}

func TestSetRejectsUnknownPalette(t *testing.T) {
	t.Cleanup(func() { Set(DefaultName) })
	if Set("no-such-theme") {
		t.Fatal("expected unknown palette to be rejected")
	}
	if !Set("gruvbox") || CurrentName() != "gruvbox" {
		t.Fatal("expected gruvbox to become active")
	}
}

func TestCycleVisitsEveryPalette(t *testing.T) {
	t.Cleanup(func() { Set(DefaultName) })
	names := Available()
	if len(names) < 3 {
		t.Fatalf("expected at least 3 palettes, got %v", names)
	}
	seen := map[string]bool{CurrentName(): true}
	for range names {
		seen[Cycle()] = true
	}
	for _, name := range names {
		if !seen[name] {
			t.Errorf("cycle never reached %q", name)
		}
	}
}
