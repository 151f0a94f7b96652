package taxtree

import (
	"errors"
	"testing"
)

func TestValidateLengthMismatch(t *testing.T) {
	tr := &Tree{Names: []string{"a", "b"}, Parents: []string{""}, Values: []int{1, 2}}
	err := tr.Validate()
	var aErr *AssemblyError
	if !errors.As(err, &aErr) {
		t.Fatalf("want *AssemblyError, got %v", err)
	}
}

func TestValidateDuplicate(t *testing.T) {
	tr := &Tree{Names: []string{"a", "a"}, Parents: []string{"", ""}, Values: []int{1, 2}}
	if err := tr.Validate(); err == nil {
		t.Fatalf("expected duplicate-name error")
	}
}

func TestValidateDanglingParent(t *testing.T) {
	tr := &Tree{Names: []string{"a"}, Parents: []string{"ghost"}, Values: []int{1}}
	err := tr.Validate()
	var aErr *AssemblyError
	if !errors.As(err, &aErr) || aErr.Name != "a" {
		t.Fatalf("want dangling-parent error on node a, got %v", err)
	}
}

func TestAnchorSet(t *testing.T) {
	a := NewAnchorSet("Viruses", "", "Viruses", "other entries")
	if a.Len() != 2 || !a.Contains("Viruses") || a.Contains("") {
		t.Fatalf("unexpected anchor set %v", a.Names())
	}
	if d := DefaultAnchors(); !d.Contains("cellular organisms") || d.Len() != 4 {
		t.Fatalf("default anchors changed: %v", d.Names())
	}
}
