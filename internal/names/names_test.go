package names

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	name := Generate()

	parts := strings.Split(name, "-")
	if len(parts) != 2 {
		t.Fatalf("expected name with format 'adjective-surname', got %q", name)
	}
	if parts[0] == "" || parts[1] == "" {
		t.Errorf("expected non-empty adjective and surname, got %q", name)
	}
	if strings.Contains(name, "_") {
		t.Errorf("expected no underscores, got %q", name)
	}
}

func TestGenerate_Uniqueness(t *testing.T) {
	names := make(map[string]bool)
	for i := 0; i < 100; i++ {
		names[Generate()] = true
	}

	// With ~25k combinations, 100 generations should yield mostly unique names
	if len(names) < 50 {
		t.Errorf("expected more unique names, got only %d unique out of 100", len(names))
	}
}

func TestGenerateUnique(t *testing.T) {
	existing := make(map[string]bool)
	existsFn := func(name string) bool {
		return existing[name]
	}

	for i := 0; i < 10; i++ {
		name, err := GenerateUnique(existsFn, 100)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if existing[name] {
			t.Errorf("generated duplicate name: %s", name)
		}
		existing[name] = true
	}
}

func TestGenerateUnique_AllExist(t *testing.T) {
	existsFn := func(string) bool { return true }

	if _, err := GenerateUnique(existsFn, 10); err == nil {
		t.Error("expected error when all names exist")
	}

	// 0 uses the default attempt count
	if _, err := GenerateUnique(existsFn, 0); err == nil {
		t.Error("expected error when all names exist")
	}
}
