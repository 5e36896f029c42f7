package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestCategoryUUIDIsStable(t *testing.T) {
	first := CategoryUUID("Engineering")
	second := CategoryUUID("  engineering ")
	if first == uuid.Nil {
		t.Fatalf("expected non-nil uuid")
	}
	if first != second {
		t.Fatalf("expected case and whitespace insensitive ids, got %s and %s", first, second)
	}
}

func TestScopedKeysDoNotCollide(t *testing.T) {
	if CategoryUUID("admin") == SubjectUUID("admin") {
		t.Fatalf("expected category and subject ids to differ")
	}
}

func TestEmptyKeysYieldNil(t *testing.T) {
	if got := UUID("   "); got != uuid.Nil {
		t.Fatalf("expected nil uuid for blank key, got %s", got)
	}
	if got := CategoryUUID(""); got != uuid.Nil {
		t.Fatalf("expected nil uuid for blank slug, got %s", got)
	}
}
