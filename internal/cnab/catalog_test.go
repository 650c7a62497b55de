package cnab

import (
	"testing"
)

func TestNewTypeCatalog_SkipsInactive(t *testing.T) {
	cat := NewTypeCatalog([]TransactionType{
		{ID: typeID(1), Code: 1, Active: true},
		{ID: typeID(2), Code: 2, Active: false},
	})

	if _, ok := cat.Resolve(1); !ok {
		t.Error("Resolve(1) = not found, want found")
	}
	if _, ok := cat.Resolve(2); ok {
		t.Error("Resolve(2) resolved an inactive type")
	}
	if cat.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cat.Len())
	}
}

func TestTypeCatalog_Resolve(t *testing.T) {
	cat := testCatalog()

	tests := []struct {
		code      int
		wantFound bool
	}{
		{1, true},
		{2, true},
		{3, true},
		{0, false},
		{9, false},
		{-1, false},
	}

	for _, tt := range tests {
		id, ok := cat.Resolve(tt.code)
		if ok != tt.wantFound {
			t.Errorf("Resolve(%d) found = %v, want %v", tt.code, ok, tt.wantFound)
			continue
		}
		if ok && id != typeID(tt.code) {
			t.Errorf("Resolve(%d) = %s, want %s", tt.code, id, typeID(tt.code))
		}
	}
}

func TestNewTypeCatalog_DuplicateCodeFirstWins(t *testing.T) {
	// Two active rows sharing a code: the first row supplied wins.
	// The store lists rows oldest first, making this deterministic.
	cat := NewTypeCatalog([]TransactionType{
		{ID: typeID(1), Code: 5, Active: true},
		{ID: typeID(2), Code: 5, Active: true},
	})

	id, ok := cat.Resolve(5)
	if !ok {
		t.Fatal("Resolve(5) = not found")
	}
	if id != typeID(1) {
		t.Errorf("Resolve(5) = %s, want first row %s", id, typeID(1))
	}
}

func TestNewTypeCatalog_Empty(t *testing.T) {
	cat := NewTypeCatalog(nil)
	if cat.Len() != 0 {
		t.Errorf("Len() = %d, want 0", cat.Len())
	}
	if _, ok := cat.Resolve(1); ok {
		t.Error("Resolve on empty catalog found a type")
	}
}
