package diag

import (
	"testing"

	"kymera/internal/source"
)

func TestCodeIDAndCategory(t *testing.T) {
	tests := []struct {
		code Code
		id   string
		cat  Category
	}{
		{LexUnknownChar, "LEX1001", CategorySyntax},
		{SynUnclosedBrace, "SYN2007", CategorySyntax},
		{SemaDuplicateSymbol, "SEM3002", CategorySemantic},
		{UnknownCode, "E0000", CategoryOther},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.id {
			t.Fatalf("ID(%d) = %q, want %q", tt.code, got, tt.id)
		}
		if got := tt.code.Category(); got != tt.cat {
			t.Fatalf("Category(%d) = %v, want %v", tt.code, got, tt.cat)
		}
	}
	if Code(9999).Title() != "Unknown error" {
		t.Fatal("unknown code must fall back to the unknown title")
	}
}

func TestBagLimitSortDedup(t *testing.T) {
	bag := NewBag(0)
	r := BagReporter{Bag: bag}
	ReportError(r, SynExpectSemicolon, source.Span{Start: 10, End: 11}, "expected ';'").Emit()
	ReportWarning(r, SemaAssignImmutable, source.Span{Start: 2, End: 3}, "immutable").Emit()
	b := ReportError(r, SemaDuplicateSymbol, source.Span{Start: 2, End: 3}, "dup").
		WithNote(source.Span{Start: 0, End: 1}, "previous declaration here")
	b.Emit()
	b.Emit() // second Emit is a no-op
	ReportError(r, SynExpectSemicolon, source.Span{Start: 10, End: 11}, "expected ';'").Emit()

	if bag.Len() != 4 {
		t.Fatalf("Len = %d, want 4", bag.Len())
	}
	bag.Sort()
	bag.Dedup()
	items := bag.Items()
	if len(items) != 3 {
		t.Fatalf("after dedup Len = %d, want 3", len(items))
	}
	if items[0].Code != SemaDuplicateSymbol || items[1].Code != SemaAssignImmutable {
		t.Fatalf("errors must sort before warnings on the same span: %v, %v", items[0].Code, items[1].Code)
	}
	if len(items[0].Notes) != 1 {
		t.Fatal("note lost")
	}
	if !bag.HasErrors() || !bag.HasWarnings() {
		t.Fatal("HasErrors/HasWarnings mismatch")
	}

	limited := NewBag(1)
	limited.AddAll(items)
	if limited.Len() != 1 {
		t.Fatalf("limited bag kept %d items", limited.Len())
	}
}

func TestDiagnosticShift(t *testing.T) {
	d := NewError(SemaUnresolvedSymbol, source.Span{Start: 1, End: 4}, "x").
		WithNote(source.Span{Start: 0, End: 1}, "n")
	shifted := d.Shift(100)
	if shifted.Primary != (source.Span{Start: 101, End: 104}) || shifted.Notes[0].Span.Start != 100 {
		t.Fatalf("Shift produced %+v", shifted)
	}
	if d.Notes[0].Span.Start != 0 {
		t.Fatal("Shift mutated the original notes")
	}
}
