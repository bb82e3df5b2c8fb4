package source

import "testing"

func TestSpanShift(t *testing.T) {
	tests := []struct {
		name  string
		span  Span
		left  uint32
		right uint32
		want  Span
	}{
		{name: "left by 5", span: Span{Start: 10, End: 20}, left: 5, want: Span{Start: 5, End: 15}},
		{name: "left to zero", span: Span{Start: 10, End: 20}, left: 10, want: Span{Start: 0, End: 10}},
		{name: "left underflow keeps span", span: Span{Start: 5, End: 10}, left: 6, want: Span{Start: 5, End: 10}},
		{name: "right by 3", span: Span{Start: 1, End: 2}, right: 3, want: Span{Start: 4, End: 5}},
		{name: "empty span", span: Span{Start: 7, End: 7}, left: 2, want: Span{Start: 5, End: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.span.ShiftLeft(tt.left).ShiftRight(tt.right)
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpanCoverContains(t *testing.T) {
	a := Span{Start: 4, End: 8}
	b := Span{Start: 2, End: 6}
	if got := a.Cover(b); got != (Span{Start: 2, End: 8}) {
		t.Fatalf("Cover = %v", got)
	}
	if !a.Contains(8) || a.Contains(9) || a.Contains(3) {
		t.Fatal("Contains boundary mismatch")
	}
	if !b.Within(Span{Start: 0, End: 6}) || a.Within(b) {
		t.Fatal("Within mismatch")
	}
}
