package position_test

import (
	"testing"

	"github.com/wdltools/wdl/position"
)

func TestLineIndexPosition(t *testing.T) {
	t.Parallel()

	text := "version 1.3\ntask t {\n  command {}\n}\n"
	idx := position.NewLineIndex(text)

	tests := []struct {
		offset int
		line   int
		col    int
	}{
		{0, 1, 1},
		{8, 1, 9},
		{12, 2, 1},
		{23, 3, 3},
	}

	for _, tt := range tests {
		got := idx.Position(tt.offset)
		if got.Line != tt.line || got.Column != tt.col {
			t.Errorf("Position(%d) = %d:%d, want %d:%d", tt.offset, got.Line, got.Column, tt.line, tt.col)
		}
	}
}

func TestLineIndexUTF16Roundtrip(t *testing.T) {
	t.Parallel()

	text := "String s = \"héllo\"\n"
	idx := position.NewLineIndex(text)

	offset := 17 // inside the emoji-free string, after the accented char
	u := idx.UTF16Position(offset)
	back := idx.OffsetForUTF16(u)

	if back != offset {
		t.Errorf("round trip mismatch: got %d, want %d", back, offset)
	}
}

func TestSpanContainsAndUnion(t *testing.T) {
	t.Parallel()

	a := position.Span{Start: position.Position{Offset: 0}, End: position.Position{Offset: 10}}
	b := position.Span{Start: position.Position{Offset: 5}, End: position.Position{Offset: 15}}

	if !a.Contains(position.Position{Offset: 3}) {
		t.Error("expected a to contain offset 3")
	}

	if a.Contains(position.Position{Offset: 10}) {
		t.Error("End should be exclusive")
	}

	u := a.Union(b)
	if u.Start.Offset != 0 || u.End.Offset != 15 {
		t.Errorf("Union = %+v", u)
	}
}
