package text

import "testing"

func TestMapperOffsetToPositionAscii(t *testing.T) {
	src := []byte("line one\nline two\nline three")
	m := NewMapper(src)

	line, col := m.OffsetToPosition(0)
	if line != 0 || col != 0 {
		t.Fatalf("offset 0: got (%d,%d), want (0,0)", line, col)
	}

	// "line two" starts right after the first '\n', at byte 9.
	line, col = m.OffsetToPosition(9)
	if line != 1 || col != 0 {
		t.Fatalf("offset 9: got (%d,%d), want (1,0)", line, col)
	}

	// 5 bytes into "line two" is 't' at column 5.
	line, col = m.OffsetToPosition(9 + 5)
	if line != 1 || col != 5 {
		t.Fatalf("offset 14: got (%d,%d), want (1,5)", line, col)
	}
}

func TestMapperPositionToOffsetRoundTrips(t *testing.T) {
	src := []byte("abc\ndef\nghi")
	m := NewMapper(src)

	for _, offset := range []int{0, 1, 4, 6, 8, 10, 11} {
		line, col := m.OffsetToPosition(offset)
		got := m.PositionToOffset(line, col)
		if got != offset {
			t.Fatalf("round trip offset %d -> (%d,%d) -> %d", offset, line, col, got)
		}
	}
}

func TestMapperHandlesSupplementaryPlaneRunes(t *testing.T) {
	// U+1F600 (😀) encodes as a UTF-16 surrogate pair: 2 code units.
	src := []byte("a😀b")
	m := NewMapper(src)

	// 'a' occupies byte 0, col 0; 😀 starts at byte 1, col 1; occupies
	// 2 UTF-16 units so 'b' is at col 3, byte offset 1+4=5.
	line, col := m.OffsetToPosition(5)
	if line != 0 || col != 3 {
		t.Fatalf("offset after emoji: got (%d,%d), want (0,3)", line, col)
	}

	offset := m.PositionToOffset(0, 3)
	if offset != 5 {
		t.Fatalf("PositionToOffset(0,3) = %d, want 5", offset)
	}
}

func TestMapperClampsOutOfRange(t *testing.T) {
	src := []byte("short")
	m := NewMapper(src)

	line, col := m.OffsetToPosition(-5)
	if line != 0 || col != 0 {
		t.Fatalf("negative offset: got (%d,%d), want (0,0)", line, col)
	}

	line, col = m.OffsetToPosition(1000)
	if line != 0 || col != len(src) {
		t.Fatalf("past-end offset: got (%d,%d), want (0,%d)", line, col, len(src))
	}

	if got := m.PositionToOffset(5, 0); got != len(src) {
		t.Fatalf("PositionToOffset past last line = %d, want %d", got, len(src))
	}

	if got := m.PositionToOffset(-1, 0); got != 0 {
		t.Fatalf("PositionToOffset negative line = %d, want 0", got)
	}
}

func TestMapperColumnClampsAtLineEnd(t *testing.T) {
	src := []byte("ab\ncd")
	m := NewMapper(src)

	// Column far past the end of line 0 should clamp to the line's end
	// (byte offset of the newline), not walk into the next line.
	offset := m.PositionToOffset(0, 100)
	if offset != 2 {
		t.Fatalf("PositionToOffset(0,100) = %d, want 2 (end of \"ab\")", offset)
	}
}
