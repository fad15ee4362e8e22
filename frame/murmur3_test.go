package frame

import "testing"

func TestMurmurTokenEmptyInputIsZero(t *testing.T) {
	t.Parallel()
	if got := MurmurToken(nil); got != 0 {
		t.Fatalf("MurmurToken(nil) = %d, want 0", got)
	}
	if got := MurmurToken([]byte{}); got != 0 {
		t.Fatalf("MurmurToken([]byte{}) = %d, want 0", got)
	}
}

func TestMurmurTokenDeterministic(t *testing.T) {
	t.Parallel()
	keys := [][]byte{
		[]byte("a"),
		[]byte("partition-key"),
		[]byte("a longer partition key that spans more than one 16 byte block of input"),
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
	}

	for _, k := range keys {
		first := MurmurToken(k)
		for i := 0; i < 5; i++ {
			if got := MurmurToken(k); got != first {
				t.Fatalf("MurmurToken(%v) not deterministic: got %d, want %d", k, got, first)
			}
		}
	}
}

func TestMurmurTokenDistinguishesDifferentKeys(t *testing.T) {
	t.Parallel()
	a := MurmurToken([]byte("key-a"))
	b := MurmurToken([]byte("key-b"))
	if a == b {
		t.Fatalf("expected distinct tokens for distinct keys, both got %d", a)
	}
}

func TestMurmurTokenCoversEveryTailLengthBranch(t *testing.T) {
	t.Parallel()
	// Lengths 1..15 exercise every fallthrough case in the tail switch, plus
	// one full 16-byte block with no tail at all.
	seen := make(map[Token]bool)
	for n := 1; n <= 16; n++ {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i + 1)
		}
		tok := MurmurToken(data)
		if seen[tok] {
			t.Fatalf("length %d collided with a previous length's token", n)
		}
		seen[tok] = true
	}
}
