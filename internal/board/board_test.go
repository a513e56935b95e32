package board

import (
	"testing"
)

func TestStartposLegalMoves(t *testing.T) {
	b := New()
	if got := len(b.LegalMoves()); got != 20 {
		t.Fatalf("startpos legal moves = %d, want 20", got)
	}
	if b.FEN() != StartFEN {
		t.Fatalf("startpos FEN = %q", b.FEN())
	}
}

func TestPushPopRestoresPosition(t *testing.T) {
	b := New()
	before := b.FEN()
	mv, err := b.ParseMove("e2e4")
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	b.Push(mv)
	if b.FEN() == before {
		t.Fatalf("push did not change position")
	}
	b.Pop()
	if b.FEN() != before {
		t.Fatalf("pop restored %q, want %q", b.FEN(), before)
	}
	if b.Depth() != 0 {
		t.Fatalf("depth after balanced push/pop = %d", b.Depth())
	}
}

func TestIsIrreversible(t *testing.T) {
	b := New()
	pawn, err := b.ParseMove("e2e4")
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	if !b.IsIrreversible(pawn) {
		t.Fatalf("pawn move should be irreversible")
	}
	knight, err := b.ParseMove("g1f3")
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	if b.IsIrreversible(knight) {
		t.Fatalf("quiet knight move should be reversible")
	}
}

func TestRuleDraw(t *testing.T) {
	cases := []struct {
		name string
		fen  string
		want bool
	}{
		{"bare kings", "8/8/4k3/8/8/4K3/8/8 w - - 0 1", true},
		{"king and knight", "8/8/4k3/8/8/4KN2/8/8 w - - 0 1", true},
		{"king and rook", "8/8/4k3/8/8/4K3/8/7R w - - 0 1", false},
		{"fifty moves", "8/8/4k3/8/8/4K3/8/7R w - - 100 80", true},
	}
	for _, tc := range cases {
		b, err := FromFEN(tc.fen)
		if err != nil {
			t.Fatalf("%s: FromFEN: %v", tc.name, err)
		}
		if got := b.IsRuleDraw(); got != tc.want {
			t.Fatalf("%s: IsRuleDraw = %v, want %v", tc.name, got, tc.want)
		}
	}
}
