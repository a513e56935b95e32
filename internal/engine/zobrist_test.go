package engine

import (
	"math/rand"
	"testing"

	"github.com/park285/gambito/internal/board"
)

func mustBoard(t *testing.T, fen string) *board.Board {
	t.Helper()
	b, err := board.FromFEN(fen)
	if err != nil {
		t.Fatalf("FromFEN(%q): %v", fen, err)
	}
	return b
}

func TestUpdateMatchesScratchForEveryFirstMove(t *testing.T) {
	b := board.New()
	base := HashPosition(b.Position())
	moves := b.LegalMoves()
	for i := range moves {
		mv := &moves[i]
		h := UpdateHash(base, b.Position(), mv)
		b.Push(mv)
		if want := HashPosition(b.Position()); h != want {
			t.Fatalf("move %s: incremental %d, scratch %d", mv, h, want)
		}
		b.Pop()
		if back := UpdateHash(h, b.Position(), mv); back != base {
			t.Fatalf("move %s: update not symmetric", mv)
		}
	}
}

func TestUpdateCastling(t *testing.T) {
	b := mustBoard(t, "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1")
	for _, terse := range []string{"e1g1", "e1c1"} {
		mv, err := b.ParseMove(terse)
		if err != nil {
			t.Fatalf("ParseMove(%s): %v", terse, err)
		}
		h := UpdateHash(HashPosition(b.Position()), b.Position(), mv)
		b.Push(mv)
		if want := HashPosition(b.Position()); h != want {
			t.Fatalf("castle %s: incremental %d, scratch %d", terse, h, want)
		}
		b.Pop()
	}
}

func TestUpdateEnPassant(t *testing.T) {
	// White's double push must switch the en-passant file on, and the
	// capture itself must remove the pawn behind the target square.
	b := mustBoard(t, "4k3/8/8/8/4p3/8/5P2/4K3 w - - 0 1")
	push, err := b.ParseMove("f2f4")
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	h := UpdateHash(HashPosition(b.Position()), b.Position(), push)
	b.Push(push)
	if want := HashPosition(b.Position()); h != want {
		t.Fatalf("double push: incremental %d, scratch %d", h, want)
	}
	take, err := b.ParseMove("e4f3")
	if err != nil {
		t.Fatalf("ParseMove en passant: %v", err)
	}
	h = UpdateHash(h, b.Position(), take)
	b.Push(take)
	if want := HashPosition(b.Position()); h != want {
		t.Fatalf("en passant capture: incremental %d, scratch %d", h, want)
	}
}

func TestUpdatePromotion(t *testing.T) {
	b := mustBoard(t, "4k3/6P1/8/8/8/8/8/4K3 w - - 0 1")
	for _, terse := range []string{"g7g8q", "g7g8n"} {
		mv, err := b.ParseMove(terse)
		if err != nil {
			t.Fatalf("ParseMove(%s): %v", terse, err)
		}
		h := UpdateHash(HashPosition(b.Position()), b.Position(), mv)
		b.Push(mv)
		if want := HashPosition(b.Position()); h != want {
			t.Fatalf("promotion %s: incremental %d, scratch %d", terse, h, want)
		}
		b.Pop()
	}
}

// A randomized push/pop walk: the incrementally maintained hash must equal
// the from-scratch hash after every single step.
func TestRandomWalkHashStability(t *testing.T) {
	b := mustBoard(t, "r1b1kb1r/pppp1ppp/5q2/4n3/3KP3/2N3PN/PPP4P/R1BQ1B1R b kq - 0 1")
	rng := rand.New(rand.NewSource(7))
	hash := HashPosition(b.Position())
	root := hash

	var played []string
	for step := 0; step < 30; step++ {
		moves := b.LegalMoves()
		if len(moves) == 0 {
			break
		}
		mv := moves[rng.Intn(len(moves))]
		hash = UpdateHash(hash, b.Position(), &mv)
		b.Push(&mv)
		played = append(played, mv.String())
		if want := HashPosition(b.Position()); hash != want {
			t.Fatalf("step %d (%v): incremental %d, scratch %d", step, played, hash, want)
		}
	}
	for i := b.Depth(); i > 0; i-- {
		b.Pop()
		mv, err := b.ParseMove(played[i-1])
		if err != nil {
			t.Fatalf("replay %s: %v", played[i-1], err)
		}
		hash = UpdateHash(hash, b.Position(), mv)
		if want := HashPosition(b.Position()); hash != want {
			t.Fatalf("unwind %d: incremental %d, scratch %d", i, hash, want)
		}
	}
	if hash != root {
		t.Fatalf("balanced walk ended at %d, want %d", hash, root)
	}
}
