package engine

import (
	"testing"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/gambito/internal/board"
)

func TestEvaluateStartposIsBalanced(t *testing.T) {
	if got := Evaluate(board.New()); got != 0 {
		t.Fatalf("startpos eval = %d, want 0", got)
	}
	b := mustBoard(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1")
	if got := Evaluate(b); got != 0 {
		t.Fatalf("startpos eval for black = %d, want 0", got)
	}
}

func TestEvaluateCheckmate(t *testing.T) {
	// After 1.f3 e5 2.g4 Qh4# the side to move is mated.
	b := mustBoard(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 0 3")
	if got := Evaluate(b); got != -MateScore {
		t.Fatalf("mated eval = %d, want %d", got, -MateScore)
	}
}

func TestEvaluateStalemate(t *testing.T) {
	b := mustBoard(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if got := Evaluate(b); got != 0 {
		t.Fatalf("stalemate eval = %d, want 0", got)
	}
}

func TestEvaluateRuleDraw(t *testing.T) {
	b := mustBoard(t, "8/8/4k3/8/8/4K3/8/8 w - - 0 1")
	if got := Evaluate(b); got != 0 {
		t.Fatalf("bare kings eval = %d, want 0", got)
	}
}

func TestEvaluateMaterialSwing(t *testing.T) {
	// White is a queen up; both perspectives must agree on who benefits.
	fenWhiteToMove := "4k3/8/8/8/8/8/8/Q3K3 w - - 0 1"
	fenBlackToMove := "4k3/8/8/8/8/8/8/Q3K3 b - - 0 1"
	up := Evaluate(mustBoard(t, fenWhiteToMove))
	down := Evaluate(mustBoard(t, fenBlackToMove))
	if up <= 0 {
		t.Fatalf("queen-up side to move eval = %d, want > 0", up)
	}
	if down >= 0 {
		t.Fatalf("queen-down side to move eval = %d, want < 0", down)
	}
}

func TestEvaluatePassedPawn(t *testing.T) {
	// The same pawn ending, except that in the second one a black pawn on c7
	// stops the white pawn on the 6th from being passed.
	passed := Evaluate(mustBoard(t, "4k3/8/2P5/8/8/8/6p1/4K3 w - - 0 1"))
	blocked := Evaluate(mustBoard(t, "4k3/2p5/2P5/8/8/8/6p1/4K3 w - - 0 1"))
	if passed <= blocked {
		t.Fatalf("passed pawn eval %d not above blocked %d", passed, blocked)
	}
}

func TestEvaluateRunawayPawnAgainstBareKing(t *testing.T) {
	// The black king is far outside the square of the a-pawn: the pawn is
	// worth close to a queen.
	b := mustBoard(t, "8/P7/8/8/8/8/7k/K7 w - - 0 1")
	if got := Evaluate(b); got < 4*pieceValue(nchess.Queen) {
		t.Fatalf("runaway pawn eval = %d, want at least a queen's worth", got)
	}
}
