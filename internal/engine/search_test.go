package engine

import (
	"testing"

	nchess "github.com/corentings/chess/v2"
	"go.uber.org/zap"

	"github.com/park285/gambito/internal/board"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(nil, zap.NewNop())
	e.SetHashSize(8)
	return e
}

func collectInfos(infos *[]Info) func(Info) {
	return func(info Info) { *infos = append(*infos, info) }
}

// mustLeadToMate plays best on fen and fails unless the result is
// checkmate.
func mustLeadToMate(t *testing.T, fen, best string) {
	t.Helper()
	b, err := board.FromFEN(fen)
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	mv, err := b.ParseMove(best)
	if err != nil {
		t.Fatalf("bestmove %q not legal: %v", best, err)
	}
	b.Push(mv)
	if b.Status() != nchess.Checkmate {
		t.Fatalf("bestmove %q does not mate, status %v", best, b.Status())
	}
}

func TestSearchFindsMateInOne(t *testing.T) {
	const fen = "4k3/8/4K3/4Q3/8/8/8/8 w - - 0 1"
	e := newTestEngine(t)
	if err := e.SetPosition(fen, nil); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	var infos []Info
	best := e.Go(Limits{Depth: 4}, collectInfos(&infos))
	if len(infos) == 0 {
		t.Fatalf("no info emitted")
	}
	last := infos[len(infos)-1]
	if !last.IsMate || last.MateIn != 1 {
		t.Fatalf("final info = %+v, want mate 1", last)
	}
	mustLeadToMate(t, fen, best)
}

func TestSearchFindsMateInTwo(t *testing.T) {
	// Two-rook ladder: 1.Rh7 boxes the king on the back rank, 2.Rg8#.
	e := newTestEngine(t)
	if err := e.SetPosition("3k4/8/6R1/7R/8/8/8/K7 w - - 0 1", nil); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	var infos []Info
	e.Go(Limits{Depth: 5}, collectInfos(&infos))
	last := infos[len(infos)-1]
	if !last.IsMate || last.MateIn != 2 {
		t.Fatalf("final info = %+v, want mate 2", last)
	}
}

func TestSearchStartposIsSane(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetPosition("", nil); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	fenBefore := e.Board().FEN()
	hashBefore := e.Hash()

	var infos []Info
	best := e.Go(Limits{Depth: 4}, collectInfos(&infos))

	last := infos[len(infos)-1]
	if len(last.PV) < 2 {
		t.Fatalf("PV too short: %v", last.PV)
	}
	if MateScore-absInt(last.Score) < MateBand {
		t.Fatalf("startpos scored as forced mate: %d", last.Score)
	}

	// The PV must be a playable line and the board and hash must come back
	// untouched.
	b := board.New()
	for _, terse := range last.PV {
		mv, err := b.ParseMove(terse)
		if err != nil {
			t.Fatalf("PV move %q illegal: %v", terse, err)
		}
		b.Push(mv)
	}
	if e.Board().FEN() != fenBefore {
		t.Fatalf("board not restored: %q", e.Board().FEN())
	}
	if e.Hash() != hashBefore {
		t.Fatalf("hash not restored: %d != %d", e.Hash(), hashBefore)
	}
	if _, err := e.Board().ParseMove(best); err != nil {
		t.Fatalf("bestmove %q illegal at root: %v", best, err)
	}
}

func TestSearchReportsRepetitionDraw(t *testing.T) {
	moves := []string{
		"d2d4", "d7d5", "d1d2", "d8d7", "d2d1", "d7d8",
		"d1d2", "d8d7", "d2d1", "d7d8",
	}
	e := newTestEngine(t)
	if err := e.SetPosition("", moves); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	var infos []Info
	best := e.Go(Limits{Depth: 6}, collectInfos(&infos))
	last := infos[len(infos)-1]
	if last.IsMate || last.Score != 0 {
		t.Fatalf("repeated position scored %+v, want draw 0", last)
	}
	if _, err := e.Board().ParseMove(best); err != nil {
		t.Fatalf("bestmove %q illegal: %v", best, err)
	}
}

func TestSearchTimeBudgetStops(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetPosition("", nil); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	var infos []Info
	best := e.Go(Limits{Depth: 10, MoveTime: 1}, collectInfos(&infos))
	if len(infos) == 0 {
		t.Fatalf("time-limited search must still complete depth 1")
	}
	if _, err := e.Board().ParseMove(best); err != nil {
		t.Fatalf("bestmove %q illegal: %v", best, err)
	}
}

func TestSearchNoLegalMoves(t *testing.T) {
	// Stalemate at the root: there is nothing to play.
	e := newTestEngine(t)
	if err := e.SetPosition("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", nil); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	var infos []Info
	best := e.Go(Limits{Depth: 3}, collectInfos(&infos))
	if best != NullMove {
		t.Fatalf("bestmove = %q, want %q", best, NullMove)
	}
}

func TestSetPositionBadMoveKeepsPrefix(t *testing.T) {
	e := newTestEngine(t)
	err := e.SetPosition("", []string{"e2e4", "zzzz", "e7e5"})
	if err == nil {
		t.Fatalf("expected error for unparseable move")
	}
	// The prefix before the bad token stays on the board.
	b := board.New()
	mv, perr := b.ParseMove("e2e4")
	if perr != nil {
		t.Fatalf("ParseMove: %v", perr)
	}
	b.Push(mv)
	if e.Board().FEN() != b.FEN() {
		t.Fatalf("board after bad move = %q, want %q", e.Board().FEN(), b.FEN())
	}
}
