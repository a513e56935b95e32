package board

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var notationUCI = nchess.UCINotation{}

// Board owns the current position and the stack of positions behind it, so
// a move can be taken back without copying the board at every ply.
type Board struct {
	stack []*nchess.Position
}

func New() *Board {
	return &Board{stack: []*nchess.Position{nchess.NewGame().Position()}}
}

func FromFEN(fen string) (*Board, error) {
	option, err := nchess.FEN(strings.TrimSpace(fen))
	if err != nil {
		return nil, fmt.Errorf("parse fen %q: %w", fen, err)
	}
	game := nchess.NewGame(option)
	return &Board{stack: []*nchess.Position{game.Position()}}, nil
}

// Position returns the current position. Callers must not retain it across
// Push/Pop.
func (b *Board) Position() *nchess.Position {
	return b.stack[len(b.stack)-1]
}

func (b *Board) Turn() nchess.Color {
	return b.Position().Turn()
}

func (b *Board) FEN() string {
	return b.Position().String()
}

// Push plays mv on the current position.
func (b *Board) Push(mv *nchess.Move) {
	b.stack = append(b.stack, b.Position().Update(mv))
}

// Pop takes back the most recent Push. Popping the root position is a
// programming error.
func (b *Board) Pop() {
	if len(b.stack) <= 1 {
		panic("board: pop on root position")
	}
	b.stack = b.stack[:len(b.stack)-1]
}

// Depth reports how many moves have been pushed and not yet popped.
func (b *Board) Depth() int {
	return len(b.stack) - 1
}

func (b *Board) LegalMoves() []nchess.Move {
	return b.Position().ValidMoves()
}

// ParseMove decodes a terse (long-algebraic) move against the current
// position and returns the matching legal move; a move that is not legal
// there is an error.
func (b *Board) ParseMove(terse string) (*nchess.Move, error) {
	mv, err := notationUCI.Decode(b.Position(), strings.TrimSpace(terse))
	if err != nil {
		return nil, fmt.Errorf("decode move %q: %w", terse, err)
	}
	for _, legal := range b.LegalMoves() {
		if legal.S1() == mv.S1() && legal.S2() == mv.S2() && legal.Promo() == mv.Promo() {
			return &legal, nil
		}
	}
	return nil, fmt.Errorf("illegal move %q", terse)
}

// Status classifies the current position: checkmate, stalemate, or neither.
func (b *Board) Status() nchess.Method {
	return b.Position().Status()
}

// IsIrreversible reports whether mv resets the repetition horizon, i.e. it
// is a capture or a pawn move.
func (b *Board) IsIrreversible(mv *nchess.Move) bool {
	if mv.HasTag(nchess.Capture) || mv.HasTag(nchess.EnPassant) {
		return true
	}
	return b.Position().Board().Piece(mv.S1()).Type() == nchess.Pawn
}

// IsRuleDraw covers the draw rules the repetition counters do not: the
// fifty-move rule and insufficient material. Threefold repetition is judged
// by the transposition table, which tracks it exactly across push/pop.
func (b *Board) IsRuleDraw() bool {
	pos := b.Position()
	if pos.HalfMoveClock() >= 100 {
		return true
	}
	return insufficientMaterial(pos)
}

func insufficientMaterial(pos *nchess.Position) bool {
	minors := 0
	for sq := 0; sq < 64; sq++ {
		p := pos.Board().Piece(nchess.Square(sq))
		switch p.Type() {
		case nchess.Pawn, nchess.Rook, nchess.Queen:
			return false
		case nchess.Bishop, nchess.Knight:
			minors++
		}
	}
	return minors <= 1
}
