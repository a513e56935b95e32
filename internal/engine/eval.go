package engine

import (
	nchess "github.com/corentings/chess/v2"

	"github.com/park285/gambito/internal/board"
)

// A checkmated side to move scores -MateScore. Scores within
// MateBand of it encode the distance to mate in plies.
const (
	MateScore = 100000
	MateBand  = 100
)

// Material values. The material term is weighted 4x against the positional
// term, so these are quarter-centipawn-ish units.
func pieceValue(pt nchess.PieceType) int {
	switch pt {
	case nchess.Pawn:
		return 10
	case nchess.Knight:
		return 30
	case nchess.Bishop:
		return 31
	case nchess.Rook:
		return 50
	case nchess.Queen:
		return 90
	case nchess.King:
		return 500
	}
	return 0
}

// Evaluate scores the current position from the side to move: negative is
// bad for the mover. Terminal positions collapse to -MateScore (mated),
// 0 (stalemate or rule draw).
func Evaluate(b *board.Board) int {
	if b.IsRuleDraw() {
		return 0
	}
	switch b.Status() {
	case nchess.Checkmate:
		return -MateScore
	case nchess.Stalemate:
		return 0
	}
	material, positional := evaluateLeaf(b.Position())
	score := 4*material + positional
	if b.Turn() == nchess.Black {
		score = -score
	}
	return score
}

// evalSide collects one side's piece placement for the heuristics.
type evalSide struct {
	pawns    []nchess.Square
	knights  []nchess.Square
	bishops  []nchess.Square
	rooks    []nchess.Square
	queens   []nchess.Square
	king     nchess.Square
	material int // without the king
	heavy    int // non-pawn material
}

func sideIdx(c nchess.Color) int {
	if c == nchess.Black {
		return 1
	}
	return 0
}

// evaluateLeaf returns the material and positional terms, both positive for
// white.
func evaluateLeaf(pos *nchess.Position) (int, int) {
	brd := pos.Board()
	var sides [2]evalSide
	for i := 0; i < 64; i++ {
		sq := nchess.Square(i)
		p := brd.Piece(sq)
		if p == nchess.NoPiece {
			continue
		}
		s := &sides[sideIdx(p.Color())]
		switch p.Type() {
		case nchess.Pawn:
			s.pawns = append(s.pawns, sq)
			s.material += pieceValue(nchess.Pawn)
		case nchess.Knight:
			s.knights = append(s.knights, sq)
			s.material += pieceValue(nchess.Knight)
			s.heavy += pieceValue(nchess.Knight)
		case nchess.Bishop:
			s.bishops = append(s.bishops, sq)
			s.material += pieceValue(nchess.Bishop)
			s.heavy += pieceValue(nchess.Bishop)
		case nchess.Rook:
			s.rooks = append(s.rooks, sq)
			s.material += pieceValue(nchess.Rook)
			s.heavy += pieceValue(nchess.Rook)
		case nchess.Queen:
			s.queens = append(s.queens, sq)
			s.material += pieceValue(nchess.Queen)
			s.heavy += pieceValue(nchess.Queen)
		case nchess.King:
			s.king = sq
		}
	}

	material := sides[0].material - sides[1].material

	positional := 0
	positional += sidePositional(pos, brd, &sides[0], &sides[1], nchess.White)
	positional -= sidePositional(pos, brd, &sides[1], &sides[0], nchess.Black)
	return material, positional
}

// centreDist is the Chebyshev distance from the four centre squares: 0 on
// d4/e4/d5/e5, 3 on the board edge.
func centreDist(sq nchess.Square) int {
	f, r := int(sq.File()), int(sq.Rank())
	df := absInt(2*f-7) / 2
	dr := absInt(2*r-7) / 2
	if df > dr {
		return df
	}
	return dr
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func chebyshev(a, b nchess.Square) int {
	df := absInt(int(a.File()) - int(b.File()))
	dr := absInt(int(a.Rank()) - int(b.Rank()))
	if df > dr {
		return df
	}
	return dr
}

func sidePositional(pos *nchess.Position, brd *nchess.Board, us, them *evalSide, c nchess.Color) int {
	score := 0
	score += kingPlacement(us, them, c)
	for _, sq := range us.knights {
		score += knightCentre[centreDist(sq)]
	}
	if them.heavy > 120 {
		for _, sq := range us.queens {
			score += queenCentre[centreDist(sq)]
		}
	}
	for _, sq := range us.pawns {
		score += passedPawnBonus(sq, them.pawns, c)
	}
	score += connectedRooks(brd, us.rooks)
	for _, sq := range us.bishops {
		score -= blockedBishopPenalty(brd, sq, c)
	}
	for _, sq := range us.rooks {
		if relativeRank(sq, c) == 6 {
			score += rookOnSeventh
		}
	}
	score += liquidation(pos, us, them, c)
	return score
}

var (
	knightCentre = [4]int{6, 4, 2, 0}
	queenCentre  = [4]int{3, 2, 1, 0}
	kingCentre   = [4]int{6, 4, 2, 0}
)

const (
	kingShieldBonus = 8
	connectedBonus  = 6
	rookOnSeventh   = 10
	blockedDiagonal = 3
)

// relativeRank is the rank as seen by c: 0 is the back rank.
func relativeRank(sq nchess.Square, c nchess.Color) int {
	r := int(sq.Rank())
	if c == nchess.Black {
		r = 7 - r
	}
	return r
}

// kingPlacement rewards a sheltered king while the opponent keeps attacking
// material, and a centralised king once the heavy pieces are gone.
func kingPlacement(us, them *evalSide, c nchess.Color) int {
	if them.heavy <= 60 {
		return kingCentre[centreDist(us.king)]
	}
	score := 0
	if relativeRank(us.king, c) == 0 && (int(us.king.File()) >= 6 || int(us.king.File()) <= 2) {
		shield := 0
		for _, p := range us.pawns {
			if relativeRank(p, c) == 1 && absInt(int(p.File())-int(us.king.File())) <= 1 {
				shield++
			}
		}
		if shield >= 2 {
			score += kingShieldBonus
		}
	}
	return score
}

// passedPawnBonus pays for pawns on the 5th, 6th and 7th relative ranks
// with no enemy pawn on the three files ahead of them.
func passedPawnBonus(sq nchess.Square, enemyPawns []nchess.Square, c nchess.Color) int {
	rel := relativeRank(sq, c)
	if rel < 4 || rel > 6 {
		return 0
	}
	if !isPassed(sq, enemyPawns, c) {
		return 0
	}
	switch rel {
	case 4:
		return 8
	case 5:
		return 16
	default:
		return 30
	}
}

func isPassed(sq nchess.Square, enemyPawns []nchess.Square, c nchess.Color) bool {
	for _, e := range enemyPawns {
		if absInt(int(e.File())-int(sq.File())) > 1 {
			continue
		}
		if c == nchess.White && e.Rank() > sq.Rank() {
			return false
		}
		if c == nchess.Black && e.Rank() < sq.Rank() {
			return false
		}
	}
	return true
}

// connectedRooks pays once when two rooks defend each other along an empty
// rank or file.
func connectedRooks(brd *nchess.Board, rooks []nchess.Square) int {
	for i := 0; i < len(rooks); i++ {
		for j := i + 1; j < len(rooks); j++ {
			if openBetween(brd, rooks[i], rooks[j]) {
				return connectedBonus
			}
		}
	}
	return 0
}

func openBetween(brd *nchess.Board, a, b nchess.Square) bool {
	if a.File() != b.File() && a.Rank() != b.Rank() {
		return false
	}
	df := signInt(int(b.File()) - int(a.File()))
	dr := signInt(int(b.Rank()) - int(a.Rank()))
	f, r := int(a.File())+df, int(a.Rank())+dr
	for f != int(b.File()) || r != int(b.Rank()) {
		if brd.Piece(nchess.NewSquare(nchess.File(f), nchess.Rank(r))) != nchess.NoPiece {
			return false
		}
		f += df
		r += dr
	}
	return true
}

func signInt(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// blockedBishopPenalty counts forward diagonal steps blocked by our own
// pawns.
func blockedBishopPenalty(brd *nchess.Board, sq nchess.Square, c nchess.Color) int {
	dr := 1
	if c == nchess.Black {
		dr = -1
	}
	penalty := 0
	for _, df := range [2]int{-1, 1} {
		f, r := int(sq.File())+df, int(sq.Rank())+dr
		if f < 0 || f > 7 || r < 0 || r > 7 {
			continue
		}
		p := brd.Piece(nchess.NewSquare(nchess.File(f), nchess.Rank(r)))
		if p.Type() == nchess.Pawn && p.Color() == c {
			penalty += blockedDiagonal
		}
	}
	return penalty
}

// liquidation handles the bare-king endgame: an unstoppable passer is
// treated as a queen already, and the enemy king is driven to the edge
// while ours closes in.
func liquidation(pos *nchess.Position, us, them *evalSide, c nchess.Color) int {
	if len(them.pawns) > 0 || them.heavy > 0 {
		return 0
	}
	score := 0
	score += 2 * centreDist(them.king)
	score += 2 * (7 - chebyshev(us.king, them.king))
	for _, p := range us.pawns {
		if runawayPawn(pos, p, them.king, c) {
			score += 4 * pieceValue(nchess.Queen)
			break
		}
	}
	return score
}

// runawayPawn applies the king-in-the-square rule: the bare king cannot
// catch the pawn before it promotes.
func runawayPawn(pos *nchess.Position, pawn, enemyKing nchess.Square, c nchess.Color) bool {
	promoRank := nchess.Rank8
	if c == nchess.Black {
		promoRank = nchess.Rank1
	}
	promo := nchess.NewSquare(pawn.File(), promoRank)
	steps := absInt(int(promoRank) - int(pawn.Rank()))
	kingSteps := chebyshev(enemyKing, promo)
	if pos.Turn() != c {
		kingSteps--
	}
	return kingSteps > steps
}
