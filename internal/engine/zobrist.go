package engine

import (
	nchess "github.com/corentings/chess/v2"
)

// The position hash XORs 781 fixed random keys: 12x64 piece-square keys,
// 4 castling keys, 8 en-passant file keys and one side-to-move key. The
// keys come from a fixed-seed xorshift64* generator so hashes are stable
// across runs.
type zobristKeys struct {
	piece  [12][64]uint64
	castle [4]uint64 // white KS, white QS, black KS, black QS
	epFile [8]uint64
	turn   uint64
}

var zobrist = newZobristKeys(0x9e3779b97f4a7c15)

type prng struct {
	state uint64
}

// xorshift64*
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545f4914f6cdd1d
}

func newZobristKeys(seed uint64) *zobristKeys {
	rng := prng{state: seed}
	keys := &zobristKeys{}
	for p := 0; p < 12; p++ {
		for sq := 0; sq < 64; sq++ {
			keys.piece[p][sq] = rng.next()
		}
	}
	for i := range keys.castle {
		keys.castle[i] = rng.next()
	}
	for i := range keys.epFile {
		keys.epFile[i] = rng.next()
	}
	keys.turn = rng.next()
	return keys
}

func pieceIndex(p nchess.Piece) int {
	var kind int
	switch p.Type() {
	case nchess.Pawn:
		kind = 0
	case nchess.Knight:
		kind = 1
	case nchess.Bishop:
		kind = 2
	case nchess.Rook:
		kind = 3
	case nchess.Queen:
		kind = 4
	case nchess.King:
		kind = 5
	}
	if p.Color() == nchess.Black {
		kind += 6
	}
	return kind
}

func pieceKey(p nchess.Piece, sq nchess.Square) uint64 {
	return zobrist.piece[pieceIndex(p)][int(sq)]
}

// HashPosition computes the hash of pos from scratch. The en-passant key is
// included only when an en-passant capture is actually possible, so that
// transpositions with a dead en-passant target collapse to the same hash.
func HashPosition(pos *nchess.Position) uint64 {
	var hash uint64
	brd := pos.Board()
	for sq := 0; sq < 64; sq++ {
		if p := brd.Piece(nchess.Square(sq)); p != nchess.NoPiece {
			hash ^= pieceKey(p, nchess.Square(sq))
		}
	}
	rights := pos.CastleRights()
	if rights.CanCastle(nchess.White, nchess.KingSide) {
		hash ^= zobrist.castle[0]
	}
	if rights.CanCastle(nchess.White, nchess.QueenSide) {
		hash ^= zobrist.castle[1]
	}
	if rights.CanCastle(nchess.Black, nchess.KingSide) {
		hash ^= zobrist.castle[2]
	}
	if rights.CanCastle(nchess.Black, nchess.QueenSide) {
		hash ^= zobrist.castle[3]
	}
	if file, ok := epCaptureFile(pos); ok {
		hash ^= zobrist.epFile[file]
	}
	if pos.Turn() == nchess.White {
		hash ^= zobrist.turn
	}
	return hash
}

// epCaptureFile reports the file of the en-passant target, but only when a
// pawn of the side to move stands where it could take.
func epCaptureFile(pos *nchess.Position) (int, bool) {
	target := pos.EnPassantSquare()
	if target == nchess.NoSquare {
		return 0, false
	}
	var fromRank nchess.Rank
	switch target.Rank() {
	case nchess.Rank3:
		fromRank = nchess.Rank4
	case nchess.Rank6:
		fromRank = nchess.Rank5
	default:
		return 0, false
	}
	brd := pos.Board()
	file := int(target.File())
	for _, f := range [2]int{file - 1, file + 1} {
		if f < 0 || f > 7 {
			continue
		}
		p := brd.Piece(nchess.NewSquare(nchess.File(f), fromRank))
		if p.Type() == nchess.Pawn && p.Color() == pos.Turn() {
			return file, true
		}
	}
	return 0, false
}

// UpdateHash folds mv into hash. It must be called with the position the
// move is about to be played on; calling it again with the same arguments
// after the move has been taken back restores the previous hash, which is
// what lets the search update before Push and after Pop.
func UpdateHash(hash uint64, pos *nchess.Position, mv *nchess.Move) uint64 {
	brd := pos.Board()
	piece := brd.Piece(mv.S1())
	target := brd.Piece(mv.S2())

	switch {
	case mv.HasTag(nchess.KingSideCastle):
		hash ^= castleHash(pos, piece.Color(), true)
	case mv.HasTag(nchess.QueenSideCastle):
		hash ^= castleHash(pos, piece.Color(), false)
	case mv.HasTag(nchess.EnPassant):
		capSq := nchess.NewSquare(mv.S2().File(), mv.S1().Rank())
		hash ^= pieceKey(piece, mv.S1())
		hash ^= pieceKey(piece, mv.S2())
		hash ^= pieceKey(brd.Piece(capSq), capSq)
	case mv.Promo() != nchess.NoPieceType:
		if target != nchess.NoPiece {
			hash ^= pieceKey(target, mv.S2())
		}
		hash ^= pieceKey(piece, mv.S1())
		hash ^= zobrist.piece[promoIndex(mv.Promo(), piece.Color())][int(mv.S2())]
	default:
		if target != nchess.NoPiece {
			hash ^= pieceKey(target, mv.S2())
		}
		hash ^= pieceKey(piece, mv.S1())
		hash ^= pieceKey(piece, mv.S2())
		switch piece.Type() {
		case nchess.Pawn:
			hash ^= doublePushHash(pos, mv)
		case nchess.King:
			hash ^= revokeBothHash(pos, piece.Color())
		case nchess.Rook:
			hash ^= rookHomeHash(pos, piece.Color(), mv.S1())
		}
	}

	// Capturing a rook on its home square kills that castling right too.
	if target.Type() == nchess.Rook {
		hash ^= rookHomeHash(pos, target.Color(), mv.S2())
	}

	// A previously live en-passant file dies with any move.
	if file, ok := epCaptureFile(pos); ok {
		hash ^= zobrist.epFile[file]
	}

	hash ^= zobrist.turn
	return hash
}

func promoIndex(pt nchess.PieceType, c nchess.Color) int {
	var kind int
	switch pt {
	case nchess.Knight:
		kind = 1
	case nchess.Bishop:
		kind = 2
	case nchess.Rook:
		kind = 3
	case nchess.Queen:
		kind = 4
	}
	if c == nchess.Black {
		kind += 6
	}
	return kind
}

// castleHash moves king and rook and clears whatever castling rights the
// side still has. The side that is castling necessarily still has the right
// for the side it castles to.
func castleHash(pos *nchess.Position, c nchess.Color, kingSide bool) uint64 {
	rank := nchess.Rank1
	king := nchess.WhiteKing
	rook := nchess.WhiteRook
	if c == nchess.Black {
		rank = nchess.Rank8
		king = nchess.BlackKing
		rook = nchess.BlackRook
	}
	var h uint64
	h ^= pieceKey(king, nchess.NewSquare(nchess.FileE, rank))
	if kingSide {
		h ^= pieceKey(king, nchess.NewSquare(nchess.FileG, rank))
		h ^= pieceKey(rook, nchess.NewSquare(nchess.FileH, rank))
		h ^= pieceKey(rook, nchess.NewSquare(nchess.FileF, rank))
	} else {
		h ^= pieceKey(king, nchess.NewSquare(nchess.FileC, rank))
		h ^= pieceKey(rook, nchess.NewSquare(nchess.FileA, rank))
		h ^= pieceKey(rook, nchess.NewSquare(nchess.FileD, rank))
	}
	h ^= revokeBothHash(pos, c)
	return h
}

// revokeBothHash clears the castling keys the side still holds.
func revokeBothHash(pos *nchess.Position, c nchess.Color) uint64 {
	base := 0
	if c == nchess.Black {
		base = 2
	}
	rights := pos.CastleRights()
	var h uint64
	if rights.CanCastle(c, nchess.KingSide) {
		h ^= zobrist.castle[base]
	}
	if rights.CanCastle(c, nchess.QueenSide) {
		h ^= zobrist.castle[base+1]
	}
	return h
}

// rookHomeHash clears a castling right when sq is the home square of a rook
// of color c and the right is still held.
func rookHomeHash(pos *nchess.Position, c nchess.Color, sq nchess.Square) uint64 {
	rank := nchess.Rank1
	base := 0
	if c == nchess.Black {
		rank = nchess.Rank8
		base = 2
	}
	if sq.Rank() != rank {
		return 0
	}
	rights := pos.CastleRights()
	switch sq.File() {
	case nchess.FileH:
		if rights.CanCastle(c, nchess.KingSide) {
			return zobrist.castle[base]
		}
	case nchess.FileA:
		if rights.CanCastle(c, nchess.QueenSide) {
			return zobrist.castle[base+1]
		}
	}
	return 0
}

// doublePushHash turns on the en-passant file created by a two-square pawn
// push, but only when an enemy pawn stands next to the arrival square.
func doublePushHash(pos *nchess.Position, mv *nchess.Move) uint64 {
	r1, r2 := int(mv.S1().Rank()), int(mv.S2().Rank())
	if r2-r1 != 2 && r1-r2 != 2 {
		return 0
	}
	brd := pos.Board()
	mover := brd.Piece(mv.S1()).Color()
	file := int(mv.S2().File())
	for _, f := range [2]int{file - 1, file + 1} {
		if f < 0 || f > 7 {
			continue
		}
		p := brd.Piece(nchess.NewSquare(nchess.File(f), mv.S2().Rank()))
		if p.Type() == nchess.Pawn && p.Color() == mover.Other() {
			return zobrist.epFile[file]
		}
	}
	return 0
}
