package engine

import (
	"time"

	nchess "github.com/corentings/chess/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxPVLen bounds the table walk that reconstructs the principal
// variation.
const maxPVLen = 30

// stopCheckInterval is how many evaluated leaves pass between clock and
// stop-flag checks inside a depth.
const stopCheckInterval = 4096

// NullMove is the terse notation for "no move", emitted only when the root
// has no legal move at all.
const NullMove = "0000"

// Go runs the search under limits and returns the chosen move in terse
// notation. emit is called once per completed deepening iteration; it runs
// on the calling goroutine. While the engine is still in its opening book,
// the book short-circuits the search entirely.
func (e *Engine) Go(limits Limits, emit func(Info)) string {
	e.stopped = false

	if e.opening {
		if mv, ok := e.bookMove(); ok {
			return mv
		}
		e.opening = false
	}

	run := uuid.NewString()
	budget, usingTime := limits.budget(e.board.Turn())
	maxDepth := e.maxDepth
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}
	e.hasDeadline = usingTime
	start := time.Now()
	if usingTime {
		e.deadline = start.Add(budget)
	}
	e.log.Debug("search started",
		zap.String("run", run),
		zap.String("fen", e.board.FEN()),
		zap.Int("maxDepth", maxDepth),
		zap.Duration("budget", budget))

	e.pv = nil
	e.usingPrevPV = false

	for depth := 1; depth <= maxDepth; depth++ {
		e.leaves = 0
		depthStart := time.Now()
		var line []nchess.Move
		score := e.alphaBeta(-MateScore, MateScore, depth, depth, &line)
		if e.stopped {
			// The interrupted depth produces no info line; the previous
			// completed depth already holds the PV.
			break
		}
		e.pv = e.pvFromTable()
		info := infoFor(score, depth, time.Since(depthStart), e.leaves, terse(e.pv))
		emit(info)
		e.usingPrevPV = true
		e.log.Debug("depth complete",
			zap.String("run", run),
			zap.Int("depth", depth),
			zap.Int("score", score),
			zap.Uint64("leaves", e.leaves))

		if usingTime && time.Since(start) > budget {
			break
		}
		if e.stop.Load() {
			break
		}
	}

	if len(e.pv) > 0 {
		return e.pv[0].String()
	}
	if moves := e.board.LegalMoves(); len(moves) > 0 {
		return moves[0].String()
	}
	return NullMove
}

func terse(moves []nchess.Move) []string {
	out := make([]string, len(moves))
	for i := range moves {
		out[i] = moves[i].String()
	}
	return out
}

// alphaBeta is a fail-hard negamax: the score is from the moving side's
// perspective, and a node that searches its moves returns a value inside
// [alpha, beta]. Table hits with an exact bound and leaf evaluations are
// returned as they are, without clamping to the window. pline receives the
// best line found below this node.
func (e *Engine) alphaBeta(alpha, beta, depth, initialDepth int, pline *[]nchess.Move) int {
	if score, ok := e.table.Probe(e.hash, depth, alpha, beta); ok {
		return score
	}

	moves := e.board.LegalMoves()
	if depth == 0 || len(moves) == 0 {
		*pline = (*pline)[:0]
		score := Evaluate(e.board)
		e.leaves++
		if e.leaves%stopCheckInterval == 0 {
			e.checkStop()
		}
		e.table.Record(e.hash, depth, BoundExact, score, nil)
		return score
	}

	// Try the previous iteration's PV move first while we are still on
	// that line; once the position diverges the ordering hint is dead.
	ply := initialDepth - depth
	if e.usingPrevPV && ply < len(e.pv) {
		if i := findMove(moves, &e.pv[ply]); i >= 0 {
			moves[0], moves[i] = moves[i], moves[0]
		} else {
			e.usingPrevPV = false
		}
	} else {
		e.usingPrevPV = false
	}

	best := moves[0]
	bound := BoundUpper
	var line []nchess.Move
	for i := range moves {
		mv := &moves[i]
		e.hash = UpdateHash(e.hash, e.board.Position(), mv)
		e.board.Push(mv)
		e.table.Visit(e.hash)
		score := -e.alphaBeta(-beta, -alpha, depth-1, initialDepth, &line)
		e.table.Leave(e.hash)
		e.board.Pop()
		e.hash = UpdateHash(e.hash, e.board.Position(), mv)

		if e.stopped {
			// Partial results are abandoned, nothing is recorded.
			return alpha
		}

		// Mate-distance ageing: a mate seen one ply deeper is one step
		// farther from MateScore, so nearer mates win comparisons.
		if MateScore-absInt(score) < MateBand {
			if score > 0 {
				score--
			} else {
				score++
			}
		}

		if score >= beta {
			e.table.Record(e.hash, depth, BoundLower, beta, mv)
			return beta
		}
		if score > alpha {
			alpha = score
			*pline = append(append((*pline)[:0], *mv), line...)
			best = *mv
			bound = BoundExact
			e.usingPrevPV = false
		}
	}

	e.table.Record(e.hash, depth, bound, alpha, &best)
	return alpha
}

func (e *Engine) checkStop() {
	if e.stop.Load() {
		e.stopped = true
		return
	}
	if e.hasDeadline && time.Now().After(e.deadline) {
		e.stopped = true
	}
}

// findMove locates want among moves, matching by squares and promotion.
func findMove(moves []nchess.Move, want *nchess.Move) int {
	for i := range moves {
		if moves[i].S1() == want.S1() && moves[i].S2() == want.S2() && moves[i].Promo() == want.Promo() {
			return i
		}
	}
	return -1
}

// pvFromTable rebuilds the principal variation by walking stored best
// moves from the current position. A visited set guards against cycles
// through repetitions, and the board and hash are restored before
// returning.
func (e *Engine) pvFromTable() []nchess.Move {
	var pv []nchess.Move
	visited := make(map[uint64]struct{}, maxPVLen)
	for len(pv) < maxPVLen {
		if _, seen := visited[e.hash]; seen {
			break
		}
		stored, ok := e.table.BestMove(e.hash)
		if !ok {
			break
		}
		legal := e.board.LegalMoves()
		i := findMove(legal, &stored)
		if i < 0 {
			break
		}
		visited[e.hash] = struct{}{}
		mv := legal[i]
		pv = append(pv, mv)
		e.hash = UpdateHash(e.hash, e.board.Position(), &mv)
		e.board.Push(&mv)
	}
	for i := len(pv) - 1; i >= 0; i-- {
		e.board.Pop()
		e.hash = UpdateHash(e.hash, e.board.Position(), &pv[i])
	}
	return pv
}

// bookMove consults the opening book for the current position. The first
// miss (or an unplayable book move) leaves opening mode until the next
// SetPosition or Reset turns it back on.
func (e *Engine) bookMove() (string, bool) {
	if e.book == nil {
		return "", false
	}
	mv, ok := e.book.Move(e.board.FEN())
	if !ok {
		return "", false
	}
	if _, err := e.board.ParseMove(mv); err != nil {
		e.log.Warn("ignoring illegal book move", zap.String("move", mv), zap.Error(err))
		return "", false
	}
	return mv, true
}
