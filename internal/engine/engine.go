package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	nchess "github.com/corentings/chess/v2"
	"go.uber.org/zap"

	"github.com/park285/gambito/internal/board"
	"github.com/park285/gambito/internal/openingbook"
)

const (
	DefaultHashMB   = 64
	DefaultMaxDepth = 6
)

// Engine holds the search context: the board, its incrementally maintained
// hash, the repetition history since the last irreversible move, the
// transposition table and the principal variation of the last completed
// iteration. It is not safe for concurrent searches; the UCI session runs
// at most one at a time.
type Engine struct {
	board   *board.Board
	hash    uint64
	history []uint64
	table   *Table
	book    *openingbook.Book
	log     *zap.Logger

	pv          []nchess.Move
	usingPrevPV bool
	opening     bool

	maxDepth int
	hashMB   int

	stop        atomic.Bool
	stopped     bool
	leaves      uint64
	hasDeadline bool
	deadline    time.Time
}

func New(book *openingbook.Book, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		book:     book,
		log:      logger,
		maxDepth: DefaultMaxDepth,
		hashMB:   DefaultHashMB,
	}
	e.table = NewTable(e.hashMB)
	e.Reset()
	return e
}

// Reset restores the initial position and empties the table and the
// repetition history. This is the ucinewgame behavior.
func (e *Engine) Reset() {
	e.board = board.New()
	e.hash = HashPosition(e.board.Position())
	e.history = []uint64{e.hash}
	e.table.Clear()
	e.pv = nil
	e.opening = true
}

// SetMaxDepth bounds the deepening loop when go gives no depth.
func (e *Engine) SetMaxDepth(d int) { e.maxDepth = d }

func (e *Engine) MaxDepth() int { return e.maxDepth }

// SetHashSize re-allocates the table for a new memory budget in MiB. The
// table contents are lost.
func (e *Engine) SetHashSize(mb int) {
	e.hashMB = mb
	e.table.Resize(mb)
}

func (e *Engine) HashSize() int { return e.hashMB }

// Board exposes the current board to the session for fallback move
// selection and diagnostics.
func (e *Engine) Board() *board.Board { return e.board }

// Hash returns the incrementally maintained hash of the current position.
func (e *Engine) Hash() uint64 { return e.hash }

// SetPosition rebuilds the board from fen (the initial position when fen is
// empty) and plays moves on it, maintaining the hash and the repetition
// history as it goes. On an unplayable move it stops there, keeps the
// position reached so far, and returns the offending token.
func (e *Engine) SetPosition(fen string, moves []string) error {
	var (
		b   *board.Board
		err error
	)
	if fen == "" {
		b = board.New()
	} else {
		b, err = board.FromFEN(fen)
		if err != nil {
			return err
		}
	}

	hash := HashPosition(b.Position())
	history := []uint64{hash}
	var bad error
	for _, token := range moves {
		mv, perr := b.ParseMove(token)
		if perr != nil {
			bad = perr
			break
		}
		hash = UpdateHash(hash, b.Position(), mv)
		irreversible := b.IsIrreversible(mv)
		b.Push(mv)
		if irreversible {
			history = history[:0]
		} else {
			history = append(history, hash)
		}
	}

	e.board = b
	e.hash = hash
	e.history = history
	e.pv = nil
	e.opening = true
	e.table.SeedRepetitions(history)
	return bad
}

// Stop asks an in-flight search to wind down. Safe from any goroutine.
func (e *Engine) Stop() { e.stop.Store(true) }

// Arm clears a leftover stop request before a search launch. It must run
// on the command thread before Go starts on another goroutine, so a stop
// aimed at the new search cannot be clobbered.
func (e *Engine) Arm() { e.stop.Store(false) }

// DebugReport renders the internal state for the debug command.
func (e *Engine) DebugReport() string {
	scratch := HashPosition(e.board.Position())
	return fmt.Sprintf("position %s\nhash %d scratch %d\ntable %d/%d slots used\n%s",
		e.board.FEN(), e.hash, scratch, e.table.Used(), e.table.Len(), e.table.DebugEntry(e.hash))
}
