package engine

import (
	"fmt"

	nchess "github.com/corentings/chess/v2"
)

// Bound classifies a stored score.
type Bound uint8

const (
	BoundEmpty Bound = iota
	BoundExact
	BoundLower // from a beta cutoff
	BoundUpper // no move beat alpha
)

type tableEntry struct {
	key         uint64
	score       int32
	depth       int8
	bound       Bound
	hasBest     bool
	best        nchess.Move
	repetitions int32
}

// Slot size used to derive the entry count from the memory budget. Kept as
// a constant so resizing is deterministic across platforms.
const entryBytes = 48

// Table is the transposition table: a contiguous array of entries addressed
// by hash mod len. Collisions are resolved by the replacement policy, not
// by chaining. All mutation goes through the slot index.
type Table struct {
	slots []tableEntry
	used  int
}

func NewTable(sizeMB int) *Table {
	t := &Table{}
	t.Resize(sizeMB)
	return t
}

// Resize empties the table and re-allocates it for the given budget.
func (t *Table) Resize(sizeMB int) {
	if sizeMB < 1 {
		sizeMB = 1
	}
	t.slots = make([]tableEntry, sizeMB*1024*1024/entryBytes)
	t.used = 0
}

// Clear empties the table without changing its size.
func (t *Table) Clear() {
	for i := range t.slots {
		t.slots[i] = tableEntry{}
	}
	t.used = 0
}

func (t *Table) index(hash uint64) int {
	return int(hash % uint64(len(t.slots)))
}

// Used reports how many slots hold an entry.
func (t *Table) Used() int { return t.used }

// Len reports the slot count.
func (t *Table) Len() int { return len(t.slots) }

// Probe checks the slot for a result usable at the requested depth and
// window. A position whose repetition counter is at least 2 (the counter
// includes the current visit, so this is its second occurrence on the
// stack) is a draw regardless of depth; the entry is promoted to an exact
// zero so later visits resolve without the counter check.
func (t *Table) Probe(hash uint64, depth, alpha, beta int) (int, bool) {
	i := t.index(hash)
	if t.slots[i].key != hash || t.slots[i].bound == BoundEmpty {
		return 0, false
	}
	if t.slots[i].repetitions >= 2 {
		t.slots[i].score = 0
		t.slots[i].bound = BoundExact
		return 0, true
	}
	if int(t.slots[i].depth) < depth {
		return 0, false
	}
	switch t.slots[i].bound {
	case BoundExact:
		return int(t.slots[i].score), true
	case BoundLower:
		if int(t.slots[i].score) >= beta {
			return beta, true
		}
	case BoundUpper:
		if int(t.slots[i].score) <= alpha {
			return alpha, true
		}
	}
	return 0, false
}

// Record stores a search result. The slot is overwritten when empty or when
// the new result is at least as deep as the stored one. best may be nil for
// leaf entries.
func (t *Table) Record(hash uint64, depth int, bound Bound, score int, best *nchess.Move) {
	i := t.index(hash)
	if t.slots[i].bound == BoundEmpty {
		t.used++
	} else if int(t.slots[i].depth) > depth {
		return
	}
	t.slots[i].key = hash
	t.slots[i].depth = int8(depth)
	t.slots[i].bound = bound
	t.slots[i].score = int32(score)
	if best != nil {
		t.slots[i].best = *best
		t.slots[i].hasBest = true
	} else {
		t.slots[i].best = nchess.Move{}
		t.slots[i].hasBest = false
	}
}

// BestMove returns the stored refutation for hash, if the slot still holds
// this position and a move was recorded for it.
func (t *Table) BestMove(hash uint64) (nchess.Move, bool) {
	i := t.index(hash)
	if t.slots[i].bound == BoundEmpty || t.slots[i].key != hash || !t.slots[i].hasBest {
		return nchess.Move{}, false
	}
	return t.slots[i].best, true
}

// Visit bumps the repetition counter of the slot the search just moved
// into; Leave undoes it on the way back up.
func (t *Table) Visit(hash uint64) { t.slots[t.index(hash)].repetitions++ }

func (t *Table) Leave(hash uint64) { t.slots[t.index(hash)].repetitions-- }

// SeedRepetitions initializes the counters from the history of positions
// reached since the last irreversible move: each listed hash gets its
// occurrence count.
func (t *Table) SeedRepetitions(history []uint64) {
	counts := make(map[uint64]int32, len(history))
	for _, h := range history {
		counts[h]++
	}
	for h, n := range counts {
		t.slots[t.index(h)].repetitions = n
	}
}

// DebugEntry renders the slot for hash, for the debug command.
func (t *Table) DebugEntry(hash uint64) string {
	i := t.index(hash)
	e := t.slots[i]
	best := "none"
	if e.hasBest {
		best = e.best.String()
	}
	return fmt.Sprintf("slot %d key %d depth %d bound %d score %d repetitions %d best %s",
		i, e.key, e.depth, e.bound, e.score, e.repetitions, best)
}
