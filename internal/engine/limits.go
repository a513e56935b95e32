package engine

import (
	"time"

	nchess "github.com/corentings/chess/v2"
)

// moveHorizon is the number of moves the remaining clock is spread over
// when the GUI gives no movestogo.
const moveHorizon = 50

// Limits bounds a single search. Times are milliseconds; zero means the
// limit is not given.
type Limits struct {
	WTime     int
	BTime     int
	MovesToGo int
	Depth     int
	MoveTime  int
}

// budget derives the time allowance for this move. The second return is
// false when the search is not time-limited at all.
func (l Limits) budget(turn nchess.Color) (time.Duration, bool) {
	if l.MoveTime > 0 {
		return time.Duration(l.MoveTime) * time.Millisecond, true
	}
	remaining := l.WTime
	if turn == nchess.Black {
		remaining = l.BTime
	}
	if remaining <= 0 {
		return 0, false
	}
	horizon := moveHorizon
	if l.MovesToGo > 0 && l.MovesToGo < horizon {
		horizon = l.MovesToGo
	}
	return time.Duration(remaining/horizon) * time.Millisecond, true
}

// Info is one completed iteration of the deepening loop.
type Info struct {
	Depth   int
	Score   int // centipawns, mover's perspective
	MateIn  int // moves to mate, signed; valid when IsMate
	IsMate  bool
	Elapsed time.Duration
	NPS     int64
	PV      []string
}

// infoFor encodes score into the info line convention: scores within
// MateBand of MateScore become a mate distance, half-rounded-up for the
// winning side.
func infoFor(score, depth int, elapsed time.Duration, leaves uint64, pv []string) Info {
	info := Info{Depth: depth, Score: score, Elapsed: elapsed, PV: pv}
	if MateScore-absInt(score) < MateBand {
		info.IsMate = true
		if score > 0 {
			info.MateIn = (MateScore - score + 1) / 2
		} else {
			info.MateIn = -(MateScore + score) / 2
		}
	}
	if ms := elapsed.Milliseconds(); ms > 0 {
		info.NPS = int64(leaves) * 1000 / ms
	}
	return info
}
