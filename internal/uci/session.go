// Package uci speaks the engine side of the Universal Chess Interface: a
// line-oriented, whitespace-tokenized command stream on stdin answered on
// stdout. The session parses and delegates; search logic lives in the
// engine package.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/park285/gambito/internal/engine"
)

const (
	stateIdle int32 = iota
	stateSearching
	stateStopping
)

const (
	minHashMB = 1
	maxHashMB = 128
	minDepth  = 1
	maxDepth  = 10
)

type Session struct {
	in  io.Reader
	out io.Writer
	eng *engine.Engine
	log *zap.Logger

	name   string
	author string

	outMu    sync.Mutex
	writeErr error

	search sync.WaitGroup
	state  atomic.Int32
}

func NewSession(eng *engine.Engine, in io.Reader, out io.Writer, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		in:     in,
		out:    out,
		eng:    eng,
		log:    logger,
		name:   "gambito",
		author: "park285",
	}
}

// Run consumes commands until quit or end of stream. Recoverable errors
// are answered with "info string" and never terminate the loop; only a
// failed read of the command stream or a broken output stream is reported
// to the caller.
func (s *Session) Run() error {
	scanner := bufio.NewScanner(s.in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "uci":
			s.handshake()
		case "isready":
			s.send("readyok")
		case "ucinewgame":
			s.awaitSearch()
			s.eng.Reset()
		case "position":
			s.awaitSearch()
			s.handlePosition(fields[1:])
		case "go":
			s.handleGo(fields[1:])
		case "stop":
			s.handleStop()
		case "setoption":
			s.handleSetOption(fields[1:])
		case "debug":
			s.awaitSearch()
			s.send(s.eng.DebugReport())
		case "register":
			s.send("info string registration is not supported")
		case "quit":
			s.handleStop()
			s.awaitSearch()
			return s.writeErr
		default:
			s.send("info string unknown command " + fields[0])
		}
	}
	s.handleStop()
	s.awaitSearch()
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read command stream: %w", err)
	}
	return s.writeErr
}

func (s *Session) handshake() {
	s.awaitSearch()
	s.send("id name " + s.name)
	s.send("id author " + s.author)
	s.send(fmt.Sprintf("option name hashSize type spin default %d min %d max %d",
		engine.DefaultHashMB, minHashMB, maxHashMB))
	s.send(fmt.Sprintf("option name maxSearchDepth type spin default %d min %d max %d",
		engine.DefaultMaxDepth, minDepth, maxDepth))
	s.send("uciok")
	s.eng.Reset()
}

// handlePosition parses "startpos [moves ...]" or "fen <FEN> [moves ...]".
// A bad FEN keeps the previous position; a bad move keeps the prefix played
// so far. Either way the offending token is reported and skipped.
func (s *Session) handlePosition(args []string) {
	if len(args) == 0 {
		s.send("info string position needs startpos or fen")
		return
	}
	var fen string
	rest := args[1:]
	switch args[0] {
	case "startpos":
	case "fen":
		var fenFields []string
		for len(rest) > 0 && rest[0] != "moves" {
			fenFields = append(fenFields, rest[0])
			rest = rest[1:]
		}
		fen = strings.Join(fenFields, " ")
	default:
		s.send("info string unknown position kind " + args[0])
		return
	}
	var moves []string
	if len(rest) > 0 && rest[0] == "moves" {
		moves = rest[1:]
	}
	if err := s.eng.SetPosition(fen, moves); err != nil {
		s.log.Warn("position rejected", zap.Error(err))
		s.send("info string " + err.Error())
	}
}

func (s *Session) handleGo(args []string) {
	if !s.state.CompareAndSwap(stateIdle, stateSearching) {
		s.send("info string search already running")
		return
	}
	limits := parseLimits(args, s.warn)
	s.eng.Arm()
	s.search.Add(1)
	go func() {
		defer s.search.Done()
		best := s.eng.Go(limits, s.emitInfo)
		s.send("bestmove " + best)
		s.state.Store(stateIdle)
	}()
}

func (s *Session) handleStop() {
	if s.state.CompareAndSwap(stateSearching, stateStopping) {
		s.eng.Stop()
	}
}

// awaitSearch blocks until no search is in flight, so board and table
// mutations never race with one.
func (s *Session) awaitSearch() {
	s.eng.Stop()
	s.search.Wait()
}

func (s *Session) handleSetOption(args []string) {
	name, value, ok := splitOption(args)
	if !ok {
		s.send("info string setoption needs name and value")
		return
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		s.send("info string option " + name + " needs an integer value")
		return
	}
	switch name {
	case "hashSize":
		s.awaitSearch()
		s.eng.SetHashSize(clamp(n, minHashMB, maxHashMB))
	case "maxSearchDepth":
		s.eng.SetMaxDepth(clamp(n, minDepth, maxDepth))
	default:
		s.send("info string unknown option " + name)
	}
}

// splitOption pulls the name and value out of
// "name <K...> value <V>"-shaped arguments.
func splitOption(args []string) (string, string, bool) {
	if len(args) < 4 || args[0] != "name" {
		return "", "", false
	}
	for i := 1; i < len(args)-1; i++ {
		if args[i] == "value" {
			return strings.Join(args[1:i], " "), args[i+1], true
		}
	}
	return "", "", false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// parseLimits reads the go arguments pairwise; malformed values are
// reported through warn and skipped.
func parseLimits(args []string, warn func(string)) engine.Limits {
	var limits engine.Limits
	read := func(i int) (int, bool) {
		if i+1 >= len(args) {
			warn("go " + args[i] + " needs a value")
			return 0, false
		}
		n, err := strconv.Atoi(args[i+1])
		if err != nil {
			warn("go " + args[i] + ": " + err.Error())
			return 0, false
		}
		return n, true
	}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "wtime":
			if n, ok := read(i); ok {
				limits.WTime = n
			}
			i++
		case "btime":
			if n, ok := read(i); ok {
				limits.BTime = n
			}
			i++
		case "movestogo":
			if n, ok := read(i); ok {
				limits.MovesToGo = n
			}
			i++
		case "depth":
			if n, ok := read(i); ok {
				limits.Depth = n
			}
			i++
		case "movetime":
			if n, ok := read(i); ok {
				limits.MoveTime = n
			}
			i++
		}
	}
	return limits
}

func (s *Session) warn(msg string) {
	s.send("info string " + msg)
}

func (s *Session) emitInfo(info engine.Info) {
	var b strings.Builder
	if info.IsMate {
		fmt.Fprintf(&b, "info score mate %d", info.MateIn)
	} else {
		fmt.Fprintf(&b, "info score cp %d", info.Score)
	}
	fmt.Fprintf(&b, " depth %d time %d nps %d", info.Depth, info.Elapsed.Milliseconds(), info.NPS)
	if len(info.PV) > 0 {
		b.WriteString(" pv ")
		b.WriteString(strings.Join(info.PV, " "))
	}
	s.send(b.String())
}

// send writes one protocol line. The session is the only writer to out;
// the mutex serializes the search goroutine's info lines with command
// responses.
func (s *Session) send(line string) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if _, err := fmt.Fprintln(s.out, line); err != nil {
		if s.writeErr == nil {
			s.writeErr = err
		}
		s.log.Error("write output", zap.Error(err))
	}
}
