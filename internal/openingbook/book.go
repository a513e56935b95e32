// Package openingbook consults a Polyglot-format opening book: sequential
// 16-byte big-endian records of key, packed move, weight and an ignored
// learn field. Loading and record decoding go through the board library;
// lookup is by the standard Polyglot hash of the position, first match
// wins.
package openingbook

import (
	"fmt"
	"os"

	chesslib "github.com/corentings/chess/v2"
	"go.uber.org/zap"
)

type Book struct {
	book *chesslib.PolyglotBook
	log  *zap.Logger
}

// Load reads the book at path. A missing or unreadable file is logged once
// and leaves an empty book; the engine plays on without one.
func Load(path string, logger *zap.Logger) *Book {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Book{log: logger}
	if path == "" {
		return b
	}
	file, err := os.Open(path)
	if err != nil {
		logger.Warn("opening book unavailable", zap.String("path", path), zap.Error(err))
		return b
	}
	defer file.Close()

	book, err := chesslib.LoadFromReader(file)
	if err != nil {
		logger.Warn("opening book unreadable", zap.String("path", path), zap.Error(err))
		return b
	}
	b.book = book
	logger.Info("opening book loaded", zap.String("path", path))
	return b
}

// Move returns the book move for the position given by fen, in terse
// notation. The first matching entry is taken, for reproducibility.
func (b *Book) Move(fen string) (string, bool) {
	if b == nil || b.book == nil {
		return "", false
	}
	key, err := b.hash(fen)
	if err != nil {
		b.log.Warn("book hash failed", zap.String("fen", fen), zap.Error(err))
		return "", false
	}
	entries := b.book.FindMoves(key)
	if len(entries) == 0 {
		return "", false
	}
	move := chesslib.DecodeMove(entries[0].Move).ToMove()
	return move.String(), true
}

func (b *Book) hash(fen string) (uint64, error) {
	hasher := chesslib.NewZobristHasher()
	hashStr, err := hasher.HashPosition(fen)
	if err != nil {
		return 0, fmt.Errorf("compute polyglot hash: %w", err)
	}
	return chesslib.ZobristHashToUint64(hashStr), nil
}
