package main

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"termsnake.ai/internal/persistence/indexdb"
	"termsnake.ai/internal/session"
	"termsnake.ai/internal/sim/game"
)

func indexPath(dataDir string) string {
	return filepath.Join(dataDir, "index", "sessions.sqlite")
}

// openIndex returns nil when indexing is off or the database cannot be
// opened; the game runs without it.
func openIndex(dataDir string, disableDB bool, logger *log.Logger) *indexdb.SQLiteIndex {
	if disableDB {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("SNAKE_INDEX_BACKEND"))) {
	case "none", "off", "disabled":
		return nil
	}
	idx, err := indexdb.OpenSQLite(indexPath(dataDir))
	if err != nil {
		logger.Printf("index backend disabled: %v", err)
		return nil
	}
	return idx
}

func indexStart(id string, g *game.Game, startedAt time.Time, recordingPath string) indexdb.SessionStart {
	w := g.World()
	if recordingPath != "" {
		if abs, err := filepath.Abs(recordingPath); err == nil {
			recordingPath = abs
		}
	}
	return indexdb.SessionStart{
		ID:            id,
		Seed:          g.Seed(),
		Width:         w.Width,
		Height:        w.Height,
		StartedAt:     startedAt,
		RecordingPath: recordingPath,
	}
}

func indexEnd(id string, res session.Result, endedAt time.Time) indexdb.SessionEnd {
	return indexdb.SessionEnd{
		ID:      id,
		EndedAt: endedAt,
		Ticks:   res.Ticks,
		Score:   res.Score,
		Length:  res.Length,
		Reason:  string(res.Reason),
		Cause:   string(res.Cause),
	}
}

// closeIndex drains the writer and logs what the index dropped or failed to write.
func closeIndex(idx *indexdb.SQLiteIndex, logger *log.Logger) {
	if err := idx.Close(); err != nil {
		logger.Printf("index backend: close: %v", err)
	}
	st := idx.Stats()
	logger.Printf("index backend: closed drop_start=%d drop_end=%d write_fail=%d queue=%d/%d",
		st.DropStartTotal, st.DropEndTotal, st.WriteFailTotal, st.QueueDepth, st.QueueCapacity)
}
