// Package gamescfg loads and merges the per-event game configuration
// directory served at /games.json. The ledger never validates payloads
// against these definitions; they exist for the judging clients.
package gamescfg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Metadata describes a served configuration bundle.
type Metadata struct {
	Version     string `json:"version"`
	GeneratedAt string `json:"generated_at"`
}

// Bundle is the merged configuration: shared scoring fields plus one entry
// per game file, ordered for display.
type Bundle struct {
	Metadata      Metadata          `json:"metadata"`
	CommonScoring json.RawMessage   `json:"common_scoring"`
	Games         []json.RawMessage `json:"games"`
}

// gameNumber extracts the ordinal from names like "Game 7" or ids like "p7".
var gameNumber = regexp.MustCompile(`(?i)(?:Game|p)\s*(\d+)`)

// Load reads common.json and games/*.json from dir and sorts games by
// their embedded number, names without one last, ties by name. A missing
// directory serves an empty bundle rather than failing startup.
func Load(_ context.Context, dir string) (*Bundle, error) {
	b := &Bundle{
		Metadata: Metadata{
			Version:     "1.0",
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
		CommonScoring: json.RawMessage("[]"),
		Games:         []json.RawMessage{},
	}
	if dir == "" {
		return b, nil
	}

	common, err := os.ReadFile(filepath.Join(dir, "common.json"))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// keep the empty default
	case err != nil:
		return nil, fmt.Errorf("read common scoring: %w", err)
	default:
		if !json.Valid(common) {
			return nil, fmt.Errorf("common.json is not valid JSON")
		}
		b.CommonScoring = common
	}

	gamesDir := filepath.Join(dir, "games")
	entries, err := os.ReadDir(gamesDir)
	if errors.Is(err, fs.ErrNotExist) {
		return b, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read games dir: %w", err)
	}

	type game struct {
		raw  json.RawMessage
		num  float64
		name string
	}
	games := make([]game, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(gamesDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read game %s: %w", entry.Name(), err)
		}
		var meta struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("parse game %s: %w", entry.Name(), err)
		}
		num := ordinal(meta.Name)
		if math.IsInf(num, 1) {
			num = ordinal(meta.ID)
		}
		games = append(games, game{raw: raw, num: num, name: meta.Name})
	}

	// "Game N" order with exhibitions (no number) last.
	sort.SliceStable(games, func(i, j int) bool {
		if games[i].num != games[j].num {
			return games[i].num < games[j].num
		}
		return games[i].name < games[j].name
	})
	for _, g := range games {
		b.Games = append(b.Games, g.raw)
	}
	return b, nil
}

// ordinal parses the game number out of s, +Inf when there is none.
func ordinal(s string) float64 {
	m := gameNumber.FindStringSubmatch(s)
	if m == nil {
		return math.Inf(1)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return math.Inf(1)
	}
	return float64(n)
}
