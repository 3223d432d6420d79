// Package roster imports the entity directory from per-event CSV files.
//
// Two files are expected in the roster directory:
//
//	troop.csv:  "Troop ID,Troop"          e.g. 0013,T13
//	patrol.csv: "Patrol ID,Troop,Patrol"  e.g. 1001,13,Skeleton Fishing
//
// Rows with an unparseable id are skipped. Imports are upserts keyed by the
// external id, so re-running an import refreshes names without duplicating
// entities.
package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/tally/internal/domain/model"
)

// Writer is the slice of the store the importer needs.
type Writer interface {
	UpsertEntity(ctx context.Context, e model.Entity) error
}

// Import loads troop.csv and patrol.csv from dir into the entity
// directory. Missing files are skipped; a directory with neither file
// imports nothing and returns no error.
func Import(ctx context.Context, dir string, w Writer) (int, error) {
	total := 0

	troops, err := readRows(filepath.Join(dir, "troop.csv"))
	if err != nil {
		return 0, fmt.Errorf("read troop roster: %w", err)
	}
	for _, cols := range troops {
		if len(cols) < 2 {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(cols[0]), 10, 64)
		if err != nil {
			continue
		}
		e := model.Entity{
			ID:   id,
			Name: strings.TrimSpace(cols[1]),
			Kind: model.KindTroop,
			// Normalized troop number: strips leading zeros from the id.
			Group: strconv.FormatInt(id, 10),
		}
		if err := w.UpsertEntity(ctx, e); err != nil {
			return total, err
		}
		total++
	}

	patrols, err := readRows(filepath.Join(dir, "patrol.csv"))
	if err != nil {
		return total, fmt.Errorf("read patrol roster: %w", err)
	}
	for _, cols := range patrols {
		if len(cols) < 3 {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(cols[0]), 10, 64)
		if err != nil {
			continue
		}
		e := model.Entity{
			ID:    id,
			Name:  strings.TrimSpace(cols[2]),
			Kind:  model.KindPatrol,
			Group: strings.TrimSpace(cols[1]),
		}
		if err := w.UpsertEntity(ctx, e); err != nil {
			return total, err
		}
		total++
	}

	return total, nil
}

// readRows returns the data rows of a CSV file, header excluded.
// A missing file yields no rows.
func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // roster exports carry trailing columns
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}
