package archive

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var schemaFiles embed.FS

// schemaStep is one numbered migration file, e.g. 001_initial.sql is step 1.
type schemaStep struct {
	number int
	name   string
	body   string
}

func schemaSteps() ([]schemaStep, error) {
	names, err := fs.Glob(schemaFiles, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list schema files: %w", err)
	}
	steps := make([]schemaStep, 0, len(names))
	for _, name := range names {
		base := path.Base(name)
		prefix, _, ok := strings.Cut(base, "_")
		if !ok {
			return nil, fmt.Errorf("schema file %s: missing numeric prefix", base)
		}
		number, err := strconv.Atoi(prefix)
		if err != nil || number <= 0 {
			return nil, fmt.Errorf("schema file %s: invalid number %q", base, prefix)
		}
		body, err := schemaFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read schema file %s: %w", base, err)
		}
		steps = append(steps, schemaStep{number: number, name: base, body: string(body)})
	}
	slices.SortFunc(steps, func(a, b schemaStep) int { return a.number - b.number })
	for i := 1; i < len(steps); i++ {
		if steps[i].number == steps[i-1].number {
			return nil, fmt.Errorf("schema files %s and %s share number %d", steps[i-1].name, steps[i].name, steps[i].number)
		}
	}
	return steps, nil
}

// migrate brings the database up to the newest schema step. The applied step
// is tracked in PRAGMA user_version so no bookkeeping table is needed.
func (s *Store) migrate(ctx context.Context) error {
	steps, err := schemaSteps()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var current int
	if err := tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	latest := current
	for _, step := range steps {
		if step.number <= current {
			continue
		}
		if _, err := tx.ExecContext(ctx, step.body); err != nil {
			return fmt.Errorf("apply schema %s: %w", step.name, err)
		}
		latest = step.number
	}
	if latest == current {
		return nil
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, "PRAGMA user_version = "+strconv.Itoa(latest)); err != nil {
		return fmt.Errorf("record schema version %d: %w", latest, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// SchemaVersion reports the schema step the database is at.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
