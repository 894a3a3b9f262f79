package audit

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"smarthr/internal/domain/core"
	"smarthr/internal/platform/flatfile"
)

const FileName = "employee_histories.txt"

type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) Path() string {
	return filepath.Join(s.Dir, FileName)
}

func (s *Store) Load(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := flatfile.EnsureDir(s.Dir); err != nil {
		return nil, err
	}
	var entries []Entry
	err := flatfile.ReadLines(s.Path(), flatfile.Pipe, func(_ int, f []string) error {
		if len(f) != 4 && len(f) != 5 {
			return nil
		}
		date, err := flatfile.ParseDate(f[3])
		if err != nil {
			return nil
		}
		entry := Entry{EmployeeName: f[0], EmployeeID: core.NoEmployeeID, Action: f[1], Details: f[2], Date: date}
		if len(f) == 5 {
			if entry.EmployeeID, err = flatfile.ParseInt(f[4]); err != nil {
				return nil
			}
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load employee history: %w", err)
	}
	return entries, nil
}

func (s *Store) Save(ctx context.Context, entries []Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := flatfile.EnsureDir(s.Dir); err != nil {
		return err
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.EmployeeName,
			e.Action,
			e.Details,
			e.Date.Format(flatfile.DateLayout),
			strconv.Itoa(e.EmployeeID),
		})
	}
	if err := flatfile.WriteLines(s.Path(), flatfile.Pipe, rows); err != nil {
		return fmt.Errorf("save employee history: %w", err)
	}
	return nil
}
