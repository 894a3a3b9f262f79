package attendance

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"smarthr/internal/domain/core"
	"smarthr/internal/platform/flatfile"
)

const FileName = "attendance.txt"

type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) Path() string {
	return filepath.Join(s.Dir, FileName)
}

func (s *Store) Load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := flatfile.EnsureDir(s.Dir); err != nil {
		return nil, err
	}
	var records []Record
	err := flatfile.ReadLines(s.Path(), flatfile.Pipe, func(_ int, f []string) error {
		rec := Record{EmployeeID: core.NoEmployeeID}
		switch len(f) {
		case 5:
			id, err := flatfile.ParseInt(f[3])
			if err != nil {
				return nil
			}
			rec.EmployeeID = id
			rec.CheckIn = f[4]
		case 3:
		default:
			return nil
		}
		rec.EmployeeName, rec.Date, rec.Status = f[0], f[1], f[2]
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load attendance: %w", err)
	}
	return records, nil
}

func (s *Store) Save(ctx context.Context, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := flatfile.EnsureDir(s.Dir); err != nil {
		return err
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.EmployeeName, r.Date, r.Status, strconv.Itoa(r.EmployeeID), r.CheckIn})
	}
	if err := flatfile.WriteLines(s.Path(), flatfile.Pipe, rows); err != nil {
		return fmt.Errorf("save attendance: %w", err)
	}
	return nil
}
