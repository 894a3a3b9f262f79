package leave

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"smarthr/internal/domain/core"
	"smarthr/internal/platform/flatfile"
	"smarthr/internal/platform/sequence"
)

const FileName = "leaves.txt"

// Store persists leave requests to leaves.txt and owns the request ID
// watermark.
type Store struct {
	Dir string
	IDs *sequence.Sequence
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir, IDs: sequence.New()}
}

func (s *Store) Path() string {
	return filepath.Join(s.Dir, FileName)
}

func (s *Store) NextID() int {
	return s.IDs.Next()
}

func (s *Store) Load(ctx context.Context) (Requests, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := flatfile.EnsureDir(s.Dir); err != nil {
		return nil, err
	}
	var out Requests
	err := flatfile.ReadLines(s.Path(), flatfile.Pipe, func(_ int, f []string) error {
		if len(f) != 6 && len(f) != 7 {
			return nil
		}
		req, ok := decode(f)
		if !ok {
			return nil
		}
		s.IDs.Observe(req.ID)
		out = append(out, req)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load leave requests: %w", err)
	}
	return out, nil
}

func (s *Store) Save(ctx context.Context, requests Requests) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := flatfile.EnsureDir(s.Dir); err != nil {
		return err
	}
	rows := make([][]string, 0, len(requests))
	for _, r := range requests {
		rows = append(rows, []string{
			strconv.Itoa(r.ID),
			r.EmployeeName,
			strconv.Itoa(r.DaysRequested),
			r.Reason,
			r.Status,
			r.RequestDate.Format(flatfile.DateLayout),
			strconv.Itoa(r.EmployeeID),
		})
	}
	if err := flatfile.WriteLines(s.Path(), flatfile.Pipe, rows); err != nil {
		return fmt.Errorf("save leave requests: %w", err)
	}
	return nil
}

func decode(f []string) (Request, bool) {
	id, err := flatfile.ParseInt(f[0])
	if err != nil {
		return Request{}, false
	}
	days, err := flatfile.ParseInt(f[2])
	if err != nil {
		return Request{}, false
	}
	date, err := flatfile.ParseDate(f[5])
	if err != nil {
		return Request{}, false
	}
	req := Request{
		ID:            id,
		EmployeeName:  f[1],
		EmployeeID:    core.NoEmployeeID,
		DaysRequested: days,
		Reason:        f[3],
		Status:        f[4],
		RequestDate:   date,
	}
	if len(f) == 7 {
		if req.EmployeeID, err = flatfile.ParseInt(f[6]); err != nil {
			return Request{}, false
		}
	}
	return req, true
}
