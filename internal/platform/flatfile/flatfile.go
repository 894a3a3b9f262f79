// Package flatfile reads and writes the line-oriented delimited files that
// back every record collection. One record per line, fields split on a
// delimiter reserved per entity.
package flatfile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	Comma = ","
	Pipe  = "|"

	DateLayout = "2006-01-02"
)

// EnsureDir creates dir when it is missing. Safe to call before every operation.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory %s: %w", dir, err)
	}
	return nil
}

// ReadLines calls fn for every non-blank line of path with its 1-based line
// number and fields. A missing file yields no calls and no error.
func ReadLines(path, delim string, fn func(lineNo int, fields []string) error) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(lineNo, strings.Split(line, delim)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// WriteLines replaces path with rows, one per line. The file is written to a
// temporary sibling first and renamed into place.
func WriteLines(path, delim string, rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := bufio.NewWriter(tmp)
	for _, row := range rows {
		if _, err := w.WriteString(Join(row, delim) + "\n"); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// AppendLine adds a single row to the end of path, creating it if needed.
func AppendLine(path, delim string, row []string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(Join(row, delim) + "\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Join renders a row so that it splits back into exactly len(row) fields:
// occurrences of the delimiter and line breaks inside a field become spaces.
func Join(row []string, delim string) string {
	clean := make([]string, len(row))
	replacer := strings.NewReplacer(delim, " ", "\r\n", " ", "\n", " ", "\r", " ")
	for i, field := range row {
		clean[i] = replacer.Replace(field)
	}
	return strings.Join(clean, delim)
}

// FormatFloat writes the shortest representation that parses back to v.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func ParseFloat(raw string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

func ParseInt(raw string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(raw))
}

func ParseBool(raw string) (bool, error) {
	return strconv.ParseBool(strings.ToLower(strings.TrimSpace(raw)))
}

// ParseDate accepts YYYY-MM-DD or RFC3339.
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(DateLayout, value)
}
