package auth

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"smarthr/internal/platform/crypto"
	"smarthr/internal/platform/flatfile"
)

const FileName = "users.txt"

type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) Path() string {
	return filepath.Join(s.Dir, FileName)
}

// Load reads every account. When the file yields no accounts the default
// administrator is created and written immediately.
func (s *Store) Load(ctx context.Context) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := flatfile.EnsureDir(s.Dir); err != nil {
		return nil, err
	}
	var users []User
	err := flatfile.ReadLines(s.Path(), flatfile.Comma, func(_ int, f []string) error {
		user := User{EmployeeID: NoEmployee}
		switch len(f) {
		case 4:
			id, err := flatfile.ParseInt(f[3])
			if err != nil {
				return nil
			}
			user.EmployeeID = id
		case 3:
		default:
			return nil
		}
		user.Username = f[0]
		user.Password = crypto.ShiftDecrypt(f[1])
		user.Role = f[2]
		if role, ok := NormalizeRole(f[2]); ok {
			user.Role = role
		}
		users = append(users, user)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if len(users) == 0 {
		users = []User{DefaultAdmin()}
		if err := s.Save(ctx, users); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (s *Store) Save(ctx context.Context, users []User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := flatfile.EnsureDir(s.Dir); err != nil {
		return err
	}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			u.Username,
			crypto.ShiftEncrypt(u.Password),
			u.Role,
			strconv.Itoa(u.EmployeeID),
		})
	}
	if err := flatfile.WriteLines(s.Path(), flatfile.Comma, rows); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}
