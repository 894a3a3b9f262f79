package payroll

import "context"

type StoreAPI interface {
	Load(ctx context.Context) ([]Record, error)
	Append(ctx context.Context, record Record) error
	SaveAll(ctx context.Context, records []Record) error
}
