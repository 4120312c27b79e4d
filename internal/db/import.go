package db

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/diewo77/invoice-cli/internal/changes"
	"gorm.io/gorm"
)

// ImportFile is the bulk import document. Every key is optional.
type ImportFile struct {
	Company []changes.CreateCompany `json:"company"`
	Client  []changes.CreateClient  `json:"client"`
	Terms   []changes.CreateTerms   `json:"terms"`
	Method  []changes.CreateMethod  `json:"method"`
	Item    []changes.CreateItem    `json:"item"`
}

// ImportResult holds the ids created per table, in document order.
type ImportResult map[changes.Table][]int64

// Count is the total number of rows created.
func (r ImportResult) Count() int {
	n := 0
	for _, ids := range r {
		n += len(ids)
	}
	return n
}

// Import decodes an ImportFile from r and inserts every entity in one
// transaction. Any failure rolls the whole import back.
func (d *DB) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	var f ImportFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, &OpError{Op: "import", Kind: ErrValidation, Err: fmt.Errorf("decode: %w", err)}
	}
	return d.ImportEntities(ctx, f)
}

// ImportEntities inserts the entities of f in one transaction.
func (d *DB) ImportEntities(ctx context.Context, f ImportFile) (ImportResult, error) {
	var groups [][]changes.Descriptor
	groups = append(groups, descriptors(f.Company), descriptors(f.Client), descriptors(f.Terms),
		descriptors(f.Method), descriptors(f.Item))

	result := ImportResult{}
	err := d.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, group := range groups {
			for _, desc := range group {
				id, err := insert(tx, desc)
				if err != nil {
					return err
				}
				result[desc.Table()] = append(result[desc.Table()], id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	return result, nil
}

func descriptors[T changes.Descriptor](in []T) []changes.Descriptor {
	out := make([]changes.Descriptor, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
