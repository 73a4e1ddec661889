package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/happyplaces/internal/model"
)

// marshalMetadata converts a metadata bag to canonical JSON TEXT.
// A nil bag is stored as {} so the column always holds an object.
func marshalMetadata(obj model.Object) (string, error) {
	data, err := model.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	return string(data), nil
}

// unmarshalMetadata parses stored JSON TEXT. Empty and null become {}.
func unmarshalMetadata(data string) (model.Object, error) {
	data = strings.TrimSpace(data)
	if data == "" || data == "{}" || data == "null" {
		return model.Object{}, nil
	}
	var obj model.Object
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return obj, nil
}

// nullString maps "" to SQL NULL, matching rows written by earlier releases
// for absent routine, motive and purchase date.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullInt(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return model.Ptr(n.Float64)
}

func intPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return model.Ptr(n.Int64)
}
