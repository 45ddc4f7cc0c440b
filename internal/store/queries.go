package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sdist-tools/backendscan/internal/classify"
)

// InsertRecord inserts or replaces the classification record for a package.
//
// Column conventions: backend NULL means "no build-backend declared",
// requires NULL means the requires key was absent, and requires_dynamic
// NULL means the build-hook output has not been collected — distinct from a
// stored empty list.
func (s *Store) InsertRecord(rec *classify.Record) error {
	formats := rec.Formats
	if formats == nil {
		formats = []string{}
	}
	formatsJSON, err := json.Marshal(formats)
	if err != nil {
		return fmt.Errorf("failed to marshal formats: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO records
		(package, family, backend, formats, requires, requires_dynamic, classified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query,
		rec.Package,
		rec.Family,
		nullableString(rec.Backend),
		string(formatsJSON),
		nullableJSON(rec.Requires, rec.Requires != nil),
		nullableJSON(rec.DynamicRequires, rec.HasDynamic),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert record for %s: %w", rec.Package, err)
	}

	return nil
}

// GetRecord retrieves the classification record for a package.
func (s *Store) GetRecord(pkg string) (*classify.Record, error) {
	query := `
		SELECT package, family, backend, formats, requires, requires_dynamic
		FROM records
		WHERE package = ?
	`

	rec, err := scanRecord(s.db.QueryRow(query, pkg))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("package %s not found", pkg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record for %s: %w", pkg, err)
	}

	return rec, nil
}

// HasRecord reports whether a classification record exists for the package.
// The analyze command uses it to skip already-processed packages on resume.
func (s *Store) HasRecord(pkg string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM records WHERE package = ?`, pkg).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check record for %s: %w", pkg, err)
	}
	return true, nil
}

// ListRecords returns all classification records ordered by package name.
func (s *Store) ListRecords() ([]*classify.Record, error) {
	query := `
		SELECT package, family, backend, formats, requires, requires_dynamic
		FROM records
		ORDER BY package
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []*classify.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

// SetDynamicRequires stores the build-hook requirements for a package.
// known=false clears the column back to NULL, recording that the hook
// output is missing rather than empty.
func (s *Store) SetDynamicRequires(pkg string, requires []string, known bool) error {
	value, err := nullableJSONErr(requires, known)
	if err != nil {
		return fmt.Errorf("failed to marshal dynamic requires: %w", err)
	}

	result, err := s.db.Exec(`UPDATE records SET requires_dynamic = ? WHERE package = ?`, value, pkg)
	if err != nil {
		return fmt.Errorf("failed to update dynamic requires for %s: %w", pkg, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("package %s not found", pkg)
	}

	return nil
}

// CountRecords returns the total number of stored records.
func (s *Store) CountRecords() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*classify.Record, error) {
	var rec classify.Record
	var backend sql.NullString
	var formatsJSON string
	var requiresJSON, dynamicJSON sql.NullString

	err := row.Scan(
		&rec.Package,
		&rec.Family,
		&backend,
		&formatsJSON,
		&requiresJSON,
		&dynamicJSON,
	)
	if err != nil {
		return nil, err
	}

	rec.Backend = backend.String

	if err := json.Unmarshal([]byte(formatsJSON), &rec.Formats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal formats for %s: %w", rec.Package, err)
	}
	if rec.Formats == nil {
		rec.Formats = []string{}
	}

	if requiresJSON.Valid {
		if err := json.Unmarshal([]byte(requiresJSON.String), &rec.Requires); err != nil {
			return nil, fmt.Errorf("failed to unmarshal requires for %s: %w", rec.Package, err)
		}
		if rec.Requires == nil {
			rec.Requires = []string{}
		}
	}

	if dynamicJSON.Valid {
		rec.HasDynamic = true
		if err := json.Unmarshal([]byte(dynamicJSON.String), &rec.DynamicRequires); err != nil {
			return nil, fmt.Errorf("failed to unmarshal dynamic requires for %s: %w", rec.Package, err)
		}
		if rec.DynamicRequires == nil {
			rec.DynamicRequires = []string{}
		}
	}

	return &rec, nil
}

// nullableString maps the empty string to SQL NULL.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// nullableJSON marshals the slice when present, NULL otherwise.
func nullableJSON(values []string, present bool) interface{} {
	v, err := nullableJSONErr(values, present)
	if err != nil {
		// Marshalling []string cannot fail.
		return nil
	}
	return v
}

func nullableJSONErr(values []string, present bool) (interface{}, error) {
	if !present {
		return nil, nil
	}
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
