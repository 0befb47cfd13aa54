package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-vcf/internal/vcf"
)

// StoredRecord is the flattened form of a record kept in DuckDB.
type StoredRecord struct {
	Source      string
	Key         string
	Chrom       string
	Pos         int64
	ID          string
	Ref         string
	Alt         string
	Qual        *float64
	Filter      string
	VariantType string
	End         *int64
}

// Flatten converts a decoded record into its stored form.
func Flatten(source string, r *vcf.Record) StoredRecord {
	sr := StoredRecord{
		Source:      source,
		Key:         r.Key,
		Chrom:       r.Chrom,
		Pos:         r.Pos,
		ID:          strings.Join(r.ID, ";"),
		Ref:         r.Ref,
		Alt:         strings.Join(r.Alt, ","),
		Qual:        r.Qual,
		Filter:      strings.Join(r.Filter, ";"),
		VariantType: string(vcf.VariantTypeOf(r)),
	}
	if end, ok := vcf.InfoInt(r, "END"); ok {
		sr.End = &end
	}
	return sr
}

type recordKey struct {
	source, key string
}

// WriteRecords batch-inserts records from source using the Appender API.
// Records repeating a key already seen in this batch are skipped; keys are
// not checked against rows already stored, which ReplaceSource handles.
func (s *Store) WriteRecords(source string, records []*vcf.Record) error {
	if len(records) == 0 {
		return nil
	}

	seen := make(map[recordKey]bool, len(records))
	deduped := make([]StoredRecord, 0, len(records))
	for _, r := range records {
		k := recordKey{source, r.Key}
		if !seen[k] {
			seen[k] = true
			deduped = append(deduped, Flatten(source, r))
		}
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "records")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range deduped {
		var qual, end driver.Value
		if r.Qual != nil {
			qual = *r.Qual
		}
		if r.End != nil {
			end = *r.End
		}
		if err := appender.AppendRow(
			r.Source, r.Key, r.Chrom, r.Pos, r.ID, r.Ref, r.Alt,
			qual, r.Filter, r.VariantType, end,
		); err != nil {
			return fmt.Errorf("append record: %w", err)
		}
	}

	return appender.Flush()
}

// stagingSuffix marks rows written by ReplaceSource that are not yet
// committed. It cannot occur in a file path.
const stagingSuffix = "\x00staging"

// ReplaceSource replaces the records of source with those returned by next,
// which reports the end of input with a nil record. Records are appended in
// batches under a staging name and only become visible as source once next
// is exhausted, so a failed load leaves the previous rows untouched.
func (s *Store) ReplaceSource(source string, batchSize int, next func() (*vcf.Record, error)) (int, error) {
	staging := source + stagingSuffix
	if err := s.ClearSource(staging); err != nil {
		return 0, fmt.Errorf("clear staging rows: %w", err)
	}

	n, err := s.appendAll(staging, batchSize, next)
	if err != nil {
		s.ClearSource(staging) //nolint:errcheck
		return 0, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec("DELETE FROM records WHERE source=?", source); err != nil {
		return 0, fmt.Errorf("delete previous rows: %w", err)
	}
	if _, err := tx.Exec("UPDATE records SET source=? WHERE source=?", source, staging); err != nil {
		return 0, fmt.Errorf("promote staging rows: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// appendAll drains next into source, skipping keys already written.
func (s *Store) appendAll(source string, batchSize int, next func() (*vcf.Record, error)) (int, error) {
	if batchSize < 1 {
		batchSize = 1
	}

	total := 0
	seen := make(map[string]bool)
	batch := make([]*vcf.Record, 0, batchSize)
	flush := func() error {
		if err := s.WriteRecords(source, batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		r, err := next()
		if err != nil {
			return 0, err
		}
		if r == nil {
			break
		}
		if seen[r.Key] {
			continue
		}
		seen[r.Key] = true
		batch = append(batch, r)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return 0, err
			}
		}
	}
	if err := flush(); err != nil {
		return 0, err
	}
	return total, nil
}

// ClearRecords removes all stored records and source fingerprints.
func (s *Store) ClearRecords() error {
	if _, err := s.db.Exec("DELETE FROM records"); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM sources")
	return err
}

// ClearSource removes the records loaded from one source.
func (s *Store) ClearSource(source string) error {
	_, err := s.db.Exec("DELETE FROM records WHERE source=?", source)
	return err
}

// LookupKey returns every stored record with the given identity key.
func (s *Store) LookupKey(key string) ([]StoredRecord, error) {
	rows, err := s.db.Query(`SELECT
		source, record_key, chrom, pos, id, ref, alt, qual, filter, variant_type, info_end
		FROM records
		WHERE record_key=?
		ORDER BY source`, key)
	if err != nil {
		return nil, fmt.Errorf("query record: %w", err)
	}
	defer rows.Close()

	var results []StoredRecord
	for rows.Next() {
		var sr StoredRecord
		var qual sql.NullFloat64
		var end sql.NullInt64
		if err := rows.Scan(
			&sr.Source, &sr.Key, &sr.Chrom, &sr.Pos, &sr.ID, &sr.Ref, &sr.Alt,
			&qual, &sr.Filter, &sr.VariantType, &end,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if qual.Valid {
			sr.Qual = &qual.Float64
		}
		if end.Valid {
			sr.End = &end.Int64
		}
		results = append(results, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return results, nil
}

// CountByType returns the number of stored records per derived variant type.
// Unclassified records are counted under the empty string.
func (s *Store) CountByType() (map[string]int64, error) {
	rows, err := s.db.Query(`SELECT variant_type, COUNT(*) FROM records GROUP BY variant_type`)
	if err != nil {
		return nil, fmt.Errorf("count by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var vt string
		var n int64
		if err := rows.Scan(&vt, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[vt] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}
