package store

import (
	"context"
	"fmt"
)

// WriteRelease records a release and its diagnostics in one transaction.
//
// Uses ON CONFLICT DO NOTHING on (package, tag): writing the same release
// twice returns inserted=false and leaves the first row untouched. The
// diagnostics of a duplicate are discarded with it.
func (s *Store) WriteRelease(ctx context.Context, rec ReleaseRecord, diags []DiagnosticRecord) (inserted bool, err error) {
	graphJSON, err := marshalGraph(rec.Graph)
	if err != nil {
		return false, fmt.Errorf("write release: %w", err)
	}
	eraJSON, err := marshalEra(rec.Era)
	if err != nil {
		return false, fmt.Errorf("write release: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write release: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO releases
		(version, id, package, tag, graph, era, fingerprint, engine_version, graph_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(package, tag) DO NOTHING
	`,
		rec.Version,
		rec.ID,
		rec.Package,
		rec.Tag,
		graphJSON,
		eraJSON,
		rec.Fingerprint,
		rec.EngineVersion,
		rec.GraphVersion,
	)
	if err != nil {
		return false, fmt.Errorf("write release: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write release: rows affected: %w", err)
	}
	if n == 0 {
		return false, tx.Commit()
	}

	for i, d := range diags {
		candidates, err := marshalCandidates(d.Candidates)
		if err != nil {
			return false, fmt.Errorf("write release: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO diagnostics (release_id, seq, kind, subject, text, candidates)
			VALUES (?, ?, ?, ?, ?, ?)
		`, rec.ID, i, d.Kind, d.Subject, d.Text, candidates)
		if err != nil {
			return false, fmt.Errorf("write diagnostic %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write release: commit: %w", err)
	}
	return true, nil
}
