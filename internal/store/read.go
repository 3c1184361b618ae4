package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ReadReleases returns every release in version order.
// Returns an empty slice (not nil) for an empty log.
func (s *Store) ReadReleases(ctx context.Context) ([]ReleaseRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT version, id, package, tag, graph, era, fingerprint, engine_version, graph_version
		FROM releases
		ORDER BY version ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query releases: %w", err)
	}
	defer rows.Close()

	releases := []ReleaseRecord{}
	for rows.Next() {
		rec, err := scanRelease(rows)
		if err != nil {
			return nil, err
		}
		releases = append(releases, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate releases: %w", err)
	}
	return releases, nil
}

// ReadRelease returns the release of pkg tagged tag.
func (s *Store) ReadRelease(ctx context.Context, pkg, tag string) (ReleaseRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT version, id, package, tag, graph, era, fingerprint, engine_version, graph_version
		FROM releases
		WHERE package = ? AND tag = ?
	`, pkg, tag)
	rec, err := scanRelease(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ReleaseRecord{}, fmt.Errorf("release %s@%s: %w", pkg, tag, ErrNotFound)
	}
	return rec, err
}

// LatestVersion returns the highest recorded version, or 0 for an empty
// log. Replay resumes the clock from it.
func (s *Store) LatestVersion(ctx context.Context) (int32, error) {
	var v sql.NullInt32
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(version) FROM releases`).Scan(&v); err != nil {
		return 0, fmt.Errorf("latest version: %w", err)
	}
	return v.Int32, nil
}

// ReadDiagnostics returns a release's diagnostics in recording order.
func (s *Store) ReadDiagnostics(ctx context.Context, releaseID string) ([]DiagnosticRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT release_id, seq, kind, subject, text, candidates
		FROM diagnostics
		WHERE release_id = ?
		ORDER BY seq ASC
	`, releaseID)
	if err != nil {
		return nil, fmt.Errorf("query diagnostics: %w", err)
	}
	defer rows.Close()

	diags := []DiagnosticRecord{}
	for rows.Next() {
		var (
			d          DiagnosticRecord
			candidates string
		)
		if err := rows.Scan(&d.ReleaseID, &d.Seq, &d.Kind, &d.Subject, &d.Text, &candidates); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		if d.Candidates, err = unmarshalCandidates(candidates); err != nil {
			return nil, err
		}
		diags = append(diags, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diagnostics: %w", err)
	}
	return diags, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRelease(row scanner) (ReleaseRecord, error) {
	var (
		rec       ReleaseRecord
		graphJSON string
		eraJSON   string
	)
	err := row.Scan(&rec.Version, &rec.ID, &rec.Package, &rec.Tag, &graphJSON, &eraJSON,
		&rec.Fingerprint, &rec.EngineVersion, &rec.GraphVersion)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ReleaseRecord{}, err
		}
		return ReleaseRecord{}, fmt.Errorf("scan release: %w", err)
	}
	if rec.Graph, err = unmarshalGraph(graphJSON); err != nil {
		return ReleaseRecord{}, err
	}
	if rec.Era, err = unmarshalEra(eraJSON); err != nil {
		return ReleaseRecord{}, err
	}
	return rec, nil
}
