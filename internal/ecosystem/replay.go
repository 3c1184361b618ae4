package ecosystem

import (
	"context"
	"fmt"

	"github.com/roach88/docket/internal/history"
)

// Replay rebuilds the ecosystem from the store, ingesting every recorded
// release in version order with its original version and id. Replayed
// releases are not written back. Replay must run on a fresh service.
func (s *Service) Replay(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, ErrNoStore
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.ReadReleases(ctx)
	if err != nil {
		return 0, fmt.Errorf("read releases: %w", err)
	}
	for i, rec := range records {
		_, err := s.ingest(ctx, ingestRequest{
			graph:   rec.Graph,
			era:     rec.Era,
			version: history.Version(rec.Version),
			id:      rec.ID,
		})
		if err != nil {
			return i, fmt.Errorf("replay %s@%s: %w", rec.Package, rec.Tag, err)
		}
	}
	s.logger.Info("replay complete", "releases", len(records))
	return len(records), nil
}
