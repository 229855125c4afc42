package crosschat

import (
	"context"
	"time"

	"github.com/nameless-bot/nameless/ctxzap"
)

const janitorInterval = time.Hour

// RunJanitor periodically prunes message mappings older than the
// configured retention. Mapping rows are never deleted on the relay
// path, so without this sweep the table grows without bound.
func (s *Service) RunJanitor(ctx context.Context) {
	if s.retention <= 0 {
		return
	}

	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		s.pruneOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Service) pruneOnce(ctx context.Context) {
	ctx = ctxzap.ToContext(ctx, s.log)

	pruned, err := s.store.PruneMappings(ctx, time.Now().Add(-s.retention))
	if err != nil {
		s.log.With("error", err).Warn("failed to prune message mappings")
		return
	}

	if pruned > 0 {
		s.log.With("pruned", pruned).Info("pruned stale message mappings")
	}
}
