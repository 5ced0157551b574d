package store

import (
	"context"
	"time"
)

// SaveRanks writes national and batch ranks for every listed student in a
// single transaction and stamps the recompute time. Students missing from
// batch keep a batch rank of zero.
func (s *Store) SaveRanks(ctx context.Context, national, batch map[string]int, at time.Time) error {
	return s.InTx(ctx, func(tx *Store) error {
		for id, rank := range national {
			if _, err := tx.q.ExecContext(ctx,
				`UPDATE students SET national_rank = ?, batch_rank = ? WHERE id = ?`,
				rank, batch[id], id); err != nil {
				return err
			}
		}
		return tx.SetMetadata(ctx, ranksRecomputedKey, at.UTC().Format(time.RFC3339Nano))
	})
}
