package iooptimize

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tagezi/mlidb/internal/iorepo"
	"github.com/tagezi/mlidb/pkg/schema"
	"github.com/tagezi/mlidb/pkg/store"
	"golang.org/x/sync/errgroup"
)

// nameRow is a taxon with its current stable identifier.
type nameRow struct {
	ID       int64
	Name     string
	Author   *string
	NameUUID string
}

// refreshNameUUIDs recomputes name_uuid of every taxon and saves the ones
// that changed. Taxa are loaded by one goroutine, hashed by a pool of
// workers and saved in batches by a single writer.
func (o *optimizer) refreshNameUUIDs(ctx context.Context) (int64, error) {
	total, err := o.st.Count(ctx, schema.TableTaxa, store.Where{})
	if err != nil {
		return 0, err
	}

	cnt := newCounter(o.withProgress, total, "Checking names: ")
	defer cnt.finish()

	chIn := make(chan nameRow)
	chOut := make(chan nameRow)
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(chIn)
		return o.loadNames(gCtx, chIn)
	})

	var wg sync.WaitGroup
	for range o.jobsNum {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return hashNames(gCtx, chIn, chOut, cnt)
		})
	}

	go func() {
		wg.Wait()
		close(chOut)
	}()

	var saved int64
	g.Go(func() error {
		var err error
		saved, err = o.saveNames(gCtx, chOut)
		return err
	})

	if err = g.Wait(); err != nil {
		return saved, err
	}
	slog.Info("Name identifiers refreshed", "changed", saved)
	return saved, nil
}

func (o *optimizer) loadNames(ctx context.Context, chIn chan<- nameRow) error {
	q := `
SELECT id, name, author, name_uuid
FROM taxa
WHERE id > ?
ORDER BY id
LIMIT ?`

	var lastID int64
	for {
		var rows []nameRow
		if err := o.st.Query(ctx, &rows, q, lastID, batchSize); err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for _, v := range rows {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case chIn <- v:
			}
		}
		lastID = rows[len(rows)-1].ID
	}
}

// hashNames sends on only taxa whose identifier differs from the stored
// one.
func hashNames(
	ctx context.Context,
	chIn <-chan nameRow,
	chOut chan<- nameRow,
	cnt *counter,
) error {
	for r := range chIn {
		cnt.inc()
		uuid := iorepo.NameUUID(r.Name, r.Author)
		if uuid == r.NameUUID {
			continue
		}
		r.NameUUID = uuid
		select {
		case <-ctx.Done():
			// Drain the channel on cancellation
			for range chIn {
			}
			return ctx.Err()
		case chOut <- r:
		}
	}
	return nil
}

func (o *optimizer) saveNames(ctx context.Context, chOut <-chan nameRow) (int64, error) {
	var res int64
	batch := make([]nameRow, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := o.st.Transaction(ctx, func(tx store.Store) error {
			for _, v := range batch {
				_, err := tx.Update(ctx, schema.TableTaxa,
					[]store.Assign{store.Set("name_uuid", v.NameUUID)},
					store.And(store.Eq("id", v.ID)),
				)
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		res += int64(len(batch))
		batch = batch[:0]
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case r, ok := <-chOut:
			if !ok {
				return res, flush()
			}
			batch = append(batch, r)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return res, err
				}
			}
		}
	}
}
