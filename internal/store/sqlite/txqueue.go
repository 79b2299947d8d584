// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/lorekeep/lorekeep/internal/store"
	lkerr "github.com/lorekeep/lorekeep/pkg/errors"
)

// txFunc is a transactional operation. The context it receives carries
// the active transaction, so nested do() calls join it instead of
// opening a second transaction.
type txFunc func(ctx context.Context, tx *sql.Tx) error

type txJob struct {
	ctx  context.Context
	fn   txFunc
	done chan error
}

// activeTxKey marks the in-flight transaction in a context.
type activeTxKey struct{}

// txQueue serializes all transactions on one handle into FIFO order. A
// single consumer goroutine admits one job at a time; each caller waits
// for every previously queued job to finish. Enqueued jobs run to
// completion — there is no cancellation of a queued-but-not-started
// transaction.
type txQueue struct {
	db     *sql.DB
	logger *slog.Logger
	flush  func() error

	jobs    chan *txJob
	stopped chan struct{}

	mu         sync.Mutex
	closed     bool
	inflight   sync.WaitGroup
	flushErrFn func(error)
}

func newTxQueue(db *sql.DB, logger *slog.Logger, flush func() error) *txQueue {
	q := &txQueue{
		db:      db,
		logger:  logger,
		flush:   flush,
		jobs:    make(chan *txJob, 16),
		stopped: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *txQueue) run() {
	for job := range q.jobs {
		job.done <- q.execute(job.ctx, job.fn)
	}
	close(q.stopped)
}

// do runs fn inside a transaction, admitted FIFO behind every earlier
// caller. When the context already carries an active transaction the
// call is reentrant: fn executes immediately against that transaction
// and no commit, rollback, or flush happens here — transactions never
// nest.
func (q *txQueue) do(ctx context.Context, fn txFunc) error {
	if tx, ok := ctx.Value(activeTxKey{}).(*sql.Tx); ok {
		return fn(ctx, tx)
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return lkerr.Errorf(lkerr.CodeGraphNotInitialized, "transaction queue: %w", store.ErrNotInitialized)
	}
	q.inflight.Add(1)
	q.mu.Unlock()

	job := &txJob{ctx: ctx, fn: fn, done: make(chan error, 1)}
	q.jobs <- job
	q.inflight.Done()

	return <-job.done
}

func (q *txQueue) execute(ctx context.Context, fn txFunc) error {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return lkerr.Errorf(lkerr.CodeGraphTransactionFailure, "beginning transaction: %w", err)
	}

	txCtx := context.WithValue(ctx, activeTxKey{}, tx)
	if err := fn(txCtx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			q.logger.ErrorContext(ctx, "transaction rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil && !commitAlreadyClosed(err) {
		return lkerr.Errorf(lkerr.CodeGraphTransactionFailure, "committing transaction: %w", err)
	}

	q.runFlush(ctx)
	return nil
}

// commitAlreadyClosed reports whether a commit error only means the
// engine auto-closed the transaction after every statement succeeded.
// Such commits are tolerated: the result is still returned and the
// flush still runs. Genuine commit failures propagate.
func commitAlreadyClosed(err error) bool {
	if errors.Is(err, sql.ErrTxDone) {
		return true
	}
	return strings.Contains(err.Error(), "no transaction")
}

// runFlush triggers exactly one persistence flush per top-level commit.
// Flush failures are logged and reported to the registered observer,
// never fatal to the committed result.
func (q *txQueue) runFlush(ctx context.Context) {
	if q.flush == nil {
		return
	}
	if err := q.flush(); err != nil {
		q.logger.WarnContext(ctx, "post-commit flush failed", "error", err)

		q.mu.Lock()
		fn := q.flushErrFn
		q.mu.Unlock()
		if fn != nil {
			fn(lkerr.Errorf(lkerr.CodeGraphFlushFailure, "flushing after commit: %w", err))
		}
	}
}

func (q *txQueue) onFlushError(fn func(error)) {
	q.mu.Lock()
	q.flushErrFn = fn
	q.mu.Unlock()
}

// close stops admission, lets every already-queued transaction run to
// completion, and waits for the consumer to exit.
func (q *txQueue) close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.stopped
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.inflight.Wait()
	close(q.jobs)
	<-q.stopped
}
