package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/jackc/pgx/v5"
)

// chunkSize bounds how much of a payload is held in memory at once.
const chunkSize = 256 * 1024

const (
	queryLoCreate = `SELECT lo_from_bytea(0, $1)`
	queryLoPut    = `SELECT lo_put($1, $2, $3)`
	queryLoGet    = `SELECT lo_get($1, $2, $3)`
	queryLoUnlink = `SELECT lo_unlink($1)`
)

// writeLargeObject copies r into a new large object chunk by chunk and
// returns its OID and size. It must run inside tx.
func writeLargeObject(ctx context.Context, tx pgx.Tx, r io.Reader) (uint32, int64, error) {
	buf := make([]byte, chunkSize)

	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return 0, 0, fmt.Errorf("read upload: %w", err)
	}
	more := err == nil

	var oid uint32
	if err := tx.QueryRow(ctx, queryLoCreate, buf[:n]).Scan(&oid); err != nil {
		return 0, 0, fmt.Errorf("create large object: %w", err)
	}
	size := int64(n)

	for more {
		n, err = io.ReadFull(r, buf)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return 0, 0, fmt.Errorf("read upload: %w", err)
		}
		more = err == nil
		if n == 0 {
			break
		}
		if _, err := tx.Exec(ctx, queryLoPut, oid, size, buf[:n]); err != nil {
			return 0, 0, fmt.Errorf("write large object %d: %w", oid, err)
		}
		size += int64(n)
	}
	return oid, size, nil
}

func unlinkLargeObject(ctx context.Context, tx pgx.Tx, oid uint32) error {
	if _, err := tx.Exec(ctx, queryLoUnlink, oid); err != nil {
		return fmt.Errorf("unlink large object %d: %w", oid, err)
	}
	return nil
}

// largeObjectReader streams a large object in chunks over an open
// transaction. Close commits the transaction.
type largeObjectReader struct {
	ctx    context.Context
	tx     pgx.Tx
	oid    uint32
	size   int64
	offset int64
	buf    []byte

	closeOnce sync.Once
	closeErr  error
}

func newLargeObjectReader(ctx context.Context, tx pgx.Tx, oid uint32, size int64) *largeObjectReader {
	return &largeObjectReader{ctx: ctx, tx: tx, oid: oid, size: size}
}

func (r *largeObjectReader) Read(p []byte) (int, error) {
	if len(r.buf) == 0 {
		if r.offset >= r.size {
			return 0, io.EOF
		}
		want := min(int64(chunkSize), r.size-r.offset)
		var chunk []byte
		if err := r.tx.QueryRow(r.ctx, queryLoGet, r.oid, r.offset, int32(want)).Scan(&chunk); err != nil {
			return 0, fmt.Errorf("read large object %d at %d: %w", r.oid, r.offset, err)
		}
		if len(chunk) == 0 {
			return 0, io.ErrUnexpectedEOF
		}
		r.offset += int64(len(chunk))
		r.buf = chunk
	}

	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func (r *largeObjectReader) Close() error {
	r.closeOnce.Do(func() {
		if err := r.tx.Commit(r.ctx); err != nil {
			_ = r.tx.Rollback(r.ctx)
			r.closeErr = fmt.Errorf("close large object %d: %w", r.oid, err)
		}
	})
	return r.closeErr
}
