package store

import (
	"context"
)

// DefaultPageSize bounds how many rows a single page read returns.
const DefaultPageSize = 1000

// PageFunc reads up to limit rows whose key is strictly greater than after,
// ordered by key.
type PageFunc[T any] func(ctx context.Context, after int64, limit int) ([]T, error)

// Cursor is a lazy, restartable keyset pager. Nothing is read until Next is
// called, and at most one page is held in memory at a time.
//
//	c := store.NewCursor(pageSize, keyFn, fetch)
//	for c.Next(ctx) {
//		handle(c.Page())
//	}
//	if err := c.Err(); err != nil { ... }
type Cursor[T any] struct {
	pageSize int
	key      func(T) int64
	fetch    PageFunc[T]

	after int64
	page  []T
	done  bool
	err   error
}

func NewCursor[T any](pageSize int, key func(T) int64, fetch PageFunc[T]) *Cursor[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Cursor[T]{
		pageSize: pageSize,
		key:      key,
		fetch:    fetch,
	}
}

// NewIDCursor pages over plain ids, the ids being their own keys.
func NewIDCursor(pageSize int, fetch PageFunc[int64]) *Cursor[int64] {
	return NewCursor(pageSize, func(id int64) int64 { return id }, fetch)
}

// Next advances to the next non-empty page. It returns false once the rows
// are exhausted or a read failed; check Err afterwards.
func (c *Cursor[T]) Next(ctx context.Context) bool {
	if c.done || c.err != nil {
		return false
	}
	page, err := c.fetch(ctx, c.after, c.pageSize)
	if err != nil {
		c.err = err
		c.page = nil
		return false
	}
	if len(page) == 0 {
		c.done = true
		c.page = nil
		return false
	}
	if len(page) < c.pageSize {
		c.done = true
	}
	c.page = page
	c.after = c.key(page[len(page)-1])
	return true
}

// Page returns the rows read by the last successful Next.
func (c *Cursor[T]) Page() []T {
	return c.page
}

func (c *Cursor[T]) Err() error {
	return c.err
}

// Reset rewinds the cursor so that iteration starts over from the first page.
func (c *Cursor[T]) Reset() {
	c.after = 0
	c.page = nil
	c.done = false
	c.err = nil
}

// Each drains the cursor, calling fn once per page.
func (c *Cursor[T]) Each(ctx context.Context, fn func(page []T) error) error {
	for c.Next(ctx) {
		if err := fn(c.Page()); err != nil {
			return err
		}
	}
	return c.Err()
}

// SlicePage serves a keyset page out of rows already sorted by key. It backs
// the in-memory store.
func SlicePage[T any](rows []T, key func(T) int64, after int64, limit int) []T {
	res := []T{}
	for _, r := range rows {
		if key(r) <= after {
			continue
		}
		res = append(res, r)
		if len(res) == limit {
			break
		}
	}
	return res
}
