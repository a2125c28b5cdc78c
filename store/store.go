// Package store reads the rule, follow-graph and status data the dispatcher
// needs. Large sets are exposed as Cursors so callers hold one page at a time.
package store

import (
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("record not found")

// localAccountSQL matches local, non-suspended accounts in the joined
// "accounts" table.
const localAccountSQL = "(accounts.domain IS NULL OR accounts.domain = '') AND accounts.suspended_at IS NULL"
