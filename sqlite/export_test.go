package sqlite

import "database/sql"

// SetBeforeCommit installs a hook that runs just before Apply commits.
func (s *IndexService) SetBeforeCommit(fn func(tx *sql.Tx) error) {
	s.beforeCommit = fn
}
