package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ACTIVEカートのunique部分インデックスがマイグレーションから落ちないことを見る。
// get-or-createの再検索パスはこのインデックスが前提。
func TestExtraIndexes_ActiveCartUnique(t *testing.T) {
	found := false
	for _, stmt := range extraIndexes {
		if strings.Contains(stmt, "UNIQUE INDEX") &&
			strings.Contains(stmt, "ON carts") &&
			strings.Contains(stmt, "WHERE status = 'ACTIVE'") {
			found = true
		}
	}
	assert.True(t, found)
}
