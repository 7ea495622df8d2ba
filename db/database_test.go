package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestKind(t *testing.T) {
	tests := []struct {
		dsn      string
		expected string
	}{
		{"db/caselaw.db", KindSQLite},
		{":memory:", KindSQLite},
		{"postgres://user:pw@localhost:5432/caselaw", KindPostgres},
		{"postgresql://localhost/caselaw", KindPostgres},
		{"libsql://caselaw-org.turso.io", KindLibSQL},
		{"https://caselaw-org.turso.io", KindLibSQL},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.expected, Kind(tt.dsn))
		})
	}
}

func TestLibsqlDSN(t *testing.T) {
	assert.Equal(t, "libsql://caselaw.turso.io", libsqlDSN("libsql://caselaw.turso.io", ""))
	assert.Equal(t, "libsql://caselaw.turso.io?authToken=abc", libsqlDSN("libsql://caselaw.turso.io", "abc"))
}

func TestInitializeSQLite(t *testing.T) {
	dir := t.TempDir()
	err := Initialize(dir+"/test.db", "", "test")
	assert.NoError(t, err)
	assert.NotNil(t, DB)
	assert.NoError(t, Close())
}

func TestUnicodeLower(t *testing.T) {
	assert.Equal(t, "école v. état", unicodeLower("ÉCOLE v. État"))
	assert.Equal(t, "müller", unicodeLower([]byte("MÜLLER")))
	assert.Nil(t, unicodeLower(nil))
	assert.Equal(t, int64(7), unicodeLower(int64(7)))
}

func TestSQLiteDialectorLowersUnicode(t *testing.T) {
	conn, err := gorm.Open(SQLiteDialector(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	var lowered string
	require.NoError(t, conn.Raw("SELECT LOWER(?)", "ÉCOLE").Row().Scan(&lowered))
	assert.Equal(t, "école", lowered)

	var null sql.NullString
	require.NoError(t, conn.Raw("SELECT LOWER(NULL)").Row().Scan(&null))
	assert.False(t, null.Valid)
}
