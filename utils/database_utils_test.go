package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndDrop(t *testing.T) {
	db, dbName := CreateTempDB(t)

	exists, err := IsDatabaseExist(dbName)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, dropTempDB(db, dbName))

	exists, err = IsDatabaseExist(dbName)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIsDatabaseExist(t *testing.T) {
	if !HasTestDB() {
		t.Skip("DB_HOST not set")
	}
	exists, err := IsDatabaseExist("postgres")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = IsDatabaseExist("DOES_NOT_EXIST")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDropRefusesNonTestDB(t *testing.T) {
	assert.Error(t, dropTempDB(nil, "postgres"))
}

func TestRandomTestDBName(t *testing.T) {
	name := randomTestDBName()
	assert.True(t, isTempDB(name))
	assert.Len(t, name, len(TestDBPrefix)+TestDBNameCharLength)
}
