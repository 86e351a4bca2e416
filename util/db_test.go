package util

import (
	"os"
	"testing"
	"path/filepath"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB( t *testing.T, password string, limit uint ) *DB {
	t.Helper()
	db, err := ConnectDB( filepath.Join( t.TempDir(), "files.db" ), password, limit )
	require.NoError( t, err )
	t.Cleanup( func() { db.Close() } )
	return db
}

func TestConnectDB( t *testing.T ) {
	db := openTestDB( t, "", 100 )
	assert.Equal( t, uint(100), db.rowsLimit )

	rows, err := db.Count()
	require.NoError( t, err )
	assert.Equal( t, 0, rows )
}

func TestSaveFileInfo( t *testing.T ) {
	db := openTestDB( t, "", 100 )

	id1, err := db.SaveFileInfo( "plain.png", []byte("plain"), false, "ignored" )
	require.NoError( t, err )
	id2, err := db.SaveFileInfo( "marked.bmp", []byte("marked"), true, "STEG_DETECTED" )
	require.NoError( t, err )
	assert.Greater( t, id2, id1 )

	files, err := db.ListFiles( 0 )
	require.NoError( t, err )
	require.Len( t, files, 2 )

	// newest first
	assert.Equal( t, "marked.bmp", files[0].Filename )
	assert.True( t, files[0].HasSteganography )
	assert.Equal( t, "STEG_DETECTED", files[0].HiddenMessage )
	assert.False( t, files[0].UploadTime.IsZero() )

	assert.Equal( t, "plain.png", files[1].Filename )
	assert.False( t, files[1].HasSteganography )
	assert.Empty( t, files[1].HiddenMessage )

	found, err := db.IsInDB( []byte("marked") )
	require.NoError( t, err )
	assert.True( t, found )
	found, err = db.IsInDB( []byte("never seen") )
	require.NoError( t, err )
	assert.False( t, found )

	files, err = db.ListFiles( 1 )
	require.NoError( t, err )
	assert.Len( t, files, 1 )
}

func TestRowsLimit( t *testing.T ) {
	db := openTestDB( t, "", 3 )
	for _, name := range []string{ "a", "b", "c", "d", "e" } {
		_, err := db.SaveFileInfo( name, []byte(name), false, "" )
		require.NoError( t, err )
	}
	count, err := db.Count()
	require.NoError( t, err )
	assert.Equal( t, 3, count )

	files, err := db.ListFiles( 0 )
	require.NoError( t, err )
	assert.Equal( t, "e", files[0].Filename )
	assert.Equal( t, "c", files[2].Filename )
}

func TestEncryptedDB( t *testing.T ) {
	path := filepath.Join( t.TempDir(), "secret.db" )
	db, err := ConnectDB( path, "correct horse", 10 )
	require.NoError( t, err )
	_, err = db.SaveFileInfo( "hidden-name.bmp", []byte("x"), false, "" )
	require.NoError( t, err )
	require.NoError( t, db.Close() )

	raw, err := os.ReadFile( path )
	require.NoError( t, err )
	assert.NotContains( t, string(raw), "hidden-name.bmp" )

	db, err = ConnectDB( path, "correct horse", 10 )
	require.NoError( t, err )
	defer db.Close()
	count, err := db.Count()
	require.NoError( t, err )
	assert.Equal( t, 1, count )
}

func TestShredFile( t *testing.T ) {
	path := filepath.Join( t.TempDir(), "shred.me" )
	require.NoError( t, os.WriteFile( path, []byte("sensitive"), 0600 ) )

	assert.NoError( t, ShredFile( path ) )
	_, err := os.Stat( path )
	assert.True( t, os.IsNotExist( err ) )
}
