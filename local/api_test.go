package local
import (
	"io"
	"testing"
	"net/http"
	"encoding/json"
	"path/filepath"
	"net/http/httptest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stegbox/util"
	"stegbox/version"
)

type fixedClients int

func(f fixedClients) ClientCount() int {
	return int(f)
}

func getJson( t *testing.T, url string, v any ) int {
	t.Helper()
	resp, err := http.Get( url )
	require.NoError( t, err )
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		assert.Equal( t, "application/json", resp.Header.Get("Content-Type") )
		require.NoError( t, json.NewDecoder( resp.Body ).Decode( v ) )
	}
	return resp.StatusCode
}

func TestApi( t *testing.T ) {
	db, err := util.ConnectDB( filepath.Join( t.TempDir(), "api.db" ), "", 100 )
	require.NoError( t, err )
	defer db.Close()
	for _, name := range []string{ "a.bmp", "b.png", "c.bmp" } {
		_, err = db.SaveFileInfo( name, []byte(name), name == "c.bmp", "STEG_DETECTED" )
		require.NoError( t, err )
	}

	logger := util.NewWriterLogger( &util.LoggerInfo{ Mode: util.Error }, io.Discard )
	info := version.Info{ Version: "2.0", BuildDate: "today", UpdateURL: "http://u" }
	srv := httptest.NewServer( NewApiHandler( db, info, fixedClients(3), logger ) )
	defer srv.Close()

	var v VersionResponse
	require.Equal( t, http.StatusOK, getJson( t, srv.URL + "/api/version", &v ) )
	assert.Equal( t, VersionResponse{ "2.0", "today", "http://u" }, v )

	var files []FileEntry
	require.Equal( t, http.StatusOK, getJson( t, srv.URL + "/api/files", &files ) )
	require.Len( t, files, 3 )
	assert.Equal( t, "c.bmp", files[0].Filename )
	assert.True( t, files[0].HasSteganography )
	assert.Equal( t, "STEG_DETECTED", files[0].HiddenMessage )
	assert.Empty( t, files[1].HiddenMessage )

	require.Equal( t, http.StatusOK, getJson( t, srv.URL + "/api/files?limit=1", &files ) )
	assert.Len( t, files, 1 )
	assert.Equal( t, http.StatusBadRequest, getJson( t, srv.URL + "/api/files?limit=x", &files ) )

	var stats Stats
	require.Equal( t, http.StatusOK, getJson( t, srv.URL + "/api/stats", &stats ) )
	assert.Equal( t, Stats{ 3, 3 }, stats )

	resp, err := http.Post( srv.URL + "/api/stats", "application/json", nil )
	require.NoError( t, err )
	resp.Body.Close()
	assert.Equal( t, http.StatusMethodNotAllowed, resp.StatusCode )
}
