package version
import (
	"os"
	"context"
	"testing"
	"net/http"
	"path/filepath"
	"net/http/httptest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare( t *testing.T ) {
	tests := []struct{
		a, b	string
		want	int
	}{
		{ "1.0", "1.0", 0 },
		{ "1.2", "1.2.0", 0 },
		{ "1.2", "1.10", -1 },
		{ "2.0", "1.99.99", 1 },
		{ "v1.3", "1.3", 0 },
		{ "1", "1.0.1", -1 },
	}
	for _, tt := range tests {
		got, err := Compare( tt.a, tt.b )
		require.NoError( t, err, tt.a + " vs " + tt.b )
		assert.Equal( t, tt.want, got, tt.a + " vs " + tt.b )
	}

	for _, bad := range []string{ "", "1.x", "1..2", Unknown } {
		_, err := Compare( "1.0", bad )
		assert.ErrorIs( t, err, ErrInvalidVersion, bad )
	}
}

func TestIsNewer( t *testing.T ) {
	assert.True( t, IsNewer( "1.0", "1.1" ) )
	assert.False( t, IsNewer( "1.1", "1.0" ) )
	assert.False( t, IsNewer( "1.0", "1.0.0" ) )
	assert.False( t, IsNewer( "1.0", Unknown ) )
}

func TestDownload( t *testing.T ) {
	srv := httptest.NewServer( http.HandlerFunc( func( w http.ResponseWriter, r *http.Request ) {
		if r.URL.Path != "/stegbox" {
			http.NotFound( w, r )
			return
		}
		w.Write( []byte("new binary") )
	}))
	defer srv.Close()

	dir := t.TempDir()
	dst := filepath.Join( dir, "stegbox.new" )
	require.NoError( t, Download( context.Background(), srv.URL + "/stegbox", dst ) )
	data, err := os.ReadFile( dst )
	require.NoError( t, err )
	assert.Equal( t, "new binary", string(data) )

	missing := filepath.Join( dir, "missing" )
	assert.Error( t, Download( context.Background(), srv.URL + "/nope", missing ) )
	_, err = os.Stat( missing )
	assert.True( t, os.IsNotExist( err ) )

	// nothing but dst is left behind
	entries, err := os.ReadDir( dir )
	require.NoError( t, err )
	assert.Len( t, entries, 1 )
}
