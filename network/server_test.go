package network
import (
	"io"
	"os"
	"net"
	"sync"
	"time"
	"context"
	"testing"
	"math/rand/v2"
	"path/filepath"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stegbox/util"
	"stegbox/config"
	"stegbox/version"
	"stegbox/protocol"
	"stegbox/stegano/img"
	"stegbox/stegano/lsb"
)

type recorder struct {
	connected	[]string
	disconnected	[]string
	files		[]*util.FileInfo
	errors		[]error
	mtx		sync.Mutex
}

func(r *recorder) ClientConnected( id string, addr net.Addr ) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.connected = append( r.connected, id )
}

func(r *recorder) ClientDisconnected( id string ) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.disconnected = append( r.disconnected, id )
}

func(r *recorder) FileReceived( id string, info *util.FileInfo ) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.files = append( r.files, info )
}

func(r *recorder) Error( id string, err error ) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.errors = append( r.errors, err )
}

func(r *recorder) counts() (int, int, int) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return len(r.connected), len(r.disconnected), len(r.files)
}

func noisy( width, height int, seed uint64 ) *lsb.RGB {
	rgb := lsb.NewRGB( width, height )
	r := rand.New( rand.NewPCG( seed, 0 ) )
	for i := range rgb.Pix {
		rgb.Pix[i] = uint8( r.UintN( 256 ) )
	}
	return rgb
}

type testServer struct {
	srv	*Server
	db	*util.DB
	events	*recorder
	folder	string
}

func startServer( t *testing.T ) *testServer {
	t.Helper()
	dir := t.TempDir()
	db, err := util.ConnectDB( filepath.Join( dir, "files.db" ), "", 100 )
	require.NoError( t, err )
	t.Cleanup( func() { db.Close() } )

	conf := config.ServerConfig{
		Address: "127.0.0.1:0",
		UploadsFolder: filepath.Join( dir, "uploads" ),
		MaxUploadSize: 1 << 20,
		Timeout: 5,
	}
	info := version.Info{ Version: "1.4.2", BuildDate: "2024-01-01", UpdateURL: "http://example.com/update" }
	logger := util.NewWriterLogger( &util.LoggerInfo{ Mode: util.Error | util.Warning | util.Info | util.Debug }, io.Discard )

	srv, err := NewServer( conf, info, lsb.Watermarked(), db, logger )
	require.NoError( t, err )
	events := &recorder{}
	srv.SetEventHandler( events )
	require.NoError( t, srv.Start() )
	t.Cleanup( func() { srv.Stop() } )
	return &testServer{ srv, db, events, conf.UploadsFolder }
}

func dial( t *testing.T, ts *testServer ) *Client {
	t.Helper()
	client, err := Dial( context.Background(), ts.srv.Addr().String(), 5 * time.Second )
	require.NoError( t, err )
	t.Cleanup( func() { client.Close() } )
	return client
}

func TestServerVersion( t *testing.T ) {
	ts := startServer( t )
	client := dial( t, ts )

	v, err := client.CheckVersion()
	require.NoError( t, err )
	assert.Equal( t, "1.4.2", v )
	assert.True( t, version.IsNewer( "1.4", v ) )

	url, err := client.UpdateURL()
	require.NoError( t, err )
	assert.Equal( t, "http://example.com/update", url )
}

func TestServerUploads( t *testing.T ) {
	ts := startServer( t )
	client := dial( t, ts )
	codec := lsb.Watermarked()

	cover, err := img.EncodeBMP( noisy( 32, 32, 1 ) )
	require.NoError( t, err )
	marked, err := img.Hide( codec, cover, "meet at noon", 7 )
	require.NoError( t, err )

	res, err := client.Upload( "../../etc/cover.bmp", marked )
	require.NoError( t, err )
	assert.True( t, res.HasSteganography )

	plain, err := img.EncodePNG( noisy( 32, 32, 2 ) )
	require.NoError( t, err )
	res, err = client.Upload( "plain.png", plain )
	require.NoError( t, err )
	assert.False( t, res.HasSteganography )

	res, err = client.Upload( "notes.txt", []byte("just text") )
	require.NoError( t, err )
	assert.False( t, res.HasSteganography )

	// same name twice does not overwrite
	res, err = client.Upload( "plain.png", plain )
	require.NoError( t, err )
	assert.False( t, res.HasSteganography )

	// stored under the sanitized name, untouched
	stored, err := img.Reveal( codec, readFile( t, filepath.Join( ts.folder, "cover.bmp" ) ), 7 )
	require.NoError( t, err )
	assert.Equal( t, "meet at noon", stored )

	files, err := ts.db.ListFiles( 0 )
	require.NoError( t, err )
	require.Len( t, files, 4 )
	assert.Equal( t, "cover.bmp", files[3].Filename )
	assert.True( t, files[3].HasSteganography )
	assert.Equal( t, lsb.DefaultWatermarkMarker, files[3].HiddenMessage )
	assert.Equal( t, "plain.png", files[2].Filename )
	assert.NotEqual( t, "plain.png", files[0].Filename )
	assert.Equal( t, files[0].Hash, files[2].Hash )

	_, _, received := ts.events.counts()
	assert.Equal( t, 4, received )
	// the second plain.png has content the table already held
	duplicates := []bool{}
	ts.events.mtx.Lock()
	for _, info := range ts.events.files {
		duplicates = append( duplicates, info.Duplicate )
	}
	ts.events.mtx.Unlock()
	assert.Equal( t, []bool{ false, false, false, true }, duplicates )
}

func TestServerUploadTooLarge( t *testing.T ) {
	ts := startServer( t )
	client := dial( t, ts )

	big := make( []byte, 4 << 20 )
	for i := range big {
		big[i] = byte( i )
	}
	_, err := client.Upload( "big.bin", big )
	require.Error( t, err )
	assert.Contains( t, err.Error(), "too large" )

	// rejected before anything reached the disk
	entries, err := os.ReadDir( ts.folder )
	require.NoError( t, err )
	assert.Empty( t, entries )

	// the connection survives the rejected body
	v, err := client.CheckVersion()
	require.NoError( t, err )
	assert.Equal( t, "1.4.2", v )

	res, err := client.Upload( "small.txt", []byte("fits") )
	require.NoError( t, err )
	assert.False( t, res.HasSteganography )
}

func TestServerUnknownCommand( t *testing.T ) {
	ts := startServer( t )
	conn, err := net.Dial( "tcp", ts.srv.Addr().String() )
	require.NoError( t, err )
	pc := protocol.NewConn( conn, 5 * time.Second )
	defer pc.Close()

	require.NoError( t, pc.WriteLine( "HELLO" ) )
	reply, err := pc.ReadLine()
	require.NoError( t, err )
	assert.Contains( t, reply, protocol.ErrorPrefix )

	// the connection stays usable
	require.NoError( t, pc.WriteLine( protocol.VersionCheck ) )
	reply, err = pc.ReadLine()
	require.NoError( t, err )
	assert.Equal( t, "VERSION:1.4.2", reply )

	// broken body is answered, the connection survives too
	require.NoError( t, pc.WriteLine( "UPLOAD:x.bmp" ) )
	require.NoError( t, pc.WriteLine( "@@@@" ) )
	require.NoError( t, pc.WriteLine( protocol.EndUpload ) )
	reply, err = pc.ReadLine()
	require.NoError( t, err )
	assert.Contains( t, reply, protocol.UploadFailedPrefix )

	require.NoError( t, pc.WriteLine( protocol.GetUpdateURL ) )
	reply, err = pc.ReadLine()
	require.NoError( t, err )
	assert.Equal( t, "UPDATE_URL:http://example.com/update", reply )
}

func TestServerEventsAndStop( t *testing.T ) {
	ts := startServer( t )
	first := dial( t, ts )
	second := dial( t, ts )
	_, err := first.CheckVersion()
	require.NoError( t, err )
	_, err = second.CheckVersion()
	require.NoError( t, err )
	assert.Equal( t, 2, ts.srv.ClientCount() )

	first.Close()
	assert.Eventually( t, func() bool {
		_, disconnected, _ := ts.events.counts()
		return disconnected == 1
	}, 5 * time.Second, 10 * time.Millisecond )

	require.NoError( t, ts.srv.Stop() )
	connected, disconnected, _ := ts.events.counts()
	assert.Equal( t, 2, connected )
	assert.Equal( t, 2, disconnected )
	assert.Equal( t, 0, ts.srv.ClientCount() )

	// stopped server refuses to restart and a second stop is a no-op
	assert.ErrorIs( t, ts.srv.Start(), ErrServerClosed )
	assert.NoError( t, ts.srv.Stop() )

	_, err = second.CheckVersion()
	assert.Error( t, err )
}

func readFile( t *testing.T, path string ) []byte {
	t.Helper()
	data, err := os.ReadFile( path )
	require.NoError( t, err )
	return data
}
