package img
import (
	"os"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"path/filepath"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stegbox/stegano/lsb"
)

func testImage( width, height int ) *lsb.RGB {
	rgb := lsb.NewRGB( width, height )
	for i := range rgb.Pix {
		rgb.Pix[i] = uint8( i * 31 + i / 7 )
	}
	return rgb
}

func TestLosslessContainers( t *testing.T ) {
	rgb := testImage( 17, 9 )

	data, err := EncodeBMP( rgb )
	require.NoError( t, err )
	assert.Equal( t, BMPFormat, DetectFormat( data ) )
	back, err := DecodeBMP( data )
	require.NoError( t, err )
	assert.Equal( t, rgb.Pix, back.Pix )

	data, err = EncodePNG( rgb )
	require.NoError( t, err )
	assert.Equal( t, PNGFormat, DetectFormat( data ) )
	back, err = DecodePNG( data )
	require.NoError( t, err )
	assert.Equal( t, rgb.Pix, back.Pix )
}

func TestHideReveal( t *testing.T ) {
	codec := lsb.Default()
	tests := []string{
		"",
		"Hello world!",
		string( bytes.Repeat( []byte("a"), 200 ) ),
	}
	for _, format := range []int8{ BMPFormat, PNGFormat } {
		decoy, err := Encode( testImage( 40, 40 ), format )
		require.NoError( t, err )
		for _, msg := range tests {
			enc, err := Hide( codec, decoy, msg, 31337 )
			require.NoError( t, err )
			assert.Equal( t, format, DetectFormat( enc ) )

			dec, err := Reveal( codec, enc, 31337 )
			require.NoError( t, err )
			assert.Equal( t, msg, dec )

			_, err = Reveal( codec, enc, 31338 )
			assert.ErrorIs( t, err, lsb.ErrNoMessage )
		}
	}
}

func TestDetectAfterHide( t *testing.T ) {
	codec := lsb.Watermarked()
	decoy, err := EncodeBMP( testImage( 30, 30 ) )
	require.NoError( t, err )

	enc, err := Hide( codec, decoy, "bmp only", 5 )
	require.NoError( t, err )
	assert.Equal( t, BMPFormat, DetectFormat( enc ) )
	msg, err := Reveal( codec, enc, 5 )
	require.NoError( t, err )
	assert.Equal( t, "bmp only", msg )

	found, err := Detect( codec, enc )
	require.NoError( t, err )
	assert.True( t, found )

	found, err = Detect( codec, decoy )
	require.NoError( t, err )
	assert.False( t, found )
}

func TestRejectLossyInputs( t *testing.T ) {
	codec := lsb.Default()

	translucent := image.NewNRGBA( image.Rect( 0, 0, 20, 20 ) )
	for i := range translucent.Pix {
		translucent.Pix[i] = 0x80
	}
	buf := new(bytes.Buffer)
	require.NoError( t, png.Encode( buf, translucent ) )
	_, err := Hide( codec, buf.Bytes(), "x", 1 )
	assert.ErrorIs( t, err, ErrTransparent )

	deep := image.NewRGBA64( image.Rect( 0, 0, 20, 20 ) )
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			deep.SetRGBA64( x, y, color.RGBA64{ 0x1234, 0x5678, 0x9abc, 0xffff } )
		}
	}
	buf.Reset()
	require.NoError( t, png.Encode( buf, deep ) )
	_, err = Hide( codec, buf.Bytes(), "x", 1 )
	assert.ErrorIs( t, err, ErrDeepColor )

	gray := image.NewGray( image.Rect( 0, 0, 20, 20 ) )
	buf.Reset()
	require.NoError( t, png.Encode( buf, gray ) )
	_, err = Hide( codec, buf.Bytes(), "x", 1 )
	assert.NoError( t, err )
}

func TestUnsupportedFormats( t *testing.T ) {
	codec := lsb.Default()
	inputs := [][]byte{
		nil,
		[]byte("plain text"),
		[]byte{ 0xff, 0xd8, 0xff, 0xe0 },
		[]byte("GIF89a"),
	}
	for _, in := range inputs {
		assert.False( t, IsSupported( in ) )
		_, err := Hide( codec, in, "x", 1 )
		assert.Error( t, err )
	}
	assert.Equal( t, JPEGFormat, DetectFormat( inputs[2] ) )
	assert.Equal( t, GIFFormat, DetectFormat( inputs[3] ) )
	assert.Equal( t, UnknownFormat, DetectFormat( inputs[1] ) )
}

func TestTooLongMessage( t *testing.T ) {
	decoy, err := EncodeBMP( testImage( 8, 8 ) )
	require.NoError( t, err )
	_, err = Hide( lsb.Default(), decoy, "this will never fit", 1 )
	assert.ErrorIs( t, err, lsb.ErrCapacityExceeded )
}

func TestHideInFile( t *testing.T ) {
	codec := lsb.Default()
	dir := t.TempDir()
	path := filepath.Join( dir, "cover.bmp" )
	decoy, err := EncodeBMP( testImage( 20, 20 ) )
	require.NoError( t, err )
	require.NoError( t, os.WriteFile( path, decoy, 0600 ) )

	require.NoError( t, HideInFile( codec, path, "on disk", 64 ) )
	msg, err := RevealFromFile( codec, path, 64 )
	require.NoError( t, err )
	assert.Equal( t, "on disk", msg )

	// no temporary files left behind
	entries, err := os.ReadDir( dir )
	require.NoError( t, err )
	assert.Len( t, entries, 1 )
}
