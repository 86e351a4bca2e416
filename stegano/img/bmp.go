package img
import (
	"bytes"
	"golang.org/x/image/bmp"

	"stegbox/stegano/lsb"
)

func DecodeBMP( data []byte ) (*lsb.RGB, error) {
	decoded, err := bmp.Decode( bytes.NewReader( data ) )
	if err != nil {
		return nil, err
	}
	return fromImage( decoded )
}

// always written as 24-bit, the opaque RGBA image makes the encoder drop alpha.
func EncodeBMP( rgb *lsb.RGB ) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bmp.Encode( buf, rgb.ToImage() ); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
