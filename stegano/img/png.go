package img
import (
	"bytes"
	"image/png"

	"stegbox/stegano/lsb"
)

func DecodePNG( data []byte ) (*lsb.RGB, error) {
	decoded, err := png.Decode( bytes.NewReader( data ) )
	if err != nil {
		return nil, err
	}
	return fromImage( decoded )
}

func EncodePNG( rgb *lsb.RGB ) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := png.Encode( buf, rgb.ToImage() ); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
