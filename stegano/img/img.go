package img
import (
	"fmt"
	"image"
	"errors"
	"os"
	"path/filepath"

	"stegbox/stegano/lsb"
)

const (
	UnknownFormat = int8(-1)
	BMPFormat = int8(0)
	PNGFormat = int8(1)
	JPEGFormat = int8(2)
	GIFFormat = int8(3)
)

/*
 * Image containers for the LSB codec. Only lossless truecolor output is
 * produced: re-encoding a JPEG or quantising to a palette would destroy
 * the embedded bits, so those formats are rejected.
 */
var (
	ErrTransparent = errors.New("Image has transparency, alpha would be lost.")
	ErrDeepColor = errors.New("16-bit image, low bits would be lost.")
)

// only opaque 8-bit images map onto RGB without losing data
func fromImage( decoded image.Image ) (*lsb.RGB, error) {
	switch decoded.(type) {
	case *image.RGBA64, *image.NRGBA64, *image.Gray16:
		return nil, ErrDeepColor
	}
	if o, ok := decoded.(interface{ Opaque() bool }); ok && !o.Opaque() {
		return nil, ErrTransparent
	}
	return lsb.FromImage( decoded ), nil
}

func DetectFormat( data []byte ) int8 {
	if len(data) >= 2 && data[0] == 0x42 && data[1] == 0x4d {
		return BMPFormat
	}
	if len(data) >= 8 && data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4e &&
		data[3] == 0x47 && data[4] == 0x0d && data[5] == 0x0a &&
		data[6] == 0x1a && data[7] == 0x0a {
		return PNGFormat
	}
	if len(data) >= 3 && data[0] == 0xff && data[1] == 0xd8 && data[2] == 0xff {
		return JPEGFormat
	}
	if len(data) >= 3 && data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 {
		return GIFFormat
	}
	return UnknownFormat
}

func IsSupported( data []byte ) bool {
	f := DetectFormat( data )
	return f == BMPFormat || f == PNGFormat
}

func Decode( data []byte ) (*lsb.RGB, int8, error) {
	switch f := DetectFormat( data ); f {
	case BMPFormat:
		rgb, err := DecodeBMP( data )
		return rgb, f, err
	case PNGFormat:
		rgb, err := DecodePNG( data )
		return rgb, f, err
	case JPEGFormat, GIFFormat:
		return nil, f, fmt.Errorf("Lossy or paletted image format, LSB data would not survive.")
	}
	return nil, UnknownFormat, fmt.Errorf("Unsupported image format.")
}

func Encode( rgb *lsb.RGB, format int8 ) ([]byte, error) {
	switch format {
	case BMPFormat:
		return EncodeBMP( rgb )
	case PNGFormat:
		return EncodePNG( rgb )
	}
	return nil, fmt.Errorf("Unsupported image format.")
}

// Hide embeds message into a BMP or PNG file and returns the new file in the same format.
// Images with transparency or 16 bits per channel are refused with
// ErrTransparent or ErrDeepColor.
func Hide( codec *lsb.Codec, decoy []byte, message string, seed int64 ) ([]byte, error) {
	rgb, format, err := Decode( decoy )
	if err != nil {
		return nil, err
	}
	if err = codec.Embed( rgb, message, seed ); err != nil {
		return nil, err
	}
	return Encode( rgb, format )
}

func Reveal( codec *lsb.Codec, decoy []byte, seed int64 ) (string, error) {
	rgb, _, err := Decode( decoy )
	if err != nil {
		return "", err
	}
	return codec.Extract( rgb, seed )
}

func Detect( codec *lsb.Codec, decoy []byte ) (bool, error) {
	rgb, _, err := Decode( decoy )
	if err != nil {
		return false, err
	}
	return codec.Detect( rgb ), nil
}

// HideInFile rewrites the image at path. The file is replaced only once
// the new content is fully written.
func HideInFile( codec *lsb.Codec, path, message string, seed int64 ) error {
	decoy, err := os.ReadFile( path )
	if err != nil {
		return err
	}
	encoded, err := Hide( codec, decoy, message, seed )
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp( filepath.Dir( path ), ".hide-*" )
	if err != nil {
		return err
	}
	defer os.Remove( tmp.Name() )
	if _, err = tmp.Write( encoded ); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename( tmp.Name(), path )
}

func RevealFromFile( codec *lsb.Codec, path string, seed int64 ) (string, error) {
	decoy, err := os.ReadFile( path )
	if err != nil {
		return "", err
	}
	return Reveal( codec, decoy, seed )
}
