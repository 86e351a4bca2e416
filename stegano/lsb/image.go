package lsb
import (
	"fmt"
	"image"
	"image/color"
)

const (
	Red = 0
	Green = 1
	Blue = 2

	Channels = 3
)

// Image is a caller-owned grid of RGB pixels. The codec only ever
// changes the lowest bit of a channel.
type Image interface {
	Width() int
	Height() int
	Channel( x, y, c int ) uint8
	SetChannel( x, y, c int, v uint8 )
}

// RGB is a plain 8-bit per channel pixel buffer, row-major,
// three bytes per pixel.
type RGB struct {
	width	int
	height	int
	Pix	[]uint8
}

func NewRGB( width, height int ) *RGB {
	if width < 0 || height < 0 {
		panic( fmt.Sprintf("lsb: negative image dimensions %dx%d", width, height) )
	}
	return &RGB{
		width,
		height,
		make( []uint8, width * height * Channels ),
	}
}

// FromImage copies any decoded image into an RGB buffer. Alpha is dropped.
func FromImage( src image.Image ) *RGB {
	bounds := src.Bounds()
	rgb := NewRGB( bounds.Dx(), bounds.Dy() )
	for y := 0; y < rgb.height; y++ {
		for x := 0; x < rgb.width; x++ {
			c := color.NRGBAModel.Convert( src.At( bounds.Min.X + x, bounds.Min.Y + y ) ).(color.NRGBA)
			i := rgb.offset( x, y )
			rgb.Pix[i] = c.R
			rgb.Pix[i+1] = c.G
			rgb.Pix[i+2] = c.B
		}
	}
	return rgb
}

// ToImage returns an opaque RGBA copy, suitable for lossless encoders.
func(r *RGB) ToImage() *image.RGBA {
	dst := image.NewRGBA( image.Rect( 0, 0, r.width, r.height ) )
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			i := r.offset( x, y )
			j := dst.PixOffset( x, y )
			dst.Pix[j] = r.Pix[i]
			dst.Pix[j+1] = r.Pix[i+1]
			dst.Pix[j+2] = r.Pix[i+2]
			dst.Pix[j+3] = 0xff
		}
	}
	return dst
}

func(r *RGB) Clone() *RGB {
	pix := make( []uint8, len(r.Pix) )
	copy( pix, r.Pix )
	return &RGB{ r.width, r.height, pix }
}

func(r *RGB) Width() int {
	return r.width
}

func(r *RGB) Height() int {
	return r.height
}

func(r *RGB) Channel( x, y, c int ) uint8 {
	return r.Pix[ r.offset( x, y ) + c ]
}

func(r *RGB) SetChannel( x, y, c int, v uint8 ) {
	r.Pix[ r.offset( x, y ) + c ] = v
}

func(r *RGB) offset( x, y int ) int {
	return ( y * r.width + x ) * Channels
}
