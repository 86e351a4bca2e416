package lsb
import (
	"bytes"
	"fmt"
	"strings"
)

const (
	DefaultWatermarkSeed = int64(12345)
	DefaultWatermarkMarker = "STEG_DETECTED"
)

/*
 * Watermark is a fixed detection marker embedded with a fixed seed next to
 * every user message. Both slot sequences are drawn in the same pass from
 * one used-slot set: the marker sequence first, then the user sequence
 * skipping every marker slot. The marker never overwrites the message and
 * the marker can be found without knowing the user seed.
 */
type Watermark struct {
	Seed	int64
	Marker	[]byte
}

func DefaultWatermark() *Watermark {
	return &Watermark{
		DefaultWatermarkSeed,
		[]byte(DefaultWatermarkMarker),
	}
}

func(w *Watermark) frameBits() int {
	return ( len(w.Marker) + FrameOverhead ) * 8
}

type Config struct {
	Layout		Layout
	Watermark	*Watermark	// optional
}

// Codec embeds and extracts framed messages. It keeps no state between
// calls, one Codec may be shared by goroutines working on different images.
type Codec struct {
	layout		Layout
	watermark	*Watermark
}

func NewCodec( conf Config ) (*Codec, error) {
	if err := conf.Layout.Validate(); err != nil {
		return nil, err
	}
	var wm *Watermark
	if conf.Watermark != nil {
		if len(conf.Watermark.Marker) == 0 {
			return nil, fmt.Errorf("empty watermark marker")
		}
		wm = &Watermark{
			conf.Watermark.Seed,
			bytes.Clone( conf.Watermark.Marker ),
		}
	}
	return &Codec{ conf.Layout, wm }, nil
}

// Default codec: reference layout, no watermark.
func Default() *Codec {
	return &Codec{ DefaultLayout(), nil }
}

// Watermarked codec: reference layout and the default detection marker.
func Watermarked() *Codec {
	return &Codec{ DefaultLayout(), DefaultWatermark() }
}

func(c *Codec) Layout() Layout {
	return c.layout
}

func(c *Codec) HasWatermark() bool {
	return c.watermark != nil
}

// copy of the watermark, nil if the codec has none
func(c *Codec) Watermark() *Watermark {
	if c.watermark == nil {
		return nil
	}
	return &Watermark{ c.watermark.Seed, bytes.Clone( c.watermark.Marker ) }
}

func(c *Codec) reservedBits() int {
	if c.watermark == nil {
		return 0
	}
	return c.watermark.frameBits()
}

// Capacity is the maximum frame length in bits the image can take.
func(c *Codec) Capacity( img Image ) int {
	bits := c.layout.PoolSize( img ) - c.reservedBits()
	if bits < 0 {
		return 0
	}
	return bits
}

// MaxMessageLen is the longest message in bytes that still fits. It is
// negative when not even an empty message fits.
func(c *Codec) MaxMessageLen( img Image ) int {
	return c.Capacity( img ) / 8 - FrameOverhead
}

func(c *Codec) Embed( img Image, message string, seed int64 ) error {
	return c.EmbedBytes( img, []byte(message), seed )
}

// EmbedBytes writes the header and the dispersed frame into img. Either the
// whole message is written or the image stays untouched.
func(c *Codec) EmbedBytes( img Image, message []byte, seed int64 ) error {
	if !c.layout.Fits( img ) {
		return ErrImageTooSmall
	}
	frame := Frame( message )
	if len(frame) * 8 > c.Capacity( img ) {
		return fmt.Errorf( "%w: frame of %d bits, %d available",
			ErrCapacityExceeded, len(frame) * 8, c.Capacity( img ) )
	}

	// draw every slot before touching a single pixel
	used := NewSlotSet( c.layout.PoolSize( img ) )
	var markerFrame []byte
	var markerSlots []int
	if c.watermark != nil {
		markerFrame = Frame( c.watermark.Marker )
		var err error
		markerSlots, err = NewSequence( c.watermark.Seed, used ).Take( len(markerFrame) * 8 )
		if err != nil {
			return err
		}
	}
	slots, err := NewSequence( seed, used ).Take( len(frame) * 8 )
	if err != nil {
		return err
	}

	c.layout.WriteHeader( img, uint32(len(frame)) )
	c.writeFrame( img, markerFrame, markerSlots )
	c.writeFrame( img, frame, slots )
	return nil
}

func(c *Codec) Extract( img Image, seed int64 ) (string, error) {
	payload, err := c.ExtractBytes( img, seed )
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8( string(payload), "\uFFFD" ), nil
}

// ExtractBytes recovers the message embedded with seed. A wrong seed is
// indistinguishable from an image without a message: both wrap ErrNoMessage.
func(c *Codec) ExtractBytes( img Image, seed int64 ) ([]byte, error) {
	length, err := c.layout.ReadHeader( img )
	if err != nil {
		return nil, notFound( err )
	}
	if length < FrameOverhead || uint64(length) * 8 > uint64( c.Capacity( img ) ) {
		return nil, notFound( ErrInvalidLength )
	}

	used := NewSlotSet( c.layout.PoolSize( img ) )
	if c.watermark != nil {
		// marker slots are claimed first, exactly as during embedding
		if _, err := NewSequence( c.watermark.Seed, used ).Take( c.watermark.frameBits() ); err != nil {
			return nil, notFound( err )
		}
	}
	slots, err := NewSequence( seed, used ).Take( int(length) * 8 )
	if err != nil {
		return nil, notFound( err )
	}
	payload, err := Unframe( c.readFrame( img, slots ) )
	if err != nil {
		return nil, notFound( err )
	}
	return payload, nil
}

// Detect reports whether the image carries this codec's watermark.
func(c *Codec) Detect( img Image ) bool {
	if c.watermark == nil {
		return false
	}
	if _, err := c.layout.ReadHeader( img ); err != nil {
		return false
	}
	if c.watermark.frameBits() > c.layout.PoolSize( img ) {
		return false
	}
	used := NewSlotSet( c.layout.PoolSize( img ) )
	slots, err := NewSequence( c.watermark.Seed, used ).Take( c.watermark.frameBits() )
	if err != nil {
		return false
	}
	payload, err := Unframe( c.readFrame( img, slots ) )
	return err == nil && bytes.Equal( payload, c.watermark.Marker )
}

// bit i of byte j (msb first) goes to the (j*8+i)-th drawn slot,
// shifted past the header region.
func(c *Codec) writeFrame( img Image, frame []byte, slots []int ) {
	for j, b := range frame {
		for i := 0; i < 8; i++ {
			WriteBit( img, c.layout.HeaderSlots + slots[ j * 8 + i ], ( b >> uint(7 - i) ) & 1 )
		}
	}
}

func(c *Codec) readFrame( img Image, slots []int ) []byte {
	frame := make( []byte, len(slots) / 8 )
	for j := range frame {
		b := byte(0)
		for i := 0; i < 8; i++ {
			b = ( b << 1 ) | ReadBit( img, c.layout.HeaderSlots + slots[ j * 8 + i ] )
		}
		frame[j] = b
	}
	return frame
}
