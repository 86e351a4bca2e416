package lsb
import (
	"fmt"
)

const (
	LengthBits = 32
)

// Layout describes the fixed, seed-independent header region.
// Magic symbols are stored by their MagicBits lowest bits only, so a
// random image passes the magic check with probability 1/2^(2*MagicBits).
// The frame checksum is the real integrity gate.
type Layout struct {
	Magic		[2]byte
	MagicBits	int	// low-order bits kept of each magic symbol
	MagicSlot	int	// first slot of the magic bits
	LengthSlot	int	// first slot of the 32-bit frame length
	HeaderSlots	int	// slots reserved for the header, payload starts right after
}

func DefaultLayout() Layout {
	return Layout{
		Magic: [2]byte{ 'C', 'L' },
		MagicBits: 2,
		MagicSlot: 0,
		LengthSlot: 16,
		HeaderSlots: 48,
	}
}

func(l Layout) Validate() error {
	if l.MagicBits < 1 || l.MagicBits > 8 {
		return fmt.Errorf( "%w: %d magic bits per symbol", ErrInvalidLayout, l.MagicBits )
	}
	if l.MagicSlot < 0 || l.LengthSlot < 0 {
		return fmt.Errorf( "%w: negative slot", ErrInvalidLayout )
	}
	magicEnd := l.MagicSlot + 2 * l.MagicBits
	lengthEnd := l.LengthSlot + LengthBits
	if magicEnd > l.LengthSlot && lengthEnd > l.MagicSlot {
		return fmt.Errorf( "%w: magic and length overlap", ErrInvalidLayout )
	}
	if magicEnd > l.HeaderSlots || lengthEnd > l.HeaderSlots {
		return fmt.Errorf( "%w: header needs more than %d slots", ErrInvalidLayout, l.HeaderSlots )
	}
	return nil
}

// PoolSize is the amount of payload slots left after the header.
func(l Layout) PoolSize( img Image ) int {
	pool := SlotCount( img ) - l.HeaderSlots
	if pool < 0 {
		return 0
	}
	return pool
}

func(l Layout) Fits( img Image ) bool {
	return SlotCount( img ) >= l.HeaderSlots
}

func(l Layout) magicBits() []uint8 {
	bits := make( []uint8, 0, 2 * l.MagicBits )
	for _, symbol := range l.Magic {
		for i := l.MagicBits - 1; i >= 0; i-- {
			bits = append( bits, ( symbol >> uint(i) ) & 1 )
		}
	}
	return bits
}

// WriteHeader stores the magic bits and the frame length (big-endian,
// most significant bit first). The image must hold at least HeaderSlots slots.
func(l Layout) WriteHeader( img Image, length uint32 ) {
	for i, bit := range l.magicBits() {
		WriteBit( img, l.MagicSlot + i, bit )
	}
	for i := 0; i < LengthBits; i++ {
		bit := uint8( length >> uint(LengthBits - 1 - i) ) & 1
		WriteBit( img, l.LengthSlot + i, bit )
	}
}

func(l Layout) ReadHeader( img Image ) (uint32, error) {
	if !l.Fits( img ) {
		return 0, ErrImageTooSmall
	}
	for i, bit := range l.magicBits() {
		if ReadBit( img, l.MagicSlot + i ) != bit {
			return 0, ErrInvalidHeader
		}
	}
	length := uint32(0)
	for i := 0; i < LengthBits; i++ {
		length = ( length << 1 ) | uint32( ReadBit( img, l.LengthSlot + i ) )
	}
	return length, nil
}
