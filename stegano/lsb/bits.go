package lsb
import (
	"fmt"
)

/*
 * Address space: one slot per (pixel, channel), channel varies fastest,
 * then x, then y. A slot holds exactly one embeddable bit: the LSB of
 * that channel.
 */

// total amount of slots in the image
func SlotCount( img Image ) int {
	return img.Width() * img.Height() * Channels
}

// SlotToCoord maps a flat slot index to its pixel and channel.
// Out of range slots are a bug in the caller and panic.
func SlotToCoord( slot, width, height int ) (x, y, channel int) {
	if width <= 0 || height <= 0 || slot < 0 || slot >= width * height * Channels {
		panic( fmt.Errorf( "%w: slot %d in %dx%d image", ErrAddressOutOfRange, slot, width, height ) )
	}
	channel = slot % Channels
	pixel := slot / Channels
	return pixel % width, pixel / width, channel
}

func ReadBit( img Image, slot int ) uint8 {
	x, y, c := SlotToCoord( slot, img.Width(), img.Height() )
	return img.Channel( x, y, c ) & 1
}

// WriteBit touches the lowest bit of a single channel, the other 7 bits are kept.
func WriteBit( img Image, slot int, bit uint8 ) {
	x, y, c := SlotToCoord( slot, img.Width(), img.Height() )
	v := img.Channel( x, y, c )
	img.SetChannel( x, y, c, ( v & 0xfe ) | ( bit & 1 ) )
}
