package lsb
import (
	"encoding/binary"
	"hash/crc32"
)

/*
 * Frame format:
 * START(1) | LENGTH(4, big-endian) | PAYLOAD(n) | CRC32(4, big-endian) | END(1)
 */
const (
	FrameStart = byte(0xAA)
	FrameEnd = byte(0x55)
	FrameOverhead = 10
)

func Frame( payload []byte ) []byte {
	frame := make( []byte, 0, len(payload) + FrameOverhead )
	frame = append( frame, FrameStart )
	frame = binary.BigEndian.AppendUint32( frame, uint32(len(payload)) )
	frame = append( frame, payload... )
	frame = binary.BigEndian.AppendUint32( frame, crc32.ChecksumIEEE( payload ) )
	return append( frame, FrameEnd )
}

// Unframe validates start, length, checksum and end, in this order.
func Unframe( buf []byte ) ([]byte, error) {
	if len(buf) == 0 || buf[0] != FrameStart {
		return nil, ErrInvalidStart
	}
	if len(buf) < FrameOverhead {
		return nil, ErrInvalidLength
	}
	length := binary.BigEndian.Uint32( buf[1:5] )
	if uint64(length) > uint64( len(buf) - FrameOverhead ) {
		return nil, ErrInvalidLength
	}
	end := 5 + int(length)
	payload := buf[5:end]
	if binary.BigEndian.Uint32( buf[end:end+4] ) != crc32.ChecksumIEEE( payload ) {
		return nil, ErrChecksumMismatch
	}
	if buf[end+4] != FrameEnd {
		return nil, ErrInvalidEnd
	}
	return payload, nil
}
