package cryptography
import (
	"fmt"
	"math"
	"runtime"
	"crypto/rand"
	"crypto/sha512"	// used for hashing data
	"encoding/hex"
	"encoding/binary"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	SymKeySize = chacha20poly1305.KeySize
	NonceSize = chacha20poly1305.NonceSize
	SaltSize = 16
)

// chacha20poly1305 encryption+authentication
func Encrypt( data, key []byte ) ( []byte, error ) {

	if len(data) == 0 {
		return nil, nil	// nothing to hide
	}

	if len(key) != SymKeySize {
		return nil, fmt.Errorf("Invalid key")
	}
	nonce := make( []byte, NonceSize )
	aead, err := chacha20poly1305.New( key )
	if err != nil {
		return nil, err
	}
	if _, err := rand.Read( nonce ); err != nil {
		return nil, err
	}

	ct := aead.Seal( nil, nonce, data, nil )
	return append( nonce, ct... ), nil
}

func Decrypt( data, key []byte ) ( []byte, error ) {

	if len(data) == 0 {
		return nil, nil
	}

	if len(key) != SymKeySize {
		return nil, fmt.Errorf("Invalid key")
	}

	if len(data) < NonceSize {
		return nil, fmt.Errorf("Invalid length of data")
	}

	nonce := data[:NonceSize]
	aead, err := chacha20poly1305.New( key )
	if err != nil {
		return nil, err
	}
	return aead.Open( nil, nonce, data[NonceSize:], nil )
}

// generate a random amount of bytes
func GenRandom( size uint ) ([]byte, error) {
	if size == 0 {
		return nil, fmt.Errorf("GenRandom: Invalid size of random data")
	}
	data := make( []byte, size )
	if _, err := rand.Read( data ); err != nil {
		return nil, err
	}
	return data, nil
}

// GenSeed returns an unguessable embedding seed.
func GenSeed() (int64, error) {
	buf, err := GenRandom( 8 )
	if err != nil {
		return 0, err
	}
	return int64( binary.BigEndian.Uint64( buf ) ), nil
}

// calculate the hash of data
func Hash( data []byte ) string {
	if data == nil {
		return ""
	}
	hash := sha512.Sum512( data )
	return hex.EncodeToString( hash[:] )
}

// derive encryption key from password. used for local configuration storage
func DeriveKey( password, saltBytes []byte ) []byte {
	/*
	 * the draft RFC recommends time=3 and memory=32*1024 (32 MB) is a sensible number.
	 */
	threads := uint8( min( runtime.NumCPU(), math.MaxUint8 ) )
	return argon2.Key( password, saltBytes, 3, 32 * 1024, threads, SymKeySize )
}
