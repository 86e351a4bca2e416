package util
import (
	"math/big"
	"strconv"
	"crypto/rand"
	"encoding/base64"
	"stegbox/cryptography"
)

const (
	IDLength = 32
)

var (
	lastIDFailed = 0
)

func GenFilename( prefix string, ext string ) string {
	return prefix + strconv.Itoa( RandInt(100000) ) + ext
}

func RandInt( max int ) int {
	limit := big.NewInt( int64(max) )
	integer, err := rand.Int( rand.Reader, limit )
	if err != nil {
		return 0
	}
	return int(integer.Int64())
}

// random printable secret, used as the default database password
func GenID() string {
	buffer, err := cryptography.GenRandom( uint(IDLength) )
	if err != nil {
		lastIDFailed++
		return "gen-id-failed-" + strconv.Itoa( lastIDFailed )
	}
	return base64.RawURLEncoding.EncodeToString( buffer )
}
