package version
import (
	"io"
	"os"
	"fmt"
	"errors"
	"context"
	"strings"
	"strconv"
	"net/http"
	"path/filepath"
)

const (
	Unknown = "unknown"
	MaxDownloadSize = 512 << 20
)

var ErrInvalidVersion = errors.New("Invalid version string.")

// what the server announces to clients
type Info struct {
	Version		string		`yaml:"version"`
	BuildDate	string		`yaml:"build_date"`
	UpdateURL	string		`yaml:"update_url"`
}

func Default() Info {
	return Info{ "1.0", Unknown, "" }
}

// compares dotted numeric versions, missing parts count as zero.
// "1.2" == "1.2.0" < "1.10"
func Compare( a, b string ) (int, error) {
	va, err := parse( a )
	if err != nil {
		return 0, err
	}
	vb, err := parse( b )
	if err != nil {
		return 0, err
	}
	for i := 0; i < max( len(va), len(vb) ); i++ {
		var x, y uint64
		if i < len(va) {
			x = va[i]
		}
		if i < len(vb) {
			y = vb[i]
		}
		if x < y {
			return -1, nil
		}
		if x > y {
			return 1, nil
		}
	}
	return 0, nil
}

// true if other is strictly newer than current. unparseable
// versions are never newer.
func IsNewer( current, other string ) bool {
	cmp, err := Compare( current, other )
	return err == nil && cmp < 0
}

func parse( v string ) ([]uint64, error) {
	v = strings.TrimPrefix( strings.TrimSpace( v ), "v" )
	if v == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidVersion)
	}
	parts := strings.Split( v, "." )
	result := make( []uint64, len(parts) )
	for i, p := range parts {
		n, err := strconv.ParseUint( p, 10, 64 )
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, v)
		}
		result[i] = n
	}
	return result, nil
}

// fetches url into dst. the file is written next to dst first
// and renamed, so a failed download never leaves a partial dst.
func Download( ctx context.Context, url, dst string ) error {
	req, err := http.NewRequestWithContext( ctx, http.MethodGet, url, nil )
	if err != nil {
		return fmt.Errorf("Failed to build request: %w", err)
	}
	resp, err := http.DefaultClient.Do( req )
	if err != nil {
		return fmt.Errorf("Failed to download update: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Failed to download update: %s", resp.Status)
	}

	tmp, err := os.CreateTemp( filepath.Dir( dst ), "." + filepath.Base( dst ) + ".*" )
	if err != nil {
		return err
	}
	defer os.Remove( tmp.Name() )

	n, err := io.Copy( tmp, io.LimitReader( resp.Body, MaxDownloadSize + 1 ) )
	if err == nil && n > MaxDownloadSize {
		err = fmt.Errorf("Update is larger than %d bytes.", MaxDownloadSize)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if err = os.Chmod( tmp.Name(), 0755 ); err != nil {
		return err
	}
	return os.Rename( tmp.Name(), dst )
}
