package util
import (
	"os"
	"fmt"
	"errors"
	"io/fs"
	"strings"
	"unicode"
	"path/filepath"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultFilename = "upload"
	MaxFilenameLength = 255
)

// turns a name sent by a client into a safe base name: no directories,
// no control characters, no leading dots, NFC normalized.
func PrepareFilename( filename string ) string {
	filename = strings.ReplaceAll( filename, "\\", "/" )
	if idx := strings.LastIndex( filename, "/" ); idx >= 0 {
		filename = filename[idx+1:]
	}
	filename = norm.NFC.String( filename )
	filename = strings.Map( func( r rune ) rune {
		switch {
		case unicode.IsControl( r ), r == unicode.ReplacementChar:
			return -1
		case strings.ContainsRune( `:*?"<>|`, r ):
			return '_'
		}
		return r
	}, filename )
	filename = strings.TrimLeft( strings.TrimSpace( filename ), "." )
	if len(filename) > MaxFilenameLength {
		ext := filepath.Ext( filename )
		if len(ext) > 16 {
			ext = ""
		}
		filename = strings.ToValidUTF8( filename[ :MaxFilenameLength - len(ext) ], "" ) + ext
	}
	if filename == "" {
		return DefaultFilename
	}
	return filename
}

// creates a new file inside folder, named filename or filename with a
// random suffix if that one is taken. the name is reserved atomically.
func CreateUnique( folder, filename string ) (*os.File, error) {
	path := filepath.Join( folder, filename )
	ext := filepath.Ext( filename )
	stem := strings.TrimSuffix( filename, ext )
	for i := 0; i < 100; i++ {
		f, err := os.OpenFile( path, os.O_CREATE | os.O_EXCL | os.O_WRONLY, 0600 )
		if err == nil {
			return f, nil
		}
		if !errors.Is( err, fs.ErrExist ) {
			return nil, err
		}
		path = filepath.Join( folder, GenFilename( stem + "-", ext ) )
	}
	return nil, fmt.Errorf("Failed to find a free name for %s.", filename)
}
