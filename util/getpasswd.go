package util
import (
	"io"
	"os"
	"fmt"
	"bufio"
	"strings"
	"golang.org/x/term"
)

// prompts on a terminal, otherwise reads one line from stdin
func GetPasswd( prompt string ) ([]byte, error) {
	fd := int( os.Stdin.Fd() )
	if !term.IsTerminal( fd ) {
		return readPasswdLine( os.Stdin )
	}
	fmt.Fprint( os.Stderr, prompt )
	bytepw, err := term.ReadPassword( fd )
	fmt.Fprintln( os.Stderr )
	return bytepw, err
}

// EOF without input means no password, other read errors are returned.
func readPasswdLine( r io.Reader ) ([]byte, error) {
	line, err := bufio.NewReader( r ).ReadString( '\n' )
	if err != nil && err != io.EOF {
		return nil, err
	}
	if line == "" {
		return nil, nil
	}
	return []byte( strings.TrimRight( line, "\r\n" ) ), nil
}
