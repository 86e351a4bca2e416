package protocol
import (
	"io"
	"net"
	"time"
	"bytes"
	"bufio"
	"errors"
)

/*
 * line oriented wrapper over a stream connection. every line is
 * terminated by '\n', a trailing '\r' is dropped on reading.
 */
type Conn struct {
	conn		net.Conn
	r		*bufio.Reader
	w		*bufio.Writer
	timeout		time.Duration
}

func NewConn( conn net.Conn, timeout time.Duration ) *Conn {
	return &Conn{
		conn,
		bufio.NewReaderSize( conn, MaxLineLength ),
		bufio.NewWriter( conn ),
		timeout,
	}
}

func(c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func(c *Conn) Close() error {
	return c.conn.Close()
}

func(c *Conn) ReadLine() (string, error) {
	line, err := c.readLine( MaxLineLength )
	return string(line), err
}

// reads a line of at most limit bytes. longer lines are still consumed
// up to their terminator and reported as ErrLineTooLong, so the stream
// stays at a line boundary.
func(c *Conn) readLine( limit int ) ([]byte, error) {
	if c.timeout > 0 {
		c.conn.SetReadDeadline( time.Now().Add( c.timeout ) )
	}
	return c.scanLine( limit )
}

func(c *Conn) scanLine( limit int ) ([]byte, error) {
	var line []byte
	tooLong := false
	for {
		part, err := c.r.ReadSlice( '\n' )
		if !tooLong {
			line = append( line, part... )
			if len(line) > limit + 2 {
				tooLong, line = true, nil
			}
		}
		if err == nil {
			break
		}
		if errors.Is( err, bufio.ErrBufferFull ) {
			continue
		}
		if errors.Is( err, io.EOF ) && ( len(line) > 0 || tooLong ) {
			// last line without a terminator
			break
		}
		return nil, err
	}
	if tooLong {
		return nil, ErrLineTooLong
	}
	line = bytes.TrimSuffix( line, []byte{'\n'} )
	line = bytes.TrimSuffix( line, []byte{'\r'} )
	if len(line) > limit {
		return nil, ErrLineTooLong
	}
	return line, nil
}

func(c *Conn) WriteLine( line string ) error {
	if c.timeout > 0 {
		c.conn.SetWriteDeadline( time.Now().Add( c.timeout ) )
	}
	if _, err := c.w.WriteString( line ); err != nil {
		return err
	}
	if err := c.w.WriteByte( '\n' ); err != nil {
		return err
	}
	return c.w.Flush()
}

func(c *Conn) Send( cmd Command ) error {
	return c.WriteLine( cmd.String() )
}
