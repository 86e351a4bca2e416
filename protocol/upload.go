package protocol
import (
	"fmt"
	"time"
	"bytes"
	"encoding/base64"
)

// sends UPLOAD:<name>, the base64 body in LineLength lines and END_UPLOAD.
// buffered, flushed once at the end.
func(c *Conn) WriteUpload( name string, data []byte ) error {
	if c.timeout > 0 {
		c.conn.SetWriteDeadline( time.Now().Add( c.timeout ) )
	}
	if _, err := c.w.WriteString( UploadPrefix + name + "\n" ); err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString( data )
	for len(encoded) > 0 {
		n := min( LineLength, len(encoded) )
		if _, err := c.w.WriteString( encoded[:n] ); err != nil {
			return err
		}
		if err := c.w.WriteByte( '\n' ); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	if _, err := c.w.WriteString( EndUpload + "\n" ); err != nil {
		return err
	}
	return c.w.Flush()
}

// reads body lines until END_UPLOAD and decodes them. line length is
// not enforced, a client may send the whole body as one line. a body
// which could decode to more than maxSize bytes is read to its end and
// dropped, then reported as ErrUploadTooLarge.
func(c *Conn) ReadUpload( maxSize int64 ) ([]byte, error) {
	limit := base64.StdEncoding.EncodedLen( int(maxSize) )
	var body bytes.Buffer
	for {
		line, err := c.readLine( limit - body.Len() + len(EndUpload) )
		if err == ErrLineTooLong {
			return nil, c.discardUpload( maxSize )
		}
		if err != nil {
			return nil, err
		}
		if string(line) == EndUpload {
			break
		}
		body.Write( bytes.TrimSpace( line ) )
		if body.Len() > limit {
			return nil, c.discardUpload( maxSize )
		}
	}
	data := make( []byte, base64.StdEncoding.DecodedLen( body.Len() ) )
	n, err := base64.StdEncoding.Decode( data, body.Bytes() )
	if err != nil {
		return nil, fmt.Errorf("Invalid upload body: %w", err)
	}
	if int64(n) > maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrUploadTooLarge, maxSize)
	}
	return data[:n], nil
}

// skips the rest of a rejected body up to END_UPLOAD. the whole drain
// shares one read deadline.
func(c *Conn) discardUpload( maxSize int64 ) error {
	if c.timeout > 0 {
		c.conn.SetReadDeadline( time.Now().Add( c.timeout ) )
	}
	for {
		line, err := c.scanLine( len(EndUpload) )
		if err == ErrLineTooLong {
			continue
		}
		if err != nil {
			return err
		}
		if string(line) == EndUpload {
			return fmt.Errorf("%w: more than %d bytes", ErrUploadTooLarge, maxSize)
		}
	}
}
