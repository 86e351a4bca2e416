package network
import (
	"os"
	"net"
	"sync"
	"time"
	"context"
	"path/filepath"

	"stegbox/protocol"
)

// one connection to the upload server. requests are serialized,
// each waits for its reply.
type Client struct {
	conn	*protocol.Conn
	mtx	sync.Mutex
}

func Dial( ctx context.Context, address string, timeout time.Duration ) (*Client, error) {
	d := net.Dialer{ Timeout: timeout }
	conn, err := d.DialContext( ctx, "tcp", address )
	if err != nil {
		return nil, err
	}
	return &Client{ conn: protocol.NewConn( conn, timeout ) }, nil
}

func(c *Client) Close() error {
	return c.conn.Close()
}

func(c *Client) request( cmd protocol.Command ) (string, error) {
	if err := c.conn.Send( cmd ); err != nil {
		return "", err
	}
	return c.conn.ReadLine()
}

// version announced by the server
func(c *Client) CheckVersion() (string, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	reply, err := c.request( protocol.Command{ Kind: protocol.CmdVersionCheck } )
	if err != nil {
		return "", err
	}
	return protocol.ParseValueReply( reply, protocol.VersionPrefix )
}

func(c *Client) UpdateURL() (string, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	reply, err := c.request( protocol.Command{ Kind: protocol.CmdGetUpdateURL } )
	if err != nil {
		return "", err
	}
	return protocol.ParseValueReply( reply, protocol.UpdateURLPrefix )
}

func(c *Client) Upload( name string, data []byte ) (protocol.UploadResult, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if err := c.conn.WriteUpload( name, data ); err != nil {
		return protocol.UploadResult{}, err
	}
	reply, err := c.conn.ReadLine()
	if err != nil {
		return protocol.UploadResult{}, err
	}
	return protocol.ParseUploadReply( reply )
}

// uploads the file under its base name
func(c *Client) UploadFile( path string ) (protocol.UploadResult, error) {
	data, err := os.ReadFile( path )
	if err != nil {
		return protocol.UploadResult{}, err
	}
	return c.Upload( filepath.Base( path ), data )
}
