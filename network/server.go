package network
import (
	"io"
	"os"
	"fmt"
	"net"
	"sync"
	"time"
	"errors"
	"path/filepath"
	"github.com/google/uuid"

	"stegbox/util"
	"stegbox/config"
	"stegbox/cryptography"
	"stegbox/version"
	"stegbox/protocol"
	"stegbox/stegano/img"
	"stegbox/stegano/lsb"
)

var ErrServerClosed = errors.New("Server closed.")

// notified about what happens on the server. calls come from
// connection goroutines, implementations have to be safe for that.
type EventHandler interface {
	ClientConnected( id string, addr net.Addr )
	ClientDisconnected( id string )
	FileReceived( id string, info *util.FileInfo )
	Error( id string, err error )
}

/*
 * upload server. every accepted connection gets an id and its own
 * goroutine, uploads are stored in the uploads folder, checked for
 * the watermark and recorded in the database.
 */
type Server struct {
	conf		config.ServerConfig
	info		version.Info
	codec		*lsb.Codec
	db		*util.DB		// optional
	logger		*util.Logger
	handler		EventHandler
	listener	net.Listener
	clients		map[string]*protocol.Conn
	closed		bool
	mtx		sync.Mutex
	wg		sync.WaitGroup
}

func NewServer( conf config.ServerConfig, info version.Info, codec *lsb.Codec,
		db *util.DB, logger *util.Logger ) (*Server, error) {

	if conf.UploadsFolder == "" {
		conf.UploadsFolder = config.DefaultUploadsFolder
	}
	if conf.MaxUploadSize <= 0 {
		conf.MaxUploadSize = config.DefaultMaxUploadSize
	}
	if err := os.MkdirAll( conf.UploadsFolder, 0700 ); err != nil {
		return nil, fmt.Errorf("Failed to create uploads folder: %w", err)
	}
	return &Server{
		conf: conf,
		info: info,
		codec: codec,
		db: db,
		logger: logger,
		clients: map[string]*protocol.Conn{},
	}, nil
}

// must be called before Start
func(s *Server) SetEventHandler( h EventHandler ) {
	s.handler = h
}

// listens on the configured address and serves in the background
func(s *Server) Start() error {
	l, err := net.Listen( "tcp", s.conf.Address )
	if err != nil {
		return err
	}
	if err = s.setListener( l ); err != nil {
		l.Close()
		return err
	}
	s.logger.LogInfo( "Server started", "address", l.Addr().String() )
	go func() {
		defer s.wg.Done()
		s.acceptLoop( l )
	}()
	return nil
}

// the accept loop joins wg under the lock Stop takes
func(s *Server) setListener( l net.Listener ) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.closed {
		return ErrServerClosed
	}
	if s.listener != nil {
		return fmt.Errorf("Server is already running.")
	}
	s.listener = l
	s.wg.Add( 1 )
	return nil
}

func(s *Server) acceptLoop( l net.Listener ) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			if s.isClosed() {
				return ErrServerClosed
			}
			var ne net.Error
			if errors.As( err, &ne ) && ne.Timeout() {
				s.logger.LogWarning( "Accept failed", "err", err )
				time.Sleep( 10 * time.Millisecond )
				continue
			}
			s.logger.LogError( err )
			s.emitError( "", err )
			return err
		}
		id := uuid.NewString()
		pc := protocol.NewConn( conn, time.Duration( s.conf.Timeout ) * time.Second )
		if !s.addClient( id, pc ) {
			conn.Close()
			return ErrServerClosed
		}
		s.wg.Add( 1 )
		go func() {
			defer s.wg.Done()
			s.handleClient( id, pc )
		}()
	}
}

// nil until started
func(s *Server) Addr() net.Addr {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func(s *Server) ClientCount() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.clients)
}

// closes the listener and every client, then waits for
// all connection goroutines to finish
func(s *Server) Stop() error {
	s.mtx.Lock()
	if s.closed {
		s.mtx.Unlock()
		return nil
	}
	s.closed = true
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	for _, c := range s.clients {
		c.Close()
	}
	s.mtx.Unlock()

	s.wg.Wait()
	s.logger.LogInfo( "Server stopped" )
	return err
}

func(s *Server) isClosed() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.closed
}

func(s *Server) addClient( id string, c *protocol.Conn ) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.closed {
		return false
	}
	s.clients[id] = c
	return true
}

func(s *Server) removeClient( id string ) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	delete( s.clients, id )
}

func(s *Server) handleClient( id string, c *protocol.Conn ) {
	defer func() {
		c.Close()
		s.removeClient( id )
		s.logger.LogInfo( "Client disconnected", "id", id )
		if s.handler != nil {
			s.handler.ClientDisconnected( id )
		}
	}()
	s.logger.LogInfo( "Client connected", "id", id, "addr", c.RemoteAddr().String() )
	if s.handler != nil {
		s.handler.ClientConnected( id, c.RemoteAddr() )
	}

	for {
		line, err := c.ReadLine()
		if err != nil {
			if errors.Is( err, protocol.ErrLineTooLong ) {
				c.WriteLine( protocol.ErrorPrefix + protocol.Reason( err ) )
			}
			if !s.isClosed() && !isDisconnect( err ) {
				s.logger.LogWarning( "Failed to read from client", "id", id, "err", err )
				s.emitError( id, err )
			}
			return
		}
		cmd, err := protocol.ParseCommand( line )
		if err != nil {
			s.logger.LogWarning( "Unknown command", "id", id, "line", line )
			err = c.WriteLine( protocol.ErrorPrefix + protocol.Reason( err ) )
		} else {
			err = s.handleCommand( id, c, cmd )
		}
		if err != nil {
			if !s.isClosed() {
				s.emitError( id, err )
			}
			return
		}
	}
}

// returns an error only if the connection has to be dropped
func(s *Server) handleCommand( id string, c *protocol.Conn, cmd protocol.Command ) error {
	switch cmd.Kind {
	case protocol.CmdVersionCheck:
		s.logger.LogDebug( "Version check", "id", id )
		return c.WriteLine( protocol.VersionPrefix + s.info.Version )
	case protocol.CmdGetUpdateURL:
		s.logger.LogDebug( "Update url request", "id", id )
		return c.WriteLine( protocol.UpdateURLPrefix + s.info.UpdateURL )
	case protocol.CmdUpload:
		return s.handleUpload( id, c, cmd.Arg )
	}
	return c.WriteLine( protocol.ErrorPrefix + protocol.Reason( protocol.ErrUnknownCommand ) )
}

func(s *Server) handleUpload( id string, c *protocol.Conn, name string ) error {
	s.logger.LogInfo( "Receiving file", "id", id, "name", name )
	data, err := c.ReadUpload( s.conf.MaxUploadSize )
	if err != nil {
		var ne net.Error
		if errors.As( err, &ne ) || isDisconnect( err ) {
			return err
		}
		// the body was read up to END_UPLOAD, the connection stays usable
		s.logger.LogWarning( "Upload rejected", "id", id, "name", name, "err", err )
		return c.WriteLine( protocol.UploadFailedPrefix + protocol.Reason( err ) )
	}

	info, err := s.storeUpload( name, data )
	if err != nil {
		s.logger.LogError( fmt.Errorf("Failed to store %s: %w", name, err), "id", id )
		s.emitError( id, err )
		return c.WriteLine( protocol.UploadFailedPrefix + protocol.Reason( err ) )
	}
	if s.handler != nil {
		s.handler.FileReceived( id, info )
	}
	if info.HasSteganography {
		return c.WriteLine( protocol.UploadSuccessStegano )
	}
	return c.WriteLine( protocol.UploadSuccess )
}

// writes the file, runs detection and records it
func(s *Server) storeUpload( name string, data []byte ) (*util.FileInfo, error) {
	f, err := util.CreateUnique( s.conf.UploadsFolder, util.PrepareFilename( name ) )
	if err != nil {
		return nil, err
	}
	_, err = f.Write( data )
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove( f.Name() )
		return nil, err
	}
	stored := filepath.Base( f.Name() )

	info := &util.FileInfo{
		Filename: stored,
		UploadTime: time.Now(),
		Hash: cryptography.Hash( data ),
	}
	if img.IsSupported( data ) {
		found, err := img.Detect( s.codec, data )
		if err != nil {
			s.logger.LogWarning( "Detection failed", "name", stored, "err", err )
		}
		info.HasSteganography = found
	}
	if info.HasSteganography {
		info.HiddenMessage = string( s.codec.Watermark().Marker )
	}
	if s.db != nil {
		if info.Duplicate, err = s.db.IsInDB( data ); err != nil {
			return nil, err
		}
		if info.Duplicate {
			s.logger.LogInfo( "Duplicate upload", "name", stored, "hash", info.Hash )
		}
		id, err := s.db.SaveFileInfo( info.Filename, data, info.HasSteganography, info.HiddenMessage )
		if err != nil {
			return nil, err
		}
		info.ID = id
	}
	s.logger.LogInfo( "File received", "name", stored, "size", len(data), "steganography", info.HasSteganography )
	return info, nil
}

func(s *Server) emitError( id string, err error ) {
	if s.handler != nil {
		s.handler.Error( id, err )
	}
}

func isDisconnect( err error ) bool {
	return errors.Is( err, net.ErrClosed ) || errors.Is( err, io.EOF ) || errors.Is( err, io.ErrUnexpectedEOF )
}
