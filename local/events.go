package local
import (
	"net"
	"stegbox/util"
)

// reports server events to the log
type logEvents struct {
	logger	*util.Logger
}

func(e *logEvents) ClientConnected( id string, addr net.Addr ) {
	util.DebugPrintln( util.GreenColor + "connected " + id + " " + addr.String() + util.ResetColor )
}

func(e *logEvents) ClientDisconnected( id string ) {
	util.DebugPrintln( util.YellowColor + "disconnected " + id + util.ResetColor )
}

func(e *logEvents) FileReceived( id string, info *util.FileInfo ) {
	if info.HasSteganography {
		e.logger.LogWarning( "Watermark detected", "id", id, "name", info.Filename )
	}
}

func(e *logEvents) Error( id string, err error ) {
	e.logger.LogError( err, "id", id )
}
