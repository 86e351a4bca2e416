package util
import (
	"log"
	"os"
)

// developer tracing, enabled with STEGBOX_DEBUG=1
var DebugMode = os.Getenv("STEGBOX_DEBUG") == "1"

func DebugPrintln( args ...any ) {
	if DebugMode == true {
		log.Println( args... )
	}
}
