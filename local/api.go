package local
import (
	"time"
	"net/http"

	"stegbox/util"
	"stegbox/version"
)

/*
 * read-only local api for the running upload server:
 * GET /api/version, GET /api/files?limit=N, GET /api/stats
 */
func NewApiHandler( db *util.DB, info version.Info, clients ClientCounter, logger *util.Logger ) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/version", func(w http.ResponseWriter, r *http.Request) {
		sendVersion( w, info )
	})

	mux.HandleFunc("GET /api/files", func(w http.ResponseWriter, r *http.Request) {
		sendFiles( w, r, db, logger )
	})

	mux.HandleFunc("GET /api/stats", func(w http.ResponseWriter, r *http.Request) {
		sendStats( w, db, clients, logger )
	})
	return mux
}

func NewApiServer( address string, db *util.DB, info version.Info, clients ClientCounter, logger *util.Logger ) *http.Server {
	return &http.Server{
		Addr: address,
		Handler: NewApiHandler( db, info, clients, logger ),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
