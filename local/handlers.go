package local
import (
	"strconv"
	"net/http"
	"encoding/json"

	"stegbox/util"
	"stegbox/version"
)

const (
	DefaultFilesLimit = 100
)

// anything which knows how many clients are connected
type ClientCounter interface {
	ClientCount() int
}

func writeJsonResponse( w http.ResponseWriter, v any ) {
	resp, err := json.Marshal( v )
	if err != nil {
		http.Error( w, "Internal Server Error", http.StatusInternalServerError )
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write( resp )
}

func sendVersion( w http.ResponseWriter, info version.Info ) {
	writeJsonResponse( w, VersionResponse{ info.Version, info.BuildDate, info.UpdateURL } )
}

func sendFiles( w http.ResponseWriter, r *http.Request, db *util.DB, logger *util.Logger ) {
	limit := DefaultFilesLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi( l )
		if err != nil || n < 0 {
			http.Error( w, "Invalid limit", http.StatusBadRequest )
			return
		}
		limit = n
	}
	files, err := db.ListFiles( limit )
	if err != nil {
		logger.LogError( err )
		http.Error( w, "Internal Server Error", http.StatusInternalServerError )
		return
	}
	entries := make( []FileEntry, 0, len(files) )
	for _, f := range files {
		entries = append( entries, fileEntry( f ) )
	}
	writeJsonResponse( w, entries )
}

func sendStats( w http.ResponseWriter, db *util.DB, clients ClientCounter, logger *util.Logger ) {
	count, err := db.Count()
	if err != nil {
		logger.LogError( err )
		http.Error( w, "Internal Server Error", http.StatusInternalServerError )
		return
	}
	stats := Stats{ Files: count }
	if clients != nil {
		stats.Clients = clients.ClientCount()
	}
	writeJsonResponse( w, stats )
}
