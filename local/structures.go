package local
import (
	"stegbox/util"
)

type FileEntry struct {
	ID			int64		`json:"id"`
	Filename		string		`json:"filename"`
	UploadTime		int64		`json:"upload_time"`	// unix seconds
	HasSteganography	bool		`json:"has_steganography"`
	HiddenMessage		string		`json:"hidden_message,omitempty"`
	Hash			string		`json:"hash"`
}

type Stats struct {
	Files		int		`json:"files"`
	Clients		int		`json:"clients"`
}

type VersionResponse struct {
	Version		string		`json:"version"`
	BuildDate	string		`json:"build_date"`
	UpdateURL	string		`json:"update_url"`
}

func fileEntry( info util.FileInfo ) FileEntry {
	return FileEntry{
		info.ID,
		info.Filename,
		info.UploadTime.Unix(),
		info.HasSteganography,
		info.HiddenMessage,
		info.Hash,
	}
}
