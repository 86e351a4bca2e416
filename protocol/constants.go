package protocol

// lines sent by clients
const (
	VersionCheck = "VERSION_CHECK"
	GetUpdateURL = "GET_UPDATE_URL"
	UploadPrefix = "UPLOAD:"
	EndUpload = "END_UPLOAD"
)

// lines sent by the server
const (
	VersionPrefix = "VERSION:"
	UpdateURLPrefix = "UPDATE_URL:"
	UploadSuccess = "UPLOAD_SUCCESS"
	UploadSuccessStegano = "UPLOAD_SUCCESS:STEGANOGRAPHY"
	UploadFailedPrefix = "UPLOAD_FAILED:"
	ErrorPrefix = "ERROR:"
)

const (
	// base64 body is split into lines of this many characters
	LineLength = 76
	// longest command line accepted
	MaxLineLength = 4096
)

// command kinds
const (
	CmdVersionCheck = uint8(iota)
	CmdGetUpdateURL
	CmdUpload
)
