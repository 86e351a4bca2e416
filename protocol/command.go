package protocol
import (
	"fmt"
	"errors"
	"strings"
)

var (
	ErrUnknownCommand = errors.New("Unknown command.")
	ErrLineTooLong = errors.New("Line is too long.")
	ErrUploadTooLarge = errors.New("Upload is too large.")
	ErrInvalidReply = errors.New("Invalid reply.")
)

type Command struct {
	Kind	uint8
	Arg	string	// filename of an upload
}

func ParseCommand( line string ) (Command, error) {
	line = strings.TrimRight( line, "\r\n" )
	switch {
	case line == VersionCheck:
		return Command{ CmdVersionCheck, "" }, nil
	case line == GetUpdateURL:
		return Command{ CmdGetUpdateURL, "" }, nil
	case strings.HasPrefix( line, UploadPrefix ):
		name := strings.TrimPrefix( line, UploadPrefix )
		if name == "" {
			return Command{}, fmt.Errorf("%w: missing filename", ErrUnknownCommand)
		}
		return Command{ CmdUpload, name }, nil
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, line)
}

func(c Command) String() string {
	switch c.Kind {
	case CmdVersionCheck:
		return VersionCheck
	case CmdGetUpdateURL:
		return GetUpdateURL
	case CmdUpload:
		return UploadPrefix + c.Arg
	}
	return ""
}

// result of an upload as reported by the server
type UploadResult struct {
	HasSteganography	bool
}

// parses the server answer to an upload
func ParseUploadReply( line string ) (UploadResult, error) {
	switch {
	case line == UploadSuccess:
		return UploadResult{ false }, nil
	case line == UploadSuccessStegano:
		return UploadResult{ true }, nil
	case strings.HasPrefix( line, UploadFailedPrefix ):
		return UploadResult{}, fmt.Errorf("Upload failed: %s", strings.TrimPrefix( line, UploadFailedPrefix ))
	case strings.HasPrefix( line, ErrorPrefix ):
		return UploadResult{}, fmt.Errorf("Server error: %s", strings.TrimPrefix( line, ErrorPrefix ))
	}
	return UploadResult{}, fmt.Errorf("%w: %q", ErrInvalidReply, line)
}

// returns the value of a "PREFIX:value" reply
func ParseValueReply( line, prefix string ) (string, error) {
	if strings.HasPrefix( line, prefix ) {
		return strings.TrimPrefix( line, prefix ), nil
	}
	if strings.HasPrefix( line, ErrorPrefix ) {
		return "", fmt.Errorf("Server error: %s", strings.TrimPrefix( line, ErrorPrefix ))
	}
	return "", fmt.Errorf("%w: expected %s got %q", ErrInvalidReply, prefix, line)
}

// single-line reason safe to send back in a reply
func Reason( err error ) string {
	return strings.NewReplacer( "\r", " ", "\n", " " ).Replace( err.Error() )
}
