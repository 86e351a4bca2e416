package util
import (
	"io"
	"os"
	"fmt"
	"os/exec"
	"path/filepath"
	"stegbox/cryptography"
)

const (
	TextEditor = "/usr/bin/vi"
	TextEditorVariableName = "STEGBOX_EDITOR"
	ShredCount = 10
)

/*
 * user-related functions, so the user does not have to
 * decrypt, edit and encrypt the configuration by hand.
 */
func EditConfig( conf string, key []byte ) error {
	// decrypt config, put it into temporary file, edit,
	// read, shred temporary file and put encrypted configuration
	// back.
	te := TextEditor
	if env, ok := os.LookupEnv( TextEditorVariableName ); ok && env != "" {
		te = env
	}

	data, err := os.ReadFile( conf )
	if err != nil {
		return fmt.Errorf("Failed to read configuration: %w", err)
	}
	pt, err := cryptography.Decrypt( data, key )
	if err != nil {
		return fmt.Errorf("Failed to decrypt configuration: %w; Invalid password?", err)
	}

	tempFile := filepath.Join( os.TempDir(), fmt.Sprintf("tmp-%d.yaml", RandInt( 100000 ) ) )
	if err = os.WriteFile( tempFile, pt, 0600 ); err != nil {
		return fmt.Errorf("Failed to write into temporary file: %w", err)
	}
	defer ShredFile( tempFile )

	cmd := exec.Command( te, tempFile )
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err = cmd.Run(); err != nil {
		return fmt.Errorf("Failed to edit file using %v: %w", te, err)
	}

	pt, err = os.ReadFile( tempFile )
	if err != nil {
		return fmt.Errorf("Failed to read temporary file: %w", err)
	}
	data, err = cryptography.Encrypt( pt, key )
	if err != nil {
		return err
	}
	return os.WriteFile( conf, data, 0600 )
}

// copies the log file into w
func ReadLog( log string, w io.Writer ) error {
	f, err := os.Open( log )
	if err != nil {
		return fmt.Errorf("Failed to read file: %w", err)
	}
	defer f.Close()
	_, err = io.Copy( w, f )
	return err
}

// overwrites the file with random bytes a few times before removal
func ShredFile( filename string ) error {
	info, err := os.Stat( filename )
	if err != nil {
		return err
	}
	var finalError error
	if info.Size() > 0 {
		for i := 0; i < ShredCount; i++ {
			content, err := cryptography.GenRandom( uint(info.Size()) )
			if err == nil {
				err = os.WriteFile( filename, content, 0600 )
			}
			if err != nil {
				finalError = err
			}
		}
	}
	if err = os.Remove( filename ); err != nil {
		finalError = err
	}
	return finalError
}
