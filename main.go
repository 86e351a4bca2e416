package main
import (
	"os"
	"fmt"
	"time"
	"errors"
	"context"
	"strconv"
	"os/signal"
	"path/filepath"
	"golang.org/x/text/unicode/norm"

	"stegbox/util"
	"stegbox/local"
	"stegbox/config"
	"stegbox/network"
	"stegbox/version"
	"stegbox/cryptography"
	"stegbox/stegano/img"
	"stegbox/stegano/lsb"
)

const (
	StegboxFolder = ".stegbox"
	ConfigFilename = "config.yaml"
	LogFilename = "log.log"
	DbFilename = "files.db"
	SaltFilename = "salt.bin"
	UploadsFolder = "uploads"
)

func main() {

	if len( os.Args ) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" {
		help()
		return
	}

	// the only command which needs no configuration at all
	if os.Args[1] == "genseed" {
		seed, err := cryptography.GenSeed()
		if err != nil {
			fatal("Failed to generate seed:", err)
		}
		fmt.Println( seed )
		return
	}

	home, err := os.UserHomeDir()
	if err != nil {
		fatal("Failed to get home directory:", err)
	}
	stegboxFolder := filepath.Join( home, StegboxFolder )
	if err = os.MkdirAll( stegboxFolder, 0700 ); err != nil {
		fatal("Failed to create stegbox directory in user's home folder:", err)
	}

	saltBytes, err := getSalt( stegboxFolder )
	if err != nil {
		fatal("Failed to get salt bytes:", err)
	}
	password, err := util.GetPasswd("Password (empty for none): ")
	if err != nil {
		fatal("Failed to read password from stdin:", err)
	}
	var key []byte
	if len(password) > 0 {
		key = cryptography.DeriveKey( password, saltBytes )
	}

	// if the application runs for the first time, create the configuration
	configFile := filepath.Join( stegboxFolder, ConfigFilename )
	if _, err := os.Stat( configFile ); err != nil || os.Args[1] == "genconf" {
		previous, err := previousConfig( configFile, filepath.Join( stegboxFolder, DbFilename ), key )
		if err != nil {
			fatal("Refusing to overwrite configuration, the database key would be lost:", err)
		}
		if err = config.SaveConfig( configFile, key, defaultConfig( stegboxFolder, previous ) ); err != nil {
			fatal("Failed to save default configuration:", err)
		}
		if os.Args[1] == "genconf" {
			fmt.Println("[+] Configuration written to", configFile)
			return
		}
	}

	switch os.Args[1] {
	case "editconf":
		if key == nil {
			fatal("Configuration is not encrypted, edit", configFile, "directly.")
		}
		if err = util.EditConfig( configFile, key ); err != nil {
			fatal( "Failed to edit configuration:", err )
		}
		return
	case "readlog":
		if err = util.ReadLog( filepath.Join( stegboxFolder, LogFilename ), os.Stdout ); err != nil {
			fatal( "Failed to read log file:", err )
		}
		return
	}

	conf, err := config.LoadConfig( configFile, key )
	if err != nil {
		fatal("Failed to load configuration (invalid password?):", err)
	}
	codec, err := conf.StegConfig.Codec()
	if err != nil {
		fatal("Invalid steganography configuration:", err)
	}
	args := os.Args[2:]

	switch os.Args[1] {
	case "serve":
		ctx, stop := signal.NotifyContext( context.Background(), os.Interrupt )
		defer stop()
		if err = local.RunServer( ctx, conf ); err != nil {
			fatal( "Failed to run server:", err )
		}
	case "hide":
		err = hide( codec, args )
	case "reveal":
		err = reveal( codec, args )
	case "detect":
		err = detect( codec, args )
	case "upload":
		err = upload( conf, codec, args )
	case "update":
		err = update( conf )
	case "files":
		err = listFiles( conf, args )
	default:
		help()
	}
	if err != nil {
		fatal( os.Args[1] + ":", err )
	}
}

// hide <input> <output> <message> [seed]
func hide( codec *lsb.Codec, args []string ) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: hide <input> <output> <message> [seed]")
	}
	seed, generated, err := seedArg( args, 3 )
	if err != nil {
		return err
	}
	decoy, err := os.ReadFile( args[0] )
	if err != nil {
		return err
	}
	encoded, err := img.Hide( codec, decoy, norm.NFC.String( args[2] ), seed )
	if err != nil {
		return err
	}
	if err = os.WriteFile( args[1], encoded, 0644 ); err != nil {
		return err
	}
	if generated {
		fmt.Println("[+] Seed:", seed)
	}
	return nil
}

// reveal <file> <seed>
func reveal( codec *lsb.Codec, args []string ) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: reveal <file> <seed>")
	}
	seed, err := strconv.ParseInt( args[1], 10, 64 )
	if err != nil {
		return fmt.Errorf("Invalid seed: %w", err)
	}
	message, err := img.RevealFromFile( codec, args[0], seed )
	if errors.Is( err, lsb.ErrNoMessage ) {
		fmt.Println("[-] No hidden message found")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println( message )
	return nil
}

// detect <file>...
func detect( codec *lsb.Codec, args []string ) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: detect <file>...")
	}
	for _, path := range args {
		data, err := os.ReadFile( path )
		if err != nil {
			return err
		}
		found, err := img.Detect( codec, data )
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf( "%s: %t\n", path, found )
	}
	return nil
}

// upload <file> [message]
func upload( conf *config.FullConfig, codec *lsb.Codec, args []string ) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: upload <file> [message]")
	}
	data, err := os.ReadFile( args[0] )
	if err != nil {
		return err
	}
	if len(args) > 1 {
		seed, err := cryptography.GenSeed()
		if err != nil {
			return err
		}
		if data, err = img.Hide( codec, data, norm.NFC.String( args[1] ), seed ); err != nil {
			return err
		}
		fmt.Println("[+] Seed:", seed)
	}

	client, err := dialServer( conf )
	if err != nil {
		return err
	}
	defer client.Close()
	res, err := client.Upload( filepath.Base( args[0] ), data )
	if err != nil {
		return err
	}
	if res.HasSteganography {
		fmt.Println("[+] Uploaded, the server detected steganography")
	} else {
		fmt.Println("[+] Uploaded")
	}
	return nil
}

// downloads the announced build next to the executable
func update( conf *config.FullConfig ) error {
	client, err := dialServer( conf )
	if err != nil {
		return err
	}
	defer client.Close()

	latest, err := client.CheckVersion()
	if err != nil {
		return err
	}
	if !version.IsNewer( conf.Version.Version, latest ) {
		fmt.Println("[+] Up to date:", conf.Version.Version)
		return nil
	}
	url, err := client.UpdateURL()
	if err != nil {
		return err
	}
	if url == "" {
		return fmt.Errorf("Version %s is available but the server has no update url.", latest)
	}
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout( context.Background(), 10 * time.Minute )
	defer cancel()
	dst := exe + ".new"
	if err = version.Download( ctx, url, dst ); err != nil {
		return err
	}
	fmt.Printf( "[+] Version %s downloaded to %s\n", latest, dst )
	return nil
}

// files [limit]
func listFiles( conf *config.FullConfig, args []string ) error {
	limit := 0
	if len(args) > 0 {
		n, err := strconv.Atoi( args[0] )
		if err != nil {
			return fmt.Errorf("Invalid limit: %w", err)
		}
		limit = n
	}
	db, err := util.ConnectDB( conf.DbFile, conf.DbPassword, conf.DbRowsLimit )
	if err != nil {
		return err
	}
	defer db.Close()
	files, err := db.ListFiles( limit )
	if err != nil {
		return err
	}
	for _, f := range files {
		mark := " "
		if f.HasSteganography {
			mark = "*"
		}
		fmt.Printf( "%s %5d  %s  %s\n", mark, f.ID, f.UploadTime.Format( time.DateTime ), f.Filename )
	}
	return nil
}

func dialServer( conf *config.FullConfig ) (*network.Client, error) {
	timeout := time.Duration( conf.ClientConfig.Timeout ) * time.Second
	ctx, cancel := context.WithTimeout( context.Background(), timeout )
	defer cancel()
	return network.Dial( ctx, conf.ClientConfig.ServerAddress, timeout )
}

// returns args[idx] as a seed, or a fresh random one if it is missing
func seedArg( args []string, idx int ) (int64, bool, error) {
	if len(args) > idx {
		seed, err := strconv.ParseInt( args[idx], 10, 64 )
		if err != nil {
			return 0, false, fmt.Errorf("Invalid seed: %w", err)
		}
		return seed, false, nil
	}
	seed, err := cryptography.GenSeed()
	return seed, true, err
}

func getSalt( stegboxFolder string ) ([]byte, error) {
	saltFile := filepath.Join( stegboxFolder, SaltFilename )
	salt, err := os.ReadFile( saltFile )
	if err != nil {
		salt, err = cryptography.GenRandom( cryptography.SaltSize )
		if err != nil {
			return nil, err
		}
		if err = os.WriteFile( saltFile, salt, 0600 ); err != nil {
			return nil, err
		}
	}
	return salt, err
}

// the configuration being replaced, nil if there is none
func previousConfig( configFile, dbFile string, key []byte ) (*config.FullConfig, error) {
	conf, err := config.LoadConfig( configFile, key )
	if err == nil {
		return conf, nil
	}
	if _, serr := os.Stat( dbFile ); serr == nil {
		return nil, fmt.Errorf("%s exists but the configuration holding its key is unreadable: %w", dbFile, err)
	}
	return nil, nil
}

func defaultConfig( stegboxFolder string, previous *config.FullConfig ) *config.FullConfig {
	conf := config.Fresh( previous )
	conf.ServerConfig.UploadsFolder = filepath.Join( stegboxFolder, UploadsFolder )
	conf.Logger.Filename = filepath.Join( stegboxFolder, LogFilename )
	conf.Logger.IsColored = false
	conf.DbFile = filepath.Join( stegboxFolder, DbFilename )
	return conf
}

func fatal( args ...any ) {
	fmt.Fprintln( os.Stderr, args... )
	os.Exit(1)
}

func help() {
	line := `Usage: ./stegbox <command> [arguments]

The following commands are supported:
	serve				run the upload server
	upload <file> [message]		upload a file, optionally hiding a message first
	hide <in> <out> <message> [seed]	hide a message in a BMP or PNG image
	reveal <file> <seed>		extract a hidden message
	detect <file>...		check images for the watermark
	genseed				print a random seed
	update				download a newer version announced by the server
	files [limit]			list received files
	editconf			edit encrypted configuration
	genconf				write the default configuration
	readlog				print the log file
`
	fmt.Printf("%s", line)
}
