package config

import (
	"os"
	"fmt"
	"gopkg.in/yaml.v3"

	"stegbox/cryptography"
	"stegbox/stegano/lsb"
	"stegbox/util"
	"stegbox/version"
)

const (
	DefaultAddress = "127.0.0.1:8888"
	DefaultUploadsFolder = "uploads"
	DefaultMaxUploadSize = 32 << 20
	DefaultDbFile = "stegbox.db"
	DefaultDbRowsLimit = 100000
	DefaultTimeout = 30
)

// upload server configuration
type ServerConfig struct {
	Address		string		`yaml:"address"`
	UploadsFolder	string		`yaml:"uploads_folder"`
	MaxUploadSize	int64		`yaml:"max_upload_size"`	// decoded bytes
	Timeout		uint		`yaml:"timeout"`	// seconds of client inactivity
	ApiAddress	string		`yaml:"api_address"`	// local status api, empty disables it
}

type ClientConfig struct {
	ServerAddress	string		`yaml:"server_address"`
	Timeout		uint		`yaml:"timeout"`	// seconds
}

/*
 * Configuration for steganography. The header layout has to match on
 * both sides, otherwise nothing embedded by one side is found by the other.
 */
type SteganoConfig struct {
	Watermark	bool		`yaml:"watermark"`
	WatermarkSeed	int64		`yaml:"watermark_seed"`
	WatermarkMarker	string		`yaml:"watermark_marker"`
	Magic		string		`yaml:"magic"`		// two symbols
	MagicBits	int		`yaml:"magic_bits"`
	MagicSlot	int		`yaml:"magic_slot"`
	LengthSlot	int		`yaml:"length_slot"`
	HeaderSlots	int		`yaml:"header_slots"`
}

type FullConfig struct {
	ServerConfig	ServerConfig		`yaml:"server_config"`
	ClientConfig	ClientConfig		`yaml:"client_config"`
	StegConfig	SteganoConfig		`yaml:"steganography_config"`
	Version		version.Info		`yaml:"version"`
	Logger		util.LoggerInfo		`yaml:"logger_config"`
	DbFile		string			`yaml:"db_file"`
	DbPassword	string			`yaml:"db_password"`
	DbRowsLimit	uint			`yaml:"db_rows_limit"`
}

func DefaultSteganoConfig() SteganoConfig {
	l := lsb.DefaultLayout()
	return SteganoConfig{
		Watermark: true,
		WatermarkSeed: lsb.DefaultWatermarkSeed,
		WatermarkMarker: lsb.DefaultWatermarkMarker,
		Magic: string( l.Magic[:] ),
		MagicBits: l.MagicBits,
		MagicSlot: l.MagicSlot,
		LengthSlot: l.LengthSlot,
		HeaderSlots: l.HeaderSlots,
	}
}

func Default() *FullConfig {
	return &FullConfig{
		ServerConfig{ DefaultAddress, DefaultUploadsFolder, DefaultMaxUploadSize, DefaultTimeout, "" },
		ClientConfig{ DefaultAddress, DefaultTimeout },
		DefaultSteganoConfig(),
		version.Default(),
		util.LoggerInfo{
			Filename: "",
			IsColored: true,
			SaveTime: true,
			Mode: util.Error | util.Warning | util.Info,
		},
		DefaultDbFile,
		"",
		DefaultDbRowsLimit,
	}
}

// Fresh returns the defaults for a newly written configuration. The
// database key of previous is kept as is, even when empty, otherwise the
// existing database could not be opened anymore. Without previous a new
// key is generated.
func Fresh( previous *FullConfig ) *FullConfig {
	conf := Default()
	if previous != nil {
		conf.DbPassword = previous.DbPassword
	} else {
		conf.DbPassword = util.GenID()
	}
	return conf
}

func(sc SteganoConfig) Layout() (lsb.Layout, error) {
	if len(sc.Magic) != 2 {
		return lsb.Layout{}, fmt.Errorf("Magic must be two bytes, got %q.", sc.Magic)
	}
	l := lsb.Layout{
		Magic: [2]byte{ sc.Magic[0], sc.Magic[1] },
		MagicBits: sc.MagicBits,
		MagicSlot: sc.MagicSlot,
		LengthSlot: sc.LengthSlot,
		HeaderSlots: sc.HeaderSlots,
	}
	return l, l.Validate()
}

// builds the codec both the server and the client use
func(sc SteganoConfig) Codec() (*lsb.Codec, error) {
	l, err := sc.Layout()
	if err != nil {
		return nil, err
	}
	conf := lsb.Config{ Layout: l }
	if sc.Watermark {
		conf.Watermark = &lsb.Watermark{
			Seed: sc.WatermarkSeed,
			Marker: []byte( sc.WatermarkMarker ),
		}
	}
	return lsb.NewCodec( conf )
}

/*
 * Functions for loading and saving configuration in YAML format.
 */
func LoadConfig(filename string, key []byte) (*FullConfig, error) {
	data, err := LoadEncrypted(filename, key)
	if err != nil {
		return nil, err
	}

	// missing fields keep their defaults
	conf := Default()
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, err
	}
	return conf, nil
}

func SaveConfig(filename string, key []byte, c *FullConfig) error {
	data, err := yaml.Marshal( c )
	if err != nil {
		return err
	}
	return SaveEncrypted(filename, key, data)
}

/*
 * Functions for saving and loading encrypted files.
 */
func LoadEncrypted(filename string, key []byte) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if len(key) == cryptography.SymKeySize {
		return cryptography.Decrypt(data, key)
	}
	// return unencrypted data
	return data, nil
}

func SaveEncrypted(filename string, key, data []byte) error {

	var err error
	if len(key) == cryptography.SymKeySize {
		data, err = cryptography.Encrypt(data, key)
		if err != nil {
			return err
		}
	}
	return os.WriteFile(filename, data, 0600)
}
