package util

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/pocket/lib/common"
	"github.com/ValentinKolb/pocket/lib/encryption"
	"github.com/ValentinKolb/pocket/lib/executor"
	"github.com/ValentinKolb/pocket/lib/pocket"
	"github.com/ValentinKolb/pocket/lib/serializer"
	"github.com/ValentinKolb/pocket/lib/storage"
	"github.com/ValentinKolb/pocket/lib/storage/cached"
	"github.com/ValentinKolb/pocket/lib/storage/fsstorage"
	"github.com/joho/godotenv"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Logger = logger.GetLogger("cli")

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps every line of text at Wrap characters. Explicit line breaks
// are kept, words longer than Wrap get a line of their own.
func WrapString(text string) string {
	paragraphs := strings.Split(text, "\n")
	for i, paragraph := range paragraphs {
		paragraphs[i] = wrapLine(paragraph)
	}
	return strings.Join(paragraphs, "\n")
}

func wrapLine(line string) string {
	var lines []string
	var current strings.Builder

	for _, word := range strings.Fields(line) {
		if current.Len() > 0 && current.Len()+1+len(word) > Wrap {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return strings.Join(lines, "\n")
}

// SetupPocketFlags adds the flags describing a pocket to a command
func SetupPocketFlags(cmd *cobra.Command) {
	def := common.DefaultConfig()

	key := "data-dir"
	cmd.PersistentFlags().String(key, def.DataDir, WrapString("Directory holding the values, one file per key"))

	key = "serializer"
	cmd.PersistentFlags().String(key, def.Serializer, WrapString("How values are encoded on disk (string, json, yaml, gob)"))

	key = "encryption"
	cmd.PersistentFlags().String(key, def.Encryption, WrapString("How values are encrypted on disk (none, base64, aead). aead requires a passphrase"))

	key = "passphrase"
	cmd.PersistentFlags().String(key, "", WrapString("Passphrase for the aead encryption (better set via POCKET_PASSPHRASE)"))

	key = "salt"
	cmd.PersistentFlags().String(key, def.Salt, WrapString("Salt for deriving the aead key from the passphrase. Must not change once values are written"))

	key = "cache-size"
	cmd.PersistentFlags().Int(key, def.CacheSize, WrapString("Number of values kept in an lru cache in front of the storage (0 disables the cache)"))

	key = "executor"
	cmd.PersistentFlags().String(key, def.Executor, WrapString("Where the storage work runs (inline, serial, pool)"))

	key = "workers"
	cmd.PersistentFlags().Int(key, def.Workers, WrapString("Number of workers of the pool executor"))

	key = "sync"
	cmd.PersistentFlags().Bool(key, def.SyncWrites, WrapString("fsync every write (slower, but survives power loss)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, def.LogLevel, WrapString("Log level (debug, info, warn, error)"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("pocket")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// GetConfig reads the pocket configuration from viper
func GetConfig() common.Config {
	return common.Config{
		DataDir:    viper.GetString("data-dir"),
		SyncWrites: viper.GetBool("sync"),
		CacheSize:  viper.GetInt("cache-size"),
		Serializer: viper.GetString("serializer"),
		Encryption: viper.GetString("encryption"),
		Passphrase: viper.GetString("passphrase"),
		Salt:       viper.GetString("salt"),
		Executor:   viper.GetString("executor"),
		Workers:    viper.GetInt("workers"),
		LogLevel:   viper.GetString("log-level"),
	}
}

// --------------------------------------------------------------------------
// Pocket assembly
// --------------------------------------------------------------------------

// Options tweak how OpenPocket assembles the pocket
type Options struct {
	// WrapStorage decorates the file system storage before the cache is added (may be nil)
	WrapStorage func(storage.IStorage) storage.IStorage
	// ExternalChanges is passed on to pocket.Config
	ExternalChanges <-chan string
}

// Runtime is an opened pocket together with the parts the cli has to release
type Runtime struct {
	Pocket   pocket.IPocket[string]
	Storage  storage.IStorage
	Executor executor.IExecutor
}

// Close closes the pocket and then its executor
func (r *Runtime) Close() error {
	err := r.Pocket.Close()
	if r.Executor != nil {
		if cerr := r.Executor.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// OpenPocket validates conf and assembles a pocket of strings from it
func OpenPocket(conf common.Config, opts *Options) (*Runtime, error) {
	if opts == nil {
		opts = &Options{}
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	fsOpts := fsstorage.DefaultOptions()
	fsOpts.Sync = conf.SyncWrites
	var store storage.IStorage
	store, err := fsstorage.NewFileSystemStorage(conf.DataDir, fsOpts)
	if err != nil {
		return nil, err
	}
	if opts.WrapStorage != nil {
		store = opts.WrapStorage(store)
	}
	// other writers bypass the cache, so it would serve stale values
	if conf.CacheSize > 0 && opts.ExternalChanges != nil {
		Logger.Infof("cache disabled, values are changed outside this process")
	} else if conf.CacheSize > 0 {
		if store, err = cached.NewCachedStorage(store, conf.CacheSize); err != nil {
			return nil, err
		}
	}

	ser, err := GetSerializer(conf.Serializer)
	if err != nil {
		return nil, err
	}

	enc, err := GetEncryption(conf)
	if err != nil {
		return nil, err
	}

	exec, err := GetExecutor(conf)
	if err != nil {
		return nil, err
	}

	p, err := pocket.NewPocket(pocket.Config[string]{
		Storage:         store,
		Serializer:      ser,
		Encryption:      enc,
		Executor:        exec,
		ExternalChanges: opts.ExternalChanges,
	})
	if err != nil {
		if exec != nil {
			_ = exec.Close()
		}
		return nil, err
	}

	return &Runtime{
		Pocket:   p,
		Storage:  store,
		Executor: exec,
	}, nil
}

// GetSerializer creates a serializer for string values
func GetSerializer(name string) (serializer.ISerializer[string], error) {
	switch name {
	case common.SerializerString:
		return serializer.NewStringSerializer(), nil
	case common.SerializerJSON:
		return serializer.NewJSONSerializer[string](), nil
	case common.SerializerYAML:
		return serializer.NewYAMLSerializer[string](), nil
	case common.SerializerGOB:
		return serializer.NewGOBSerializer[string](), nil
	default:
		return nil, fmt.Errorf("invalid serializer %s", name)
	}
}

// GetEncryption creates the encryption, deriving the key for aead
func GetEncryption(conf common.Config) (encryption.IEncryption, error) {
	switch conf.Encryption {
	case common.EncryptionNone:
		return encryption.NewNoEncryption(), nil
	case common.EncryptionBase64:
		return encryption.NewBase64Encryption(), nil
	case common.EncryptionAEAD:
		secret, err := encryption.DeriveKey(conf.Passphrase, conf.Salt)
		if err != nil {
			return nil, err
		}
		return encryption.NewAEADEncryption(secret)
	default:
		return nil, fmt.Errorf("invalid encryption %s", conf.Encryption)
	}
}

// GetExecutor creates the executor, inline means no executor at all
func GetExecutor(conf common.Config) (executor.IExecutor, error) {
	switch conf.Executor {
	case common.ExecutorInline:
		return nil, nil
	case common.ExecutorSerial:
		return executor.NewSerialExecutor(), nil
	case common.ExecutorPool:
		return executor.NewPoolExecutor(conf.Workers), nil
	default:
		return nil, fmt.Errorf("invalid executor %s", conf.Executor)
	}
}
