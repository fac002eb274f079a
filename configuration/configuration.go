package configuration

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fulldump/btrievedb/btrieve"
	"github.com/fulldump/btrievedb/database"
	"github.com/fulldump/btrievedb/store"
)

type Configuration struct {
	HttpAddr          string        `usage:"HTTP address" yaml:"http_addr"`
	Dir               string        `usage:"data directory" yaml:"dir"`
	Name              string        `usage:"database name accepted by login" yaml:"name"`
	Version           bool          `usage:"show version and exit" yaml:"-"`
	ShowBanner        bool          `usage:"show big banner" yaml:"show_banner"`
	ShowConfig        bool          `usage:"print config" yaml:"show_config"`
	EnableCompression bool          `usage:"gzip HTTP responses" yaml:"enable_compression"`
	HttpsEnabled      bool          `usage:"serve HTTPS" yaml:"https_enabled"`
	HttpsSelfsigned   bool          `usage:"serve HTTPS with a self signed certificate" yaml:"https_selfsigned"`
	ApiKey            string        `usage:"API key required in X-Api-Key, empty disables authentication" yaml:"api_key"`
	ApiSecret         string        `usage:"API secret required in X-Api-Secret" yaml:"api_secret"`
	LogCompression    string        `usage:"compression of command log payloads: none|snappy|lz4|zstd" yaml:"log_compression"`
	CacheSize         int64         `usage:"decoded record cache size in bytes, 0 disables it" yaml:"cache_size"`
	LockTimeout       time.Duration `usage:"maximum wait for a lock, 0 waits forever" yaml:"lock_timeout"`
	SyncWrites        bool          `usage:"fsync the command log after every write" yaml:"sync_writes"`
	LogToStderr       bool          `usage:"log to standard error instead of files" yaml:"log_to_stderr"`
	Verbosity         int           `usage:"log verbosity level" yaml:"verbosity"`
	ConfigFile        string        `usage:"YAML file with options, users and store templates" yaml:"-"`
}

func Default() Configuration {
	return Configuration{
		HttpAddr:       "127.0.0.1:8080",
		Dir:            "data",
		Name:           "btrievedb",
		ShowBanner:     true,
		LogCompression: string(store.CodecSnappy),
		CacheSize:      64 * 1024 * 1024,
		LogToStderr:    true,
	}
}

// File is the layout of the YAML file named by ConfigFile. Options set
// there take precedence over flags and environment.
type File struct {
	Configuration `yaml:",inline"`

	// Users maps login names to passwords. Login accepts anything when
	// there are none.
	Users map[string]string `yaml:"users"`

	// Stores are created at load when missing. Attribute enumerations are
	// written by name, e.g. data_type: UNSIGNED_BINARY.
	Stores []map[string]any `yaml:"stores"`
}

// LoadFile overlays the YAML file named by c.ConfigFile on c. An empty
// name returns an empty File.
func LoadFile(c *Configuration) (*File, error) {

	f := &File{
		Configuration: *c,
	}
	if c.ConfigFile == "" {
		return f, nil
	}

	data, err := os.ReadFile(c.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	err = yaml.Unmarshal(data, f)
	if err != nil {
		return nil, fmt.Errorf("parse config '%s': %w", c.ConfigFile, err)
	}

	configFile := c.ConfigFile
	*c = f.Configuration
	c.ConfigFile = configFile

	return f, nil
}

// Database builds the engine configuration.
func (f *File) Database() (*database.Config, error) {

	codec, err := store.ParseCodec(strings.ToLower(f.LogCompression))
	if err != nil {
		return nil, err
	}

	templates := []database.Template{}
	for i, item := range f.Stores {
		template, err := decodeTemplate(item)
		if err != nil {
			return nil, fmt.Errorf("store %d: %w", i, err)
		}
		templates = append(templates, template)
	}

	return &database.Config{
		Dir:         f.Dir,
		Name:        f.Name,
		Codec:       codec,
		CacheSize:   f.CacheSize,
		LockTimeout: f.LockTimeout,
		SyncWrites:  f.SyncWrites,
		Templates:   templates,
		Users:       f.Users,
	}, nil
}

type storeTemplate struct {
	Name    string           `json:"name"`
	File    map[string]any   `json:"file"`
	Indexes []map[string]any `json:"indexes"`
}

// decodeTemplate starts every file and index from its default attributes
// so options missing in the file keep their default value.
func decodeTemplate(item map[string]any) (database.Template, error) {

	input := &storeTemplate{}
	err := btrieve.Decode(item, input)
	if err != nil {
		return database.Template{}, err
	}
	if input.Name == "" {
		return database.Template{}, fmt.Errorf("store without name: %w", btrieve.StatusInvalidOption)
	}

	template := database.Template{
		Name: input.Name,
		File: btrieve.DefaultFileAttributes(),
	}
	err = btrieve.Decode(input.File, &template.File)
	if err != nil {
		return database.Template{}, err
	}
	for _, item := range input.Indexes {
		index := btrieve.DefaultIndexAttributes()
		err := btrieve.Decode(item, &index)
		if err != nil {
			return database.Template{}, err
		}
		template.Indexes = append(template.Indexes, index)
	}

	return template, nil
}
