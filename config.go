package midi

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// Settings for a voice separation run. They can be loaded from a YAML file;
// keys missing from the file keep their default values.
type Config struct {
	// The name of the run log file.
	LogFileName string `yaml:"log_file_name"`
	// Appended to the input file's base name to name the output directory
	// when splitting all tracks.
	SplitFolderSuffix string `yaml:"split_folder_suffix"`
	// The velocity given to every note-off event written.
	NoteOffVelocity uint8 `yaml:"note_off_velocity"`
	// One of logrus' level names.
	LogLevel string `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		LogFileName:       "MIDI_Voice_Separation_Log.txt",
		SplitFolderSuffix: " - Split chords",
		NoteOffVelocity:   DefaultNoteOffVelocity,
		LogLevel:          "info",
	}
}

// Reads the YAML config at path on top of the default settings.
func LoadConfig(path string) (*Config, error) {
	content, e := ioutil.ReadFile(path)
	if e != nil {
		return nil, errors.Wrap(e, "couldn't read config")
	}
	return ParseConfig(content)
}

// Parses YAML config content on top of the default settings.
func ParseConfig(content []byte) (*Config, error) {
	toReturn := DefaultConfig()
	e := yaml.UnmarshalStrict(content, toReturn)
	if e != nil {
		return nil, errors.Wrap(e, "invalid config")
	}
	e = toReturn.Validate()
	if e != nil {
		return nil, e
	}
	return toReturn, nil
}

// Returns an error if any setting is out of range.
func (c *Config) Validate() error {
	if c.LogFileName == "" {
		return errors.New("log_file_name must not be empty")
	}
	if c.SplitFolderSuffix == "" {
		return errors.New("split_folder_suffix must not be empty")
	}
	if c.NoteOffVelocity > 0x7f {
		return errors.Errorf("note_off_velocity must be at most 127, got %d",
			c.NoteOffVelocity)
	}
	_, e := logrus.ParseLevel(c.LogLevel)
	if e != nil {
		return errors.Wrap(e, "invalid log_level")
	}
	return nil
}

// Returns the configured log level, or info if it's invalid.
func (c *Config) Level() logrus.Level {
	level, e := logrus.ParseLevel(c.LogLevel)
	if e != nil {
		return logrus.InfoLevel
	}
	return level
}
