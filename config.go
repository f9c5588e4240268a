package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"mixcheck/log"
)

const (
	defaultConfigFile     = "./config.json"
	defaultGroup          = "0000.1"
	defaultQuestion       = "EP_2024.question-1"
	defaultLogLevel       = log.LogLevelError
	defaultLogOutput      = "stderr"
	defaultMultiplyInput  = "RK2023_LIVEDEMO-proof"
	defaultMultiplyOutput = "RK2023_LIVEDEMO-proof-mult"
	defaultMultiplyTimes  = 4000

	envPrefix = "MIXCHECK"
)

var ErrMissingPath = errors.New("missing file path")

// Config holds the application configuration
type Config struct {
	ProofFile string         `mapstructure:"prooffile"`
	MixedFile string         `mapstructure:"mixedfile"`
	Group     string         `mapstructure:"group"`
	Question  string         `mapstructure:"question"`
	Verbose   bool           `mapstructure:"verbose"`
	Log       LogConfig      `mapstructure:"log"`
	Multiply  MultiplyConfig `mapstructure:"multiply"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// MultiplyConfig holds the proof multiplier configuration
type MultiplyConfig struct {
	Input  string `mapstructure:"input"`
	Output string `mapstructure:"output"`
	Times  int    `mapstructure:"times"`
}

// LoadConfig loads the configuration of command from defaults, the JSON
// config file, MIXCHECK_* environment variables and args, in increasing
// order of precedence.
func LoadConfig(command string, args []string) (*Config, error) {
	v := viper.New()

	v.SetDefault("prooffile", "")
	v.SetDefault("mixedfile", "")
	v.SetDefault("group", defaultGroup)
	v.SetDefault("question", defaultQuestion)
	v.SetDefault("verbose", false)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.output", defaultLogOutput)
	v.SetDefault("multiply.input", defaultMultiplyInput)
	v.SetDefault("multiply.output", defaultMultiplyOutput)
	v.SetDefault("multiply.times", defaultMultiplyTimes)

	flags := flag.NewFlagSet(command, flag.ContinueOnError)
	flags.SortFlags = false
	flags.StringP("config", "c", defaultConfigFile, "JSON configuration file")
	flags.StringP("log.level", "l", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.StringP("log.output", "o", defaultLogOutput, "log output (stdout, stderr or filepath)")
	switch command {
	case cmdCompare:
		flags.StringP("prooffile", "p", "", "decryption proof document")
		flags.StringP("mixedfile", "m", "", "mixer output document")
		flags.String("group", defaultGroup, "district group key in the mixer output")
		flags.String("question", defaultQuestion, "question key inside every district")
		flags.BoolP("verbose", "v", false, "print counts and the difference to stderr")
	case cmdMultiply:
		flags.StringP("multiply.input", "i", defaultMultiplyInput, "proof file to multiply")
		flags.StringP("multiply.output", "w", defaultMultiplyOutput, "file to write")
		flags.IntP("multiply.times", "n", defaultMultiplyTimes, "number of copies of the proof body")
	}
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mixcheck %s [flags]\n\nFlags:\n", command)
		flags.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEvery flag can also be set with a %s_ environment variable,\n", envPrefix)
		fmt.Fprintf(os.Stderr, "  dots replaced by underscores. For example %s_PROOFFILE or %s_LOG_LEVEL\n", envPrefix, envPrefix)
	}
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", flags.Arg(0))
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("error binding flags: %w", err)
	}

	configFile := v.GetString("config")
	_, envConfig := os.LookupEnv(envPrefix + "_CONFIG")
	explicit := flags.Changed("config") || envConfig
	v.SetConfigFile(configFile)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		// only a config file asked for explicitly has to exist
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			log.Debugw("no config file, using flags and environment", "file", configFile)
		} else {
			return nil, fmt.Errorf("error reading config %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateCompare() error {
	if c.ProofFile == "" {
		return fmt.Errorf("%w: prooffile", ErrMissingPath)
	}
	if c.MixedFile == "" {
		return fmt.Errorf("%w: mixedfile", ErrMissingPath)
	}
	if c.Group == "" || c.Question == "" {
		return errors.New("group and question keys must not be empty")
	}
	return nil
}

func (c *Config) validateMultiply() error {
	if c.Multiply.Input == "" {
		return fmt.Errorf("%w: multiply.input", ErrMissingPath)
	}
	if c.Multiply.Output == "" {
		return fmt.Errorf("%w: multiply.output", ErrMissingPath)
	}
	if c.Multiply.Times < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidTimes, c.Multiply.Times)
	}
	return nil
}

// String returns a string representation of the Config instance
func (c *Config) String() string {
	return fmt.Sprintf("Config{ProofFile:%s MixedFile:%s Group:%s Question:%s Verbose:%t "+
		"LogLevel:%s LogOutput:%s MultiplyInput:%s MultiplyOutput:%s MultiplyTimes:%d}",
		c.ProofFile, c.MixedFile, c.Group, c.Question, c.Verbose,
		c.Log.Level, c.Log.Output, c.Multiply.Input, c.Multiply.Output, c.Multiply.Times)
}
