package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/womat/debug"
	"gopkg.in/yaml.v2"
)

// Config holds the application configuration.
// Config defines the struct of global config and the struct of the configuration file
type Config struct {
	// Source selects the edge source: "gpio" or "file".
	Source string `yaml:"source"`
	// SampleRate is the sample clock of the edge source (samples/second).
	// Decoding cannot start without it.
	SampleRate int `yaml:"samplerate"`
	// TargetData is the expected payload D[0-3], big-endian interpreted.
	// A non-zero value enables pass/fail statistics.
	TargetData uint32 `yaml:"target_data"`

	Gpio          int           `yaml:"gpio"`
	Driver        string        `yaml:"driver"`
	Terminator    string        `yaml:"terminator"`
	BounceTimeInt int           `yaml:"bouncetime"`
	BounceTime    time.Duration `yaml:"-"`

	// CaptureFile is the edge capture replayed when Source is "file".
	CaptureFile string `yaml:"capturefile"`

	Flag      FlagConfig      `yaml:"-"`
	Debug     DebugConfig     `yaml:"debug"`
	Webserver WebserverConfig `yaml:"webserver"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
}

// FlagConfig defines the configured flags (parameters)
type FlagConfig struct {
	LogLevel   string
	ConfigFile string
}

// WebserverConfig defines the struct of the webserver and webservice configuration and configuration file
type WebserverConfig struct {
	URL         string          `yaml:"url"`
	Webservices map[string]bool `yaml:"webservices"`
}

// MQTTConfig defines the struct of the mqtt client configuration and configuration file
type MQTTConfig struct {
	Connection string `yaml:"connection"`
	Topic      string `yaml:"topic"`
	Qos        byte   `yaml:"qos"`
	Retained   bool   `yaml:"retained"`
}

// DebugConfig defines the struct of the debug configuration and configuration file
type DebugConfig struct {
	File       io.WriteCloser `yaml:"-"`
	Flag       int            `yaml:"-"`
	FlagString string         `yaml:"flag"`
	FileString string         `yaml:"file"`
}

func NewConfig() *Config {
	return &Config{
		Source:        "gpio",
		SampleRate:    1000000,
		TargetData:    0,
		Gpio:          4,
		Driver:        "gpiod",
		Terminator:    "pullup",
		BounceTimeInt: 0,
		Flag:          FlagConfig{},
		Debug: DebugConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
		Webserver: WebserverConfig{
			URL: "http://0.0.0.0:4000",
			Webservices: map[string]bool{
				"version":     true,
				"health":      true,
				"data":        true,
				"stats":       true,
				"annotations": true,
				"metrics":     true,
			},
		},
		MQTT: MQTTConfig{
			Connection: "tcp://127.0.0.1:1883",
			Topic:      "/rc/packet",
			Qos:        0,
			Retained:   true,
		},
	}
}

func (c *Config) LoadConfig() error {
	if err := c.readConfigFile(); err != nil {
		return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
	}

	if c.Flag.LogLevel != "" {
		c.Debug.FlagString = c.Flag.LogLevel
	}
	if err := c.setDebugConfig(); err != nil {
		return fmt.Errorf("unable to open debug file %q: %w", c.Debug.FileString, err)
	}

	c.BounceTime = time.Duration(c.BounceTimeInt) * time.Millisecond

	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid samplerate %v: a positive sample rate is required to decode", c.SampleRate)
	}

	switch c.Source {
	case "gpio", "file":
	default:
		return fmt.Errorf("invalid source %q: must be gpio or file", c.Source)
	}

	return nil
}

func (c *Config) readConfigFile() error {
	file, err := os.Open(c.Flag.ConfigFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	if err = decoder.Decode(c); err != nil {
		return err
	}

	return nil
}

func (c *Config) setDebugConfig() (err error) {
	// defines Debug section of global.Config
	switch c.Debug.FlagString {
	case "trace", "full":
		c.Debug.Flag = debug.Full
	case "debug":
		c.Debug.Flag = debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	case "standard":
		c.Debug.Flag = debug.Standard
	}

	switch c.Debug.FileString {
	case "stderr":
		c.Debug.File = os.Stderr
	case "stdout":
		c.Debug.File = os.Stdout
	default:
		if c.Debug.File, err = os.OpenFile(c.Debug.FileString, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666); err != nil {
			return
		}
	}

	return
}
