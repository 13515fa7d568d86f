package cmd

import (
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/hlindberg/embedded-mqtt/internal/logging"
)

// BrokerConfig is the on-disk, YAML-encoded form of everything pub/sub
// need to reach a broker without repeating flags on every invocation.
// Defaults are loaded into the struct before unmarshalling, not via struct
// tags, so fields an absent or partial file omits keep their defaults; a
// field the file sets explicitly, even to zero, takes the file's value.
type BrokerConfig struct {
	Broker           string `yaml:"broker"`
	ClientID         string `yaml:"client_id"`
	KeepAliveSeconds int    `yaml:"keep_alive_seconds"`
	CommandTimeoutMs int    `yaml:"command_timeout_ms"`
	SendBufferBytes  int    `yaml:"send_buffer_bytes"`
	RecvBufferBytes  int    `yaml:"recv_buffer_bytes"`
}

func defaultBrokerConfig() BrokerConfig {
	return BrokerConfig{
		Broker:           "localhost:1883",
		CommandTimeoutMs: 5000,
		KeepAliveSeconds: 60,
		SendBufferBytes:  4096,
		RecvBufferBytes:  4096,
	}
}

// loadBrokerConfig reads path (defaulting to ~/.embedded-mqtt.yaml when
// path is empty), applying defaultBrokerConfig for anything the file
// does not set. A missing file at the default path is not an error — the
// caller gets pure defaults, overridable by flags.
func loadBrokerConfig(path string) (BrokerConfig, error) {
	cfg := defaultBrokerConfig()

	if path == "" {
		home, err := homedir.Dir()
		if err != nil {
			return cfg, err
		}
		path = filepath.Join(home, ".embedded-mqtt.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("no config file at %s, using defaults", path)
			return cfg, nil
		}
		return cfg, logging.LoggedErrorf("reading config %s: %w", path, err)
	}

	loaded := defaultBrokerConfig()
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return cfg, logging.LoggedErrorf("parsing config %s: %w", path, err)
	}
	return loaded, nil
}
