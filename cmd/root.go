package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hlindberg/embedded-mqtt/internal/logging"
)

// RootCmd is the base command; pub and sub attach themselves to it from
// their own init() functions, the way the teacher's publishCmd does.
var RootCmd = &cobra.Command{
	Use:   "embedded-mqtt",
	Short: "A minimal MQTT 3.1.1 client for driving a broker from the command line",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		LogLevel = viper.GetString("loglevel")
		ConfigFile = viper.GetString("config")
		logging.SetLevelFromName(LogLevel)
	},
}

// LogLevel is the logrus level name to run at.
var LogLevel string

// ConfigFile is an explicit path to a broker config YAML file. Empty
// means "use ~/.embedded-mqtt.yaml if present, defaults otherwise".
var ConfigFile string

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVarP(&LogLevel, "loglevel", "l", "warn", "logging level: debug, info, warn, error")
	flags.StringVarP(&ConfigFile, "config", "", "", "path to a broker config YAML file (default ~/.embedded-mqtt.yaml)")
	flags.StringVarP(&MQTTBroker, "broker", "b", "", "the MQTT broker host:port to connect to")
	flags.StringVarP(&MQTTClientName, "client", "c", "", "the MQTT client name to use - default is a short UUID")
	flags.IntVarP(&KeepAliveSeconds, "keep_alive", "", 0, "seconds to keep a connection alive")

	// viper layers the loglevel and config flags over EMBEDDED_MQTT_*
	// environment variables over the flag defaults, and PersistentPreRun
	// reads both back through viper. The broker config file itself is read
	// explicitly in loadBrokerConfig rather than through viper's own file
	// reader, since BrokerConfig's
	// defaulting rules (zero-value fill-in) don't map onto viper's
	// SetDefault per-key model cleanly.
	viper.SetEnvPrefix("EMBEDDED_MQTT")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("loglevel", flags.Lookup("loglevel"))
	_ = viper.BindPFlag("config", flags.Lookup("config"))
}

// Execute runs the command tree, exiting the process with status 1 on
// error the way a standalone CLI binary is expected to.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// fatal logs err at Error level and panics, mirroring the teacher's
// cmd/pub.go convention of panicking on unrecoverable CLI errors. Nothing
// recovers the panic, so the process exits with a stack trace.
func fatal(err error) {
	log.Error(err)
	panic(err)
}
