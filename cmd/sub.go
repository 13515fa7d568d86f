package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hlindberg/embedded-mqtt/internal/platform"
	ioadapter "github.com/hlindberg/embedded-mqtt/internal/transport"
	"github.com/hlindberg/embedded-mqtt/mqtt"
)

var subscribeCmd = &cobra.Command{
	Use:   "sub",
	Short: "Subscribe to an MQTT topic filter and print delivered messages",
	Run: func(cmd *cobra.Command, args []string) {
		s := &subscriber{}
		s.run()
	},
	Args: func(cmd *cobra.Command, args []string) error {
		if SubQoS < 0 || SubQoS > 2 {
			return fmt.Errorf("--qos must be between 0 and 2, got %d", SubQoS)
		}
		if SubTopic == "" {
			return fmt.Errorf("--topic is required")
		}
		return nil
	},
}

type subscriber struct {
	session *mqtt.Session
	conn    net.Conn
}

func (s *subscriber) run() {
	cfg, err := loadBrokerConfig(ConfigFile)
	if err != nil {
		fatal(err)
	}
	if MQTTBroker != "" {
		cfg.Broker = MQTTBroker
	}

	conn, err := net.DialTimeout("tcp", cfg.Broker, time.Duration(cfg.CommandTimeoutMs)*time.Millisecond)
	if err != nil {
		fatal(fmt.Errorf("dialing %s: %w", cfg.Broker, err))
	}
	s.conn = conn
	defer s.conn.Close()

	s.session = mqtt.NewSession()
	s.session.Init(
		ioadapter.NewConn(conn),
		platform.NewMutex(),
		func() mqtt.Timer { return platform.NewTimer() },
		time.Duration(cfg.CommandTimeoutMs)*time.Millisecond,
		make([]byte, cfg.SendBufferBytes),
		make([]byte, cfg.RecvBufferBytes),
	)
	s.session.SetMessageHandler(func(topic string, payload []byte) {
		fmt.Printf("%s %s\n", topic, string(payload))
	})

	clientID := MQTTClientName
	if clientID == "" {
		clientID = mqtt.RandomClientID()
		log.Infof("using generated client ID %s", clientID)
	}

	rc, err := s.session.Connect(mqtt.ClientID(clientID), mqtt.CleanSession(true), mqtt.KeepAliveSeconds(cfg.KeepAliveSeconds))
	if err != nil {
		fatal(fmt.Errorf("connect: %w", err))
	}
	if rc != 0 {
		fatal(fmt.Errorf("broker refused CONNECT, return code %d", rc))
	}

	granted, err := s.session.Subscribe(SubTopic, byte(SubQoS))
	if err != nil {
		fatal(fmt.Errorf("subscribe %s: %w", SubTopic, err))
	}
	log.Infof("subscribed to %s, granted qos=%d", SubTopic, granted)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		<-sigc
		close(done)
	}()

	for {
		select {
		case <-done:
			if err := s.session.Disconnect(); err != nil {
				log.Warnf("disconnect: %v", err)
			}
			return
		default:
		}
		if err := s.session.Yield(time.Second); err != nil {
			log.Warnf("connection lost: %v", err)
			return
		}
	}
}

// SubTopic is the MQTT topic filter to subscribe to
var SubTopic string

// SubQoS is the quality of service to subscribe at
var SubQoS int

func init() {
	RootCmd.AddCommand(subscribeCmd)
	flags := subscribeCmd.Flags()

	flags.StringVarP(&SubTopic, "topic", "t", "", "the MQTT topic filter to subscribe to")
	flags.IntVarP(&SubQoS, "qos", "q", 0, "quality of service 0-2")
}
