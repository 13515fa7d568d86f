package cmd

import (
	"encoding/csv"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hlindberg/embedded-mqtt/internal/platform"
	ioadapter "github.com/hlindberg/embedded-mqtt/internal/transport"
	"github.com/hlindberg/embedded-mqtt/mqtt"
)

var publishCmd = &cobra.Command{
	Use:   "pub",
	Short: "Publish one or more MQTT messages",
	Run: func(cmd *cobra.Command, args []string) {
		p := &publisher{}
		p.run()
	},
	Args: func(cmd *cobra.Command, args []string) error {
		if QoS < 0 || QoS > 2 {
			return fmt.Errorf("--qos must be between 0 and 2, got %d", QoS)
		}
		if WillQoS < 0 || WillQoS > 2 {
			return fmt.Errorf("--wqos must be between 0 and 2, got %d", WillQoS)
		}
		if FileName == "" && Topic == "" {
			return fmt.Errorf("--topic is required unless --file is given")
		}
		return nil
	},
}

type publisher struct {
	session *mqtt.Session
	conn    net.Conn
}

func (p *publisher) dial(cfg BrokerConfig) net.Conn {
	conn, err := net.DialTimeout("tcp", cfg.Broker, time.Duration(cfg.CommandTimeoutMs)*time.Millisecond)
	if err != nil {
		fatal(fmt.Errorf("dialing %s: %w", cfg.Broker, err))
	}
	return conn
}

func (p *publisher) newSession(cfg BrokerConfig, conn net.Conn) *mqtt.Session {
	session := mqtt.NewSession()
	session.Init(
		ioadapter.NewConn(conn),
		platform.NewMutex(),
		func() mqtt.Timer { return platform.NewTimer() },
		time.Duration(cfg.CommandTimeoutMs)*time.Millisecond,
		make([]byte, cfg.SendBufferBytes),
		make([]byte, cfg.RecvBufferBytes),
	)
	return session
}

func (p *publisher) connect(cfg BrokerConfig) {
	clientID := MQTTClientName
	if clientID == "" {
		clientID = mqtt.RandomClientID()
		log.Infof("using generated client ID %s", clientID)
	}

	opts := []mqtt.ConnectOption{
		mqtt.ClientID(clientID),
		mqtt.CleanSession(true),
		mqtt.KeepAliveSeconds(cfg.KeepAliveSeconds),
	}
	if WillTopic != "" {
		opts = append(opts,
			mqtt.WillTopic(WillTopic),
			mqtt.WillMessage([]byte(WillMessage)),
			mqtt.WillQoS(byte(WillQoS)),
			mqtt.WillRetain(WillRetain),
		)
	}

	rc, err := p.session.Connect(opts...)
	if err != nil {
		fatal(fmt.Errorf("connect: %w", err))
	}
	if rc != 0 {
		fatal(fmt.Errorf("broker refused CONNECT, return code %d", rc))
	}
}

// correlationID mints a trace identifier for a single publish call's log
// lines. It is never put on the wire — the wire format has no header for
// it — it only ties together the "publishing" and "published" log lines
// a human skims when a CSV batch is in flight.
func correlationID() string {
	return uuid.New().String()
}

func (p *publisher) publishMessage() {
	cid := correlationID()
	log.Debugf("[%s] publishing to %s", cid, Topic)
	if err := p.session.Publish(Topic, []byte(Message), byte(QoS), Retain); err != nil {
		fatal(fmt.Errorf("publish %s: %w", Topic, err))
	}
	log.Debugf("[%s] published", cid)
}

func (p *publisher) publishFromFile() {
	f, err := os.Open(FileName)
	if err != nil {
		fatal(fmt.Errorf("cannot open %s: %w", FileName, err))
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		fatal(fmt.Errorf("reading %s: %w", FileName, err))
	}
	for _, r := range rows {
		cid := correlationID()
		log.Debugf("[%s] publishing to %s", cid, r[0])
		if err := p.session.Publish(r[0], []byte(r[1]), byte(QoS), false); err != nil {
			fatal(fmt.Errorf("publish %s: %w", r[0], err))
		}
		log.Debugf("[%s] published", cid)
	}
}

func (p *publisher) run() {
	cfg, err := loadBrokerConfig(ConfigFile)
	if err != nil {
		fatal(err)
	}
	if MQTTBroker != "" {
		cfg.Broker = MQTTBroker
	}
	if KeepAliveSeconds > 0 {
		cfg.KeepAliveSeconds = KeepAliveSeconds
	}

	p.conn = p.dial(cfg)
	defer p.conn.Close()
	p.session = p.newSession(cfg, p.conn)

	p.connect(cfg)
	if FileName == "" {
		p.publishMessage()
	} else {
		p.publishFromFile()
	}

	if err := p.session.Disconnect(); err != nil {
		log.Warnf("disconnect: %v", err)
	}
}

// MQTTBroker is the MQTT host:port to dial. Empty means "use the value
// from the broker config file".
var MQTTBroker string

// MQTTClientName is the MQTT client name - a short UUID by default
var MQTTClientName string

// Topic is the MQTT topic to publish to
var Topic string

// Message is the MQTT message text to publish
var Message string

// KeepAliveSeconds is the MQTT number of seconds to keep a connection
// alive. Zero means "use the value from the broker config file".
var KeepAliveSeconds int

// QoS is the MQTT quality of service to publish at
var QoS int

// FileName is the name of a file to read instead of using --topic and --message
var FileName string

// Retain indicates if the published message should be retained
var Retain bool

// WillMessage is the MQTT message text to send on a dirty disconnect
var WillMessage string

// WillTopic is the topic for a will message to send on a dirty disconnect
var WillTopic string

// WillQoS is the QoS for delivery of the WILL message
var WillQoS int

// WillRetain is the retain flag for the WILL message
var WillRetain bool

func init() {
	RootCmd.AddCommand(publishCmd)
	flags := publishCmd.Flags()

	flags.StringVarP(&FileName, "file", "f", "", "file with CSV <topic,message> lines to publish")
	flags.StringVarP(&Message, "message", "m", "", "the message to send")
	flags.StringVarP(&Topic, "topic", "t", "", "the MQTT topic to send message to")
	flags.IntVarP(&QoS, "qos", "q", 0, "quality of service 0-2")
	flags.BoolVarP(&Retain, "retain", "r", false, "if message should be retained")
	flags.StringVarP(&WillMessage, "wmessage", "", "", "the will message to send on a dirty disconnect")
	flags.IntVarP(&WillQoS, "wqos", "", 0, "quality of service 0-2 for the WILL message")
	flags.BoolVarP(&WillRetain, "wretain", "", false, "if the WILL message should be retained")
	flags.StringVarP(&WillTopic, "wtopic", "", "", "the topic for a will message sent on a dirty disconnect")
}
