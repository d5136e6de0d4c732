package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags from the process arguments.
//
// Flags:
//
//	-version application version
//	-a control API address in format [host]:[port]
//	-server-timeout control API request timeout (e.g., "10s")
//	-server backend base URL
//	-health-path backend health probe path
//	-d database DSN
//	-credentials credential file path
//	-c/-config json file path with configs
//	-catalog yaml resource catalog path
//	-log log file path
//	-request-timeout outbound request timeout (e.g., "30s", "1m")
//	-sync-interval periodic sync interval (e.g., "1m")
//	-probe-interval connectivity probe interval (e.g., "10s")
//	-tracing enable tracing
//	-mirror-webhook URL notified after every confirmed CREATE
func ParseFlags() (*StructuredConfig, error) {
	return parseFlags(os.Args[1:])
}

func parseFlags(args []string) (*StructuredConfig, error) {
	var version string
	var controlAddress NetAddress
	var controlTimeout time.Duration
	var backendAddress string
	var healthPath string
	var databaseDSN string
	var credentialsPath string
	var jsonConfigPath string
	var catalogPath string
	var logPath string
	var requestTimeout time.Duration
	var syncInterval time.Duration
	var probeInterval time.Duration
	var tracing bool
	var mirrorWebhook string

	fs := flag.NewFlagSet("outbox", flag.ContinueOnError)
	fs.StringVar(&version, "version", "", "Application version")
	fs.Var(&controlAddress, "a", "Control API net address host:port")
	fs.DurationVar(&controlTimeout, "server-timeout", 0, "Control API request timeout (e.g., 10s)")
	fs.StringVar(&backendAddress, "server", "", "Backend base URL")
	fs.StringVar(&healthPath, "health-path", "", "Backend health probe path")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&credentialsPath, "credentials", "", "Credential file path")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&catalogPath, "catalog", "", "YAML resource catalog path")
	fs.StringVar(&logPath, "log", "", "Log file path")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.DurationVar(&syncInterval, "sync-interval", 0, "Periodic sync interval (e.g., 1m)")
	fs.DurationVar(&probeInterval, "probe-interval", 0, "Connectivity probe interval (e.g., 10s)")
	fs.BoolVar(&tracing, "tracing", false, "Enable tracing")
	fs.StringVar(&mirrorWebhook, "mirror-webhook", "", "URL notified after every confirmed CREATE")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &StructuredConfig{
		App: App{
			Version: version,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
			CredentialsPath: credentialsPath,
		},
		Server: Server{
			HTTPAddress:    controlAddress.String(),
			RequestTimeout: controlTimeout,
		},
		Adapter: Adapter{
			HTTPAddress:    backendAddress,
			RequestTimeout: requestTimeout,
			HealthPath:     healthPath,
		},
		Workers: Workers{
			SyncInterval:  syncInterval,
			ProbeInterval: probeInterval,
		},
		Log:          Log{Path: logPath},
		Tracing:      Tracing{Enabled: tracing},
		Mirror:       Mirror{WebhookURL: mirrorWebhook},
		CatalogPath:  catalogPath,
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
