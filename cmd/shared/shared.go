// Package shared provides the CLI flag definitions, parsers and signal
// handling used across securesock's commands.
package shared

import (
	"strings"

	"github.com/urfave/cli/v3"
)

const (
	categoryCommon = "common"
	categorySSL    = "ssl"
	categoryServer = "server"
)

// ConfigFlag is the name of the flag pointing to a YAML configuration file.
const ConfigFlag = "config"

// VerboseFlag is the name of the flag to enable verbose logging.
const VerboseFlag = "verbose"

// SSLFlag is the name of the flag to enable TLS.
const SSLFlag = "ssl"

// CertFlag is the name of the flag for the certificate file.
const CertFlag = "cert"

// KeyFlag is the name of the flag for the private key file.
const KeyFlag = "key"

// CAFlag is the name of the flag for the root certificate file.
const CAFlag = "ca"

// CRLFlag is the name of the flag for the certificate revocation list.
const CRLFlag = "crl"

// CiphersFlag is the name of the flag restricting TLS 1.2 cipher suites.
const CiphersFlag = "ciphers"

// CurveFlag is the name of the flag selecting the ECDH curve.
const CurveFlag = "ecdh-curve"

// MinProtocolFlag is the name of the flag for the minimum TLS version.
const MinProtocolFlag = "min-protocol"

// NoBlockFlag is the name of the flag that makes replies non-blocking.
const NoBlockFlag = "noblock"

// MaxConnectionsFlag is the name of the flag limiting concurrent clients.
const MaxConnectionsFlag = "max-connections"

// LogFileFlag is the name of the flag for the session capture file.
const LogFileFlag = "log"

// SupervisorFlag is the name of the flag selecting supervisor detection.
const SupervisorFlag = "supervisor"

// TimeoutFlag is the name of the flag for the connect timeout in milliseconds.
const TimeoutFlag = "timeout"

// InsecureFlag is the name of the flag that skips server certificate
// verification on the client.
const InsecureFlag = "insecure"

// ServerNameFlag is the name of the flag overriding the expected server name.
const ServerNameFlag = "server-name"

// GetBaseDescription returns the description text for transport
// strings used in CLI commands.
func GetBaseDescription() string {
	return strings.Join([]string{
		"Specify transport like this: tcp://127.0.0.1:5433",
		"You can omit the host when serving to bind to all interfaces.",
	}, "\n")
}

// GetArgsUsage returns the arguments usage string for CLI commands.
func GetArgsUsage() string {
	return "transport"
}

// GetCommonFlags returns the flags shared by all network commands.
func GetCommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:     VerboseFlag,
			Aliases:  []string{"v"},
			Usage:    "Verbose logging",
			Category: categoryCommon,
		},
		&cli.BoolFlag{
			Name:     SSLFlag,
			Aliases:  []string{"s"},
			Usage:    "Use TLS encryption",
			Category: categoryCommon,
		},
		&cli.StringFlag{
			Name:     CertFlag,
			Usage:    "Certificate file in PEM format",
			Category: categorySSL,
		},
		&cli.StringFlag{
			Name:     KeyFlag,
			Aliases:  []string{"k"},
			Usage:    "Private key file in PEM format",
			Category: categorySSL,
		},
		&cli.StringFlag{
			Name:     CAFlag,
			Usage:    "Root certificate file used to verify the peer",
			Category: categorySSL,
		},
	}
}

// GetServeFlags returns the flags specific to the serve command.
func GetServeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     ConfigFlag,
			Aliases:  []string{"c"},
			Usage:    "YAML configuration file, flags take precedence",
			Category: categoryServer,
		},
		&cli.StringFlag{
			Name:     CRLFlag,
			Usage:    "Certificate revocation list for client certificates",
			Category: categorySSL,
		},
		&cli.StringFlag{
			Name:     CiphersFlag,
			Usage:    "Allowed TLS 1.2 cipher suites, separated by ':'",
			Category: categorySSL,
		},
		&cli.StringFlag{
			Name:     CurveFlag,
			Usage:    "Curve used for ECDH key exchange",
			Category: categorySSL,
		},
		&cli.StringFlag{
			Name:     MinProtocolFlag,
			Usage:    "Minimum TLS version (TLSv1.2|TLSv1.3)",
			Category: categorySSL,
		},
		&cli.BoolFlag{
			Name:     NoBlockFlag,
			Usage:    "Send replies in non-blocking mode",
			Category: categoryServer,
		},
		&cli.IntFlag{
			Name:     MaxConnectionsFlag,
			Aliases:  []string{"m"},
			Usage:    "Maximum number of concurrent clients",
			Category: categoryServer,
		},
		&cli.StringFlag{
			Name:     LogFileFlag,
			Aliases:  []string{"l"},
			Usage:    "Capture all session traffic to this file",
			Category: categoryServer,
		},
		&cli.StringFlag{
			Name:     SupervisorFlag,
			Usage:    "Supervisor detection (none|parent|pipe)",
			Category: categoryServer,
		},
	}
}

// GetConnectFlags returns the flags specific to the connect command.
func GetConnectFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:     TimeoutFlag,
			Aliases:  []string{"t"},
			Usage:    "Connect and handshake timeout in milliseconds",
			Category: categoryCommon,
			Value:    10000,
		},
		&cli.BoolFlag{
			Name:     InsecureFlag,
			Usage:    "Do not verify the server certificate",
			Category: categorySSL,
		},
		&cli.StringFlag{
			Name:     ServerNameFlag,
			Usage:    "Expected server name, defaults to the host",
			Category: categorySSL,
		},
	}
}
