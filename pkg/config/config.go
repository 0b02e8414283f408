// Package config holds securesock's server configuration, its validation and
// the injectable dependencies used by tests.
package config

import (
	"fmt"

	"dominicbreuker/securesock/pkg/log"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultPort           = 5433
	DefaultMaxConnections = 100
	DefaultCertFile       = "server.crt"
	DefaultKeyFile        = "server.key"
)

// SupervisorMode selects how the server detects that its supervising
// parent process went away.
type SupervisorMode string

const (
	// SupervisorNone disables supervisor detection.
	SupervisorNone SupervisorMode = "none"
	// SupervisorParent watches the parent process id.
	SupervisorParent SupervisorMode = "parent"
	// SupervisorPipe watches a pipe inherited from the supervisor, whose
	// descriptor is passed in the SECURESOCK_SUPERVISOR_FD variable.
	SupervisorPipe SupervisorMode = "pipe"
)

// Protocol versions accepted for TLS.MinProtocolVersion.
const (
	TLSv12 = "TLSv1.2"
	TLSv13 = "TLSv1.3"
)

// Shared is the server configuration.
type Shared struct {
	Host           string         `yaml:"host"`
	Port           int            `yaml:"port"`
	SSL            bool           `yaml:"ssl"`
	NoBlock        bool           `yaml:"noblock"`
	Verbose        bool           `yaml:"verbose"`
	MaxConnections int            `yaml:"max_connections"`
	LogFile        string         `yaml:"log_file"`
	Supervisor     SupervisorMode `yaml:"supervisor"`
	TLS            TLS            `yaml:"tls"`

	Logger *log.Logger    `yaml:"-"`
	Deps   *Dependencies `yaml:"-"`
}

// TLS holds the secure transport settings. File paths are resolved relative
// to the working directory.
type TLS struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	CAFile   string `yaml:"ca_file"`
	CRLFile  string `yaml:"crl_file"`

	// Ciphers is a ':' or ',' separated list of Go cipher suite names.
	// Only consulted for TLS 1.2; TLS 1.3 suites are not configurable.
	Ciphers string `yaml:"ciphers"`

	// ECDHCurve names the preferred key exchange group, e.g. "prime256v1",
	// "P-384" or "X25519".
	ECDHCurve string `yaml:"ecdh_curve"`

	MinProtocolVersion string `yaml:"min_protocol_version"`
}

// ApplyDefaults fills unset fields. Certificate paths are only defaulted
// when SSL is enabled.
func (c *Shared) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.MaxConnections == 0 {
		c.MaxConnections = DefaultMaxConnections
	}
	if c.Supervisor == "" {
		c.Supervisor = SupervisorNone
	}
	if c.SSL {
		if c.TLS.CertFile == "" {
			c.TLS.CertFile = DefaultCertFile
		}
		if c.TLS.KeyFile == "" {
			c.TLS.KeyFile = DefaultKeyFile
		}
		if c.TLS.MinProtocolVersion == "" {
			c.TLS.MinProtocolVersion = TLSv12
		}
	}
}

// Validate ...
func (c *Shared) Validate() []error {
	var errors []error

	if err := validatePort(c.Port); err != nil {
		errors = append(errors, fmt.Errorf("'--port': %s", err))
	}

	if c.MaxConnections < 1 {
		errors = append(errors, fmt.Errorf("'--max-connections' must be at least 1"))
	}

	switch c.Supervisor {
	case "", SupervisorNone, SupervisorParent, SupervisorPipe:
	default:
		errors = append(errors, fmt.Errorf("'--supervisor' must be one of none|parent|pipe, got %q", c.Supervisor))
	}

	if !c.SSL {
		if c.TLS != (TLS{}) {
			errors = append(errors, fmt.Errorf("You must use '--ssl' to use TLS settings"))
		}
		return errors
	}

	errors = append(errors, c.TLS.validate()...)
	return errors
}

func (t *TLS) validate() []error {
	var errors []error

	if t.CertFile == "" {
		errors = append(errors, fmt.Errorf("'--cert' must not be empty"))
	}
	if t.KeyFile == "" {
		errors = append(errors, fmt.Errorf("'--key' must not be empty"))
	}

	switch t.MinProtocolVersion {
	case "", TLSv12, TLSv13:
	default:
		errors = append(errors, fmt.Errorf("'--min-protocol' must be %s or %s, got %q", TLSv12, TLSv13, t.MinProtocolVersion))
	}

	return errors
}
