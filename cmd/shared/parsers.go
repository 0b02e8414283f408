package shared

import (
	"fmt"
	"regexp"
	"strconv"
)

var transportRe = regexp.MustCompile(`^tcp://([^:]*):(\d+)$`)

// ParseTransport parses a transport string in the format "tcp://host:port".
// The host can be empty or "*" to bind to all interfaces.
func ParseTransport(s string) (host string, port int, err error) {
	matches := transportRe.FindStringSubmatch(s)
	if len(matches) != 3 {
		return "", 0, parsingError(s)
	}

	host = matches[1]
	if host == "*" {
		host = ""
	}

	port, err = strconv.Atoi(matches[2])
	if err != nil || port < 1 || port > 65535 {
		return "", 0, parsingError(s)
	}

	return host, port, nil
}

func parsingError(s string) error {
	return fmt.Errorf("parsing %s: format should be 'tcp://host:port'", s)
}
