package config

import (
	"fmt"
	"net"
	"strconv"
)

// CheckPortAvailable reports whether a TCP listener can be bound on host:port.
// The listener is closed immediately.
func CheckPortAvailable(host string, port int) bool {
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}

// FindAvailablePort scans upward from start and returns the first free port.
func FindAvailablePort(host string, start, attempts int) (int, error) {
	for port := start; port < start+attempts && port <= 65535; port++ {
		if CheckPortAvailable(host, port) {
			return port, nil
		}
	}
	return 0, fmt.Errorf("no free port on %s in [%d, %d)", host, start, start+attempts)
}
