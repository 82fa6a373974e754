package devicepoll

import (
	"fmt"
	"time"

	"golang.org/x/crypto/ssh"
)

// Fetcher captures running configurations from live devices over SSH.
type Fetcher struct {
	username string
	password string
	port     int
	command  string
	timeout  time.Duration
}

func NewFetcher(username, password string, port int, command string, timeout time.Duration) *Fetcher {
	if command == "" {
		command = "show running-config"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		username: username,
		password: password,
		port:     port,
		command:  command,
		timeout:  timeout,
	}
}

// FetchConfiguration dials the device, runs the show command in one session
// and returns its output.
func (f *Fetcher) FetchConfiguration(address string) (string, error) {
	config := &ssh.ClientConfig{
		User: f.username,
		Auth: []ssh.AuthMethod{
			ssh.Password(f.password),
		},
		// Network devices rotate host keys too often to pin them here.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         f.timeout,
	}

	addr := fmt.Sprintf("%s:%d", address, f.port)
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return "", fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session on %s: %w", addr, err)
	}
	defer session.Close()

	out, err := session.Output(f.command)
	if err != nil {
		return "", fmt.Errorf("%q on %s: %w", f.command, addr, err)
	}
	return string(out), nil
}
