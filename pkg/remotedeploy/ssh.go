// Package remotedeploy runs netfabctl on a remote host over SSH, for
// orchestrators that keep topology documents on a control host but
// want commit to execute on the host it actually describes.
package remotedeploy

import (
	"bytes"
	"fmt"
	"time"

	"golang.org/x/crypto/ssh"
)

// Target identifies the remote host and credentials to run against.
type Target struct {
	Host     string
	User     string
	Password string
	Port     int
}

// Run dials host over SSH and executes command, returning combined
// stdout+stderr. Host key verification is intentionally skipped —
// netfabctl targets lab and CI fleets reached by address, not
// long-lived production hosts with pinned keys; see
// ssh.InsecureIgnoreHostKey below.
func Run(target Target, command string) (string, error) {
	port := target.Port
	if port == 0 {
		port = 22
	}

	config := &ssh.ClientConfig{
		User: target.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(target.Password),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         30 * time.Second,
	}

	addr := fmt.Sprintf("%s:%d", target.Host, port)
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return "", fmt.Errorf("ssh dial %s@%s: %w", target.User, addr, err)
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("ssh session: %w", err)
	}
	defer session.Close()

	var out bytes.Buffer
	session.Stdout = &out
	session.Stderr = &out

	if err := session.Run(command); err != nil {
		return out.String(), fmt.Errorf("remote command failed: %w", err)
	}
	return out.String(), nil
}
