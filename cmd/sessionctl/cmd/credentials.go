package cmd

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/dmitrymomot/sessionkit/pkg/identity"
)

var (
	credEmail    string
	credPassword string
)

// readCredentials takes the password from the flag or, when empty, from the
// first line of r.
func readCredentials(email, password string, r io.Reader) (identity.Credentials, error) {
	if password == "" && r != nil {
		line, err := bufio.NewReader(r).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return identity.Credentials{}, err
		}
		password = strings.TrimRight(line, "\r\n")
	}
	return identity.Credentials{Email: strings.TrimSpace(email), Password: password}, nil
}
