package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword reads from the terminal without echo; tests replace it
var readPassword = term.ReadPassword

// readLine prints prompt to w and reads one trimmed line. A final line
// without a newline is returned as is.
func readLine(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if prompt != "" {
		if _, err := fmt.Fprint(w, prompt); err != nil {
			return "", err
		}
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password, without echo when stdin is a terminal
// and as a plain line otherwise
func promptPassword(reader *bufio.Reader, w io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return readLine(reader, "Password: ", w)
	}

	if _, err := fmt.Fprint(w, "Password: "); err != nil {
		return "", err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
