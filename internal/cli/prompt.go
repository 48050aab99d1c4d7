package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// promptLine writes label to w and reads one trimmed line from r. Input
// ending without a newline is accepted.
func promptLine(r io.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprintf(w, "%s: ", label)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}
