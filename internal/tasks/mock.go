package tasks

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bio-labs/bio/internal/branding"
	"github.com/bio-labs/bio/internal/scaffold"
)

const (
	// MockTask is the scaffold task started by Mock.
	MockTask = "mock"
	// DefaultMockPort is used when no port is given.
	DefaultMockPort = 7000
)

// ErrInvalidPort is returned for ports outside 1-65535.
var ErrInvalidPort = errors.New("invalid port")

// ParsePort parses a port argument. An empty string selects DefaultMockPort.
func ParsePort(s string) (int, error) {
	if s == "" {
		return DefaultMockPort, nil
	}
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("%w %q: must be a number between 1 and 65535", ErrInvalidPort, s)
	}
	return port, nil
}

// Mock starts the scaffold's mock task with the port exported as
// BIO_MOCK_PORT. It runs until the task exits or ctx is canceled.
func (f *Facade) Mock(ctx context.Context, inst *scaffold.Installed, port int) (*Outcome, error) {
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("%w %d", ErrInvalidPort, port)
	}
	f.logger().Info("starting mock server", "port", port)
	return f.Run(ctx, inst, MockTask, Options{
		Env: map[string]string{branding.EnvVar("MOCK_PORT"): strconv.Itoa(port)},
	})
}
