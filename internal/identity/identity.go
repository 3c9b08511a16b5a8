// ABOUTME: Resolves the current user id used to scope todos and activity history
// ABOUTME: Charm account ids when linked, a configured id otherwise

package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/charm/client"
)

// ErrNotLinked is returned when no provider can name the current user.
var ErrNotLinked = errors.New("no user identity available")

// Provider names the signed-in user.
type Provider interface {
	UserID(ctx context.Context) (string, error)
}

// Static always answers with a fixed id.
type Static string

func (s Static) UserID(ctx context.Context) (string, error) {
	id := strings.TrimSpace(string(s))
	if id == "" {
		return "", ErrNotLinked
	}
	return id, nil
}

// Charm asks the charm account linked to this machine's SSH key.
type Charm struct {
	// newClient is swapped in tests.
	newClient func() (accountIDer, error)
}

type accountIDer interface {
	ID() (string, error)
}

func NewCharm() *Charm {
	return &Charm{newClient: func() (accountIDer, error) {
		cc, err := client.NewClientWithDefaults()
		if err != nil {
			return nil, err
		}
		return cc, nil
	}}
}

func (c *Charm) UserID(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cc, err := c.newClient()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotLinked, err)
	}
	id, err := cc.ID()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotLinked, err)
	}
	if id == "" {
		return "", ErrNotLinked
	}
	return id, nil
}

// Fallback tries each provider in order and returns the first id found.
type Fallback []Provider

func (f Fallback) UserID(ctx context.Context) (string, error) {
	var errs []error
	for _, p := range f {
		id, err := p.UserID(ctx)
		if err == nil {
			return id, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", ErrNotLinked
	}
	return "", errors.Join(append([]error{ErrNotLinked}, errs...)...)
}
