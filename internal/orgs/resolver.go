// Package orgs resolves the organization a command acts on. Detection is
// modeled as an injected Resolver capability so the subprocess-based
// implementation can be swapped out in tests.
package orgs

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/neotask/neotask/internal/domain"
)

// ErrNoDefaultOrg indicates no default organization could be detected.
var ErrNoDefaultOrg = errors.New("no default organization configured")

// DefaultCommandTimeout bounds the org detection subprocess.
const DefaultCommandTimeout = 10 * time.Second

// Resolver detects the default organization for the current environment.
type Resolver interface {
	DefaultOrg(ctx context.Context) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context) (string, error)

func (f ResolverFunc) DefaultOrg(ctx context.Context) (string, error) {
	return f(ctx)
}

// CommandResolver shells out to the Pulumi CLI for the default org.
type CommandResolver struct {
	// Timeout bounds the subprocess; zero selects the default.
	Timeout time.Duration
}

// DefaultOrg runs `pulumi org get-default` and returns its trimmed
// output. Output that names a local backend rather than a cloud org is
// rejected.
func (r *CommandResolver) DefaultOrg(ctx context.Context) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "pulumi", "org", "get-default").Output()
	if err != nil {
		return "", ErrNoDefaultOrg
	}

	org := strings.TrimSpace(string(out))
	if org == "" || IsLocalBackend(org) {
		return "", ErrNoDefaultOrg
	}
	return org, nil
}

// IsLocalBackend reports whether the detected value names a local state
// backend (a filesystem path) instead of a cloud organization.
func IsLocalBackend(org string) bool {
	return strings.HasPrefix(org, "/") || strings.HasPrefix(org, "file://")
}

// Resolve applies the org precedence rules: explicit flag, configured
// default, then auto-detection. All three failing is a fatal
// configuration error.
func Resolve(ctx context.Context, flagOrg, configOrg string, resolver Resolver) (string, error) {
	if flagOrg != "" {
		return flagOrg, nil
	}
	if configOrg != "" {
		return configOrg, nil
	}
	if resolver != nil {
		if org, err := resolver.DefaultOrg(ctx); err == nil {
			return org, nil
		}
	}
	return "", domain.NewOrgUnresolvedError()
}
