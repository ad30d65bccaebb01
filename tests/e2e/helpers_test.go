package e2e

import (
	"testing"
	"time"

	"github.com/neotask/neotask/internal/client"
	"github.com/neotask/neotask/internal/neotest"
	"github.com/neotask/neotask/internal/poller"
)

const (
	testOrg   = "acme"
	testToken = "pul-test-token"
)

// env is an in-process API double plus a real client pointed at it.
type env struct {
	server *neotest.Server
	client *client.Client
	url    string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	server := neotest.New(testToken)
	url := server.Start(t)
	return &env{
		server: server,
		client: client.NewClient(url, testToken),
		url:    url,
	}
}

// newPoller builds a fast poller suitable for tests.
func (e *env) newPoller(opts poller.Options) *poller.Poller {
	if opts.Interval == 0 {
		opts.Interval = 5 * time.Millisecond
	}
	if opts.MaxWait == 0 {
		opts.MaxWait = 2 * time.Second
	}
	return poller.New(e.client, testOrg, opts)
}
