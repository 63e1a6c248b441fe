package webui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jrsteele09/go-auth-client/oauthmodel"
)

// Console is a WebUI for hosts without a browser. It prints the authorization URI and reads the
// URL the browser was finally redirected to.
//
// A read abandoned by a canceled challenge stays blocked on the reader until a line arrives, and
// that line answers the next challenge. Close the reader to release it for good.
type Console struct {
	in  *bufio.Reader
	out io.Writer

	lock    sync.Mutex
	pending chan string
}

var _ WebUI = (*Console)(nil)

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Challenge returns a canceled response when the user enters an empty line or the input ends.
func (c *Console) Challenge(ctx context.Context, authorizationURI, redirectURI string) (*oauthmodel.AuthorizationResponse, error) {
	fmt.Fprintf(c.out, "Open the following URL in a browser and sign in:\n\n  %s\n\n", authorizationURI)
	fmt.Fprintf(c.out, "Then paste the full URL you were redirected to (starting with %s): ", redirectURI)

	var line string
	select {
	case line = <-c.readLine():
		c.lock.Lock()
		c.pending = nil
		c.lock.Unlock()
	case <-ctx.Done():
		return nil, interrupted(ctx)
	}
	if line == "" {
		return oauthmodel.Canceled(), nil
	}
	return oauthmodel.ParseAuthorizationRedirect(line)
}

// readLine starts a read unless one is already in flight, so the reader is never read concurrently.
func (c *Console) readLine() <-chan string {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.pending == nil {
		lines := make(chan string, 1)
		c.pending = lines
		go func() {
			line, _ := c.in.ReadString('\n')
			lines <- strings.TrimSpace(line)
		}()
	}
	return c.pending
}
