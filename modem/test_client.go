package modem

import (
	"context"
	"strings"
	"sync"

	"i4.energy/across/tata/at"
)

// Reply is a canned answer of a TestClient.
type Reply struct {
	Raw string
	Err error
}

// TestClient is an in-memory at.Client: it logs every issued command and
// answers from queues of canned replies.
//
// A reply registered with On for a command prefix wins over the shared
// queue filled by Push. With both empty the command succeeds with an empty
// response.
type TestClient struct {
	mu       sync.Mutex
	sent     []string
	queue    []Reply
	prefixes []string
	byPrefix map[string][]Reply
}

func NewTestClient() *TestClient {
	return &TestClient{byPrefix: make(map[string][]Reply)}
}

// Push appends replies to the shared queue.
func (c *TestClient) Push(replies ...Reply) *TestClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, replies...)
	return c
}

// On queues replies for commands whose wire text starts with prefix.
func (c *TestClient) On(prefix string, replies ...Reply) *TestClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byPrefix[prefix]; !ok {
		c.prefixes = append(c.prefixes, prefix)
	}
	c.byPrefix[prefix] = append(c.byPrefix[prefix], replies...)
	return c
}

func (c *TestClient) Exec(ctx context.Context, req at.Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sent = append(c.sent, req.Wire)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	for _, prefix := range c.prefixes {
		if queue := c.byPrefix[prefix]; strings.HasPrefix(req.Wire, prefix) && len(queue) > 0 {
			c.byPrefix[prefix] = queue[1:]
			return queue[0].Raw, queue[0].Err
		}
	}
	if len(c.queue) > 0 {
		r := c.queue[0]
		c.queue = c.queue[1:]
		return r.Raw, r.Err
	}
	return "", nil
}

// Sent returns the wire text of all issued commands in order.
func (c *TestClient) Sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

// SentWith returns the issued commands starting with prefix.
func (c *TestClient) SentWith(prefix string) []string {
	var out []string
	for _, s := range c.Sent() {
		if strings.HasPrefix(s, prefix) {
			out = append(out, s)
		}
	}
	return out
}

// Reset forgets the issued commands.
func (c *TestClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = nil
}
