// Package handlertest provides an in-memory handler.Context for tests.
package handlertest

import (
	"context"
	"sync"

	"discord-economy-bot/internal/handler"
	"discord-economy-bot/internal/model"
)

// Context records replies instead of sending them.
type Context struct {
	Context   context.Context
	From      handler.User
	Community int64
	Perms     int64
	Name      string

	Ints     map[string]int64
	Strings  map[string]string
	Bools    map[string]bool
	Users    map[string]*handler.User
	Roles    map[string]int64
	Selected []string

	mu      sync.Mutex
	replies []*handler.Message
	updates []*handler.Message
}

var _ handler.Context = (*Context)(nil)

// New creates a context for command sent by userID in community.
func New(command string, userID, community int64) *Context {
	return &Context{
		Context:   context.Background(),
		From:      handler.User{ID: userID, Name: "tester"},
		Community: community,
		Name:      command,
		Ints:      make(map[string]int64),
		Strings:   make(map[string]string),
		Bools:     make(map[string]bool),
		Users:     make(map[string]*handler.User),
		Roles:     make(map[string]int64),
	}
}

func (c *Context) Ctx() context.Context { return c.Context }
func (c *Context) Sender() *handler.User { return &c.From }
func (c *Context) CommunityID() int64 { return c.Community }
func (c *Context) Permissions() int64 { return c.Perms }
func (c *Context) Command() string { return c.Name }
func (c *Context) Values() []string { return c.Selected }

func (c *Context) Key() model.AccountKey {
	return model.AccountKey{UserID: c.From.ID, CommunityID: c.Community}
}

func (c *Context) Int(name string) (int64, bool) {
	v, ok := c.Ints[name]
	return v, ok
}

func (c *Context) String(name string) (string, bool) {
	v, ok := c.Strings[name]
	return v, ok
}

func (c *Context) Bool(name string) (bool, bool) {
	v, ok := c.Bools[name]
	return v, ok
}

func (c *Context) User(name string) (*handler.User, bool) {
	v, ok := c.Users[name]
	return v, ok
}

func (c *Context) Role(name string) (int64, bool) {
	v, ok := c.Roles[name]
	return v, ok
}

func (c *Context) Reply(msg *handler.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies = append(c.replies, msg)
	return nil
}

func (c *Context) Update(msg *handler.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates = append(c.updates, msg)
	return nil
}

// Replies returns the messages sent with Reply.
func (c *Context) Replies() []*handler.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*handler.Message(nil), c.replies...)
}

// Updates returns the messages sent with Update.
func (c *Context) Updates() []*handler.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*handler.Message(nil), c.updates...)
}

// Last returns the most recent reply, or nil.
func (c *Context) Last() *handler.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.replies) == 0 {
		return nil
	}
	return c.replies[len(c.replies)-1]
}
