// Package handler provides the slash command and component handlers of the
// economy bot. Handlers only see a Context; the bot package adapts Discord
// interactions to it.
package handler

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"

	"discord-economy-bot/internal/model"
)

// ErrPermissionDenied is returned by the admin gate.
var ErrPermissionDenied = errors.New("permission denied")

// User is a member referenced by an interaction.
type User struct {
	ID   int64
	Name string
	Bot  bool
}

// Mention renders the user as a Discord mention.
func (u *User) Mention() string {
	return mention(u.ID)
}

// Message is a reply to an interaction.
type Message struct {
	Content    string
	Components []discordgo.MessageComponent
	Ephemeral  bool
}

// Context is one interaction as seen by a handler.
type Context interface {
	// Ctx is cancelled when the bot shuts down.
	Ctx() context.Context
	Sender() *User
	CommunityID() int64
	Key() model.AccountKey
	// Permissions is the member's guild permission bit set.
	Permissions() int64
	// Command is the slash command name, or the custom ID of a component.
	Command() string

	Int(name string) (int64, bool)
	String(name string) (string, bool)
	Bool(name string) (bool, bool)
	User(name string) (*User, bool)
	Role(name string) (int64, bool)
	// Values holds the selection of a select menu.
	Values() []string

	// Reply sends a new message.
	Reply(msg *Message) error
	// Update edits the message the component belongs to.
	Update(msg *Message) error
}

// HandlerFunc handles one interaction.
type HandlerFunc func(c Context) error

// UserError is a rejection worded for the user. It is shown as-is and is
// not logged as a failure.
type UserError struct {
	Msg string
}

func (e *UserError) Error() string {
	return e.Msg
}

func userError(msg string) error {
	return &UserError{Msg: msg}
}

// Required option helpers. A missing option is a user mistake, Discord
// enforces required options so this only shows up with stale commands.

func intOption(c Context, name string) (int64, error) {
	v, ok := c.Int(name)
	if !ok {
		return 0, userError("missing option: " + name)
	}
	return v, nil
}

func stringOption(c Context, name string) (string, error) {
	v, ok := c.String(name)
	if !ok {
		return "", userError("missing option: " + name)
	}
	return v, nil
}

func userOption(c Context, name string) (*User, error) {
	v, ok := c.User(name)
	if !ok {
		return nil, userError("missing option: " + name)
	}
	return v, nil
}

func quantityOption(c Context) int {
	if v, ok := c.Int("quantity"); ok {
		return int(v)
	}
	return 1
}

func reply(c Context, content string) error {
	return c.Reply(&Message{Content: content})
}

func replyEphemeral(c Context, content string) error {
	return c.Reply(&Message{Content: content, Ephemeral: true})
}
