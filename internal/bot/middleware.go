package bot

import (
	"errors"
	"runtime/debug"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"discord-economy-bot/internal/config"
	"discord-economy-bot/internal/handler"
	"discord-economy-bot/internal/service"
)

// MiddlewareFunc wraps a handler.
type MiddlewareFunc func(next handler.HandlerFunc) handler.HandlerFunc

// Chain applies middleware so that the first one runs outermost.
func Chain(h handler.HandlerFunc, mws ...MiddlewareFunc) handler.HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

const genericFailure = "❌ Something went wrong. Please try again later."

// IsAdmin reports whether a member may use admin commands: listed in the
// config, or holding the Administrator permission in the guild.
func IsAdmin(cfg *config.Config, userID, permissions int64) bool {
	return cfg.IsAdmin(userID) || permissions&discordgo.PermissionAdministrator != 0
}

// AdminMiddleware rejects members who are not admins.
func AdminMiddleware(cfg *config.Config) MiddlewareFunc {
	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(c handler.Context) error {
			if !IsAdmin(cfg, c.Sender().ID, c.Permissions()) {
				log.Warn().
					Int64("user_id", c.Sender().ID).
					Int64("community_id", c.CommunityID()).
					Str("command", c.Command()).
					Msg("Non-admin attempted admin command")
				return handler.ErrPermissionDenied
			}
			return next(c)
		}
	}
}

// LoggingMiddleware logs every interaction at debug level.
func LoggingMiddleware() MiddlewareFunc {
	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(c handler.Context) error {
			start := time.Now()
			err := next(c)
			log.Debug().
				Int64("user_id", c.Sender().ID).
				Int64("community_id", c.CommunityID()).
				Str("command", c.Command()).
				Dur("took", time.Since(start)).
				Bool("failed", err != nil).
				Msg("Interaction handled")
			return err
		}
	}
}

// ErrorMiddleware answers a failed handler. Expected user errors are shown
// as-is; anything else is logged and answered with a generic message.
func ErrorMiddleware() MiddlewareFunc {
	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(c handler.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			msg, unexpected := RenderError(err)
			if unexpected {
				log.Error().Err(err).
					Int64("user_id", c.Sender().ID).
					Int64("community_id", c.CommunityID()).
					Str("command", c.Command()).
					Msg("Command failed")
			}
			if rerr := c.Reply(msg); rerr != nil {
				log.Warn().Err(rerr).Str("command", c.Command()).Msg("Failed to send error reply")
			}
			return nil
		}
	}
}

// RecoveryMiddleware turns a panic into a generic failure reply.
func RecoveryMiddleware() MiddlewareFunc {
	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(c handler.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Str("command", c.Command()).
						Str("stack", string(debug.Stack())).
						Msg("Recovered from panic in handler")
					_ = c.Reply(&handler.Message{Content: genericFailure, Ephemeral: true})
					err = nil
				}
			}()
			return next(c)
		}
	}
}

// RenderError maps an error to the reply shown to the user. unexpected is
// true for system failures that must be logged.
func RenderError(err error) (msg *handler.Message, unexpected bool) {
	var ue *handler.UserError
	switch {
	case errors.Is(err, handler.ErrPermissionDenied):
		return &handler.Message{Content: "⛔ This command is for admins only.", Ephemeral: true}, false
	case errors.As(err, &ue), service.IsUserError(err):
		return &handler.Message{Content: "❌ " + sentence(err.Error()), Ephemeral: true}, false
	default:
		return &handler.Message{Content: genericFailure, Ephemeral: true}, true
	}
}

func sentence(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	s = string(unicode.ToUpper(r)) + s[size:]
	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "!") && !strings.HasSuffix(s, "?") {
		s += "."
	}
	return s
}
