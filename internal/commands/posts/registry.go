package postscmd

import (
	"errors"

	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// RegisterPostCommands builds the save handler and registers it with reg when non-nil.
func RegisterPostCommands(reg CommandRegistry, saver Saver, provider interfaces.LoggerProvider, hook ResultHook, opts ...commands.HandlerOption[SavePostCommand]) (*SavePostHandler, error) {
	if saver == nil {
		return nil, errors.New("posts command registration: saver is nil")
	}
	handler := NewSavePostHandler(saver, commands.CommandLogger(provider, "posts"), hook, opts...)
	if reg != nil {
		if err := reg.RegisterCommand(handler); err != nil {
			return nil, err
		}
	}
	return handler, nil
}
