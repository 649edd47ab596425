package command

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

var (
	ErrDuplicateCommand = errors.New("command already registered")
	ErrCommandNotFound  = errors.New("command not found")
	ErrPermissionDenied = errors.New("permission denied")
)

// Registry maps command names to commands. Names are matched exactly and
// case-sensitively. Registration happens at startup; after that the registry
// is only read.
type Registry struct {
	commands map[string]Command
	auth     Authorizer
	log      zerolog.Logger
}

// NewRegistry returns an empty registry. A nil authorizer denies every
// permission-gated command.
func NewRegistry(auth Authorizer, logger zerolog.Logger) *Registry {
	return &Registry{
		commands: make(map[string]Command),
		auth:     auth,
		log:      logger.With().Str("component", "commands").Logger(),
	}
}

// Register adds commands. A name that is already taken is rejected and
// nothing after it is registered.
func (r *Registry) Register(cmds ...Command) error {
	for _, cmd := range cmds {
		name := cmd.Name()
		if name == "" {
			return fmt.Errorf("command %T has an empty name", Root(cmd))
		}
		if _, exists := r.commands[name]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateCommand, name)
		}
		r.commands[name] = cmd
	}
	return nil
}

// Resolve returns the command registered under name.
func (r *Registry) Resolve(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Commands returns all registered commands sorted by name.
func (r *Registry) Commands() []Command {
	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}

// Dispatch resolves name and runs it with c and args. Every attempt is logged.
// It returns ErrCommandNotFound or ErrPermissionDenied when nothing ran,
// otherwise whatever the handler returned.
func (r *Registry) Dispatch(ctx context.Context, c *Context, name string, args []string) error {
	r.log.Info().
		Str("command", name).
		Strs("args", args).
		Str("user", c.UserID).
		Msg("Invoking command")

	cmd, ok := r.Resolve(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCommandNotFound, name)
	}

	if cmd.RequirePermission() && (r.auth == nil || !r.auth.Authorized(c.UserID)) {
		r.log.Info().Str("command", name).Str("user", c.UserID).Msg("Permission denied")
		return fmt.Errorf("%w: %s", ErrPermissionDenied, name)
	}

	if err := cmd.Run(ctx, c, args); err != nil {
		return fmt.Errorf("command %s: %w", name, err)
	}
	return nil
}
