package command

import (
	"context"
	"fmt"
	"time"
)

// Middleware wraps a command (recovery, timeouts). The wrapped value is still a Command.
type Middleware func(Command) Command

// Apply applies middlewares in order; the last one is the outermost.
func Apply(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}

type wrapped struct {
	Command
	run func(ctx context.Context, c *Context, args []string) error
}

func (w *wrapped) Run(ctx context.Context, c *Context, args []string) error {
	return w.run(ctx, c, args)
}

func (w *wrapped) Unwrap() Command { return w.Command }

// Wrap returns cmd with Run replaced by run. Name, description and the
// permission flag still come from cmd.
func Wrap(cmd Command, run func(ctx context.Context, c *Context, args []string) error) Command {
	return &wrapped{Command: cmd, run: run}
}

// Root unwraps cmd until it reaches the command that was registered first.
func Root(cmd Command) Command {
	for {
		u, ok := cmd.(interface{ Unwrap() Command })
		if !ok {
			return cmd
		}
		cmd = u.Unwrap()
	}
}

// WithRecover turns a handler panic into an error.
func WithRecover() Middleware {
	return func(cmd Command) Command {
		return Wrap(cmd, func(ctx context.Context, c *Context, args []string) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("command %s panicked: %v", cmd.Name(), r)
				}
			}()
			return cmd.Run(ctx, c, args)
		})
	}
}

// WithTimeout bounds the context handed to the handler.
func WithTimeout(d time.Duration) Middleware {
	return func(cmd Command) Command {
		return Wrap(cmd, func(ctx context.Context, c *Context, args []string) error {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return cmd.Run(ctx, c, args)
		})
	}
}
