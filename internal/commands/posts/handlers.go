package postscmd

import (
	"context"

	"github.com/goliatone/go-blog/internal/admin"
	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/internal/content"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const saveOperation = "posts.save"

var _ command.Commander[SavePostCommand] = (*SavePostHandler)(nil)

// Saver is the editor operation the handler delegates to.
type Saver interface {
	Save(ctx context.Context, req admin.SaveRequest) (*admin.SaveResult, error)
}

// ResultHook receives the outcome of every successful save.
type ResultHook func(SavePostCommand, *admin.SaveResult)

// SavePostHandler normalizes the slug and saves the draft through the editor service.
type SavePostHandler struct {
	inner *commands.Handler[SavePostCommand]
}

// NewSavePostHandler builds a handler around saver.
func NewSavePostHandler(saver Saver, logger interfaces.Logger, hook ResultHook, opts ...commands.HandlerOption[SavePostCommand]) *SavePostHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg SavePostCommand) error {
		slug, err := posts.NormalizeSlug(msg.Slug)
		if err != nil {
			return err
		}
		mode, err := content.ParseSaveMode(msg.Mode)
		if err != nil {
			return err
		}
		result, err := saver.Save(ctx, admin.SaveRequest{
			Draft: admin.Draft{
				Slug:        slug,
				Frontmatter: msg.Frontmatter.Clone(),
				Body:        msg.Body,
			},
			Mode: mode,
		})
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"slug":     result.Slug,
			"redirect": result.Redirect,
		}).Info("posts.command.save.completed")
		if hook != nil {
			hook(msg, result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[SavePostCommand]{
		commands.WithLogger[SavePostCommand](baseLogger),
		commands.WithOperation[SavePostCommand](saveOperation),
		commands.WithMessageFields(func(msg SavePostCommand) map[string]any {
			fields := map[string]any{"slug": msg.Slug}
			if msg.Mode != "" {
				fields["mode"] = msg.Mode
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SavePostCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SavePostHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SavePostCommand].
func (h *SavePostHandler) Execute(ctx context.Context, msg SavePostCommand) error {
	return h.inner.Execute(ctx, msg)
}
