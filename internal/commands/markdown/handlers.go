package markdowncmd

import (
	"context"

	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const importOperation = "markdown.import_directory"

var _ command.Commander[ImportDirectoryCommand] = (*ImportDirectoryHandler)(nil)

// DirectoryImporter is the slice of markdown.Service the handler depends on.
type DirectoryImporter interface {
	ImportDirectory(ctx context.Context, dir string, opts markdown.ImportOptions) (*markdown.ImportResult, error)
}

// ResultHook receives the outcome of every successful import run.
type ResultHook func(ImportDirectoryCommand, *markdown.ImportResult)

// ImportDirectoryHandler runs directory imports through the shared command handler.
type ImportDirectoryHandler struct {
	inner *commands.Handler[ImportDirectoryCommand]
}

// NewImportDirectoryHandler creates a handler bound to the supplied importer.
func NewImportDirectoryHandler(importer DirectoryImporter, logger interfaces.Logger, hook ResultHook, opts ...commands.HandlerOption[ImportDirectoryCommand]) *ImportDirectoryHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ImportDirectoryCommand) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result, err := importer.ImportDirectory(ctx, msg.Directory, markdown.ImportOptions{
			DryRun:         msg.DryRun,
			UpdateExisting: msg.UpdateExisting,
		})
		if err != nil {
			return err
		}
		if result == nil {
			return nil
		}
		logging.WithFields(baseLogger, map[string]any{
			"created_count": len(result.Created),
			"updated_count": len(result.Updated),
			"skipped_count": len(result.Skipped),
			"error_count":   len(result.Errors),
			"dry_run":       msg.DryRun,
		}).Info("markdown.command.import_directory.completed")
		if hook != nil {
			hook(msg, result)
		}
		return result.Err()
	}

	handlerOpts := []commands.HandlerOption[ImportDirectoryCommand]{
		commands.WithLogger[ImportDirectoryCommand](baseLogger),
		commands.WithOperation[ImportDirectoryCommand](importOperation),
		commands.WithMessageFields(func(msg ImportDirectoryCommand) map[string]any {
			fields := map[string]any{
				"directory": msg.Directory,
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			if msg.UpdateExisting {
				fields["update_existing"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ImportDirectoryCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportDirectoryHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ImportDirectoryCommand].
func (h *ImportDirectoryHandler) Execute(ctx context.Context, msg ImportDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}
