package markdowncmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const importDirectoryMessageType = "blog.markdown.import_directory"

// ImportDirectoryCommand walks Directory for Markdown and MDX files and saves
// each one through the content store.
type ImportDirectoryCommand struct {
	// Directory is resolved against the importer's base path.
	Directory string `json:"directory"`
	// DryRun classifies every file without persisting anything.
	DryRun bool `json:"dry_run,omitempty"`
	// UpdateExisting overwrites posts whose slug already exists when the content differs.
	UpdateExisting bool `json:"update_existing,omitempty"`
}

// Type implements command.Message.
func (ImportDirectoryCommand) Type() string { return importDirectoryMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd ImportDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			dir, _ := value.(string)
			if strings.TrimSpace(dir) == "" {
				return validation.NewError("blog.markdown.import_directory.directory_required", "directory is required")
			}
			if strings.Contains(dir, "..") {
				return validation.NewError("blog.markdown.import_directory.directory_escape", "directory must stay inside the base path")
			}
			return nil
		})),
	)
}
