package postscmd

import (
	"fmt"

	"github.com/goliatone/go-blog/internal/content"
	"github.com/goliatone/go-blog/internal/frontmatter"
	"github.com/goliatone/go-blog/internal/posts"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const savePostMessageType = "blog.posts.save"

// SavePostCommand persists an edited post as a single metadata block plus body.
type SavePostCommand struct {
	Slug        string                  `json:"slug"`
	Frontmatter frontmatter.Frontmatter `json:"frontmatter,omitempty"`
	Body        string                  `json:"body"`
	// Mode is "create" or "overwrite"; empty means overwrite.
	Mode string `json:"mode,omitempty"`
}

// Type implements command.Message.
func (SavePostCommand) Type() string { return savePostMessageType }

// Validate checks slug, mode and metadata keys before handlers execute.
func (cmd SavePostCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Slug, validation.Required, validation.By(func(value any) error {
			raw, _ := value.(string)
			if _, err := posts.NormalizeSlug(raw); err != nil {
				return validation.NewError("blog.posts.save.slug_invalid", "slug must contain at least one letter or digit")
			}
			return nil
		})),
		validation.Field(&cmd.Mode, validation.By(func(value any) error {
			raw, _ := value.(string)
			if _, err := content.ParseSaveMode(raw); err != nil {
				return validation.NewError("blog.posts.save.mode_invalid", "mode must be create or overwrite")
			}
			return nil
		})),
		validation.Field(&cmd.Frontmatter, validation.By(func(value any) error {
			meta, _ := value.(frontmatter.Frontmatter)
			for key := range meta {
				if !frontmatter.ValidKey(key) {
					return validation.NewError("blog.posts.save.key_invalid", fmt.Sprintf("invalid frontmatter key %q", key))
				}
			}
			return nil
		})),
	)
}
