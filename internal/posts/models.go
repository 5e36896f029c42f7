package posts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Post is a blog article. Content holds the raw blob: metadata block plus body.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`

	ID         uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Title      string     `bun:"title,notnull" json:"title"`
	Content    string     `bun:"content,notnull" json:"content"`
	Slug       string     `bun:"slug,notnull,unique" json:"slug"`
	Excerpt    *string    `bun:"excerpt" json:"excerpt,omitempty"`
	Date       time.Time  `bun:"date,notnull" json:"date"`
	Author     *string    `bun:"author" json:"author,omitempty"`
	Tags       []string   `bun:"tags,type:jsonb" json:"tags"`
	Published  bool       `bun:"published,notnull,default:false" json:"published"`
	Featured   bool       `bun:"featured,notnull,default:false" json:"featured"`
	CoverImage *string    `bun:"cover_image" json:"coverImage,omitempty"`
	CategoryID *uuid.UUID `bun:"category_id,type:uuid" json:"categoryId,omitempty"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt"`
	UpdatedAt  time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt"`
	Category   *Category  `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
}

// Category groups posts.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:cat"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Slug        string    `bun:"slug,notnull,unique" json:"slug"`
	Description *string   `bun:"description" json:"description,omitempty"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt"`
}

// Models lists the bun models owned by this package, in creation order.
func Models() []any {
	return []any{
		(*Category)(nil),
		(*Post)(nil),
	}
}

func clonePost(p *Post) *Post {
	if p == nil {
		return nil
	}
	copied := *p
	copied.Tags = append([]string{}, p.Tags...)
	if p.Category != nil {
		cat := *p.Category
		copied.Category = &cat
	}
	return &copied
}

func cloneCategory(c *Category) *Category {
	if c == nil {
		return nil
	}
	copied := *c
	return &copied
}
