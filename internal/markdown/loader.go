package markdown

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/content"
	blockmeta "github.com/goliatone/go-blog/internal/frontmatter"
)

// DefaultPatterns are matched against file names when no patterns are configured.
var DefaultPatterns = []string{"*.md", "*.mdx"}

// LoaderConfig configures how Markdown files are discovered.
type LoaderConfig struct {
	// Patterns limits discovered files to names matching any glob.
	Patterns []string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
}

// Loader turns filesystem paths into parsed sources.
type Loader struct {
	fs        fs.FS
	patterns  []string
	recursive bool
}

// NewLoader constructs a Loader over filesystem.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	return &Loader{
		fs:        filesystem,
		patterns:  append([]string(nil), patterns...),
		recursive: cfg.Recursive,
	}
}

// Source is a Markdown file ready to import.
type Source struct {
	Path        string
	Slug        string
	Frontmatter blockmeta.Frontmatter
	Body        string
	Skipped     []string
	Checksum    string
	Modified    time.Time
}

// Raw re-serializes the source into a block-formatted blob.
func (s *Source) Raw() (string, error) {
	return blockmeta.Serialize(s.Frontmatter, s.Body)
}

// LoadFile reads and parses a single file. root is the directory slugs are relative to.
func (l *Loader) LoadFile(ctx context.Context, root, name string) (*Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", name, err)
	}
	info, err := fs.Stat(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader stat %s: %w", name, err)
	}
	meta, body, skipped, err := ParseFrontMatter(data)
	if err != nil {
		return nil, fmt.Errorf("markdown loader %s: %w", name, err)
	}
	sum := sha256.Sum256(data)

	return &Source{
		Path:        name,
		Slug:        slugFromPath(root, name),
		Frontmatter: meta,
		Body:        string(body),
		Skipped:     skipped,
		Checksum:    hex.EncodeToString(sum[:]),
		Modified:    info.ModTime(),
	}, nil
}

// LoadDirectory discovers matching files under dir in lexical order.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]*Source, error) {
	root := path.Clean(strings.TrimPrefix(dir, "/"))
	if root == "" {
		root = "."
	}

	var sources []*Source
	walkErr := fs.WalkDir(l.fs, root, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if current != root && (!l.recursive || strings.HasPrefix(d.Name(), ".")) {
				return fs.SkipDir
			}
			return nil
		}
		if !l.matches(d.Name()) {
			return nil
		}
		source, err := l.LoadFile(ctx, root, current)
		if err != nil {
			return err
		}
		sources = append(sources, source)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return sources, nil
}

func (l *Loader) matches(name string) bool {
	for _, pattern := range l.patterns {
		if ok, err := path.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// slugFromPath strips the root and extension; index files take their directory's slug.
func slugFromPath(root, name string) string {
	rel := name
	if root != "." {
		rel = strings.TrimPrefix(strings.TrimPrefix(name, root), "/")
	}
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	if base := path.Base(rel); base == "index" {
		rel = path.Dir(rel)
		if rel == "." {
			rel = "index"
		}
	}
	return content.NormalizeSlug(rel)
}
