package plugindomain

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultPlatform is the host authority used when a declaration omits one
const DefaultPlatform = "github.com"

// Declaration is a user-authored plugin entry naming a remote repository.
// It is immutable once built.
type Declaration struct {
	owner    string
	repo     string
	platform string
	branch   string
}

// NewDeclaration creates a Declaration with validation. An empty platform
// falls back to DefaultPlatform; an empty branch means the remote default.
func NewDeclaration(owner, repo, platform, branch string) (Declaration, error) {
	if err := validateSegment("owner", owner); err != nil {
		return Declaration{}, err
	}
	if err := validateSegment("repo", repo); err != nil {
		return Declaration{}, err
	}

	platform = strings.TrimSpace(platform)
	if platform == "" {
		platform = DefaultPlatform
	}
	if strings.ContainsAny(platform, "/\\") || strings.IndexFunc(platform, unicode.IsSpace) >= 0 {
		return Declaration{}, fmt.Errorf("%w: platform %q must be a bare host", ErrConfigInvalid, platform)
	}

	if strings.IndexFunc(branch, unicode.IsSpace) >= 0 {
		return Declaration{}, fmt.Errorf("%w: branch %q contains whitespace", ErrConfigInvalid, branch)
	}

	return Declaration{
		owner:    owner,
		repo:     repo,
		platform: platform,
		branch:   branch,
	}, nil
}

// ValidSegment reports whether name is acceptable as an owner or repo
func ValidSegment(name string) bool {
	return validateSegment("name", name) == nil
}

func validateSegment(field, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrConfigInvalid, field)
	}
	if strings.ContainsAny(value, "/\\") {
		return fmt.Errorf("%w: %s %q contains a path separator", ErrConfigInvalid, field, value)
	}
	if strings.IndexFunc(value, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %s %q contains whitespace", ErrConfigInvalid, field, value)
	}
	if value == "." || value == ".." {
		return fmt.Errorf("%w: %s %q is not a valid name", ErrConfigInvalid, field, value)
	}
	return nil
}

// Owner returns the namespace on the hosting platform
func (d Declaration) Owner() string { return d.owner }

// Repo returns the repository name
func (d Declaration) Repo() string { return d.repo }

// Platform returns the host authority
func (d Declaration) Platform() string { return d.platform }

// Branch returns the requested branch, or "" for the remote default
func (d Declaration) Branch() string { return d.branch }

// Slug returns "owner/repo", the on-disk identity of the plugin
func (d Declaration) Slug() string {
	return d.owner + "/" + d.repo
}

// Key returns "platform/owner/repo", the uniqueness key within a Set
func (d Declaration) Key() string {
	return d.platform + "/" + d.owner + "/" + d.repo
}

// RemoteURL returns the https clone URL
func (d Declaration) RemoteURL() string {
	return fmt.Sprintf("https://%s/%s/%s.git", d.platform, d.owner, d.repo)
}

// String implements the Stringer interface
func (d Declaration) String() string {
	return d.Slug()
}

// Set is an ordered, duplicate-free sequence of declarations
type Set struct {
	items []Declaration
}

// NewSet creates a Set preserving the given order. Two declarations with the
// same platform/owner/repo are rejected, as are two that would share an
// on-disk location.
func NewSet(decls ...Declaration) (Set, error) {
	seenKey := make(map[string]int, len(decls))
	seenSlug := make(map[string]int, len(decls))

	for i, d := range decls {
		if j, ok := seenKey[d.Key()]; ok {
			return Set{}, fmt.Errorf("%w: plugin %s declared twice (entries %d and %d)", ErrConfigInvalid, d.Key(), j+1, i+1)
		}
		if j, ok := seenSlug[d.Slug()]; ok {
			return Set{}, fmt.Errorf("%w: entries %d and %d both install to %s", ErrConfigInvalid, j+1, i+1, d.Slug())
		}
		seenKey[d.Key()] = i
		seenSlug[d.Slug()] = i
	}

	items := make([]Declaration, len(decls))
	copy(items, decls)
	return Set{items: items}, nil
}

// Declarations returns a copy of the declarations in order
func (s Set) Declarations() []Declaration {
	out := make([]Declaration, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of declarations
func (s Set) Len() int { return len(s.items) }

// IsEmpty reports whether the set has no declarations
func (s Set) IsEmpty() bool { return len(s.items) == 0 }

// ContainsSlug reports whether some declaration installs to owner/repo
func (s Set) ContainsSlug(owner, repo string) bool {
	slug := owner + "/" + repo
	for _, d := range s.items {
		if d.Slug() == slug {
			return true
		}
	}
	return false
}

// Installed is a directory found on disk at <data_root>/<owner>/<repo>
type Installed struct {
	Owner string
	Repo  string
	Path  string
}

// Slug returns "owner/repo"
func (i Installed) Slug() string {
	return i.Owner + "/" + i.Repo
}
