package contributors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/StinkyLord/xctools/internal/shell"
)

// authorFormat is the git pretty format of a single history line:
// "<author name> <<author email>>".
const authorFormat = "%an <%ae>"

// History yields one "<name> <<email>>" line per commit.
type History interface {
	AuthorLines(ctx context.Context) ([]string, error)
}

// GitCLIHistory reads commit authors with `git log`.
type GitCLIHistory struct {
	Runner  shell.Runner
	RepoDir string
}

func (h *GitCLIHistory) AuthorLines(ctx context.Context) ([]string, error) {
	var args []string
	if h.RepoDir != "" {
		args = append(args, "-C", h.RepoDir)
	}
	args = append(args, "--no-pager", "log", "--pretty=format:"+authorFormat)

	out, err := h.Runner.Run(ctx, "git", args...)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(out) {
		return nil, errors.New("git log output is not valid UTF-8")
	}
	return splitLines(string(out)), nil
}

// NativeHistory reads commit authors from the repository object database
// with go-git, without requiring a git binary.
type NativeHistory struct {
	RepoDir string

	// Repository, when set, is used instead of opening RepoDir.
	Repository *git.Repository
}

func (h *NativeHistory) AuthorLines(ctx context.Context) ([]string, error) {
	repo := h.Repository
	if repo == nil {
		dir := h.RepoDir
		if dir == "" {
			dir = "."
		}
		var err error
		repo, err = git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
		if err != nil {
			return nil, fmt.Errorf("cannot open git repository %q: %w", dir, err)
		}
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("cannot resolve HEAD: %w", err)
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("cannot walk history: %w", err)
	}
	defer iter.Close()

	var lines []string
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		lines = append(lines, fmt.Sprintf("%s <%s>", c.Author.Name, c.Author.Email))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func splitLines(s string) []string {
	raw := strings.Split(s, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSuffix(l, "\r")
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
