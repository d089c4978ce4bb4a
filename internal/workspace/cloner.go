// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workspace

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Cloner materializes a branch workspace from a project directory.
// progress receives 0-100 estimates and may be called from any goroutine.
type Cloner interface {
	Clone(ctx context.Context, src, dst, branch string, progress func(int)) error
}

// NewCloner returns the cloner named by the storage.cloner setting.
func NewCloner(name string) (Cloner, error) {
	switch name {
	case "git", "":
		return &GitCloner{}, nil
	case "copy":
		return &CopyCloner{}, nil
	default:
		return nil, fmt.Errorf("unknown cloner %q", name)
	}
}

// =============================================================================
// GIT CLONER
// =============================================================================

// GitCloner clones with the git binary and checks out the branch, creating
// it from HEAD when it does not exist.
type GitCloner struct {
	// Binary defaults to "git"
	Binary string
}

var gitPercent = regexp.MustCompile(`(\d{1,3})%`)

// Clone runs git clone --local --progress and then checks out the branch.
func (g *GitCloner) Clone(ctx context.Context, src, dst, branch string, progress func(int)) error {
	bin := g.Binary
	if bin == "" {
		bin = "git"
	}

	cmd := exec.CommandContext(ctx, bin, "clone", "--local", "--progress", src, dst)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start git: %w", err)
	}

	var tail bytes.Buffer
	streamProgress(stderr, &tail, progress)

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("git clone failed: %w: %s", err, lastLine(tail.String()))
	}

	if out, err := exec.CommandContext(ctx, bin, "-C", dst, "checkout", branch).CombinedOutput(); err != nil {
		out2, err2 := exec.CommandContext(ctx, bin, "-C", dst, "checkout", "-b", branch).CombinedOutput()
		if err2 != nil {
			return fmt.Errorf("git checkout %s failed: %w: %s", branch, err2, lastLine(string(out)+string(out2)))
		}
	}
	progress(100)
	return nil
}

// streamProgress reads git's carriage-return separated progress lines,
// forwarding percentages and keeping the text for error messages.
func streamProgress(r io.Reader, tail *bytes.Buffer, progress func(int)) {
	sc := bufio.NewScanner(r)
	sc.Split(splitCRLF)
	for sc.Scan() {
		line := sc.Text()
		tail.WriteString(line)
		tail.WriteByte('\n')
		// Receiving objects dominates a local clone
		if !strings.HasPrefix(line, "Receiving objects") {
			continue
		}
		if m := gitPercent.FindStringSubmatch(line); m != nil {
			if pct, err := strconv.Atoi(m[1]); err == nil {
				progress(pct * 9 / 10)
			}
		}
	}
}

func splitCRLF(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// =============================================================================
// COPY CLONER
// =============================================================================

// CopyCloner copies the project tree file by file. It ignores the branch,
// which suits projects that are not git repositories.
type CopyCloner struct{}

// Clone copies src to dst, reporting progress by file count.
func (CopyCloner) Clone(ctx context.Context, src, dst, branch string, progress func(int)) error {
	total := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			total++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", src, err)
	}

	copied := 0
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0700)
		case info.Mode()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			if err := os.Symlink(link, target); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if err := copyFile(path, target, info.Mode().Perm()); err != nil {
				return err
			}
		}

		copied++
		if total > 0 {
			progress(copied * 100 / total)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("copy failed: %w", err)
	}
	progress(100)
	return nil
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
