package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"sync"

	wtrexec "github.com/riverhollow/wtr/internal/exec"
)

// Repository is a typed facade over one repository's git subprocess,
// owning a per-process cache of idempotent results and a heavy-ops
// semaphore. Grounded on the teacher's flat internal/git function set,
// reshaped into a receiver type per SPEC_FULL.md's [VCS_ADAPTER].
type Repository struct {
	root string // the repo root as passed to `git -C`

	heavy heavySemaphore

	mu              sync.Mutex
	mergeBaseCache  map[string]mergeBaseEntry
	defaultBranch   *string
	batchAheadBehindCache map[string]map[string][2]int
}

type mergeBaseEntry struct {
	sha string
	ok  bool
}

// Open returns a Repository rooted at root (any path inside the working
// tree; git -C resolves it).
func Open(root string) *Repository {
	return &Repository{
		root:                  root,
		heavy:                 newHeavySemaphore(),
		mergeBaseCache:        make(map[string]mergeBaseEntry),
		batchAheadBehindCache: make(map[string]map[string][2]int),
	}
}

// run executes `git <args...>` rooted at r.root, capturing stdout;
// stderr is folded into a *CommandError on failure.
func (r *Repository) run(ctx context.Context, operation string, args ...string) ([]byte, error) {
	full := append([]string{"-C", r.root}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)
	cmd.Env = wtrexec.MachineEnv()
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		exitCode := -1
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		}
		return nil, &CommandError{
			Operation: operation,
			ExitCode:  exitCode,
			Stderr:    truncateStderr(strings.TrimSpace(stderr.String())),
		}
	}
	return stdout.Bytes(), nil
}

// runHeavy is run, but gated by the heavy-ops semaphore — for rev-list,
// diff, and log invocations that can thrash large pack files.
func (r *Repository) runHeavy(ctx context.Context, operation string, args ...string) ([]byte, error) {
	r.heavy.acquire()
	defer r.heavy.release()
	return r.run(ctx, operation, args...)
}

// ListWorktrees parses `git worktree list --porcelain`, tolerant of a
// missing trailing blank line and unknown keys (spec §4.A).
func (r *Repository) ListWorktrees(ctx context.Context) ([]Worktree, error) {
	out, err := r.run(ctx, "worktree list", "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parseWorktreeList(string(out))
}

func parseWorktreeList(output string) ([]Worktree, error) {
	var worktrees []Worktree
	var cur Worktree
	started := false

	flush := func() {
		if started {
			worktrees = append(worktrees, cur)
		}
		cur = Worktree{}
		started = false
	}

	for _, line := range strings.Split(output, "\n") {
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "worktree "):
			flush()
			started = true
			cur.Path = strings.TrimPrefix(line, "worktree ")
		case strings.HasPrefix(line, "HEAD "):
			cur.Head = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			b := strings.TrimPrefix(line, "branch ")
			cur.Branch = strings.TrimPrefix(b, "refs/heads/")
		case line == "bare":
			cur.Bare = true
		case line == "detached":
			cur.Detached = true
		case strings.HasPrefix(line, "locked"):
			cur.Locked = strings.TrimSpace(strings.TrimPrefix(line, "locked"))
		case strings.HasPrefix(line, "prunable"):
			cur.Prunable = strings.TrimSpace(strings.TrimPrefix(line, "prunable"))
		default:
			// unknown key: ignored per spec §4.A tolerance
		}
	}
	flush() // tolerate missing trailing blank line

	return worktrees, nil
}

// CurrentWorktree returns the worktree containing the process's cwd.
func (r *Repository) CurrentWorktree(ctx context.Context) (Worktree, error) {
	all, err := r.ListWorktrees(ctx)
	if err != nil {
		return Worktree{}, err
	}
	top, err := r.run(ctx, "rev-parse --show-toplevel", "rev-parse", "--show-toplevel")
	if err != nil {
		return Worktree{}, err
	}
	toplevel := strings.TrimSpace(string(top))
	for _, w := range all {
		if w.Path == toplevel {
			return w, nil
		}
	}
	return Worktree{}, &ParseError{Operation: "current worktree", Detail: "toplevel not found in worktree list"}
}

// BranchExists checks for a local branch ref.
func (r *Repository) BranchExists(ctx context.Context, name string) (bool, error) {
	_, err := r.run(ctx, "rev-parse --verify", "rev-parse", "--verify", "refs/heads/"+name)
	if err != nil {
		var ce *CommandError
		if cmdErrAs(err, &ce) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RemoteBranchExists checks for a remote-tracking ref "<remote>/<name>",
// used by the switch orchestrator to recognize a token that names an
// unfetched feature branch someone else already pushed (spec §4.G step
// 3: "the token matches a remote ref that can be checked out as a
// tracking branch").
func (r *Repository) RemoteBranchExists(ctx context.Context, remote, name string) (bool, error) {
	_, err := r.run(ctx, "rev-parse --verify", "rev-parse", "--verify", "refs/remotes/"+remote+"/"+name)
	if err != nil {
		var ce *CommandError
		if cmdErrAs(err, &ce) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func cmdErrAs(err error, target **CommandError) bool {
	if ce, ok := err.(*CommandError); ok {
		*target = ce
		return true
	}
	return false
}

// BranchList returns local branches whose name contains an optional
// substring filter ("" for all), sorted lexicographically with the default branch
// pinned first (spec §3).
func (r *Repository) BranchList(ctx context.Context, filter string) ([]Ref, error) {
	args := []string{"for-each-ref", "--format=%(refname:short)\t%(upstream:short)", "refs/heads/"}
	if filter != "" {
		args = append(args, "--format=%(refname:short)\t%(upstream:short)")
	}
	out, err := r.run(ctx, "for-each-ref", args...)
	if err != nil {
		return nil, err
	}

	var refs []Ref
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		name := parts[0]
		upstream := ""
		if len(parts) == 2 {
			upstream = parts[1]
		}
		if filter != "" && !strings.Contains(name, filter) {
			continue
		}
		refs = append(refs, Ref{Name: name, Upstream: upstream})
	}

	def, _ := r.DefaultBranch(ctx)
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Name == def {
			return true
		}
		if refs[j].Name == def {
			return false
		}
		return refs[i].Name < refs[j].Name
	})
	return refs, nil
}

// DefaultBranch resolves the primary remote's HEAD symref, falling back
// to a locally-present main/master. Memoized for the process lifetime.
func (r *Repository) DefaultBranch(ctx context.Context) (string, error) {
	r.mu.Lock()
	if r.defaultBranch != nil {
		b := *r.defaultBranch
		r.mu.Unlock()
		return b, nil
	}
	r.mu.Unlock()

	branch, err := r.resolveDefaultBranch(ctx)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.defaultBranch = &branch
	r.mu.Unlock()
	return branch, nil
}

func (r *Repository) resolveDefaultBranch(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "symbolic-ref", "symbolic-ref", "refs/remotes/origin/HEAD")
	if err == nil {
		ref := strings.TrimSpace(string(out))
		parts := strings.Split(ref, "/")
		name := parts[len(parts)-1]
		if name == "" {
			return "", &ParseError{Operation: "default branch", Detail: "empty branch name in symref"}
		}
		return name, nil
	}

	for _, candidate := range []string{"main", "master"} {
		if _, err := r.run(ctx, "rev-parse --verify", "rev-parse", "--verify", "refs/remotes/origin/"+candidate); err == nil {
			return candidate, nil
		}
		if ok, _ := r.BranchExists(ctx, candidate); ok {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("vcs: could not determine default branch (no origin/HEAD symref, no local main or master)")
}

// GetOriginURL returns the origin remote's URL, or "" if unset.
func (r *Repository) GetOriginURL(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "remote get-url origin", "remote", "get-url", "origin")
	if err != nil {
		return "", nil
	}
	return strings.TrimSpace(string(out)), nil
}

// Root returns the path the Repository was opened with.
func (r *Repository) Root() string { return r.root }
