// Package exec runs external commands under one of three disciplines:
// foreground (inherited stdio, awaited), captured (stdout/stderr collected,
// awaited, optional timeout), and detached (new process group, redirected
// to a log file, never awaited).
//
// It also owns environment sanitation: every spawned child has the
// directive-file variable and CLICOLOR_FORCE stripped, and machine-mode
// invocations get non-interactive defaults for pagers and color forcing.
//
// wtr shells out to git/gh/glab rather than using Go libraries for them,
// so this package's job is making that shelling-out uniform, logged, and
// safe to detach.
package exec
