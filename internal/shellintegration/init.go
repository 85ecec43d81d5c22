package shellintegration

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var templateFile = map[Shell]string{
	Bash:       "templates/bash.sh.tmpl",
	Zsh:        "templates/zsh.zsh.tmpl",
	Fish:       "templates/fish.fish.tmpl",
	PowerShell: "templates/powershell.ps1.tmpl",
}

type initVars struct {
	Cmd string
}

// Init renders the shell wrapper function `wtr config shell init
// <shell>` prints for the caller to eval/source. cmd is the command
// name the wrapper should invoke (e.g. "wtr", or "git-wtr" if the
// binary is invoked via a custom prefix).
func Init(shell Shell, cmd string) (string, error) {
	path, ok := templateFile[shell]
	if !ok {
		return "", fmt.Errorf("shellintegration: unsupported shell %q", shell)
	}

	tmpl, err := template.New(path).ParseFS(templatesFS, path)
	if err != nil {
		return "", fmt.Errorf("shellintegration: parse template: %w", err)
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, basename(path), initVars{Cmd: cmd}); err != nil {
		return "", fmt.Errorf("shellintegration: render template: %w", err)
	}
	return b.String(), nil
}

func basename(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
