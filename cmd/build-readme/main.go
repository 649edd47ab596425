// Command build-readme regenerates README.md from README.md.tmpl, filling in
// the list of chat commands.
package main

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"fs-bot/internal/bot"
	"fs-bot/internal/command"

	"github.com/rs/zerolog"
)

type CmdInfo struct {
	Name        string
	Description string
	Master      bool
}

func main() {
	if err := run("README.md.tmpl", "README.md"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(tmplPath, outPath string) error {
	registry := command.NewRegistry(nil, zerolog.Nop())
	if err := bot.RegisterCommands(registry, nil, nil); err != nil {
		return err
	}

	var buf bytes.Buffer
	for _, c := range commandInfos(registry) {
		fmt.Fprintf(&buf, "* **`!%s`**", c.Name)
		if c.Master {
			buf.WriteString(" (master only)")
		}
		fmt.Fprintf(&buf, "\n  %s\n\n", c.Description)
	}

	tmplData, err := os.ReadFile(tmplPath)
	if err != nil {
		return err
	}
	tmpl, err := template.New("readme").Parse(string(tmplData))
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, map[string]any{"Commands": buf.String()}); err != nil {
		return err
	}
	return os.WriteFile(outPath, out.Bytes(), 0o644)
}

// commandInfos lists registered commands plus the built-ins the session handles itself.
func commandInfos(registry *command.Registry) []CmdInfo {
	var infos []CmdInfo
	for _, c := range registry.Commands() {
		infos = append(infos, CmdInfo{Name: c.Name(), Description: c.Description(), Master: c.RequirePermission()})
	}
	return append(infos,
		CmdInfo{Name: "code", Description: "Link to the bot's source code"},
		CmdInfo{Name: "quit", Description: "Say goodbye and shut the bot down", Master: true},
	)
}
