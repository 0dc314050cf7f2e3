package repl

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `
# Alias tester

Type an alias and press **Enter** to test it. In expression mode, each
` + "`$name$`" + ` reference without a value is prompted for in turn; values
are remembered for the rest of the session.

## Commands

Press **Esc** to toggle between the alias and the command line.

| Command | Action |
|---|---|
| ` + "`help`" + ` | Show this help |
| ` + "`vars`" + ` | List the session variables |
| ` + "`unset [name...]`" + ` | Forget the named variables, or all of them |
| ` + "`mode [literal\\|expression]`" + ` | Set or toggle how the alias is read |
| ` + "`edit`" + ` | Edit the alias in ` + "`$EDITOR`" + ` and test it |
| ` + "`clear`" + ` | Clear the screen |
| ` + "`quit`" + ` | Exit |

## Keys

- **Tab** / **Shift+Tab** cycle through completions, **Space** accepts one
- **Up** / **Down** browse history, **Shift+Up** / **Shift+Down** stay in the current mode
- **Ctrl+C** on an empty line or **Ctrl+D** exits

## Expressions

` + "```js" + `
const d = Moment($date$, 'YYYY-MM-DD');
return $region$.toUpperCase() + ' ' + d.format('MMM YYYY');
` + "```" + `
`

// renderHelp renders the help text as terminal markdown wrapped to width.
// The raw markdown is returned when it cannot be rendered.
func renderHelp(width int) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(width-2, 20)),
	)
	if err != nil {
		return helpMarkdown
	}

	out, err := renderer.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}

	return strings.TrimRight(out, "\n")
}
