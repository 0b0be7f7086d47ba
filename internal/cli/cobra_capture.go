package cli

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/hrdesk/internal/cli/formatter"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"
)

// captureCobraOutput runs a command through the Cobra tree and returns what
// it printed. The App copy is non-interactive so no command tries to open a
// prompt or spinner inside the alternate screen.
func captureCobraOutput(app *App, args []string) string {
	quiet := *app
	quiet.IsInteractive = nil

	var buf bytes.Buffer
	root := NewRootCmd(&quiet)
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	root.SilenceUsage = true
	root.SilenceErrors = true

	if err := root.Execute(); err != nil {
		if buf.Len() > 0 && !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
			buf.WriteByte('\n')
		}
		buf.WriteString(formatter.ErrorLine(err.Error()))
		if errMsg := err.Error(); strings.Contains(errMsg, "unknown command") && len(args) > 0 {
			if hint := suggestAlternatives(root, args[0]); hint != "" {
				buf.WriteString("\n" + hint)
			}
		}
	}

	return strings.TrimRight(buf.String(), "\n")
}

// suggestAlternatives returns fuzzy-matched command suggestions for an unrecognized input.
func suggestAlternatives(root *cobra.Command, input string) string {
	var names []string
	short := map[string]string{}
	for _, c := range root.Commands() {
		if c.Hidden || c.Name() == "help" || c.Name() == "completion" {
			continue
		}
		names = append(names, c.Name())
		short[c.Name()] = c.Short
	}

	ranks := fuzzy.RankFindFold(input, names)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	if len(ranks) > 3 {
		ranks = ranks[:3]
	}

	var b strings.Builder
	b.WriteString(formatter.Dim("Did you mean:"))
	for _, r := range ranks {
		b.WriteString(fmt.Sprintf("\n  %s  %s",
			formatter.StyleGreen.Render(r.Target),
			formatter.Dim(short[r.Target]),
		))
	}
	return b.String()
}
