package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dailygrace/dailygrace/internal/client/app"
	"github.com/dailygrace/dailygrace/internal/client/feed"
)

// getSimpleText, getMultiline, getLines and getPassword are indirections
// that tests swap out.
var (
	getSimpleText = GetSimpleText
	getMultiline  = GetMultiline
	getLines      = GetLines
	getPassword   = GetPassword
)

// Shell runs journal commands against an assembled client.
type Shell struct {
	app    *app.App
	reader *bufio.Reader
	out    io.Writer
}

func NewShell(a *app.App, in io.Reader, out io.Writer) *Shell {
	return &Shell{app: a, reader: bufio.NewReader(in), out: out}
}

func (s *Shell) isLoggedIn() bool {
	_, ok := s.app.Gate.UserID()
	return ok
}

func (s *Shell) status() string {
	if sess := s.app.Gate.Session(); sess != nil {
		return "(" + sess.Email + ")"
	}
	if s.app.Gate.HasPending() {
		return "(login required)"
	}
	return ""
}

// Run greets the user and blocks in the prompt loop until exit or EOF.
func (s *Shell) Run(ctx context.Context) {
	fmt.Fprintln(s.out, "Daily Grace (type 'help' for commands)")
	sc := bufio.NewScanner(s.reader)
	runREPL(ctx, s, s.status, sc)
}

func (s *Shell) ask(prompt string) (string, error) {
	return getSimpleText(s.reader, prompt, s.out)
}

func (s *Shell) printEntries(es []feed.Entry) {
	if len(es) == 0 {
		fmt.Fprintln(s.out, "Nothing here yet.")
		return
	}
	for _, e := range es {
		line := []rune(strings.ReplaceAll(e.Content, "\n", " / "))
		if len(line) > 60 {
			line = append(line[:60], []rune("...")...)
		}
		fmt.Fprintf(s.out, "%s  %-10s %-8s %s  %s\n", e.Date, e.Type.Label(), shortID(e.ID), e.Title, string(line))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// expandID resolves an id prefix, as printed by the listings, to the full
// id among ids. An exact match wins; an ambiguous prefix is an error.
func expandID(prefix string, ids []string) (string, error) {
	var found []string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no record with id %s", prefix)
	case 1:
		return found[0], nil
	}
	return "", fmt.Errorf("id %s is ambiguous", prefix)
}

var _ execIface = (*Shell)(nil)

// stdinShell is the shell the root command starts.
func stdinShell(a *app.App) *Shell {
	return NewShell(a, os.Stdin, os.Stdout)
}
