// Package cli is the dailygrace command line: a cobra command tree with
// an interactive journal shell as the default command, plus "serve" for the
// local JSON API and "migrate" for the local database.
//
// The shell keeps a prompt loop in the spirit of a small REPL: journal
// commands work offline at all times, while login, logout, sync and account
// deletion go through the session gate.
package cli
