package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. *Shell
// implements it; tests provide a stub.
type execIface interface {
	isLoggedIn() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	Sync(ctx context.Context) error

	AddMeditation(ctx context.Context) error
	AddPrayer(ctx context.Context) error
	AnswerPrayer(ctx context.Context, id string) error
	AddGratitude(ctx context.Context) error
	AddDiary(ctx context.Context) error
	AddRecord(ctx context.Context, categoryID string) error

	Today(ctx context.Context) error
	List(ctx context.Context, day string) error
	Search(ctx context.Context, query string) error
	Streak(ctx context.Context) error
	Categories(ctx context.Context) error
	AddCategory(ctx context.Context) error
	Cards(ctx context.Context) error
}

const (
	helpCommon = "Journal: qt, prayer, answer <id>, thanks, diary, record <category-id>, " +
		"today, list [YYYY-MM-DD], search <text>, streak, categories, addcategory, cards, exit"
	helpSignedOut = "Account: register, login"
	helpSignedIn  = "Account: sync, logout, deleteaccount"
)

// runREPL reads commands from scanner until EOF, "exit" or "quit". Handler
// errors are printed and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("grace %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		arg := strings.Join(args, " ")

		var err error
		switch cmd {
		case "help":
			printlnFn(helpCommon)
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "deleteaccount":
			err = a.DeleteAccount(ctx)
		case "sync":
			err = a.Sync(ctx)

		case "qt":
			err = a.AddMeditation(ctx)
		case "prayer":
			err = a.AddPrayer(ctx)
		case "answer":
			if arg == "" {
				printlnFn("Usage: answer <id>")
				continue
			}
			err = a.AnswerPrayer(ctx, arg)
		case "thanks":
			err = a.AddGratitude(ctx)
		case "diary":
			err = a.AddDiary(ctx)
		case "record":
			if arg == "" {
				printlnFn("Usage: record <category-id>")
				continue
			}
			err = a.AddRecord(ctx, arg)

		case "today":
			err = a.Today(ctx)
		case "l", "list":
			err = a.List(ctx, arg)
		case "search":
			if arg == "" {
				printlnFn("Usage: search <text>")
				continue
			}
			err = a.Search(ctx, arg)
		case "streak":
			err = a.Streak(ctx)
		case "categories":
			err = a.Categories(ctx)
		case "addcategory":
			err = a.AddCategory(ctx)
		case "cards":
			err = a.Cards(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
