package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dailygrace/dailygrace/internal/common"
)

func (s *Shell) credentials() (string, []byte, error) {
	email, err := s.ask("Email")
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(s.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

// Register creates an account and signs in with it.
func (s *Shell) Register(ctx context.Context) error {
	email, password, err := s.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := s.app.Gate.SignUp(ctx, email, string(password))
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Welcome, %s!\n", sess.Email)
	return nil
}

// Login signs in. The login hooks then pull the account's records from
// the cloud in the background.
func (s *Shell) Login(ctx context.Context) error {
	email, password, err := s.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := s.app.Gate.SignIn(ctx, email, string(password))
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Signed in as %s\n", sess.Email)
	return nil
}

// Logout keeps the journal on the device and drops the session and the
// cached card images.
func (s *Shell) Logout(ctx context.Context) error {
	if err := s.app.Gate.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Signed out")
	return nil
}

// DeleteAccount asks for confirmation, then removes the account and
// everything stored for it, here and in the cloud.
func (s *Shell) DeleteAccount(ctx context.Context) error {
	answer, err := s.ask("This deletes your account and every record. Type 'delete' to confirm")
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "delete") {
		fmt.Fprintln(s.out, "Cancelled")
		return nil
	}
	if err := s.app.Gate.DeleteAccount(ctx); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Account deleted")
	return nil
}

// Sync pulls every kind from the cloud again, as a login does.
func (s *Shell) Sync(ctx context.Context) error {
	uid, ok := s.app.Gate.UserID()
	if !ok {
		return common.ErrorUnauthorized
	}
	failed := s.app.Reconciler.Run(ctx, uid)
	if len(failed) == 0 {
		fmt.Fprintln(s.out, "Synced")
		return nil
	}
	for k, err := range failed {
		fmt.Fprintf(s.out, "  %s: %v\n", k.Label(), err)
	}
	return fmt.Errorf("%d kinds not synced", len(failed))
}
