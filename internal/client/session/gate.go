package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dailygrace/dailygrace/internal/client/client"
	"github.com/dailygrace/dailygrace/internal/client/repositories/kv"
	"github.com/dailygrace/dailygrace/internal/common"
	"github.com/dailygrace/dailygrace/internal/dbx"
	"github.com/dailygrace/dailygrace/internal/logging"
)

// KeyPrefix namespaces the persisted token material in the kv table. Only
// these keys are purged on sign-out.
const KeyPrefix = "session."

const (
	keyAccessToken  = KeyPrefix + "access_token"
	keyRefreshToken = KeyPrefix + "refresh_token"
	keyUserID       = KeyPrefix + "user_id"
	keyEmail        = KeyPrefix + "email"
)

type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Outcome tells the caller of RequireAuth what happened to its action.
type Outcome int

const (
	Allowed Outcome = iota
	Deferred
)

func (o Outcome) String() string {
	if o == Deferred {
		return "deferred"
	}
	return "allowed"
}

// Action is work that needs a signed-in user.
type Action func(ctx context.Context)

// LoginHook runs once on every transition to Authenticated through SignIn
// or SignUp.
type LoginHook func(ctx context.Context, userID string)

// Clearer drops locally cached data.
type Clearer interface {
	Clear(ctx context.Context) error
}

// ClearerFunc adapts a function to Clearer.
type ClearerFunc func(ctx context.Context) error

func (f ClearerFunc) Clear(ctx context.Context) error { return f(ctx) }

// Options wire the gate to the rest of the client. Every field is optional.
type Options struct {
	// SettleDelay postpones the pending action after a login.
	SettleDelay time.Duration

	// Prompt is raised when an action is deferred; it receives the
	// return context the caller asked for.
	Prompt func(returnContext string)

	// Assets is cleared on sign-out so the next user of the device does
	// not see the previous user's cards.
	Assets Clearer

	// Collections are cleared after the account is deleted remotely.
	Collections []Clearer
}

type pending struct {
	action        Action
	returnContext string
}

// Gate is the session state machine. It is safe for concurrent use.
type Gate struct {
	db   *sql.DB
	auth client.AuthBackend
	log  logging.Logger
	opts Options

	mu      sync.RWMutex
	state   State
	sess    *client.Session
	pending *pending
	hooks   []LoginHook

	wg sync.WaitGroup
}

func NewGate(db *sql.DB, auth client.AuthBackend, log logging.Logger, opts Options) *Gate {
	return &Gate{
		db:   db,
		auth: auth,
		log:  log.With("component", "session"),
		opts: opts,
	}
}

// OnLogin registers h. Hooks run on their own goroutine; Wait flushes them.
func (g *Gate) OnLogin(h LoginHook) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hooks = append(g.hooks, h)
}

func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// UserID returns the signed-in user. It is read fresh on every call.
func (g *Gate) UserID() (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.state != Authenticated || g.sess == nil {
		return "", false
	}
	return g.sess.UserID, true
}

// Session returns a copy of the current session, or nil.
func (g *Gate) Session() *client.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.state != Authenticated || g.sess == nil {
		return nil
	}
	s := *g.sess
	return &s
}

// HasPending reports whether an action is parked.
func (g *Gate) HasPending() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.pending != nil
}

// Start restores the persisted session. Missing or rejected tokens leave
// the gate unauthenticated; rejected ones are purged. Restoring is not a
// login: hooks do not fire.
func (g *Gate) Start(ctx context.Context) error {
	repo := kv.NewSQLiteRepository(g.db)
	access, err := repo.Get(ctx, keyAccessToken)
	if err != nil {
		return err
	}
	refresh, err := repo.Get(ctx, keyRefreshToken)
	if err != nil {
		return err
	}
	if access == nil && refresh == nil {
		g.setState(Unauthenticated, nil)
		return nil
	}

	g.setState(Authenticating, nil)
	sess, err := g.auth.Restore(ctx, string(access), string(refresh))
	if err != nil {
		g.log.Warn(ctx, "session restore failed, purging tokens", "error", err)
		g.setState(Unauthenticated, nil)
		return g.purgeSession(ctx)
	}
	if err := g.persist(ctx, sess); err != nil {
		g.setState(Unauthenticated, nil)
		return err
	}
	g.setState(Authenticated, sess)
	g.log.Info(ctx, "session restored", "user_id", sess.UserID)
	return nil
}

// RequireAuth runs action now when signed in. Otherwise it parks action,
// replacing any parked one, raises the login prompt and returns Deferred.
func (g *Gate) RequireAuth(ctx context.Context, action Action, returnContext string) Outcome {
	g.mu.Lock()
	if g.state == Authenticated {
		g.mu.Unlock()
		action(ctx)
		return Allowed
	}
	g.pending = &pending{action: action, returnContext: returnContext}
	g.mu.Unlock()

	if g.opts.Prompt != nil {
		g.opts.Prompt(returnContext)
	}
	return Deferred
}

// CancelLogin drops the parked action without running it.
func (g *Gate) CancelLogin() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = nil
	if g.state == Authenticating {
		g.state = Unauthenticated
	}
}

func (g *Gate) SignIn(ctx context.Context, email, password string) (*client.Session, error) {
	return g.login(ctx, func(ctx context.Context) (*client.Session, error) {
		return g.auth.SignIn(ctx, email, password)
	})
}

func (g *Gate) SignUp(ctx context.Context, email, password string) (*client.Session, error) {
	return g.login(ctx, func(ctx context.Context) (*client.Session, error) {
		return g.auth.SignUp(ctx, email, password)
	})
}

func (g *Gate) login(ctx context.Context, call func(context.Context) (*client.Session, error)) (*client.Session, error) {
	g.mu.Lock()
	prev := g.state
	prevUser := ""
	if g.sess != nil {
		prevUser = g.sess.UserID
	}
	g.state = Authenticating
	g.mu.Unlock()

	sess, err := call(ctx)
	if err != nil {
		g.mu.Lock()
		g.state = prev
		g.mu.Unlock()
		return nil, err
	}
	if err := g.persist(ctx, sess); err != nil {
		g.mu.Lock()
		g.state = prev
		g.mu.Unlock()
		return nil, err
	}

	g.mu.Lock()
	g.state = Authenticated
	g.sess = sess
	p := g.pending
	g.pending = nil
	hooks := append([]LoginHook(nil), g.hooks...)
	g.mu.Unlock()

	g.log.Info(ctx, "signed in", "user_id", sess.UserID)

	bg := context.WithoutCancel(ctx)
	if prev != Authenticated || prevUser != sess.UserID {
		for _, h := range hooks {
			g.wg.Add(1)
			go func() {
				defer g.wg.Done()
				h(bg, sess.UserID)
			}()
		}
	}
	if p != nil {
		g.wg.Add(1)
		time.AfterFunc(g.opts.SettleDelay, func() {
			defer g.wg.Done()
			p.action(bg)
		})
	}

	out := *sess
	return &out, nil
}

// SignOut forgets the user. Journal collections stay on the device; the
// session keys and the local card tier do not.
func (g *Gate) SignOut(ctx context.Context) error {
	g.mu.Lock()
	sess := g.sess
	g.state = Unauthenticated
	g.sess = nil
	g.pending = nil
	g.mu.Unlock()

	if sess != nil {
		if err := g.auth.SignOut(ctx, sess.RefreshToken); err != nil {
			g.log.Warn(ctx, "remote sign-out failed", "error", err)
		}
	}

	var errs []error
	errs = append(errs, g.purgeSession(ctx))
	if g.opts.Assets != nil {
		errs = append(errs, g.opts.Assets.Clear(ctx))
	}
	return errors.Join(errs...)
}

// DeleteAccount deletes the account remotely and, only if that worked,
// every local collection. A remote failure is returned untouched.
func (g *Gate) DeleteAccount(ctx context.Context) error {
	sess := g.Session()
	if sess == nil {
		return fmt.Errorf("delete account: %w", common.ErrorUnauthorized)
	}
	if err := g.auth.DeleteAccount(ctx, sess.AccessToken); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	g.log.Info(ctx, "account deleted", "user_id", sess.UserID)

	g.mu.Lock()
	g.state = Unauthenticated
	g.sess = nil
	g.pending = nil
	g.mu.Unlock()

	var errs []error
	for _, c := range g.opts.Collections {
		errs = append(errs, c.Clear(ctx))
	}
	errs = append(errs, g.purgeSession(ctx))
	if g.opts.Assets != nil {
		errs = append(errs, g.opts.Assets.Clear(ctx))
	}
	return errors.Join(errs...)
}

// Wait blocks until login hooks and the pending action have finished.
func (g *Gate) Wait() {
	g.wg.Wait()
}

func (g *Gate) setState(s State, sess *client.Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = s
	g.sess = sess
}

func (g *Gate) persist(ctx context.Context, s *client.Session) error {
	return dbx.WithTx(ctx, g.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := kv.NewSQLiteRepository(tx)
		for k, v := range map[string]string{
			keyAccessToken:  s.AccessToken,
			keyRefreshToken: s.RefreshToken,
			keyUserID:       s.UserID,
			keyEmail:        s.Email,
		} {
			if err := repo.Set(ctx, k, []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (g *Gate) purgeSession(ctx context.Context) error {
	return kv.NewSQLiteRepository(g.db).DeleteByPrefix(ctx, KeyPrefix)
}
