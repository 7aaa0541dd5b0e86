// Package reconcile pulls the signed-in user's cloud copy of every synced
// kind down to the device once per login.
package reconcile

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dailygrace/dailygrace/internal/client/client"
	"github.com/dailygrace/dailygrace/internal/client/models"
	"github.com/dailygrace/dailygrace/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Policy decides how a remote collection lands on the local one.
type Policy string

const (
	// Overwrite replaces the local collection with the remote one. Records
	// that exist only locally are lost.
	Overwrite Policy = "overwrite"

	// MergeByTimestamp keeps the union by id; where both sides have a
	// record the newer updatedAt wins, the remote one on a tie.
	MergeByTimestamp Policy = "merge"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case Overwrite, "":
		return Overwrite, nil
	case MergeByTimestamp:
		return MergeByTimestamp, nil
	}
	return "", fmt.Errorf("unknown reconcile policy %q", s)
}

// Local is the device side of one kind.
type Local[T any] interface {
	List(ctx context.Context) ([]T, error)
	ReplaceAll(ctx context.Context, items []T) error
}

type job interface {
	kind() models.Kind
	run(ctx context.Context, userID string, p Policy) (int, error)
}

// MaxConcurrentFetches caps how many kinds are pulled at once.
const MaxConcurrentFetches = 3

type Reconciler struct {
	policy Policy
	log    logging.Logger
	jobs   []job
	limit  int
}

func New(policy Policy, log logging.Logger) *Reconciler {
	if policy == "" {
		policy = Overwrite
	}
	return &Reconciler{policy: policy, log: log.With("component", "reconcile"), limit: MaxConcurrentFetches}
}

// Add registers a kind. Kinds are fetched concurrently by Run.
func Add[T any, PT interface {
	*T
	models.Record
}](r *Reconciler, kind models.Kind, remote client.RemoteTable[T], local Local[T]) {
	r.jobs = append(r.jobs, &kindJob[T, PT]{k: kind, remote: remote, local: local})
}

// Run reconciles every registered kind for userID. A kind that fails is
// logged and left as it was; the others still land. The returned map holds
// the failures by kind and is empty when everything succeeded.
func (r *Reconciler) Run(ctx context.Context, userID string) map[models.Kind]error {
	var (
		mu     sync.Mutex
		failed = make(map[models.Kind]error)
		g      errgroup.Group
	)
	g.SetLimit(r.limit)
	for _, j := range r.jobs {
		g.Go(func() error {
			n, err := j.run(ctx, userID, r.policy)
			if err != nil {
				r.log.Error(ctx, "reconcile failed", "kind", string(j.kind()), "error", err)
				mu.Lock()
				failed[j.kind()] = err
				mu.Unlock()
				return nil
			}
			r.log.Debug(ctx, "reconciled", "kind", string(j.kind()), "count", n)
			return nil
		})
	}
	// Jobs report failures through failed, never through the group.
	_ = g.Wait()

	r.log.Info(ctx, "reconcile finished", "user_id", userID, "kinds", len(r.jobs), "failed", len(failed))
	return failed
}

// OnLogin adapts Run to a session login hook.
func (r *Reconciler) OnLogin(ctx context.Context, userID string) {
	r.Run(ctx, userID)
}

type kindJob[T any, PT interface {
	*T
	models.Record
}] struct {
	k      models.Kind
	remote client.RemoteTable[T]
	local  Local[T]
}

func (j *kindJob[T, PT]) kind() models.Kind { return j.k }

func (j *kindJob[T, PT]) run(ctx context.Context, userID string, p Policy) (int, error) {
	remote, err := j.remote.SelectAll(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}

	items := remote
	if p == MergeByTimestamp {
		local, err := j.local.List(ctx)
		if err != nil {
			return 0, fmt.Errorf("read local: %w", err)
		}
		items = merge[T, PT](local, remote)
	}

	if err := j.local.ReplaceAll(ctx, items); err != nil {
		return 0, fmt.Errorf("store: %w", err)
	}
	return len(items), nil
}

func merge[T any, PT interface {
	*T
	models.Record
}](local, remote []T) []T {
	byID := make(map[string]int, len(remote))
	out := slices.Clone(remote)
	for i := range out {
		byID[PT(&out[i]).GetMeta().ID] = i
	}
	for _, l := range local {
		lm := PT(&l).GetMeta()
		i, ok := byID[lm.ID]
		if !ok {
			out = append(out, l)
			continue
		}
		if lm.UpdatedAt.After(PT(&out[i]).GetMeta().UpdatedAt) {
			out[i] = l
		}
	}
	return out
}
