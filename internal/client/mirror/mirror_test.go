package mirror

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dailygrace/dailygrace/internal/client/models"
	"github.com/dailygrace/dailygrace/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdentity struct {
	mu  sync.Mutex
	uid string
}

func (f *fakeIdentity) UserID() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uid, f.uid != ""
}

func (f *fakeIdentity) set(uid string) {
	f.mu.Lock()
	f.uid = uid
	f.mu.Unlock()
}

type call struct {
	op, uid, id string
}

type fakeTable struct {
	mu    sync.Mutex
	calls []call
	err   error
	block chan struct{}
	// context state observed while the call ran
	ctxErrs   []error
	deadlines []bool
}

func (f *fakeTable) record(ctx context.Context, op, uid, id string) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op, uid, id})
	_, hasDeadline := ctx.Deadline()
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	f.deadlines = append(f.deadlines, hasDeadline)
	return f.err
}

func (f *fakeTable) Insert(ctx context.Context, uid string, v *models.Diary) error {
	return f.record(ctx, "insert", uid, v.ID)
}
func (f *fakeTable) Update(ctx context.Context, uid string, v *models.Diary) error {
	return f.record(ctx, "update", uid, v.ID)
}
func (f *fakeTable) Delete(ctx context.Context, uid, id string) error {
	return f.record(ctx, "delete", uid, id)
}
func (f *fakeTable) SelectAll(context.Context, string) ([]models.Diary, error) { return nil, nil }

func (f *fakeTable) snapshot() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func diary(id string) models.Diary {
	return models.Diary{Meta: models.Meta{ID: id}, Content: "x"}
}

func TestMirror_NoUserIsNoop(t *testing.T) {
	table := &fakeTable{}
	tr := &Tracker{}
	m := New[models.Diary](models.KindDiary, table, &fakeIdentity{}, tr, logging.Discard())

	m.Insert(context.Background(), "d1", diary("d1"))
	m.Delete(context.Background(), "d1")
	tr.Wait()

	assert.Empty(t, table.snapshot())
}

func TestMirror_ScopesCallsToUser(t *testing.T) {
	table := &fakeTable{}
	tr := &Tracker{}
	m := New[models.Diary](models.KindDiary, table, &fakeIdentity{uid: "u1"}, tr, logging.Discard())

	m.Insert(context.Background(), "d1", diary("d1"))
	tr.Wait()
	m.Update(context.Background(), "d1", diary("d1"))
	tr.Wait()
	m.Delete(context.Background(), "d1")
	tr.Wait()

	assert.Equal(t, []call{{"insert", "u1", "d1"}, {"update", "u1", "d1"}, {"delete", "u1", "d1"}}, table.snapshot())
}

func TestMirror_FailureIsSwallowed(t *testing.T) {
	table := &fakeTable{err: errors.New("network down")}
	tr := &Tracker{}
	m := New[models.Diary](models.KindDiary, table, &fakeIdentity{uid: "u1"}, tr, logging.Discard())

	require.NotPanics(t, func() {
		m.Insert(context.Background(), "d1", diary("d1"))
		tr.Wait()
	})
	assert.Len(t, table.snapshot(), 1)
}

func TestMirror_DoesNotBlockCaller(t *testing.T) {
	table := &fakeTable{block: make(chan struct{})}
	tr := &Tracker{}
	m := New[models.Diary](models.KindDiary, table, &fakeIdentity{uid: "u1"}, tr, logging.Discard())

	done := make(chan struct{})
	go func() {
		m.Insert(context.Background(), "d1", diary("d1"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Insert waited for the remote call")
	}

	close(table.block)
	tr.Wait()
	assert.Len(t, table.snapshot(), 1)
}

func TestMirror_IdentityIsSnapshotAtCallTime(t *testing.T) {
	table := &fakeTable{block: make(chan struct{})}
	tr := &Tracker{}
	id := &fakeIdentity{uid: "u1"}
	m := New[models.Diary](models.KindDiary, table, id, tr, logging.Discard())

	m.Insert(context.Background(), "d1", diary("d1"))
	id.set("") // sign-out races the in-flight call
	close(table.block)
	tr.Wait()

	assert.Equal(t, []call{{"insert", "u1", "d1"}}, table.snapshot())
}

func TestMirror_OutlivesCallerContext(t *testing.T) {
	table := &fakeTable{block: make(chan struct{})}
	tr := &Tracker{}
	m := New[models.Diary](models.KindDiary, table, &fakeIdentity{uid: "u1"}, tr, logging.Discard(), WithTimeout[models.Diary](time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	m.Insert(ctx, "d1", diary("d1"))
	cancel()
	close(table.block)
	tr.Wait()

	table.mu.Lock()
	defer table.mu.Unlock()
	require.Len(t, table.ctxErrs, 1)
	assert.NoError(t, table.ctxErrs[0])
	assert.True(t, table.deadlines[0])
}
