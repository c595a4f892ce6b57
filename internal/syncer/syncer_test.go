package syncer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/evcharge-agent/internal/model"
)

type fakeNet bool

func (f fakeNet) Online() bool { return bool(f) }

type fakeStore struct {
	pending []model.Credential
	marked  []string
}

func (f *fakeStore) Unsynced(context.Context) ([]model.Credential, error) {
	return f.pending, nil
}

func (f *fakeStore) MarkSynced(_ context.Context, identifier string, _ time.Time) error {
	f.marked = append(f.marked, identifier)
	return nil
}

func TestSyncOnceSkipsWhileOffline(t *testing.T) {
	st := &fakeStore{pending: []model.Credential{{Identifier: "a@ev.example"}}}
	s := New(st, fakeNet(false), time.Minute)

	require.NoError(t, s.SyncOnce(context.Background()))
	assert.Empty(t, st.marked)
}

func TestSyncOnceMarksAllPending(t *testing.T) {
	st := &fakeStore{pending: []model.Credential{
		{Identifier: "a@ev.example"},
		{Identifier: "b@ev.example"},
	}}
	s := New(st, fakeNet(true), time.Minute)

	require.NoError(t, s.SyncOnce(context.Background()))
	assert.Equal(t, []string{"a@ev.example", "b@ev.example"}, st.marked)
}

// TestMarkSyncedWithoutResubmit pins the current (known incomplete)
// behavior: a pass flips the synced flag without re-submitting the
// registration to the gateway.  When re-submission lands, this test
// must change to expect the outbound call first.
func TestMarkSyncedWithoutResubmit(t *testing.T) {
	st := &fakeStore{pending: []model.Credential{{Identifier: "a@ev.example"}}}
	s := New(st, fakeNet(true), time.Minute)

	require.NoError(t, s.SyncOnce(context.Background()))
	assert.Equal(t, []string{"a@ev.example"}, st.marked)
}

func TestNewDefaultsInterval(t *testing.T) {
	s := New(&fakeStore{}, fakeNet(true), 0)
	assert.Equal(t, time.Minute, s.interval)
}
