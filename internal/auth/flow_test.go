package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/evcharge-agent/internal/gateway"
	"github.com/iliyamo/evcharge-agent/internal/model"
	"github.com/iliyamo/evcharge-agent/internal/store"
)

type fakeNet bool

func (f fakeNet) Online() bool { return bool(f) }

type fakeStore struct {
	records     map[string]model.Credential
	lookupCalls int
	upserted    []model.Credential
}

func newFakeStore(creds ...model.Credential) *fakeStore {
	s := &fakeStore{records: map[string]model.Credential{}}
	for _, c := range creds {
		s.records[c.Identifier] = c
	}
	return s
}

func (s *fakeStore) ByIdentifier(_ context.Context, identifier string) (model.Credential, error) {
	s.lookupCalls++
	c, ok := s.records[identifier]
	if !ok {
		return model.Credential{}, sql.ErrNoRows
	}
	return c, nil
}

func (s *fakeStore) InsertIfAbsent(_ context.Context, c model.Credential) error {
	if _, ok := s.records[c.Identifier]; ok {
		return store.ErrIdentifierExists
	}
	s.records[c.Identifier] = c
	return nil
}

func (s *fakeStore) Upsert(_ context.Context, c model.Credential) error {
	s.records[c.Identifier] = c
	s.upserted = append(s.upserted, c)
	return nil
}

type fakeGateway struct {
	loginOperator func(ctx context.Context, email, password string) (gateway.LoginData, error)
	loginOwner    func(ctx context.Context, identifier, password string) (gateway.LoginData, error)
	verify        func(ctx context.Context) (gateway.VerifyData, error)
	register      func(ctx context.Context, reg gateway.OwnerRegistration) error
}

func (g *fakeGateway) LoginOperator(ctx context.Context, email, password string) (gateway.LoginData, error) {
	return g.loginOperator(ctx, email, password)
}

func (g *fakeGateway) LoginOwner(ctx context.Context, identifier, password string) (gateway.LoginData, error) {
	return g.loginOwner(ctx, identifier, password)
}

func (g *fakeGateway) VerifyToken(ctx context.Context) (gateway.VerifyData, error) {
	return g.verify(ctx)
}

func (g *fakeGateway) RegisterOwner(ctx context.Context, reg gateway.OwnerRegistration) error {
	return g.register(ctx, reg)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func activeOwner(t *testing.T, identifier, password string) model.Credential {
	t.Helper()
	return model.Credential{
		Identifier:   identifier,
		PasswordHash: hashed(t, password),
		Role:         model.RoleEVOwner,
		IsActive:     true,
	}
}

func TestOfflineLoginSuccess(t *testing.T) {
	st := newFakeStore(activeOwner(t, "u1", "p1"))
	f := NewFlow(&fakeGateway{}, st, fakeNet(false), bcrypt.MinCost)

	res, err := f.Login(context.Background(), "u1", "p1", model.RoleEVOwner)
	require.NoError(t, err)
	assert.True(t, res.Offline)
	assert.Empty(t, res.Token)
	assert.Equal(t, "Logged in offline", res.Message)
	assert.Equal(t, "u1", res.Credential.Identifier)
}

func TestOfflineLoginWrongPassword(t *testing.T) {
	st := newFakeStore(activeOwner(t, "u1", "p1"))
	f := NewFlow(&fakeGateway{}, st, fakeNet(false), bcrypt.MinCost)

	_, err := f.Login(context.Background(), "u1", "wrong", model.RoleEVOwner)
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "Invalid credentials", err.Error())
}

func TestOfflineLoginUnknownIdentifier(t *testing.T) {
	f := NewFlow(&fakeGateway{}, newFakeStore(), fakeNet(false), bcrypt.MinCost)

	_, err := f.Login(context.Background(), "nobody", "p", model.RoleEVOwner)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestOfflineLoginInactiveAccount(t *testing.T) {
	cred := activeOwner(t, "u1", "p1")
	cred.IsActive = false
	f := NewFlow(&fakeGateway{}, newFakeStore(cred), fakeNet(false), bcrypt.MinCost)

	_, err := f.Login(context.Background(), "u1", "p1", model.RoleEVOwner)
	require.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestRemoteRejectionSkipsLocalFallback(t *testing.T) {
	// The store holds a matching credential, but an explicit 401 from
	// the gateway is terminal: the local store must not be consulted.
	st := newFakeStore(activeOwner(t, "u1", "p1"))
	gw := &fakeGateway{
		loginOwner: func(context.Context, string, string) (gateway.LoginData, error) {
			return gateway.LoginData{}, gateway.ErrUnauthorized
		},
	}
	f := NewFlow(gw, st, fakeNet(true), bcrypt.MinCost)

	_, err := f.Login(context.Background(), "u1", "p1", model.RoleEVOwner)
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "Invalid credentials", err.Error())
	assert.Zero(t, st.lookupCalls)
}

func TestRemoteFailureFallsBackToLocal(t *testing.T) {
	st := newFakeStore(activeOwner(t, "u1", "p1"))
	gw := &fakeGateway{
		loginOwner: func(context.Context, string, string) (gateway.LoginData, error) {
			return gateway.LoginData{}, errors.New("502 bad gateway")
		},
	}
	f := NewFlow(gw, st, fakeNet(true), bcrypt.MinCost)

	res, err := f.Login(context.Background(), "u1", "p1", model.RoleEVOwner)
	require.NoError(t, err)
	assert.True(t, res.Offline)
	assert.Equal(t, "Logged in offline (Fallback)", res.Message)
}

func TestRemoteFailureThenLocalMismatchCarriesReason(t *testing.T) {
	st := newFakeStore(activeOwner(t, "u1", "p1"))
	gw := &fakeGateway{
		loginOwner: func(context.Context, string, string) (gateway.LoginData, error) {
			return gateway.LoginData{}, errors.New("502 bad gateway")
		},
	}
	f := NewFlow(gw, st, fakeNet(true), bcrypt.MinCost)

	_, err := f.Login(context.Background(), "u1", "wrong", model.RoleEVOwner)
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "502 bad gateway")
}

func TestRemoteLoginMergesLocalProfileAndCaches(t *testing.T) {
	local := activeOwner(t, "u1", "old-password")
	local.FullName = "Ada Lovelace"
	local.Phone = "+358400123456"
	st := newFakeStore(local)

	gw := &fakeGateway{
		loginOwner: func(context.Context, string, string) (gateway.LoginData, error) {
			return gateway.LoginData{
				UserID:     "srv-7",
				Identifier: "u1",
				Role:       model.RoleEVOwner,
				IsActive:   true,
				Token:      "bearer-token",
			}, nil
		},
	}
	f := NewFlow(gw, st, fakeNet(true), bcrypt.MinCost)

	res, err := f.Login(context.Background(), "u1", "p1", model.RoleEVOwner)
	require.NoError(t, err)
	assert.False(t, res.Offline)
	assert.Equal(t, "bearer-token", res.Token)
	assert.Equal(t, "Logged in", res.Message)

	// The login response has no profile fields; the locally known
	// name/phone win.  The cached password follows the one just used.
	require.Len(t, st.upserted, 1)
	cached := st.upserted[0]
	assert.Equal(t, "Ada Lovelace", cached.FullName)
	assert.Equal(t, "+358400123456", cached.Phone)
	assert.Equal(t, "srv-7", cached.UserID)
	assert.True(t, cached.SyncedWithServer)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(cached.PasswordHash), []byte("p1")))
}

func TestRemoteLoginWithoutTokenFallsBack(t *testing.T) {
	st := newFakeStore(activeOwner(t, "u1", "p1"))
	gw := &fakeGateway{
		loginOwner: func(context.Context, string, string) (gateway.LoginData, error) {
			return gateway.LoginData{Identifier: "u1"}, nil // success shape but no token
		},
	}
	f := NewFlow(gw, st, fakeNet(true), bcrypt.MinCost)

	res, err := f.Login(context.Background(), "u1", "p1", model.RoleEVOwner)
	require.NoError(t, err)
	assert.True(t, res.Offline)
	assert.Equal(t, "Logged in offline (Fallback)", res.Message)
}

func TestOperatorLoginUsesEmailEndpoint(t *testing.T) {
	called := false
	gw := &fakeGateway{
		loginOperator: func(_ context.Context, email, _ string) (gateway.LoginData, error) {
			called = true
			assert.Equal(t, "op@site.example", email)
			return gateway.LoginData{Identifier: "op@site.example", Role: model.RoleStationOperator, IsActive: true, Token: "tok"}, nil
		},
	}
	f := NewFlow(gw, newFakeStore(), fakeNet(true), bcrypt.MinCost)

	_, err := f.Login(context.Background(), "op@site.example", "pw", model.RoleStationOperator)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestRegisterOfflineKeepsUnsyncedRecord(t *testing.T) {
	st := newFakeStore()
	f := NewFlow(&fakeGateway{}, st, fakeNet(false), bcrypt.MinCost)

	cred, err := f.Register(context.Background(), Registration{
		Identifier: "new@ev.example",
		Password:   "secret",
		FullName:   "New Owner",
	})
	require.NoError(t, err)
	assert.False(t, cred.SyncedWithServer)
	assert.Equal(t, model.RoleEVOwner, cred.Role)
	assert.True(t, cred.IsActive)
	_, ok := st.records["new@ev.example"]
	assert.True(t, ok)
}

func TestRegisterOnlineFlipsSyncedFlag(t *testing.T) {
	gw := &fakeGateway{
		register: func(_ context.Context, reg gateway.OwnerRegistration) error {
			assert.Equal(t, "new@ev.example", reg.Identifier)
			return nil
		},
	}
	f := NewFlow(gw, newFakeStore(), fakeNet(true), bcrypt.MinCost)

	cred, err := f.Register(context.Background(), Registration{Identifier: "new@ev.example", Password: "secret"})
	require.NoError(t, err)
	assert.True(t, cred.SyncedWithServer)
}

func TestRegisterSwallowsRemoteFailure(t *testing.T) {
	gw := &fakeGateway{
		register: func(context.Context, gateway.OwnerRegistration) error {
			return errors.New("gateway 500")
		},
	}
	st := newFakeStore()
	f := NewFlow(gw, st, fakeNet(true), bcrypt.MinCost)

	cred, err := f.Register(context.Background(), Registration{Identifier: "new@ev.example", Password: "secret"})
	require.NoError(t, err)
	assert.False(t, cred.SyncedWithServer)
	_, ok := st.records["new@ev.example"]
	assert.True(t, ok)
}

func TestRegisterDuplicateIdentifier(t *testing.T) {
	st := newFakeStore(activeOwner(t, "new@ev.example", "whatever"))
	f := NewFlow(&fakeGateway{}, st, fakeNet(false), bcrypt.MinCost)

	_, err := f.Register(context.Background(), Registration{Identifier: "new@ev.example", Password: "secret"})
	require.ErrorIs(t, err, ErrUserExists)
}

func TestVerifyRequiresConnectivity(t *testing.T) {
	f := NewFlow(&fakeGateway{}, newFakeStore(), fakeNet(false), bcrypt.MinCost)

	_, err := f.Verify(context.Background())
	require.ErrorIs(t, err, ErrVerifyOffline)
}

func TestVerifyMergesLocalProfile(t *testing.T) {
	local := activeOwner(t, "u1", "p1")
	local.FullName = "Ada Lovelace"
	local.Phone = "+358400123456"
	gw := &fakeGateway{
		verify: func(context.Context) (gateway.VerifyData, error) {
			return gateway.VerifyData{UserID: "srv-7", Identifier: "u1", Role: model.RoleEVOwner, IsActive: true}, nil
		},
	}
	f := NewFlow(gw, newFakeStore(local), fakeNet(true), bcrypt.MinCost)

	cred, err := f.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", cred.FullName)
	assert.Equal(t, "+358400123456", cred.Phone)
	assert.Equal(t, local.PasswordHash, cred.PasswordHash)
	assert.Equal(t, "srv-7", cred.UserID)
}
