// Package auth implements the offline-aware authentication flow: try
// the gateway when it is reachable, fall back to the local credential
// store when it is not, and keep the store eventually consistent with
// the server.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/evcharge-agent/internal/gateway"
	"github.com/iliyamo/evcharge-agent/internal/model"
	"github.com/iliyamo/evcharge-agent/internal/netcheck"
	"github.com/iliyamo/evcharge-agent/internal/store"
)

// Failure messages surfaced to the kiosk UI.  The wording is part of
// the agent's contract with the UI and is pinned by tests.
var (
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrAccountDeactivated = errors.New("Account may be deactivated. Please connect to internet to verify.")
	ErrUserExists         = errors.New("Registration failed. User may already exist.")
	ErrVerifyOffline      = errors.New("Cannot verify session without a connection")
)

// Gateway is the slice of the reservation API the flow needs.
type Gateway interface {
	LoginOperator(ctx context.Context, email, password string) (gateway.LoginData, error)
	LoginOwner(ctx context.Context, identifier, password string) (gateway.LoginData, error)
	VerifyToken(ctx context.Context) (gateway.VerifyData, error)
	RegisterOwner(ctx context.Context, reg gateway.OwnerRegistration) error
}

// Store is the slice of the credential store the flow needs.
type Store interface {
	ByIdentifier(ctx context.Context, identifier string) (model.Credential, error)
	InsertIfAbsent(ctx context.Context, c model.Credential) error
	Upsert(ctx context.Context, c model.Credential) error
}

// LoginResult is a successful login.  Token is empty for offline
// sessions; Message tells the UI which path was taken.
type LoginResult struct {
	Credential model.Credential
	Token      string
	Offline    bool
	Message    string
}

// Registration carries an EV-owner sign-up submitted at the kiosk.
type Registration struct {
	Identifier  string
	Password    string
	FullName    string
	Phone       string
	Address     string
	DateOfBirth string
}

// Flow drives login, registration and token verification.
type Flow struct {
	gw         Gateway
	store      Store
	net        netcheck.Checker
	bcryptCost int
	now        func() time.Time
}

// NewFlow builds the flow.  bcryptCost is used when hashing passwords
// into the local store.
func NewFlow(gw Gateway, st Store, net netcheck.Checker, bcryptCost int) *Flow {
	return &Flow{gw: gw, store: st, net: net, bcryptCost: bcryptCost, now: time.Now}
}

// Login authenticates identifier+password for the given role.  When
// the gateway is reachable it is tried first; an explicit 401 is
// terminal and never degrades into the offline fallback.  Any other
// remote failure, and unreachability, fall back to the local store.
func (f *Flow) Login(ctx context.Context, identifier, password string, role model.Role) (LoginResult, error) {
	identifier = store.Normalize(identifier)
	if !f.net.Online() {
		return f.localLogin(ctx, identifier, password, "")
	}

	var (
		data gateway.LoginData
		err  error
	)
	if role == model.RoleEVOwner {
		data, err = f.gw.LoginOwner(ctx, identifier, password)
	} else {
		data, err = f.gw.LoginOperator(ctx, identifier, password)
	}
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			return LoginResult{}, ErrInvalidCredentials
		}
		// Server error, bad response shape, transport failure: degrade
		// to the local store with the upstream reason attached.
		return f.localLogin(ctx, identifier, password, err.Error())
	}
	if data.Token == "" {
		return f.localLogin(ctx, identifier, password, "login response carried no token")
	}

	cred, err := f.mergeRemoteLogin(ctx, identifier, password, data)
	if err != nil {
		return LoginResult{}, err
	}
	if err := f.store.Upsert(ctx, cred); err != nil {
		// The session is still good; the cached copy is best effort.
		log.Printf("auth: caching credential for %s failed: %v", identifier, err)
	}
	return LoginResult{Credential: cred, Token: data.Token, Message: "Logged in"}, nil
}

// mergeRemoteLogin builds the credential to cache after a remote
// login.  The login response has no profile fields, so any locally
// known name/phone/address wins over the (absent) server values.
func (f *Flow) mergeRemoteLogin(ctx context.Context, identifier, password string, data gateway.LoginData) (model.Credential, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), f.bcryptCost)
	if err != nil {
		return model.Credential{}, fmt.Errorf("auth: hash password: %w", err)
	}
	cred := model.Credential{
		Identifier:       identifier,
		UserID:           data.UserID,
		PasswordHash:     string(hash),
		Role:             data.Role,
		IsActive:         data.IsActive,
		LastSyncAt:       f.now().UTC(),
		SyncedWithServer: true,
	}
	if local, err := f.store.ByIdentifier(ctx, identifier); err == nil {
		cred.FullName = local.FullName
		cred.Phone = local.Phone
		cred.Address = local.Address
		cred.DateOfBirth = local.DateOfBirth
	} else if !errors.Is(err, sql.ErrNoRows) {
		return model.Credential{}, err
	}
	return cred, nil
}

// localLogin is the offline path.  reason is the upstream diagnostic
// when the remote attempt failed first; it is folded into the failure
// message so operators can tell an outage from a typo.
func (f *Flow) localLogin(ctx context.Context, identifier, password, reason string) (LoginResult, error) {
	cred, err := f.store.ByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LoginResult{}, loginFailure(reason)
		}
		return LoginResult{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return LoginResult{}, loginFailure(reason)
	}
	if !cred.IsActive {
		return LoginResult{}, ErrAccountDeactivated
	}
	msg := "Logged in offline"
	if reason != "" {
		msg = "Logged in offline (Fallback)"
	}
	return LoginResult{Credential: cred, Offline: true, Message: msg}, nil
}

func loginFailure(reason string) error {
	if reason == "" {
		return ErrInvalidCredentials
	}
	return fmt.Errorf("%w (%s)", ErrInvalidCredentials, reason)
}

// Register signs up an EV owner.  The record always lands in the local
// store; when the gateway is reachable a remote registration is
// attempted first and, on success, the record is marked synced.  A
// remote failure is swallowed: the user is registered locally with
// SyncedWithServer=false and reconciled later.
func (f *Flow) Register(ctx context.Context, reg Registration) (model.Credential, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), f.bcryptCost)
	if err != nil {
		return model.Credential{}, fmt.Errorf("auth: hash password: %w", err)
	}
	cred := model.Credential{
		Identifier:   store.Normalize(reg.Identifier),
		FullName:     reg.FullName,
		Phone:        reg.Phone,
		PasswordHash: string(hash),
		Role:         model.RoleEVOwner,
		IsActive:     true,
		Address:      reg.Address,
		DateOfBirth:  reg.DateOfBirth,
	}
	if f.net.Online() {
		remote := gateway.OwnerRegistration{
			Identifier:  cred.Identifier,
			Password:    reg.Password,
			FullName:    reg.FullName,
			Phone:       reg.Phone,
			Address:     reg.Address,
			DateOfBirth: reg.DateOfBirth,
		}
		if err := f.gw.RegisterOwner(ctx, remote); err != nil {
			log.Printf("auth: remote registration for %s failed, keeping local-only record: %v", cred.Identifier, err)
		} else {
			cred.SyncedWithServer = true
			cred.LastSyncAt = f.now().UTC()
		}
	}
	if err := f.store.InsertIfAbsent(ctx, cred); err != nil {
		if errors.Is(err, store.ErrIdentifierExists) {
			return model.Credential{}, ErrUserExists
		}
		return model.Credential{}, err
	}
	return cred, nil
}

// Verify checks the held bearer token against the gateway.  There is
// no offline path: a token cannot be validated without the server.
// The returned credential merges the server-asserted identity with any
// locally cached profile fields, which the verify endpoint does not
// return.
func (f *Flow) Verify(ctx context.Context) (model.Credential, error) {
	if !f.net.Online() {
		return model.Credential{}, ErrVerifyOffline
	}
	data, err := f.gw.VerifyToken(ctx)
	if err != nil {
		return model.Credential{}, err
	}
	cred := model.Credential{
		Identifier:       store.Normalize(data.Identifier),
		UserID:           data.UserID,
		Role:             data.Role,
		IsActive:         data.IsActive,
		LastSyncAt:       f.now().UTC(),
		SyncedWithServer: true,
	}
	if local, err := f.store.ByIdentifier(ctx, cred.Identifier); err == nil {
		cred.FullName = local.FullName
		cred.Phone = local.Phone
		cred.PasswordHash = local.PasswordHash
		cred.Address = local.Address
		cred.DateOfBirth = local.DateOfBirth
	} else if !errors.Is(err, sql.ErrNoRows) {
		return model.Credential{}, err
	}
	return cred, nil
}
