package gateway

import (
	"context"
	"net/http"

	"github.com/iliyamo/evcharge-agent/internal/model"
)

// LoginData is the payload of a successful login.  The gateway's login
// response carries identity and token only; profile fields (name,
// phone) are never included and must be merged from the local store.
type LoginData struct {
	UserID     string     `json:"userId"`
	Identifier string     `json:"identifier"`
	Role       model.Role `json:"role"`
	IsActive   bool       `json:"isActive"`
	Token      string     `json:"token"`
}

// VerifyData is the payload of a token verification call.
type VerifyData struct {
	UserID     string     `json:"userId"`
	Identifier string     `json:"identifier"`
	Role       model.Role `json:"role"`
	IsActive   bool       `json:"isActive"`
}

// OwnerRegistration is the body of an EV-owner registration request.
type OwnerRegistration struct {
	Identifier  string `json:"identifier"`
	Password    string `json:"password"`
	FullName    string `json:"fullName"`
	Phone       string `json:"phone"`
	Address     string `json:"address,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
}

type loginReq struct {
	Email      string `json:"email,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	Password   string `json:"password"`
}

// LoginOperator authenticates a station operator or admin with
// email+password.
func (c *Client) LoginOperator(ctx context.Context, email, password string) (LoginData, error) {
	var out LoginData
	err := c.do(ctx, http.MethodPost, "/api/auth/login", loginReq{Email: email, Password: password}, &out)
	return out, err
}

// LoginOwner authenticates an EV owner with identifier+password.
func (c *Client) LoginOwner(ctx context.Context, identifier, password string) (LoginData, error) {
	var out LoginData
	err := c.do(ctx, http.MethodPost, "/api/auth/owner/login", loginReq{Identifier: identifier, Password: password}, &out)
	return out, err
}

// VerifyToken asks the gateway whether the currently held bearer token
// is still valid and returns the identity it asserts.
func (c *Client) VerifyToken(ctx context.Context) (VerifyData, error) {
	var out VerifyData
	err := c.do(ctx, http.MethodPost, "/api/auth/verify", nil, &out)
	return out, err
}

// Logout invalidates the current session on the gateway.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// RegisterOwner creates an EV-owner account on the gateway.
func (c *Client) RegisterOwner(ctx context.Context, reg OwnerRegistration) error {
	return c.do(ctx, http.MethodPost, "/api/auth/owner/register", reg, nil)
}
