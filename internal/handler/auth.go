package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/evcharge-agent/internal/auth"
	"github.com/iliyamo/evcharge-agent/internal/cache"
	"github.com/iliyamo/evcharge-agent/internal/config"
	"github.com/iliyamo/evcharge-agent/internal/model"
	"github.com/iliyamo/evcharge-agent/internal/session"
)

// LogoutGateway is the one gateway call the auth handler makes
// directly.
type LogoutGateway interface {
	Logout(ctx context.Context) error
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Flow     *auth.Flow
	Sessions *session.Holder
	Bookings *cache.BookingCache
	GW       LogoutGateway
}

func NewAuthHandler(cfg config.Config, flow *auth.Flow, sessions *session.Holder, bookings *cache.BookingCache, gw LogoutGateway) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Flow: flow, Sessions: sessions, Bookings: bookings, GW: gw}
}

// ----- DTOs -----

type loginReq struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	Role       string `json:"role"` // EV_OWNER | STATION_OPERATOR | ADMIN
}

type registerReq struct {
	Identifier  string `json:"identifier"`
	Password    string `json:"password"`
	FullName    string `json:"fullName"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	DateOfBirth string `json:"dateOfBirth"`
}

type userPart struct {
	Identifier string `json:"identifier"`
	FullName   string `json:"fullName,omitempty"`
	Role       string `json:"role"`
}

type sessionPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type loginResp struct {
	User    userPart    `json:"user"`
	Session sessionPart `json:"session"`
	Offline bool        `json:"offline"`
	Message string      `json:"message"`
}

// Login drives the offline-aware flow and, on success, mints the local
// session token the kiosk UI uses from then on.  The gateway token (if
// any) stays inside the session holder.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Identifier) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "identifier/password required"})
	}
	role := model.Role(strings.ToUpper(strings.TrimSpace(req.Role)))
	switch role {
	case model.RoleEVOwner, model.RoleStationOperator, model.RoleAdmin:
	default:
		role = model.RoleEVOwner
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Cfg.GatewayTimeout)
	defer cancel()

	res, err := h.Flow.Login(ctx, req.Identifier, req.Password, role)
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, auth.ErrInvalidCredentials) && !errors.Is(err, auth.ErrAccountDeactivated) {
			status = http.StatusInternalServerError
		}
		return c.JSON(status, echo.Map{"error": err.Error()})
	}

	tok, err := auth.NewSessionToken(h.Cfg.SessionSecret, res.Credential.Identifier, res.Credential.Role, h.Cfg.SessionTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	h.Sessions.Set(res.Token, session.Identity{
		Identifier: res.Credential.Identifier,
		Role:       res.Credential.Role,
		FullName:   res.Credential.FullName,
	})

	return c.JSON(http.StatusOK, loginResp{
		User:    userPart{Identifier: res.Credential.Identifier, FullName: res.Credential.FullName, Role: string(res.Credential.Role)},
		Session: sessionPart{Token: tok.Token, Expires: tok.Exp},
		Offline: res.Offline,
		Message: res.Message,
	})
}

// Register signs up an EV owner (local-first, best-effort remote).
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Identifier) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "identifier/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Cfg.GatewayTimeout)
	defer cancel()

	cred, err := h.Flow.Register(ctx, auth.Registration{
		Identifier:  req.Identifier,
		Password:    req.Password,
		FullName:    req.FullName,
		Phone:       req.Phone,
		Address:     req.Address,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"user":   userPart{Identifier: cred.Identifier, FullName: cred.FullName, Role: string(cred.Role)},
		"synced": cred.SyncedWithServer,
	})
}

// Logout tears down the session: best-effort gateway logout, then the
// local session and the booking cache are cleared regardless.
func (h *AuthHandler) Logout(c echo.Context) error {
	if h.Sessions.Token() != "" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.Cfg.GatewayTimeout)
		defer cancel()
		if err := h.GW.Logout(ctx); err != nil {
			c.Logger().Warnf("gateway logout failed: %v", err)
		}
	}
	h.Sessions.Clear()
	h.Bookings.Clear()
	return c.NoContent(http.StatusNoContent)
}

// Me returns the signed-in identity.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := h.Sessions.Identity()
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
	}
	return c.JSON(http.StatusOK, userPart{Identifier: id.Identifier, FullName: id.FullName, Role: string(id.Role)})
}
