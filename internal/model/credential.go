package model

import "time"

// Role names a user class on the reservation gateway.  The agent only
// distinguishes the three roles the gateway knows about.
type Role string

const (
	RoleEVOwner         Role = "EV_OWNER"         // end user booking charge slots
	RoleStationOperator Role = "STATION_OPERATOR" // staff scanning QR codes at a site
	RoleAdmin           Role = "ADMIN"            // back-office administrator
)

// Credential is one locally known user as stored in the credentials
// table.  The store exists so that previously seen users can log in at
// a kiosk while the site has no connectivity.  Passwords are never
// stored in the clear; only a bcrypt hash is kept.
//
// UserID is the gateway's id and stays empty until the record has been
// seen by the server at least once.  SyncedWithServer is false for
// records created while offline; LastSyncAt is zero if the record never
// matched the server.
type Credential struct {
	Identifier       string // unique login identifier (email), primary key
	UserID           string
	FullName         string
	Phone            string
	PasswordHash     string
	Role             Role
	IsActive         bool
	LastSyncAt       time.Time
	SyncedWithServer bool
	Address          string
	DateOfBirth      string // ISO date string, optional
}
