package schema

// UserSessionTable represents the 'users.session' table
type UserSessionTable struct {
	Table         string
	ID            string
	UserID        string
	TokenHash     string
	UserAgent     string
	IPAddress     string
	IsValid       string
	CreatedAt     string
	ExpiresAt     string
	InvalidatedAt string
}

// UserSession is the schema definition for users.session
var UserSession = UserSessionTable{
	Table:         "users.session",
	ID:            "id",
	UserID:        "userid",
	TokenHash:     "tokenhash",
	UserAgent:     "useragent",
	IPAddress:     "ipaddress",
	IsValid:       "isvalid",
	CreatedAt:     "createdat",
	ExpiresAt:     "expiresat",
	InvalidatedAt: "invalidatedat",
}

// Columns returns the columns read back into a session, in scan order
func (t UserSessionTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.TokenHash, t.UserAgent, t.IPAddress, t.IsValid, t.CreatedAt, t.ExpiresAt,
	}
}
