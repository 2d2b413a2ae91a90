package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table                 string
	ID                    string
	Username              string
	Email                 string
	Password              string
	Role                  string
	IsActive              string
	FailedLogins          string
	PasswordResetRequired string
	LastLoginAt           string
	MemberID              string
	CreatedAt             string
	UpdatedAt             string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:                 "users.account",
	ID:                    "id",
	Username:              "username",
	Email:                 "email",
	Password:              "passwordhash",
	Role:                  "role",
	IsActive:              "isactive",
	FailedLogins:          "failedlogins",
	PasswordResetRequired: "passwordresetrequired",
	LastLoginAt:           "lastloginat",
	MemberID:              "memberid",
	CreatedAt:             "createdat",
	UpdatedAt:             "updatedat",
}

// Columns returns all standard column names in scan order
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.Password, t.Role, t.IsActive,
		t.FailedLogins, t.PasswordResetRequired, t.LastLoginAt, t.MemberID,
		t.CreatedAt, t.UpdatedAt,
	}
}
