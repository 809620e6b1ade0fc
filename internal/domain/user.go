// Package domain contains the support gateway entities: identities, rooms,
// their participants and messages, and support entities (queries, tickets).
// No transport or storage logic here.
package domain

const (
	GuestName  = "Guest User"
	GuestEmail = "guest@example.com"
	guestIDPre = "guest_"

	defaultUserName  = "User"
	defaultUserEmail = "user@example.com"
)

type UserID string

type Role string

const (
	RoleGuest      Role = "guest"
	RoleCustomer   Role = "customer"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// IsStaff reports whether the role may act on behalf of support.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Identity is the classified owner of a connection.
type Identity struct {
	UserID       UserID `json:"userId"`
	Role         Role   `json:"userType"`
	DisplayName  string `json:"userName"`
	DisplayEmail string `json:"userEmail"`
	Guest        bool   `json:"guest"`
}

// NewGuest builds the anonymous identity bound to a single connection.
func NewGuest(connID string) Identity {
	return Identity{
		UserID:       UserID(guestIDPre + connID),
		Role:         RoleGuest,
		DisplayName:  GuestName,
		DisplayEmail: GuestEmail,
		Guest:        true,
	}
}

// SystemIdentity acts for status updates that arrive from other services.
func SystemIdentity() Identity {
	return Identity{
		UserID:      "system",
		Role:        RoleAdmin,
		DisplayName: "Admin",
	}
}

// Claims is the verified content of a bearer credential. Field names follow
// the tokens issued by the storefront and admin apps, which disagree.
type Claims struct {
	ID        string
	UserID    string
	Subject   string
	Type      string
	UserType  string
	Role      string
	IsAdmin   bool
	Name      string
	UserName  string
	Email     string
	UserEmail string
}

// Identity maps verified claims to an identity. ok is false when the claims
// carry no usable user id.
func (c Claims) Identity() (Identity, bool) {
	id := firstNonEmpty(c.ID, c.UserID, c.Subject)
	if id == "" {
		return Identity{}, false
	}
	return Identity{
		UserID:       UserID(id),
		Role:         c.role(),
		DisplayName:  firstNonEmpty(c.Name, c.UserName, defaultUserName),
		DisplayEmail: firstNonEmpty(c.Email, c.UserEmail, defaultUserEmail),
	}, true
}

func (c Claims) role() Role {
	if c.IsAdmin || c.Type == string(RoleAdmin) {
		return RoleAdmin
	}
	for _, r := range []string{c.Role, c.UserType} {
		if Role(r).IsStaff() {
			return RoleAdmin
		}
	}
	return RoleCustomer
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
