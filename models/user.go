package models

// Staff roles. Role decides which dashboard a user lands on and which routes
// the middleware lets through.
const (
	RoleOfficer  = "officer"
	RoleChief    = "chief"
	RoleDirector = "director"
	RoleAdmin    = "admin"
)

// User holds the structure for the users collection in mongo
type User struct {
	ID      string      `json:"_id" bson:"_id"`
	Details UserDetails `json:"user" bson:"user"`
	Version int32       `json:"__v" bson:"__v"`
}

// UserDetails holds the structure for the inner user details as stored in the
// users collection
type UserDetails struct {
	Email    string `json:"email" bson:"email"`
	Username string `json:"username" bson:"username"`
	Name     string `json:"name" bson:"name"`
	Role     string `json:"role" bson:"role"`
	Password string `json:"password,omitempty" bson:"password"`
	Active   bool   `json:"active" bson:"active"`

	ResetPasswordToken   string      `json:"resetPasswordToken,omitempty" bson:"resetPasswordToken"`
	ResetPasswordExpires interface{} `json:"resetPasswordExpires,omitempty" bson:"resetPasswordExpires"`

	CreatedAt interface{} `json:"createdAt" bson:"createdAt"`
	UpdatedAt interface{} `json:"updatedAt" bson:"updatedAt"`
}

// ValidRole reports whether role is one of the known staff roles
func ValidRole(role string) bool {
	switch role {
	case RoleOfficer, RoleChief, RoleDirector, RoleAdmin:
		return true
	}
	return false
}
