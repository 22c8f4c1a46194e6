package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Default role given to users of locally synthesized sessions
const RoleUser = "user"

// Accepted createdAt layouts besides epoch milliseconds
var userTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// User represents the user record carried by a session. The JSON layout is
// the one persisted under the `user` and `offline_user` keys.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone"`
	Picture   string    `json:"picture"`
	CreatedAt time.Time `json:"createdAt"`
}

// UnmarshalJSON reads a user record leniently, see ParseUser
func (u *User) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	parsed, err := ParseUser(data)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// ParseUser reads a user record produced by any backend. Fields with an
// unexpected JSON type are left empty, numeric ids and phones keep their
// digits, and `_id` stands in for a missing `id`. Only a payload that is not
// a JSON object is an error.
func ParseUser(data []byte) (User, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return User{}, fmt.Errorf("user record is not a JSON object: %w", err)
	}
	if fields == nil {
		return User{}, fmt.Errorf("user record is null")
	}

	id := textField(fields["id"])
	if id == "" {
		id = textField(fields["_id"])
	}

	return User{
		ID:        id,
		Name:      textField(fields["name"]),
		Email:     textField(fields["email"]),
		Role:      textField(fields["role"]),
		Phone:     textField(fields["phone"]),
		Picture:   textField(fields["picture"]),
		CreatedAt: timeField(fields["createdAt"]),
	}, nil
}

func textField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func timeField(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		for _, layout := range userTimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
		return time.Time{}
	}
	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}
