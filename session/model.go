package session

import (
	"encoding/json"
	"fmt"
)

// Profile is the stored snapshot of a user's attributes. Field names follow
// the backend wire format so the blob round-trips through the profile
// endpoint unchanged.
type Profile struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Building string `json:"building,omitempty"`
	Room     string `json:"room,omitempty"`
}

// Record groups one identity's credential and profile. It is a logical
// grouping over two keys, not a separate storage entity.
type Record struct {
	Identity   string
	Credential string
	Profile    Profile
}

func encodeProfile(p Profile) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return data, nil
}

func decodeProfile(data []byte) (Profile, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return p, nil
}
