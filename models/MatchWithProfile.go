package models

// MatchWithProfile combines Match details with the other user's profile data
type MatchWithProfile struct {
	Match

	// User Profile Fields (For Matched User)
	UserHandle string            `json:"userhandle"`
	Name       string            `json:"name,omitempty"`
	Age        int               `json:"age,omitempty"`
	Photos     []string          `json:"photos,omitempty"`
	Bio        string            `json:"bio,omitempty"`
	Prompts    map[string]string `json:"prompts,omitempty"`
}
