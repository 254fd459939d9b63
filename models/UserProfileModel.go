package models

// UserProfile defines the structure for user profiles
type UserProfile struct {
	UserHandle string            `dynamodbav:"userhandle" json:"userhandle"` // ✅ Partition Key
	Name       string            `dynamodbav:"name,omitempty" json:"name,omitempty"`
	Age        int               `dynamodbav:"age,omitempty" json:"age,omitempty"`
	Gender     string            `dynamodbav:"gender,omitempty" json:"gender,omitempty"`
	Bio        string            `dynamodbav:"bio,omitempty" json:"bio,omitempty"`
	Photos     []string          `dynamodbav:"photos,omitempty" json:"photos,omitempty"`
	Prompts    map[string]string `dynamodbav:"prompts,omitempty" json:"prompts,omitempty"`
	Subscribed bool              `dynamodbav:"subscribed,omitempty" json:"subscribed,omitempty"` // Paid tier, required for roses
}

// UserProfilesTable is the DynamoDB table name for user profiles
const UserProfilesTable = "Users"
