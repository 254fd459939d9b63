package models

// Match links two users who liked each other.
type Match struct {
	MatchID     string `dynamodbav:"matchId" json:"matchId"`         // Unique matchId
	User1Handle string `dynamodbav:"user1Handle" json:"user1Handle"` // GSI user1Handle-index
	User2Handle string `dynamodbav:"user2Handle" json:"user2Handle"` // GSI user2Handle-index
	Status      string `dynamodbav:"status" json:"status"`           // active, archived
	CreatedAt   string `dynamodbav:"createdAt" json:"createdAt"`     // Timestamp of creation
}

// OtherUser returns the counterpart of userHandle in the match.
func (m Match) OtherUser(userHandle string) string {
	if m.User1Handle == userHandle {
		return m.User2Handle
	}
	return m.User1Handle
}

// MatchesTable is the DynamoDB table name for user matches
const MatchesTable = "Matches"

// GSIs on the Matches table
const (
	User1HandleIndex = "user1Handle-index"
	User2HandleIndex = "user2Handle-index"
)
