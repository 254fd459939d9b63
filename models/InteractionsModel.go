package models

type Interaction struct {
	PK              string  `dynamodbav:"PK" json:"PK"`                               // ✅ Partition Key: "USER#sender"
	SK              string  `dynamodbav:"SK" json:"SK"`                               // ✅ Sort Key: "INTERACTION#receiver"
	SenderHandle    string  `dynamodbav:"senderHandle" json:"senderHandle"`           // ✅ Who initiated the interaction
	ReceiverHandle  string  `dynamodbav:"receiverHandle" json:"receiverHandle"`       // ✅ Target user
	InteractionType string  `dynamodbav:"interactionType" json:"interactionType"`     // ✅ like, dislike, rose
	Status          string  `dynamodbav:"status" json:"status"`                       // ✅ pending, match, declined
	MatchID         *string `dynamodbav:"matchId,omitempty" json:"matchId,omitempty"` // ✅ Assigned when matched
	Message         *string `dynamodbav:"message,omitempty" json:"message,omitempty"` // ✅ Optional, only for roses
	CreatedAt       string  `dynamodbav:"createdAt" json:"createdAt"`
	LastUpdated     string  `dynamodbav:"lastUpdated" json:"lastUpdated"`
}

// InteractionsTable is the DynamoDB table name for likes and roses
const InteractionsTable = "Interactions"

// InteractionKey builds the PK/SK pair for sender -> receiver.
func InteractionKey(sender, receiver string) (string, string) {
	return "USER#" + sender, "INTERACTION#" + receiver
}
