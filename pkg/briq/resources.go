package briq

import "time"

// Workspace represents a Briq workspace.
type Workspace struct {
	Resource

	Name        string `json:"name"                  yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// WorkspaceCreate represents a request to create a workspace.
type WorkspaceCreate struct {
	// Name is required.
	Name        string `json:"name,omitempty"        yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// WorkspaceUpdate represents a request to update a workspace.
type WorkspaceUpdate struct {
	// Name updates the workspace name; nil leaves it unchanged.
	Name *string `json:"name,omitempty" yaml:"name,omitempty"`
	// Description updates the description; nil leaves it unchanged.
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
}

// WorkspaceListParams filters a workspace listing.
type WorkspaceListParams struct {
	ListParams

	Search string
}

// ToQuery implements QueryEncoder.
func (p *WorkspaceListParams) ToQuery() *QueryParams {
	return p.ListParams.ToQuery().WithFilter("search", p.Search)
}

// Campaign status values.
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusScheduled = "scheduled"
	CampaignStatusActive    = "active"
	CampaignStatusCompleted = "completed"
	CampaignStatusCancelled = "cancelled"
)

// Campaign represents a messaging campaign inside a workspace.
type Campaign struct {
	Resource

	WorkspaceID string     `json:"workspace_id"          yaml:"workspace_id"`
	Name        string     `json:"name"                  yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Status      string     `json:"status,omitempty"      yaml:"status,omitempty"`
	LaunchDate  *time.Time `json:"launch_date,omitempty" yaml:"launch_date,omitempty"`
}

// CampaignCreate represents a request to create a campaign.
type CampaignCreate struct {
	// WorkspaceID and Name are required.
	WorkspaceID string     `json:"workspace_id,omitempty" yaml:"workspace_id,omitempty"`
	Name        string     `json:"name,omitempty"         yaml:"name,omitempty"`
	Description string     `json:"description,omitempty"  yaml:"description,omitempty"`
	LaunchDate  *time.Time `json:"launch_date,omitempty"  yaml:"launch_date,omitempty"`
}

// CampaignUpdate represents a request to update a campaign. Nil fields are
// left unchanged.
type CampaignUpdate struct {
	Name        *string    `json:"name,omitempty"        yaml:"name,omitempty"`
	Description *string    `json:"description,omitempty" yaml:"description,omitempty"`
	Status      *string    `json:"status,omitempty"      yaml:"status,omitempty"`
	LaunchDate  *time.Time `json:"launch_date,omitempty" yaml:"launch_date,omitempty"`
}

// CampaignListParams filters a campaign listing.
type CampaignListParams struct {
	ListParams

	WorkspaceID string
	Status      string
}

// ToQuery implements QueryEncoder.
func (p *CampaignListParams) ToQuery() *QueryParams {
	return p.ListParams.ToQuery().
		WithFilter("workspace_id", p.WorkspaceID).
		WithFilter("status", p.Status)
}

// MessageStatus is the delivery state of a message.
type MessageStatus string

// Message status values.
const (
	MessageStatusPending   MessageStatus = "pending"
	MessageStatusQueued    MessageStatus = "queued"
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusFailed    MessageStatus = "failed"
)

// Terminal reports whether no further status transitions are expected.
func (s MessageStatus) Terminal() bool {
	return s == MessageStatusDelivered || s == MessageStatusFailed
}

// Message represents a single outbound message.
type Message struct {
	Resource

	Recipient  string        `json:"recipient"             yaml:"recipient"`
	Content    string        `json:"content"               yaml:"content"`
	SenderID   string        `json:"sender_id"             yaml:"sender_id"`
	CampaignID string        `json:"campaign_id,omitempty" yaml:"campaign_id,omitempty"`
	Status     MessageStatus `json:"status"                yaml:"status"`
}

// InstantMessage represents a request to send a message immediately.
type InstantMessage struct {
	// Recipients, Content and SenderID are required.
	Recipients []string `json:"recipients,omitempty" yaml:"recipients,omitempty"`
	Content    string   `json:"content,omitempty"    yaml:"content,omitempty"`
	SenderID   string   `json:"sender_id,omitempty"  yaml:"sender_id,omitempty"`
}

// CampaignMessage represents a request to send a message to a campaign group.
type CampaignMessage struct {
	// All fields are required.
	CampaignID string `json:"campaign_id,omitempty" yaml:"campaign_id,omitempty"`
	GroupID    string `json:"group_id,omitempty"    yaml:"group_id,omitempty"`
	Content    string `json:"content,omitempty"     yaml:"content,omitempty"`
	SenderID   string `json:"sender_id,omitempty"   yaml:"sender_id,omitempty"`
}

// MessageResponse summarises an accepted send request.
type MessageResponse struct {
	MessageID  string        `json:"message_id,omitempty"  yaml:"message_id,omitempty"`
	Status     MessageStatus `json:"status"                yaml:"status"`
	Recipients int           `json:"recipients"            yaml:"recipients"`
	CampaignID string        `json:"campaign_id,omitempty" yaml:"campaign_id,omitempty"`
	Messages   []Message     `json:"messages,omitempty"    yaml:"messages,omitempty"`
}

// MessageLog represents one delivery log entry.
type MessageLog struct {
	Resource

	MessageID    string        `json:"message_id"              yaml:"message_id"`
	Recipient    string        `json:"recipient"               yaml:"recipient"`
	Content      string        `json:"content,omitempty"       yaml:"content,omitempty"`
	SenderID     string        `json:"sender_id,omitempty"     yaml:"sender_id,omitempty"`
	CampaignID   string        `json:"campaign_id,omitempty"   yaml:"campaign_id,omitempty"`
	Status       MessageStatus `json:"status"                  yaml:"status"`
	SentAt       *time.Time    `json:"sent_at,omitempty"       yaml:"sent_at,omitempty"`
	DeliveredAt  *time.Time    `json:"delivered_at,omitempty"  yaml:"delivered_at,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}

// MessageHistory represents one entry of the account's sending history.
type MessageHistory struct {
	Resource

	Recipients []string      `json:"recipients"            yaml:"recipients"`
	Content    string        `json:"content"               yaml:"content"`
	SenderID   string        `json:"sender_id"             yaml:"sender_id"`
	CampaignID string        `json:"campaign_id,omitempty" yaml:"campaign_id,omitempty"`
	Status     MessageStatus `json:"status"                yaml:"status"`
	Delivered  int           `json:"delivered"             yaml:"delivered"`
	Failed     int           `json:"failed"                yaml:"failed"`
}

// MessageLogParams filters the delivery log.
type MessageLogParams struct {
	ListParams

	Status     MessageStatus
	CampaignID string
	Recipient  string
	StartDate  *time.Time
	EndDate    *time.Time
}

// ToQuery implements QueryEncoder.
func (p *MessageLogParams) ToQuery() *QueryParams {
	return p.ListParams.ToQuery().
		WithFilter("status", string(p.Status)).
		WithFilter("campaign_id", p.CampaignID).
		WithFilter("recipient", p.Recipient).
		WithTime("start_date", p.StartDate).
		WithTime("end_date", p.EndDate)
}

// MessageHistoryParams filters the sending history.
type MessageHistoryParams struct {
	ListParams

	CampaignID string
	StartDate  *time.Time
	EndDate    *time.Time
}

// ToQuery implements QueryEncoder.
func (p *MessageHistoryParams) ToQuery() *QueryParams {
	return p.ListParams.ToQuery().
		WithFilter("campaign_id", p.CampaignID).
		WithTime("start_date", p.StartDate).
		WithTime("end_date", p.EndDate)
}
