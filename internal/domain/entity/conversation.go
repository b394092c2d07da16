package entity

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// GeneralContext is the context of a conversation that is not scoped to a listing.
const GeneralContext = "general"

// participantKeySeparator never appears inside a valid user id.
const participantKeySeparator = "|"

var (
	userIDPattern     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)
	listingRefPattern = regexp.MustCompile(`^(crop|equipment):([A-Za-z0-9_-]{1,64})$`)
)

type Conversation struct {
	ID             string       `json:"id" firestore:"id"`
	Participants   []string     `json:"participants" firestore:"participants"`
	ParticipantKey string       `json:"participant_key" firestore:"participantKey"`
	Context        string       `json:"context" firestore:"context"`
	LastSequence   int64        `json:"-" firestore:"lastSequence"`
	LastMessage    *LastMessage `json:"last_message" firestore:"lastMessage"`
	CreatedAt      time.Time    `json:"created_at" firestore:"createdAt"`
	UpdatedAt      time.Time    `json:"updated_at" firestore:"updatedAt"`
}

// LastMessage is the cached snapshot of the newest message in a conversation.
type LastMessage struct {
	MessageID string    `json:"message_id" firestore:"messageId"`
	Text      string    `json:"text" firestore:"text"`
	SenderID  string    `json:"sender_id" firestore:"senderId"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	Sequence  int64     `json:"sequence" firestore:"sequence"`
}

// ValidUserID reports whether id is usable as a participant identifier.
func ValidUserID(id string) bool {
	return userIDPattern.MatchString(id)
}

// ValidListingRef reports whether ref has the shape kind:id.
func ValidListingRef(ref string) bool {
	return listingRefPattern.MatchString(ref)
}

// ParseListingRef splits a listing reference into its kind and id.
func ParseListingRef(ref string) (kind, id string, ok bool) {
	m := listingRefPattern.FindStringSubmatch(ref)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// ParticipantKey returns the same key for (a, b) and (b, a).
func ParticipantKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, participantKeySeparator)
}

// NormalizeContext maps an absent context to GeneralContext and rejects
// anything that is not a listing reference.
func NormalizeContext(context string) (string, error) {
	context = strings.TrimSpace(context)
	if context == "" || context == GeneralContext {
		return GeneralContext, nil
	}
	if !ValidListingRef(context) {
		return "", fmt.Errorf("context %q is not a listing reference", context)
	}
	return context, nil
}

func NewConversation(id, callerID, peerID, context string, now time.Time) *Conversation {
	return &Conversation{
		ID:             id,
		Participants:   []string{callerID, peerID},
		ParticipantKey: ParticipantKey(callerID, peerID),
		Context:        context,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// PeerOf returns the other participant, or "" when userID is not a participant.
func (c *Conversation) PeerOf(userID string) string {
	if !c.HasParticipant(userID) {
		return ""
	}
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

// Validate checks a conversation record at the storage boundary.
func (c *Conversation) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("conversation: missing id")
	}
	if len(c.Participants) != 2 {
		return fmt.Errorf("conversation %s: expected 2 participants, got %d", c.ID, len(c.Participants))
	}
	a, b := c.Participants[0], c.Participants[1]
	if !ValidUserID(a) || !ValidUserID(b) {
		return fmt.Errorf("conversation %s: malformed participant id", c.ID)
	}
	if a == b {
		return fmt.Errorf("conversation %s: participants must differ", c.ID)
	}
	if c.ParticipantKey != ParticipantKey(a, b) {
		return fmt.Errorf("conversation %s: participant key does not match participants", c.ID)
	}
	if c.Context != GeneralContext && !ValidListingRef(c.Context) {
		return fmt.Errorf("conversation %s: malformed context %q", c.ID, c.Context)
	}
	if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() {
		return fmt.Errorf("conversation %s: missing timestamps", c.ID)
	}
	if c.LastSequence < 0 {
		return fmt.Errorf("conversation %s: negative sequence", c.ID)
	}
	if lm := c.LastMessage; lm != nil {
		if lm.MessageID == "" || lm.CreatedAt.IsZero() || lm.Sequence <= 0 {
			return fmt.Errorf("conversation %s: incomplete last message", c.ID)
		}
		if !c.HasParticipant(lm.SenderID) {
			return fmt.Errorf("conversation %s: last message sender is not a participant", c.ID)
		}
	}
	return nil
}
