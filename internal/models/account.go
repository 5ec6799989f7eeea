package models

import "time"

// Role distinguishes parent accounts from child sessions
type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

// Account represents either a registered parent or a child signed in
// directly with an access code. The credential secret is stored in plain
// text: login is a mock exact-match comparison, kept deliberately.
type Account struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Secret string `json:"password"`
	Role   Role   `json:"type"`
	Avatar string `json:"avatar,omitempty"`

	// Parent accounts only
	Children []ChildRecord `json:"children,omitempty"`

	// Child sessions only
	ParentID string `json:"parentId,omitempty"`
	ChildID  string `json:"currentChildId,omitempty"`

	// Economy fields, meaningful on child sessions only
	Points FlexInt `json:"points"`
	XP     FlexInt `json:"xp"`
	Level  FlexInt `json:"level"`

	CompletedQuests []CompletedQuestEntry `json:"completedQuests,omitempty"`
	RedeemedRewards []RedeemedRewardEntry `json:"redeemedRewards,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// ChildRecord is the embedded representation of a child inside a parent
// account's roster. The access code is the child's login credential.
type ChildRecord struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Level      FlexInt `json:"level"`
	XP         FlexInt `json:"xp"`
	Points     FlexInt `json:"points"`
	Avatar     string  `json:"avatar"`
	AccessCode string  `json:"accessCode"`
	ParentID   string  `json:"parentId"`

	CompletedQuests []CompletedQuestEntry `json:"completedQuests"`
	RedeemedRewards []RedeemedRewardEntry `json:"redeemedRewards"`

	CreatedAt time.Time `json:"createdAt"`
}

// Clone returns a deep copy of the account
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	dup := *a
	dup.Children = make([]ChildRecord, len(a.Children))
	for i := range a.Children {
		dup.Children[i] = *a.Children[i].Clone()
	}
	dup.CompletedQuests = append([]CompletedQuestEntry(nil), a.CompletedQuests...)
	dup.RedeemedRewards = append([]RedeemedRewardEntry(nil), a.RedeemedRewards...)
	return &dup
}

// Clone returns a deep copy of the child record
func (c *ChildRecord) Clone() *ChildRecord {
	if c == nil {
		return nil
	}
	dup := *c
	dup.CompletedQuests = append([]CompletedQuestEntry(nil), c.CompletedQuests...)
	dup.RedeemedRewards = append([]RedeemedRewardEntry(nil), c.RedeemedRewards...)
	return &dup
}

// FindChild looks up a child in the roster by ID, returning nil if absent
func (a *Account) FindChild(childID string) *ChildRecord {
	for i := range a.Children {
		if a.Children[i].ID == childID {
			return &a.Children[i]
		}
	}
	return nil
}

// ChildSnapshot carries a child's end-of-session state into reconciliation.
// Economy fields are pointers so a field absent from a partial or corrupt
// session record can be told apart from a legitimate zero: nil means "not
// defined, keep the parent's existing value".
type ChildSnapshot struct {
	ID     string
	Name   string
	Avatar string
	Points *FlexInt
	XP     *FlexInt
	Level  *FlexInt

	CompletedQuests []CompletedQuestEntry
	RedeemedRewards []RedeemedRewardEntry
}
