package model

import (
	"encoding/json"
	"sort"
	"time"
)

// UserID uniquely identifies a registered user across the system
type UserID string

// UserProfile is a registered player and their persisted progress
type UserProfile struct {
	UserID       UserID         `json:"user_id"`
	Username     string         `json:"username"` // login username (immutable)
	PasswordHash string         `json:"password_hash"`
	CurrentLevel int            `json:"current_level"`
	Score        int            `json:"score"`
	HighScore    int            `json:"high_score"`
	Achievements AchievementSet `json:"achievements"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewUserProfile creates a profile with default progress
func NewUserProfile(id UserID, username string, now time.Time) *UserProfile {
	return &UserProfile{
		UserID:       id,
		Username:     username,
		CurrentLevel: 1,
		Achievements: AchievementSet{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// RecordHighScore raises HighScore to Score if Score is higher
func (p *UserProfile) RecordHighScore() {
	if p.Score > p.HighScore {
		p.HighScore = p.Score
	}
}

// Clone returns a deep copy of the profile
func (p *UserProfile) Clone() *UserProfile {
	c := *p
	c.Achievements = p.Achievements.Clone()
	return &c
}

// Session is a token-addressable proof of a successful login
type Session struct {
	Token     string    `json:"token"`
	UserID    UserID    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has reached its expiry at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// AchievementSet is a set of achievement ids. It serializes as a sorted array.
type AchievementSet map[string]struct{}

// Add inserts id and reports whether it was newly added
func (a AchievementSet) Add(id string) bool {
	if _, ok := a[id]; ok {
		return false
	}
	a[id] = struct{}{}
	return true
}

// Has reports whether id is in the set
func (a AchievementSet) Has(id string) bool {
	_, ok := a[id]
	return ok
}

// Sorted returns the ids in lexical order
func (a AchievementSet) Sorted() []string {
	ids := make([]string, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a copy of the set; a nil set clones to an empty one
func (a AchievementSet) Clone() AchievementSet {
	c := make(AchievementSet, len(a))
	for id := range a {
		c[id] = struct{}{}
	}
	return c
}

// MarshalJSON encodes the set as a sorted array
func (a AchievementSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Sorted())
}

// UnmarshalJSON decodes an array into the set, dropping duplicates
func (a *AchievementSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	set := make(AchievementSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	*a = set
	return nil
}
