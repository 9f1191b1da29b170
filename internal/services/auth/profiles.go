package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/mcoot/bananamath/internal/model"
	"github.com/mcoot/bananamath/internal/storage"
)

func profileLockKey(id model.UserID) string {
	return "profile:" + string(id)
}

func usernameLockKey(username string) string {
	return "username:" + username
}

// SaveProfile persists profile under its lock. HighScore never decreases:
// profile is updated in place to max(previous high score, score).
func (m *Manager) SaveProfile(ctx context.Context, profile *model.UserProfile) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.PersistTimeout)
	defer cancel()

	if err := m.saveProfile(ctx, profile); err != nil {
		m.logger.Error("failed to save profile",
			slog.String("user_id", string(profile.UserID)),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

func (m *Manager) saveProfile(ctx context.Context, profile *model.UserProfile) error {
	release, err := m.storage.Acquire(ctx, profileLockKey(profile.UserID))
	if err != nil {
		return model.WrapError(model.KindProfile, "Failed to acquire profile lock", err, map[string]any{
			"user_id": string(profile.UserID),
		})
	}
	defer release()

	profile.RecordHighScore()
	if prev, ok := m.profiles.Get(profile.UserID); ok && prev.HighScore > profile.HighScore {
		profile.HighScore = prev.HighScore
	}
	profile.UpdatedAt = m.clock.Now()

	blob, err := json.Marshal(profile)
	if err != nil {
		return model.WrapError(model.KindProfile, "Failed to save profile", err, map[string]any{
			"user_id": string(profile.UserID),
		})
	}
	if err := m.storage.Save(ctx, storage.NamespaceProfiles, string(profile.UserID), blob); err != nil {
		return model.WrapError(model.KindProfile, "Failed to save profile", err, map[string]any{
			"user_id": string(profile.UserID),
		})
	}

	m.profiles.Set(profile.UserID, profile.Clone())
	return nil
}

// Profile returns a copy of the profile with the given id
func (m *Manager) Profile(ctx context.Context, id model.UserID) (*model.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.PersistTimeout)
	defer cancel()
	return m.loadProfile(ctx, id)
}

func (m *Manager) loadProfile(ctx context.Context, id model.UserID) (*model.UserProfile, error) {
	if cached, ok := m.profiles.Get(id); ok {
		return cached.Clone(), nil
	}

	blob, err := m.storage.Load(ctx, storage.NamespaceProfiles, string(id))
	if err != nil {
		msg := "Failed to load profile"
		if errors.Is(err, model.ErrNotFound) {
			msg = "Profile not found"
		}
		return nil, model.WrapError(model.KindProfile, msg, err, map[string]any{"user_id": string(id)})
	}

	var profile model.UserProfile
	if err := json.Unmarshal(blob, &profile); err != nil {
		return nil, model.WrapError(model.KindProfile, "Failed to load profile", err, map[string]any{"user_id": string(id)})
	}
	if profile.Achievements == nil {
		profile.Achievements = model.AchievementSet{}
	}

	m.profiles.Set(id, profile.Clone())
	return &profile, nil
}

// SessionProfile returns the session for token and the profile it belongs to
func (m *Manager) SessionProfile(ctx context.Context, token string) (*model.Session, *model.UserProfile, error) {
	session, err := m.Session(token)
	if err != nil {
		return nil, nil, err
	}
	profile, err := m.Profile(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}
	return session, profile, nil
}
