package request

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AnswerRequest is the request body for answering the active puzzle.
// Answer is the text the player typed, e.g. "8" or "2.5".
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// SaveRequest names a save slot; an empty name uses the default slot
type SaveRequest struct {
	Name string `json:"name"`
}

// SettingsRequest updates gameplay preferences. Omitted fields are unchanged.
type SettingsRequest struct {
	SoundEnabled      *bool `json:"sound_enabled,omitempty"`
	MusicEnabled      *bool `json:"music_enabled,omitempty"`
	DifficultyScaling *bool `json:"difficulty_scaling,omitempty"`
}
