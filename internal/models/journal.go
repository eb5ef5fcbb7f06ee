package models

import "time"

// Mood enumerates the journal mood options.
type Mood string

const (
	MoodHappy    Mood = "Happy"
	MoodSad      Mood = "Sad"
	MoodAnxious  Mood = "Anxious"
	MoodCalm     Mood = "Calm"
	MoodNeutral  Mood = "Neutral"
	MoodExcited  Mood = "Excited"
	MoodStressed Mood = "Stressed"
	MoodGrateful Mood = "Grateful"
)

// Valid reports whether the value is a known mood.
func (m Mood) Valid() bool {
	switch m {
	case MoodHappy, MoodSad, MoodAnxious, MoodCalm, MoodNeutral, MoodExcited, MoodStressed, MoodGrateful:
		return true
	}
	return false
}

// Attitude buckets for institute-level journal analysis.
type Attitude string

const (
	AttitudePositive Attitude = "positive"
	AttitudeNegative Attitude = "negative"
	AttitudeNeutral  Attitude = "neutral"
)

// Attitude classifies the mood for attitude statistics.
func (m Mood) Attitude() Attitude {
	switch m {
	case MoodHappy, MoodExcited, MoodGrateful, MoodCalm:
		return AttitudePositive
	case MoodSad, MoodAnxious, MoodStressed:
		return AttitudeNegative
	}
	return AttitudeNeutral
}

// MoodEntry is one journal entry written by a student.
type MoodEntry struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	InstituteName string    `json:"instituteName"`
	Date          time.Time `json:"date"`
	Mood          Mood      `json:"mood"`
	Text          string    `json:"text"`
}

// AddMoodEntryRequest carries a new journal entry payload.
type AddMoodEntryRequest struct {
	Mood Mood   `json:"mood" validate:"required"`
	Text string `json:"text" validate:"required"`
}
