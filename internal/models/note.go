package models

import "time"

// NoteRecord is the outcome record for one processing run, stored in the
// notes collection. Written exactly once per run and never updated.
type NoteRecord struct {
	UserID         string    `firestore:"userId"`
	OriginalPath   string    `firestore:"originalPath"`
	ExtractedText  string    `firestore:"extractedText,omitempty"`
	SimplifiedText string    `firestore:"simplifiedText,omitempty"`
	OutputPdfPath  string    `firestore:"outputPdfPath,omitempty"`
	AudioPath      string    `firestore:"audioPath,omitempty"`
	Status         string    `firestore:"status"`
	ErrorDetails   string    `firestore:"errorDetails,omitempty"`
	CreatedAt      time.Time `firestore:"createdAt"`
}

// Profile mirrors the entitlement fields of a user profile document.
// A user has access while any of the three windows ends after "now".
type Profile struct {
	TrialEndDate        time.Time `firestore:"trialEndDate,omitempty"`
	BonusTrialEndDate   time.Time `firestore:"bonusTrialEndDate,omitempty"`
	SubscriptionEndDate time.Time `firestore:"subscriptionEndDate,omitempty"`
}

// HasActiveWindow reports whether any entitlement window ends strictly
// after now. Zero-valued dates never grant access.
func (p Profile) HasActiveWindow(now time.Time) bool {
	return p.TrialEndDate.After(now) ||
		p.BonusTrialEndDate.After(now) ||
		p.SubscriptionEndDate.After(now)
}
