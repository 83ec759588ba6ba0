package domain

import "time"

// Account is an external meeting-platform account under management.
type Account struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"ownerId"`
	DisplayName  string     `json:"displayName"`
	ExternalID   string     `json:"externalId"`
	ClientID     string     `json:"-"`
	ClientSecret string     `json:"-"`
	IsActive     bool       `json:"isActive"`
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`
	CDate        time.Time  `json:"cdate"`
}

// HasCredentials reports whether the account can be contacted at all.
func (a Account) HasCredentials() bool {
	return a.ExternalID != "" && a.ClientID != "" && a.ClientSecret != ""
}

// SyncResult is the aggregate outcome of one sync batch.
type SyncResult struct {
	Synced        int      `json:"synced"`
	NewRecordings int      `json:"newRecordings"`
	Skipped       int      `json:"skipped"`
	Errors        []string `json:"errors"`
}
