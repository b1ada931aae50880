// Package domain contains the records shared by the memeSRC functions.
package domain

// User statuses stored on UserDetails.
const (
	StatusUnverified = "unverified"
	StatusVerified   = "verified"
)

// UserDetails is the AppSync record kept for every Cognito user.
type UserDetails struct {
	ID        string    `json:"id"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email,omitempty"`
	StripeID  string    `json:"stripeId,omitempty"`
	Status    string    `json:"status,omitempty"`
	Credits   *int      `json:"credits,omitempty"`
	CreatedAt string    `json:"createdAt,omitempty"`
	UpdatedAt string    `json:"updatedAt,omitempty"`
	Votes     *VoteList `json:"votes,omitempty"`
}

// VoteList is the connection of votes hanging off a UserDetails record.
type VoteList struct {
	Items []UserVote `json:"items"`
}

// UserVote is the projection of a vote used to detect duplicates.
type UserVote struct {
	Series *SeriesRef `json:"series"`
}

// SeriesRef points at a requested series.
type SeriesRef struct {
	ID string `json:"id"`
}

// CreditBalance returns the user's credits, treating an unset value as zero.
func (u UserDetails) CreditBalance() int {
	if u.Credits == nil {
		return 0
	}
	return *u.Credits
}

// HasVotedFor reports whether the user already holds a vote on seriesID.
func (u UserDetails) HasVotedFor(seriesID string) bool {
	if u.Votes == nil {
		return false
	}
	for _, v := range u.Votes.Items {
		if v.Series != nil && v.Series.ID == seriesID {
			return true
		}
	}
	return false
}

// SeriesUserVote is one stored vote on a requested series.
type SeriesUserVote struct {
	ID       string `json:"id"`
	Boost    int    `json:"boost"`
	UserID   string `json:"userDetailsVotesId,omitempty"`
	SeriesID string `json:"seriesUserVoteSeriesId"`
}
