package votes

import (
	"sort"

	"golang.org/x/text/unicode/norm"

	"github.com/memesrc/memesrc-functions/internal/domain"
)

// Tally aggregates boosts per series id.
type Tally struct {
	Votes         map[string]int `json:"votes"`
	UserVotes     map[string]int `json:"userVotes"`
	VotesUp       map[string]int `json:"votesUp"`
	VotesDown     map[string]int `json:"votesDown"`
	UserVotesUp   map[string]int `json:"userVotesUp"`
	UserVotesDown map[string]int `json:"userVotesDown"`
}

// NewTally returns a Tally with empty maps, so it encodes as {} not null.
func NewTally() Tally {
	return Tally{
		Votes:         map[string]int{},
		UserVotes:     map[string]int{},
		VotesUp:       map[string]int{},
		VotesDown:     map[string]int{},
		UserVotesUp:   map[string]int{},
		UserVotesDown: map[string]int{},
	}
}

// Aggregate sums boosts per series. Votes cast by userSub (compared in NFC
// form) are additionally counted in the User* maps. An empty userSub matches
// nobody.
func Aggregate(votes []domain.SeriesUserVote, userSub string) Tally {
	t := NewTally()
	me := norm.NFC.String(userSub)

	for _, v := range votes {
		series := v.SeriesID
		mine := me != "" && v.UserID != "" && norm.NFC.String(v.UserID) == me

		t.Votes[series] += v.Boost
		if mine {
			t.UserVotes[series] += v.Boost
		}

		switch {
		case v.Boost > 0:
			t.VotesUp[series] += v.Boost
			if mine {
				t.UserVotesUp[series] += v.Boost
			}
		case v.Boost < 0:
			t.VotesDown[series] += v.Boost
			if mine {
				t.UserVotesDown[series] += v.Boost
			}
		}
	}
	return t
}

// Rank is one series line in a ranked tally.
type Rank struct {
	SeriesID string `json:"seriesId"`
	Net      int    `json:"net"`
	Up       int    `json:"up"`
	Down     int    `json:"down"`
	Mine     int    `json:"mine"`
}

// Ranked returns the series ordered by net score, highest first, ties broken
// by series id.
func (t Tally) Ranked() []Rank {
	out := make([]Rank, 0, len(t.Votes))
	for id, net := range t.Votes {
		out = append(out, Rank{
			SeriesID: id,
			Net:      net,
			Up:       t.VotesUp[id],
			Down:     t.VotesDown[id],
			Mine:     t.UserVotes[id],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Net != out[j].Net {
			return out[i].Net > out[j].Net
		}
		return out[i].SeriesID < out[j].SeriesID
	})
	return out
}
