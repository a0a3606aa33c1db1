package learning

import (
	"sortdl/internal/rules"
	"sortdl/internal/state"
)

// Response is the user's answer to a proposal notification.
type Response int

const (
	Accept Response = iota
	Reject
	DeclineForever
)

// ResponseFromButton maps a three-button notification index to a response.
// Index 0 accepts, index 2 declines forever, anything else rejects.
func ResponseFromButton(index int) Response {
	switch index {
	case 0:
		return Accept
	case 2:
		return DeclineForever
	default:
		return Reject
	}
}

// Apply mutates the rule store for one proposal response. Accept writes the
// rule (normalized) inside a single read-modify-write transaction; decline
// persists the opt-out key; reject changes nothing. Deleting the proposal
// record and dismissing its notification is the caller's terminal step,
// regardless of what Apply returns.
func Apply(db *state.DB, p state.Proposal, resp Response) error {
	switch resp {
	case Accept:
		return db.MutateSiteRules(func(r rules.SiteRules) {
			r.Set(p.Website, p.Extension, p.Folder)
		})
	case DeclineForever:
		return db.MutateDeclined(func(d rules.Declined) {
			d[p.DeclinedKey] = true
		})
	default:
		return nil
	}
}
