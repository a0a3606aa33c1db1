package engine

import (
	"fmt"

	"sortdl/internal/state"
)

func proposalNotification(id string, p state.Proposal) Notification {
	if p.IsUpdate {
		return Notification{
			ID:      id,
			Title:   fmt.Sprintf("Update rule for %s?", p.Website),
			Message: fmt.Sprintf("You saved .%s to %s instead of the existing folder. Update the rule?", p.Extension, p.Folder),
			Buttons: []string{"Update Rule", "Keep Old Rule", "Don't Ask Again"},
		}
	}
	return Notification{
		ID:      id,
		Title:   fmt.Sprintf("Save %s .%s to %s?", p.Website, p.Extension, p.Folder),
		Message: "Click to choose a different folder",
		Buttons: []string{"Yes, Save Rule", "No", "Don't Ask Again"},
	}
}

func confirmationNotification(p state.Proposal) Notification {
	return Notification{
		ID:      "rule_saved_" + p.DeclinedKey,
		Title:   "Rule Saved",
		Message: fmt.Sprintf("%s: .%s files will now save to %s/", p.Website, p.Extension, p.Folder),
	}
}
