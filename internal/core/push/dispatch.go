package push

import (
	"strconv"
	"time"

	"github.com/neilberkman/proofa/internal/core/models"
	"github.com/neilberkman/proofa/pkg/judgewire"
)

// Update is what an analysis event means for a workspace. Message is set
// when the event carried text and becomes a transcript entry; otherwise only
// the score is refreshed.
type Update struct {
	Message  *models.Message
	Analysis judgewire.Analysis
}

// Interpret turns a decoded event into an Update. It returns false for
// events the workspace does not act on.
//
// The synthetic message ID is the event's own ID when it has one and a hash
// of its payload otherwise, so a redelivered event maps to the same entry.
func Interpret(ev judgewire.Event, now time.Time) (Update, bool) {
	if !ev.Known() {
		return Update{}, false
	}
	if !ev.HasMessage && !ev.Analysis.Usable() {
		return Update{}, false
	}

	u := Update{Analysis: ev.Analysis}
	if !ev.HasMessage {
		return u, true
	}

	id := ev.ID
	if id == "" {
		score := ""
		if ev.Analysis.HasScore {
			score = strconv.Itoa(ev.Analysis.Score)
		}
		id = judgewire.SyntheticID("push", ev.Message, score, ev.Analysis.Verdict, ev.Analysis.Reason)
	}

	msg := models.Message{
		ID:        id,
		Role:      models.RoleAssistant,
		Content:   ev.Message,
		Origin:    models.OriginPush,
		CreatedAt: now,
	}
	if ev.Analysis.Usable() {
		a := ev.Analysis
		msg.Analysis = &a
	}
	u.Message = &msg
	return u, true
}
