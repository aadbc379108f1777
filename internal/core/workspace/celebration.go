package workspace

import (
	"fmt"
	"strings"

	"github.com/cbroglie/mustache"

	"github.com/neilberkman/proofa/internal/core/models"
	"github.com/neilberkman/proofa/internal/core/score"
)

// RenderCelebration fills the eligibility message template
func RenderCelebration(tpl string, session models.Session, snap score.Snapshot) (string, error) {
	name := session.Name
	if name == "" {
		name = session.ID
	}
	data := map[string]interface{}{
		"id":      session.ID,
		"name":    name,
		"score":   snap.Score,
		"verdict": snap.Verdict,
		"reason":  snap.Reason,
	}
	out, err := mustache.Render(tpl, data)
	if err != nil {
		return "", fmt.Errorf("failed to render celebration: %w", err)
	}
	return strings.TrimSpace(out), nil
}
