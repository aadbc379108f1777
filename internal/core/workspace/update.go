package workspace

import (
	"github.com/neilberkman/proofa/internal/core/push"
	"github.com/neilberkman/proofa/internal/core/score"
	"github.com/neilberkman/proofa/internal/core/upload"
)

// UpdateKind says what changed
type UpdateKind int

const (
	UpdateLoaded UpdateKind = iota
	UpdateTranscript
	UpdateScore
	UpdateEligible
	UpdateUpload
	UpdatePush
	UpdateStatus
	UpdateDraft
	UpdateError
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateLoaded:
		return "loaded"
	case UpdateTranscript:
		return "transcript"
	case UpdateScore:
		return "score"
	case UpdateEligible:
		return "eligible"
	case UpdateUpload:
		return "upload"
	case UpdatePush:
		return "push"
	case UpdateStatus:
		return "status"
	case UpdateDraft:
		return "draft"
	case UpdateError:
		return "error"
	}
	return "unknown"
}

// Update is a change notification from a workspace. Only the fields that
// belong to Kind are set.
type Update struct {
	Kind        UpdateKind
	Err         error
	Score       score.Snapshot
	Celebration string
	Upload      upload.State
	PushStatus  push.Status
}
