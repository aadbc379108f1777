package workspace

import "github.com/neilberkman/proofa/internal/core/models"

// Stage is which screen of the workflow the user is looking at. It follows
// the session status, except that a certified workspace can be viewed as a
// collaboration again without changing its status.
type Stage int

const (
	StageCollaboration Stage = iota
	StageCertified
	StageLicensing
)

func (s Stage) String() string {
	switch s {
	case StageCertified:
		return "Certified"
	case StageLicensing:
		return "Licensing"
	}
	return "Collaboration"
}

// StageFor returns the stage a status normally shows
func StageFor(status models.Status) Stage {
	switch status {
	case models.StatusCertified:
		return StageCertified
	case models.StatusLicensing:
		return StageLicensing
	}
	return StageCollaboration
}
