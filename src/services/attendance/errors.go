package attendance

import (
	"errors"

	"Backend-Attendly-101/src/services/invitations"
	"Backend-Attendly-101/src/services/schedule"
	"Backend-Attendly-101/src/services/strategy"
)

var (
	ErrUnknownRegistration = errors.New("unknown registration")

	// ErrDuplicateMark is returned when a new mark is identical to the
	// current effective one for the pair. A mark that changes the recorded
	// state supersedes instead.
	ErrDuplicateMark = errors.New("identical mark already recorded")

	ErrMissingCheckpoint = errors.New("this strategy requires a checkpoint id")
	ErrScoreOutOfRange   = errors.New("engagement score must be between 0 and 100")
	ErrInvalidChannel    = errors.New("dual-channel checkpoints require channel \"virtual\" or \"physical\"")
)

// KindOf maps a service error to its wire-level failure kind. Unknown errors
// map to "Internal" so infrastructure details never leak into bulk reports.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrUnknownRegistration):
		return "UnknownRegistration"
	case errors.Is(err, ErrDuplicateMark):
		return "DuplicateMark"
	case errors.Is(err, ErrMissingCheckpoint):
		return "MissingCheckpoint"
	case errors.Is(err, ErrScoreOutOfRange):
		return "EngagementScoreOutOfRange"
	case errors.Is(err, ErrInvalidChannel):
		return "InvalidChannel"
	case errors.Is(err, invitations.ErrUnknownInvitation):
		return "UnknownInvitation"
	case errors.Is(err, invitations.ErrExpiredInvitation):
		return "ExpiredInvitation"
	case errors.Is(err, invitations.ErrActiveInvitationExists):
		return "ActiveInvitationExists"
	case errors.Is(err, invitations.ErrInvalidCheckpointForScope):
		return "InvalidCheckpointForScope"
	case errors.Is(err, invitations.ErrDurationRequired):
		return "InvitationDurationRequired"
	case errors.Is(err, invitations.ErrScopeRequired):
		return "InvitationScopeRequired"
	case errors.Is(err, schedule.ErrUnknownEvent):
		return "UnknownEvent"
	case errors.Is(err, schedule.ErrUnknownCheckpoint):
		return "UnknownCheckpoint"
	case errors.Is(err, schedule.ErrCheckpointClosed):
		return "CheckpointClosed"
	case errors.Is(err, strategy.ErrInvalidStrategyConfig):
		return "InvalidStrategyConfiguration"
	case err == nil:
		return ""
	default:
		return "Internal"
	}
}
