package strategy

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"Backend-Attendly-101/src/models"
)

// ErrInvalidStrategyConfig flags a schedule/strategy mismatch, e.g. mandatory
// weights summing to zero. Surfaced at schedule validation time; Compute
// guards against it anyway so a bad config can never produce a silent result.
var ErrInvalidStrategyConfig = errors.New("invalid strategy configuration")

// CheckpointDetail is the per-checkpoint breakdown returned with a status.
type CheckpointDetail struct {
	CheckpointID string                  `json:"checkpointId,omitempty"`
	Name         string                  `json:"name,omitempty"`
	Mandatory    bool                    `json:"mandatory"`
	Weight       float64                 `json:"weight,omitempty"`
	Status       models.AttendanceStatus `json:"status"`
	// Label refines Status for dual-channel checkpoints where only one of the
	// two marking channels has fired.
	Label      models.AttendanceStatus `json:"label,omitempty"`
	RecordedAt *time.Time              `json:"recordedAt,omitempty"`
	RecordedBy string                  `json:"recordedBy,omitempty"`
}

// Result is a registration's derived attendance state.
type Result struct {
	Status        models.AttendanceStatus `json:"status"`
	Percentage    float64                 `json:"percentage"`
	PerCheckpoint []CheckpointDetail      `json:"perCheckpointDetail,omitempty"`
}

// Compute derives a registration's status from its mark events. Pure function
// of (config, checkpoints, marks): calling it twice on the same ledger state
// yields identical output. Zero marks is a valid state, not an error.
func Compute(cfg models.StrategyConfig, checkpoints []models.Checkpoint, marks []models.MarkEvent) (Result, error) {
	switch cfg.Type {
	case models.StrategySingleMark:
		return computeSingleMark(marks), nil
	case models.StrategySessionBased, models.StrategyDayBased:
		return computeWeighted(checkpoints, marks)
	case models.StrategyMilestoneBased:
		return computeMilestone(checkpoints, marks)
	case models.StrategyContinuous:
		return computeContinuous(cfg, marks)
	default:
		return Result{}, fmt.Errorf("%w: unknown strategy type %q", ErrInvalidStrategyConfig, cfg.Type)
	}
}

// effectiveMarks reduces the append-only ledger to at most one mark per
// (checkpoint, channel) key: the latest recorded wins.
func effectiveMarks(marks []models.MarkEvent) map[string]models.MarkEvent {
	eff := make(map[string]models.MarkEvent, len(marks))
	for _, m := range marks {
		key := ""
		if m.CheckpointID != nil {
			key = m.CheckpointID.Hex()
		}
		key += "|" + m.Channel
		if prev, ok := eff[key]; !ok || m.Supersedes(prev) {
			eff[key] = m
		}
	}
	return eff
}

func markKey(checkpointID string, channel string) string {
	return checkpointID + "|" + channel
}

// computeSingleMark: one implicit checkpoint, present or absent, 100 or 0.
func computeSingleMark(marks []models.MarkEvent) Result {
	eff := effectiveMarks(marks)
	m, ok := eff[markKey("", "")]
	if ok && m.Status == models.StatusPresent {
		return Result{Status: models.StatusPresent, Percentage: 100}
	}
	return Result{Status: models.StatusAbsent, Percentage: 0}
}

// computeWeighted handles session_based and day_based events. Percentage is
// the met share of total mandatory weight, one decimal.
func computeWeighted(checkpoints []models.Checkpoint, marks []models.MarkEvent) (Result, error) {
	var totalWeight, metWeight float64
	for _, cp := range checkpoints {
		if cp.Mandatory {
			totalWeight += cp.Weight
		}
	}
	if totalWeight <= 0 {
		return Result{}, fmt.Errorf("%w: mandatory checkpoint weights sum to %.1f", ErrInvalidStrategyConfig, totalWeight)
	}

	eff := effectiveMarks(marks)
	details := make([]CheckpointDetail, 0, len(checkpoints))
	anyMandatoryMet := false

	for _, cp := range sortedByOrder(checkpoints) {
		d := checkpointDetail(cp, eff)
		if d.Status == models.StatusPresent && cp.Mandatory {
			metWeight += cp.Weight
			anyMandatoryMet = true
		}
		details = append(details, d)
	}

	pct := round1(metWeight / totalWeight * 100)
	status := models.StatusAbsent
	switch {
	case pct >= 100:
		status = models.StatusPresent
	case pct > 0 && anyMandatoryMet:
		status = models.StatusPartial
	}
	return Result{Status: status, Percentage: pct, PerCheckpoint: details}, nil
}

// computeMilestone: discrete milestones, percentage over the mandatory count.
func computeMilestone(checkpoints []models.Checkpoint, marks []models.MarkEvent) (Result, error) {
	var mandatoryTotal, mandatoryMet int
	eff := effectiveMarks(marks)
	details := make([]CheckpointDetail, 0, len(checkpoints))

	for _, cp := range sortedByOrder(checkpoints) {
		d := checkpointDetail(cp, eff)
		if cp.Mandatory {
			mandatoryTotal++
			if d.Status == models.StatusPresent {
				mandatoryMet++
			}
		}
		details = append(details, d)
	}
	if mandatoryTotal == 0 {
		return Result{}, fmt.Errorf("%w: milestone strategy requires at least one mandatory milestone", ErrInvalidStrategyConfig)
	}

	pct := round1(float64(mandatoryMet) / float64(mandatoryTotal) * 100)
	status := models.StatusAbsent
	switch {
	case mandatoryMet == mandatoryTotal:
		status = models.StatusPresent
	case mandatoryMet > 0:
		status = models.StatusPartial
	}
	return Result{Status: status, Percentage: pct, PerCheckpoint: details}, nil
}

// computeContinuous takes the LATEST engagement score by timestamp as the
// percentage. No time decay: a scan is a statement about the participant's
// engagement as of that moment, and the most recent statement stands.
func computeContinuous(cfg models.StrategyConfig, marks []models.MarkEvent) (Result, error) {
	if cfg.PresentThreshold <= 0 || cfg.PartialThreshold < 0 || cfg.PartialThreshold > cfg.PresentThreshold {
		return Result{}, fmt.Errorf("%w: continuous thresholds present=%.1f partial=%.1f", ErrInvalidStrategyConfig, cfg.PresentThreshold, cfg.PartialThreshold)
	}

	var latest *models.MarkEvent
	for i := range marks {
		m := marks[i]
		if m.EngagementScore == nil {
			continue
		}
		if latest == nil || m.Supersedes(*latest) {
			latest = &marks[i]
		}
	}
	if latest == nil {
		return Result{Status: models.StatusAbsent, Percentage: 0}, nil
	}

	score := round1(*latest.EngagementScore)
	status := models.StatusAbsent
	switch {
	case score >= cfg.PresentThreshold:
		status = models.StatusPresent
	case score >= cfg.PartialThreshold && score > 0:
		status = models.StatusPartial
	}
	return Result{Status: status, Percentage: score}, nil
}

// checkpointDetail resolves one checkpoint against the effective marks.
// Dual-channel checkpoints only count as present when both the virtual and
// the physical channel recorded presence; a single fired channel yields the
// virtual_only / physical_only display label on an absent checkpoint.
func checkpointDetail(cp models.Checkpoint, eff map[string]models.MarkEvent) CheckpointDetail {
	d := CheckpointDetail{
		CheckpointID: cp.ID.Hex(),
		Name:         cp.Name,
		Mandatory:    cp.Mandatory,
		Weight:       cp.Weight,
		Status:       models.StatusAbsent,
	}

	if !cp.DualChannel {
		if m, ok := eff[markKey(cp.ID.Hex(), "")]; ok {
			d.Status = markedStatus(m)
			t := m.RecordedAt
			d.RecordedAt = &t
			d.RecordedBy = m.ActorID
		}
		return d
	}

	virtual, hasVirtual := eff[markKey(cp.ID.Hex(), models.ChannelVirtual)]
	physical, hasPhysical := eff[markKey(cp.ID.Hex(), models.ChannelPhysical)]
	virtualPresent := hasVirtual && virtual.Status == models.StatusPresent
	physicalPresent := hasPhysical && physical.Status == models.StatusPresent

	switch {
	case virtualPresent && physicalPresent:
		d.Status = models.StatusPresent
		t := latestOf(virtual, physical).RecordedAt
		d.RecordedAt = &t
		d.RecordedBy = latestOf(virtual, physical).ActorID
	case virtualPresent:
		d.Label = models.StatusVirtualOnly
		t := virtual.RecordedAt
		d.RecordedAt = &t
		d.RecordedBy = virtual.ActorID
	case physicalPresent:
		d.Label = models.StatusPhysicalOnly
		t := physical.RecordedAt
		d.RecordedAt = &t
		d.RecordedBy = physical.ActorID
	}
	return d
}

func markedStatus(m models.MarkEvent) models.AttendanceStatus {
	if m.Status == models.StatusPresent {
		return models.StatusPresent
	}
	return models.StatusAbsent
}

func latestOf(a, b models.MarkEvent) models.MarkEvent {
	if a.Supersedes(b) {
		return a
	}
	return b
}

func sortedByOrder(checkpoints []models.Checkpoint) []models.Checkpoint {
	out := make([]models.Checkpoint, len(checkpoints))
	copy(out, checkpoints)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
