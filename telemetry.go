package archon

import "time"

// TimingSample records one timed span of work, usually a single system run.
type TimingSample struct {
	Label    string
	Duration time.Duration
	At       time.Time
}

// timingRing keeps the most recent samples in a fixed-size ring.
type timingRing struct {
	samples []TimingSample
	next    int
	filled  bool
}

func newTimingRing(size int) *timingRing {
	return &timingRing{samples: make([]TimingSample, size)}
}

func (r *timingRing) record(label string, d time.Duration) {
	r.samples[r.next] = TimingSample{Label: label, Duration: d, At: time.Now()}
	r.next++
	if r.next == len(r.samples) {
		r.next = 0
		r.filled = true
	}
}

// history returns the retained samples oldest first.
func (r *timingRing) history() []TimingSample {
	if !r.filled {
		return append([]TimingSample(nil), r.samples[:r.next]...)
	}
	out := make([]TimingSample, 0, len(r.samples))
	out = append(out, r.samples[r.next:]...)
	out = append(out, r.samples[:r.next]...)
	return out
}

// TimingHistory returns the most recent system timing samples, oldest first.
// The retained count is WorldConfig.TimingHistorySize.
func (w *World) TimingHistory() []TimingSample {
	return w.timings.history()
}

// Stats is a point-in-time summary of the world's contents.
type Stats struct {
	AliveEntities   int
	Archetypes      int
	TotalRows       int
	Systems         int
	Resources       int
	EventChannels   int
	PendingCommands bool
}

// Stats summarizes the world for dashboards and debug logging.
func (w *World) Stats() Stats {
	totalRows := 0
	for _, arch := range w.archetypes {
		totalRows += arch.Len()
	}
	return Stats{
		AliveEntities:   w.entities.AliveCount(),
		Archetypes:      len(w.archetypes),
		TotalRows:       totalRows,
		Systems:         len(w.systems.registeredSystems),
		Resources:       len(w.resources),
		EventChannels:   w.eventManager.Count(),
		PendingCommands: w.commandQueue.HasPending(),
	}
}
