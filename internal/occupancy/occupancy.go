// Package occupancy rebuilds daily head counts from an entry/exit log.
//
// The log only records crossings, so a day whose running count dips below zero is assumed to
// have missed entries before the first logged event; the whole day is shifted up by the
// deficit. This is a data-quality assumption, not a correctness guarantee.
package occupancy

import (
	"sort"
	"time"

	"github.com/thatsimonsguy/energy-accounting/internal/model"
)

const dayLayout = "2006-01-02"

type Series struct {
	Points []model.OccupancyPoint `json:"points"`
}

// DailyOccupancy computes the adjusted occupant count after each event. Events with a zero
// timestamp or an unknown kind are ignored. Each day starts from zero.
func DailyOccupancy(events []model.OccupancyEvent) Series {
	byDay := make(map[string][]model.OccupancyEvent)
	for _, e := range events {
		if e.Timestamp.IsZero() || delta(e.Kind) == 0 {
			continue
		}
		day := e.Timestamp.Format(dayLayout)
		byDay[day] = append(byDay[day], e)
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)

	var series Series
	for _, day := range days {
		series.Points = append(series.Points, adjustDay(day, byDay[day])...)
	}
	return series
}

func adjustDay(day string, events []model.OccupancyEvent) []model.OccupancyPoint {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	points := make([]model.OccupancyPoint, len(events))
	running := 0
	for i, e := range events {
		running += delta(e.Kind)
		points[i] = model.OccupancyPoint{Timestamp: e.Timestamp, Day: day, Count: running}
	}

	lowest := 0
	for _, p := range points {
		if p.Count < lowest {
			lowest = p.Count
		}
	}
	if lowest < 0 {
		for i := range points {
			points[i].Count -= lowest
		}
	}
	return points
}

func delta(k model.EventKind) int {
	switch k {
	case model.EventEntry:
		return 1
	case model.EventExit:
		return -1
	}
	return 0
}

// DailyPeaks returns, per day, the highest count and the first time it was reached.
func (s Series) DailyPeaks() []model.DailyPeak {
	var peaks []model.DailyPeak
	for _, p := range s.Points {
		n := len(peaks)
		if n == 0 || peaks[n-1].Day != p.Day {
			peaks = append(peaks, model.DailyPeak{Day: p.Day, Count: p.Count, At: p.Timestamp})
			continue
		}
		if p.Count > peaks[n-1].Count {
			peaks[n-1].Count = p.Count
			peaks[n-1].At = p.Timestamp
		}
	}
	return peaks
}

// Peak is the highest count over the whole series. ok is false when the series is empty,
// meaning peak occupancy is unknown rather than zero.
func (s Series) Peak() (count int, at time.Time, ok bool) {
	for _, p := range s.Points {
		if !ok || p.Count > count {
			count, at, ok = p.Count, p.Timestamp, true
		}
	}
	return count, at, ok
}

func (s Series) Empty() bool {
	return len(s.Points) == 0
}
