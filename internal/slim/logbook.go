package slim

import (
	"fmt"
	"sort"
)

// Logbook is the daily-log store for one user. It keeps the full collection
// in memory and writes the whole collection back to its repository after
// every mutation.
//
// A Logbook is bound to a single username; SessionManager builds a new one
// whenever the active user changes, so stale logs are never visible to the
// next user.
type Logbook struct {
	username string
	logs     []*DailyLog
	repo     LogRepository
	clock    Clock
}

// OpenLogbook loads the persisted collection for username.
func OpenLogbook(username string, repo LogRepository, clock Clock) (*Logbook, error) {
	logs, err := repo.LoadLogs(username)
	if err != nil {
		return nil, fmt.Errorf("loading logs for %s: %w", username, err)
	}
	return &Logbook{username: username, logs: logs, repo: repo, clock: clock}, nil
}

// NewEmptyLogbook starts username with no history and persists the empty collection.
func NewEmptyLogbook(username string, repo LogRepository, clock Clock) (*Logbook, error) {
	b := &Logbook{username: username, repo: repo, clock: clock}
	if err := b.save(); err != nil {
		return nil, err
	}
	return b, nil
}

// Username returns the owner of this logbook.
func (b *Logbook) Username() string {
	return b.username
}

// Today returns the current local calendar day. It is recomputed from the
// clock on every call.
func (b *Logbook) Today() string {
	return b.clock.Now().Format(DateLayout)
}

// AddEntry appends entry to today's log, creating the log if needed.
// Entry ids are unique across every log.
func (b *Logbook) AddEntry(entry FoodEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if b.hasEntry(entry.ID) {
		return invalid("id", fmt.Sprintf("duplicate entry id %s", entry.ID))
	}
	log := b.resolve(b.Today())
	log.Entries = append(log.Entries, entry)
	return b.save()
}

// RemoveEntry deletes the entry with the given id from every log, not just
// today's, so entries recorded around a date boundary are still reachable.
// It reports whether anything was removed; an unknown id is not an error.
func (b *Logbook) RemoveEntry(id string) (bool, error) {
	removed := false
	for _, log := range b.logs {
		kept := log.Entries[:0]
		for _, e := range log.Entries {
			if e.ID == id {
				removed = true
				continue
			}
			kept = append(kept, e)
		}
		log.Entries = kept
	}
	if !removed {
		return false, nil
	}
	return true, b.save()
}

// SetWeight records today's weight, overwriting any earlier value for today.
func (b *Logbook) SetWeight(weight float64) error {
	if !(weight > 0) {
		return invalid("weight", "must be a positive number")
	}
	log := b.resolve(b.Today())
	log.Weight = &weight
	return b.save()
}

// SetNotes replaces today's free-text notes.
func (b *Logbook) SetNotes(notes string) error {
	log := b.resolve(b.Today())
	log.Notes = notes
	return b.save()
}

// SetAnalysis caches an AI analysis on an existing log.
func (b *Logbook) SetAnalysis(date string, analysis *DailyAnalysis) error {
	if analysis == nil {
		return invalid("analysis", "is required")
	}
	log := b.find(date)
	if log == nil {
		return fmt.Errorf("no log for %s", date)
	}
	a := *analysis
	log.Analysis = &a
	return b.save()
}

// PreviousWeight returns the most recent recorded weight from any day other
// than today.
func (b *Logbook) PreviousWeight() (float64, bool) {
	today := b.Today()
	for _, log := range b.sortedDesc() {
		if log.Date == today || log.Weight == nil {
			continue
		}
		return *log.Weight, true
	}
	return 0, false
}

// TodayLog returns a copy of today's log. If nothing has been recorded today
// an empty log is returned; it is not stored.
func (b *Logbook) TodayLog() *DailyLog {
	today := b.Today()
	if log := b.find(today); log != nil {
		return log.clone()
	}
	return &DailyLog{Date: today, Entries: []FoodEntry{}}
}

// Log returns a copy of the log for date, or nil.
func (b *Logbook) Log(date string) *DailyLog {
	if log := b.find(date); log != nil {
		return log.clone()
	}
	return nil
}

// Logs returns copies of every log in insertion order.
func (b *Logbook) Logs() []*DailyLog {
	out := make([]*DailyLog, len(b.logs))
	for i, log := range b.logs {
		out[i] = log.clone()
	}
	return out
}

// LogsNewestFirst returns copies of every log ordered by date descending.
func (b *Logbook) LogsNewestFirst() []*DailyLog {
	sorted := b.sortedDesc()
	out := make([]*DailyLog, len(sorted))
	for i, log := range sorted {
		out[i] = log.clone()
	}
	return out
}

// Replace swaps the whole collection, e.g. when importing an export file.
func (b *Logbook) Replace(logs []*DailyLog) error {
	if err := validateCollection(logs); err != nil {
		return err
	}
	replaced := make([]*DailyLog, len(logs))
	for i, log := range logs {
		replaced[i] = log.clone()
	}
	b.logs = replaced
	return b.save()
}

// resolve returns the stored log for date, creating it if absent.
func (b *Logbook) resolve(date string) *DailyLog {
	if log := b.find(date); log != nil {
		return log
	}
	log := &DailyLog{Date: date, Entries: []FoodEntry{}}
	b.logs = append(b.logs, log)
	return log
}

func (b *Logbook) hasEntry(id string) bool {
	for _, log := range b.logs {
		for _, e := range log.Entries {
			if e.ID == id {
				return true
			}
		}
	}
	return false
}

func (b *Logbook) find(date string) *DailyLog {
	for _, log := range b.logs {
		if log.Date == date {
			return log
		}
	}
	return nil
}

func (b *Logbook) sortedDesc() []*DailyLog {
	sorted := append([]*DailyLog{}, b.logs...)
	// YYYY-MM-DD sorts lexically in date order.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})
	return sorted
}

func (b *Logbook) save() error {
	if err := b.repo.SaveLogs(b.username, b.logs); err != nil {
		return fmt.Errorf("saving logs for %s: %w", b.username, err)
	}
	return nil
}

// validateCollection enforces one log per date and unique entry ids.
func validateCollection(logs []*DailyLog) error {
	dates := make(map[string]bool, len(logs))
	ids := make(map[string]bool)
	for _, log := range logs {
		if log == nil {
			return invalid("log", "must not be null")
		}
		if _, err := parseDate(log.Date); err != nil {
			return invalid("date", fmt.Sprintf("%q is not YYYY-MM-DD", log.Date))
		}
		if dates[log.Date] {
			return invalid("date", fmt.Sprintf("duplicate log for %s", log.Date))
		}
		dates[log.Date] = true
		for _, e := range log.Entries {
			if err := e.Validate(); err != nil {
				return err
			}
			if ids[e.ID] {
				return invalid("id", fmt.Sprintf("duplicate entry id %s", e.ID))
			}
			ids[e.ID] = true
		}
	}
	return nil
}
