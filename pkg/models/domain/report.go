package domain

import "time"

// Report represents a complete analysis report
type Report struct {
	Title    string
	Source   string
	Period   *TimePeriod
	Rows     int
	Sections []ReportSection
}

// TimePeriod represents the time range covered by the data
type TimePeriod struct {
	Start    time.Time
	End      time.Time
	Duration int // in days
}

// NewTimePeriod builds the period spanning start to end, both inclusive.
func NewTimePeriod(start, end time.Time) *TimePeriod {
	return &TimePeriod{
		Start:    start,
		End:      end,
		Duration: int(end.Sub(start).Hours()/24) + 1,
	}
}

// ReportSection represents a logical section in the report
type ReportSection struct {
	Title   string
	Summary map[string]interface{}
	Details []ReportDetail
	Table   *Table
}

// ReportDetail represents detailed information within a section
type ReportDetail struct {
	Name        string
	Value       interface{}
	Unit        string
	Description string
}

// AddSection appends a section and returns it for further filling. The
// pointer is only valid until the next AddSection call.
func (r *Report) AddSection(title string) *ReportSection {
	r.Sections = append(r.Sections, ReportSection{
		Title:   title,
		Summary: map[string]interface{}{},
	})
	return &r.Sections[len(r.Sections)-1]
}
