package schedule

import (
	"encoding/json"
	"fmt"
)

// Stop types used in the prompt.
const (
	StopDeparture = "出發點"
	StopPatient   = "病人"
	StopMeal      = "用餐"
	StopEnd       = "終點"
)

// Schedule is a typed view of the object the model is asked to return.
// The HTTP response carries the parsed object as-is; this type is used
// where the schedule is rendered, such as the CLI.
type Schedule struct {
	Date        string   `json:"date" yaml:"date"`
	Stops       []Stop   `json:"stops" yaml:"stops"`
	RouteMapURL string   `json:"route_map_url,omitempty" yaml:"route_map_url,omitempty"`
	Reminders   []string `json:"reminders,omitempty" yaml:"reminders,omitempty"`
}

// Stop is one row of the visit timetable.
type Stop struct {
	Order   int      `json:"order" yaml:"order"`
	Type    string   `json:"type" yaml:"type"`
	Name    string   `json:"name" yaml:"name"`
	Note    string   `json:"note,omitempty" yaml:"note,omitempty"`
	Address string   `json:"address,omitempty" yaml:"address,omitempty"`
	Time    StopTime `json:"time" yaml:"time"`
}

// StopTime holds the clock times for a stop, all HH:MM.
type StopTime struct {
	Depart       string `json:"depart,omitempty" yaml:"depart,omitempty"`
	Arrive       string `json:"arrive,omitempty" yaml:"arrive,omitempty"`
	VisitMinutes int    `json:"visit_minutes,omitempty" yaml:"visit_minutes,omitempty"`
	Leave        string `json:"leave,omitempty" yaml:"leave,omitempty"`
}

// Decode converts a parsed schedule object into the typed view.
func Decode(raw json.RawMessage) (*Schedule, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty schedule")
	}
	var s Schedule
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode schedule: %w", err)
	}
	return &s, nil
}

// Patients returns the patient stops in visit order.
func (s *Schedule) Patients() []Stop {
	var out []Stop
	for _, stop := range s.Stops {
		if stop.Type == StopPatient {
			out = append(out, stop)
		}
	}
	return out
}
