package webhook

/* Event is the closed catalog of domain occurrences a subscription can listen to.
 * Producers hand over a tag and an opaque payload, nothing else.
 * New tags are appended at the end so stored numeric values never shift.
 */
type Event int

const (
	UnknownEvent Event = iota
	JourneyStageChanged
	SurveySent
	SurveyCompleted
	TouchpointCreated
	ComplaintCreated
	ComplaintResolved
	PatientCreated
	AppointmentScheduled
	AppointmentCancelled
)

var eventTags = map[Event]string{
	JourneyStageChanged:  "journey.stage_changed",
	SurveySent:           "survey.sent",
	SurveyCompleted:      "survey.completed",
	TouchpointCreated:    "touchpoint.created",
	ComplaintCreated:     "complaint.created",
	ComplaintResolved:    "complaint.resolved",
	PatientCreated:       "patient.created",
	AppointmentScheduled: "appointment.scheduled",
	AppointmentCancelled: "appointment.cancelled",
}

var tagEvents = func() map[string]Event {
	m := make(map[string]Event, len(eventTags))
	for e, tag := range eventTags {
		m[tag] = e
	}
	return m
}()

// String returns the wire tag of the event
func (e Event) String() string {
	if tag, ok := eventTags[e]; ok {
		return tag
	}
	return "unknown"
}

// IsKnown reports whether the event belongs to the catalog
func (e Event) IsKnown() bool {
	_, ok := eventTags[e]
	return ok
}

// ParseEvent maps a wire tag to an Event. The boolean is false for tags outside the catalog.
func ParseEvent(tag string) (Event, bool) {
	e, ok := tagEvents[tag]
	return e, ok
}

// Events returns the full catalog in declaration order
func Events() []Event {
	events := make([]Event, 0, len(eventTags))
	for e := JourneyStageChanged; e <= AppointmentCancelled; e++ {
		events = append(events, e)
	}
	return events
}

// ParseEvents converts tags into a deduplicated event set, dropping unknown tags
func ParseEvents(tags []string) []Event {
	seen := make(map[Event]struct{}, len(tags))
	events := make([]Event, 0, len(tags))
	for _, tag := range tags {
		e, ok := ParseEvent(tag)
		if !ok {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		events = append(events, e)
	}
	return events
}

// EventTags is the inverse of ParseEvents
func EventTags(events []Event) []string {
	tags := make([]string, 0, len(events))
	for _, e := range events {
		if e.IsKnown() {
			tags = append(tags, e.String())
		}
	}
	return tags
}
