package pipeline

// State identifies the step a job is currently executing. States advance in
// forward order through the pipeline; the pending state recurs whenever the
// job queues for a concurrency slot.
type State string

const (
	StatePending        State = "pending"
	StateFetching       State = "fetching"
	StateFetchingSubs   State = "fetching-subtitles"
	StateConvertingSubs State = "converting-subtitles"
	StateMuxing         State = "muxing"
	StateVerifying      State = "verifying"
	StatePublishing     State = "publishing"
	StateDiscarding     State = "discarding"
	StateCleaningUp     State = "cleaning-up"
	StateDone           State = "done"
)

// label returns the progress-row wording for the state.
func (s State) label() string {
	switch s {
	case StatePending:
		return "waiting for slot"
	case StateFetching:
		return "downloading"
	case StateFetchingSubs:
		return "fetching subtitles"
	case StateConvertingSubs:
		return "converting subtitles"
	case StateMuxing:
		return "muxing"
	case StateVerifying:
		return "verifying"
	case StatePublishing:
		return "publishing"
	case StateDiscarding:
		return "verification failed"
	case StateCleaningUp:
		return "cleaning up"
	case StateDone:
		return "done"
	default:
		return string(s)
	}
}
