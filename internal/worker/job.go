package worker

import "context"

type JobType int

const (
	Exec JobType = iota
	Stop
)

func (t JobType) String() string {
	switch t {
	case Exec:
		return "exec"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}

// Job is one unit of background work. Jobs sharing a ClientID are served in
// submission order; different clients take turns.
type Job struct {
	Type     JobType
	ClientID string
	Name     string
	Task     func(ctx context.Context) error

	done func()
}

const anonymousClient = "anonymous"

func (job Job) clientID() string {
	if job.ClientID == "" {
		return anonymousClient
	}
	return job.ClientID
}
