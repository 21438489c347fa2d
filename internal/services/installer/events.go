package installer

type EventType string

const (
	EventStepStarted      EventType = "install.step_started"
	EventStepCompleted    EventType = "install.step_completed"
	EventInstallCompleted EventType = "install.completed"
	EventInstallFailed    EventType = "install.failed"
	EventSampleRemoved    EventType = "install.sample_removed"
	EventReset            EventType = "install.reset"
)

// Event reports installation progress to interested listeners.
type Event struct {
	Type    EventType `json:"type"`
	Step    string    `json:"step,omitempty"`
	Message string    `json:"message,omitempty"`
}

// Notifier receives progress events. Notify is called while the
// installation transaction is open, so it must not block.
type Notifier interface {
	Notify(Event)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}
