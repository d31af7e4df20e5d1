package command

// Topics published by runtimes around parallel task sets.
const (
	TopicTaskSetStarted = "task.set.started"
	TopicTaskDone       = "task.done"
	TopicTaskSetDone    = "task.set.done"
	// TopicTaskSetCancel is published by the loading surface when the user
	// asks to cancel. Cancellation is cooperative: the originating
	// application decides what to do with it.
	TopicTaskSetCancel = "task.set.cancel"
)

// Event is one published message as seen by subscribers.
type Event struct {
	Topic   string
	Payload any
	Source  AppID
}

// TaskSetStarted is the payload of TopicTaskSetStarted.
type TaskSetStarted struct {
	SetID       string
	Origin      AppID
	Title       string
	Names       []string
	Cancellable bool
}

// TaskDone is the payload of TopicTaskDone.
type TaskDone struct {
	SetID string
	Index int
	Name  string
}

// TaskSetDone is the payload of TopicTaskSetDone.
type TaskSetDone struct {
	SetID string
	Count int
}

// TaskSetCancel is the payload of TopicTaskSetCancel.
type TaskSetCancel struct {
	SetID  string
	Origin AppID
}
