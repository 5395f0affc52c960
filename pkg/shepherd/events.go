package shepherd

// EventType tags the payload variant of an external ind event: a sum
// type over the payload variants rather than a stringly-typed dispatch.
type EventType string

const (
	EventDevIncoming  EventType = "devIncoming"
	EventDevInterview EventType = "devInterview"
	EventDevLeaving   EventType = "devLeaving"
	EventDevChange    EventType = "devChange"
	EventDataConfirm  EventType = "dataConfirm"
	EventStatusChange EventType = "statusChange"
	EventAttReport    EventType = "attReport"
	EventDevStatus    EventType = "devStatus"
)

// Event is the single external tagged event (`ind`) the Shepherd emits.
// Ready and PermitJoining are emitted as distinct top-level events, not
// wrapped in Event.
type Event struct {
	Type      EventType
	Endpoints []*Endpoint
	Data      interface{}
	Msg       string
}

// ClusterDiff is the payload of a devChange/attReport event: the cluster
// id and the subset of attributes that changed.
type ClusterDiff struct {
	ClusterID uint16                 `json:"cid"`
	Data      map[string]interface{} `json:"data"`
}

// Sink receives every external event the Shepherd produces: ready,
// permitJoining ticks, and the unified ind stream. A nil field on the
// Sink disables that channel of events without affecting the others.
type Sink struct {
	Ready         func()
	PermitJoining func(timeLeft int)
	Ind           func(Event)
}

func (s *Sink) emitReady() {
	if s != nil && s.Ready != nil {
		s.Ready()
	}
}

func (s *Sink) emitPermitJoining(timeLeft int) {
	if s != nil && s.PermitJoining != nil {
		s.PermitJoining(timeLeft)
	}
}

func (s *Sink) emitInd(e Event) {
	if s != nil && s.Ind != nil {
		s.Ind(e)
	}
}
