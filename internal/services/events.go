package services

// EventPublisher receives a notification for every committed write
type EventPublisher interface {
	Publish(eventType string, entityID int, data any)
}

// PublisherFunc adapts a function to EventPublisher
type PublisherFunc func(eventType string, entityID int, data any)

func (f PublisherFunc) Publish(eventType string, entityID int, data any) {
	f(eventType, entityID, data)
}

// Publishers fans a single event out to several publishers
type Publishers []EventPublisher

func (p Publishers) Publish(eventType string, entityID int, data any) {
	for _, publisher := range p {
		if publisher != nil {
			publisher.Publish(eventType, entityID, data)
		}
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, int, any) {}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
