package counter

// Service for key counter interactions. Get has the same increment-and-read
// semantics as Increment.
type Service interface {
	Increment(key string) (uint32, error)
	Get(key string) (uint32, error)
	Size() (int, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service
