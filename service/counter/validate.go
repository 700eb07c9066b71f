package counter

// KeyPolicy restricts which keys are accepted. The zero value accepts every
// key, including the empty one.
type KeyPolicy struct {
	RejectEmpty bool
	MaxLen      int
}

// Validate returns ErrInvalidKey if key violates the policy.
func (p KeyPolicy) Validate(key string) error {
	if p.RejectEmpty && key == "" {
		return wrapError(ErrInvalidKey, "key must not be empty")
	}

	if p.MaxLen > 0 && len(key) > p.MaxLen {
		return wrapError(ErrInvalidKey, "key exceeds %d bytes", p.MaxLen)
	}

	return nil
}

type validateService struct {
	next   Service
	policy KeyPolicy
}

// ValidateMiddleware rejects keys not accepted by policy before they reach
// the next Service.
func ValidateMiddleware(policy KeyPolicy) ServiceMiddleware {
	return func(next Service) Service {
		return &validateService{next: next, policy: policy}
	}
}

func (s *validateService) Increment(key string) (uint32, error) {
	if err := s.policy.Validate(key); err != nil {
		return 0, err
	}

	return s.next.Increment(key)
}

func (s *validateService) Get(key string) (uint32, error) {
	if err := s.policy.Validate(key); err != nil {
		return 0, err
	}

	return s.next.Get(key)
}

func (s *validateService) Size() (int, error) {
	return s.next.Size()
}
