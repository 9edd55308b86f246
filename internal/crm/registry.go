package crm

// Registry holds the configured adapters. It is populated once at
// startup and read-only afterwards, so no locking is needed.
type Registry struct {
	adapters map[Provider]Adapter
	auth     map[Provider]AuthAdapter
}

// NewRegistry creates an empty adapter registry
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[Provider]Adapter),
		auth:     make(map[Provider]AuthAdapter),
	}
}

// Register adds a CRM adapter for its provider
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Provider()] = a
}

// RegisterAuth adds an auth adapter for its provider
func (r *Registry) RegisterAuth(a AuthAdapter) {
	r.auth[a.Provider()] = a
}

// Adapter resolves the CRM adapter for a provider tag
func (r *Registry) Adapter(p Provider) (Adapter, error) {
	a, ok := r.adapters[p]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return a, nil
}

// Auth resolves the auth adapter for a provider tag
func (r *Registry) Auth(p Provider) (AuthAdapter, error) {
	a, ok := r.auth[p]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return a, nil
}
