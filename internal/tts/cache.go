package tts

// Key identifies one loaded engine configuration.
type Key struct {
	Backend string
	Lang    string
	Model   string
	Voice   string
}

// Cache holds engine instances for the lifetime of one batch invocation.
// Кеш передаётся явно, а не живёт в состоянии пакета: время жизни видно
// вызывающему коду и легко тестируется. Записи не вытесняются.
type Cache struct {
	engines map[Key]Synthesizer
}

// NewCache returns an empty engine cache.
func NewCache() *Cache {
	return &Cache{engines: make(map[Key]Synthesizer)}
}

// Get returns a cached engine or builds one via New.
func (c *Cache) Get(opts Options) (Synthesizer, error) {
	key := Key{Backend: opts.Backend, Lang: opts.Lang, Model: opts.Model, Voice: opts.Voice}
	if s, ok := c.engines[key]; ok {
		return s, nil
	}
	s, err := New(opts)
	if err != nil {
		return nil, err
	}
	c.engines[key] = s
	return s, nil
}

// Len reports how many engines were loaded.
func (c *Cache) Len() int {
	return len(c.engines)
}
