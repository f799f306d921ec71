package interval

// Converter post-processes a raw column buffer into the value handed to the
// caller. A nil result with a nil error is the absent value.
type Converter func(raw []byte) (any, error)

// Registry holds output converters keyed by wire type-tag id. It is
// connection-scoped state: installed explicitly before the single
// validation pass that needs it and cleared afterwards, never a
// process-global singleton. Checks run strictly sequentially, so access is
// unsynchronized.
type Registry struct {
	converters map[int]Converter
}

// NewRegistry creates an empty converter registry.
func NewRegistry() *Registry {
	return &Registry{converters: make(map[int]Converter)}
}

// Register installs a converter for the given tag id, replacing any
// previous one.
func (r *Registry) Register(id int, fn Converter) {
	r.converters[id] = fn
}

// Lookup returns the converter registered for the tag id, if any.
func (r *Registry) Lookup(id int) (Converter, bool) {
	fn, ok := r.converters[id]
	return fn, ok
}

// Len returns the number of registered converters.
func (r *Registry) Len() int {
	return len(r.converters)
}

// Clear removes all registered converters. Called on every exit path of a
// run that installed converters, so no state leaks into the next check.
func (r *Registry) Clear() {
	r.converters = make(map[int]Converter)
}

// DecodeNull yields the absent value regardless of input. A null-typed
// column still arrives with a non-empty tagged buffer.
func DecodeNull(raw []byte) (any, error) {
	return nil, nil
}

// InstallIntervalConverters registers the wide-character decoder on the
// whole interval tag band and the null suppressor on the NULL sentinel.
func InstallIntervalConverters(r *Registry, d *Decoder) {
	decode := func(raw []byte) (any, error) {
		s, err := d.Decode(raw)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	for id := IntervalTagMin; id <= IntervalTagMax; id++ {
		r.Register(id, decode)
	}
	r.Register(NullTypeTag, DecodeNull)
}
