package protocol

// recommendation sources
const (
	SourceProtocol = "protocol"
	SourceFallback = "fallback"
)

// Recommendation is what the client-facing flows return: either a matched
// protocol or a fallback catalog entry, never an error.
type Recommendation struct {
	Source  string  `json:"source"`
	Profile Profile `json:"profile"`
	Payload
}

func protocolRecommendation(r *Record) *Recommendation {
	return &Recommendation{
		Source:  SourceProtocol,
		Profile: r.Profile,
		Payload: r.Payload,
	}
}

func fallbackRecommendation(p Profile) *Recommendation {
	return &Recommendation{
		Source:  SourceFallback,
		Profile: p,
		Payload: Fallback(p.Target).Payload,
	}
}

// IsFallback reports whether the recommendation came from the fallback catalog.
func (r *Recommendation) IsFallback() bool {
	return r.Source == SourceFallback
}
