package pipeline

import (
	"encoding/json"
	"errors"

	"github.com/ppiankov/mathsheet/internal/cache"
	"github.com/ppiankov/mathsheet/internal/model"
)

// cacheFormat is bumped whenever rendering output changes
const cacheFormat = 1

// documentKey identifies a seeded document. Everything the output depends on
// is part of the key, including the footer date.
func documentKey(cfg model.GenerationConfig, seed int64, dateStamp string) (string, error) {
	fingerprint, err := json.Marshal(struct {
		Format int                    `json:"format"`
		Config model.GenerationConfig `json:"config"`
		Seed   int64                  `json:"seed"`
		Date   string                 `json:"date"`
	}{cacheFormat, cfg, seed, dateStamp})
	if err != nil {
		return "", err
	}
	return cache.CacheKey(string(fingerprint)), nil
}

type cachedFallback struct {
	Field   string `json:"field"`
	Input   string `json:"input"`
	Default string `json:"default"`
	Reason  string `json:"reason"`
}

type cachedDocument struct {
	PDF       []byte           `json:"pdf"`
	Pages     int              `json:"pages"`
	Fallbacks []cachedFallback `json:"fallbacks,omitempty"`
}

func newCachedDocument(doc *Document) cachedDocument {
	entry := cachedDocument{PDF: doc.Bytes, Pages: doc.Pages}
	for _, fb := range doc.Fallbacks {
		reason := ""
		if fb.Err != nil {
			reason = fb.Err.Error()
		}
		entry.Fallbacks = append(entry.Fallbacks, cachedFallback{
			Field:   fb.Field,
			Input:   fb.Input,
			Default: fb.Default,
			Reason:  reason,
		})
	}
	return entry
}

func (c cachedDocument) fallbacks() []Fallback {
	var out []Fallback
	for _, fb := range c.Fallbacks {
		out = append(out, Fallback{
			Field:   fb.Field,
			Input:   fb.Input,
			Default: fb.Default,
			Err:     errors.New(fb.Reason),
		})
	}
	return out
}
