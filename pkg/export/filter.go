package export

import (
	"fmt"

	"github.com/prequel-dev/prequel-frozen/pkg/journal"

	"github.com/itchyny/gojq"
	"github.com/rs/zerolog/log"
)

type FilterFuncT func(ev journal.Event) bool

// NewFilter compiles a jq expression into an event predicate. The
// expression sees the event under the same field names the JSONL sink
// emits, so `.sourcetype == "st_1"` or `.index_time > 10000000` read
// the same in a filter as in the output.
func NewFilter(term string) (FilterFuncT, error) {
	query, err := gojq.Parse(term)
	if err != nil {
		return nil, fmt.Errorf("fail jq parse '%s': %w", term, err)
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("fail jq compile '%s': %w", term, err)
	}

	return func(ev journal.Event) (match bool) {
		iter := code.Run(eventValue(ev))
		for {
			res, ok := iter.Next()
			if !ok {
				break
			}
			if err, ok := res.(error); ok {
				if err, ok := err.(*gojq.HaltError); ok && err.Value() == nil {
					break
				}
				log.Debug().Err(err).
					Str("term", term).
					Msg("Fail jq query on event")
				match = false
				break
			}

			if res != nil {
				if v, ok := res.(bool); ok {
					if v {
						match = true
					}
				} else {
					match = true
				}
			}
		}

		return
	}, nil
}

// eventValue mirrors the JSONL field names. gojq only accepts
// normalized values, hence the int casts.
func eventValue(ev journal.Event) map[string]any {
	return map[string]any{
		"host":          ev.Host,
		"source":        ev.Source,
		"sourcetype":    ev.Sourcetype,
		"index_time":    int(ev.IndexTime),
		"message":       ev.Message,
		"stream_id":     int(ev.StreamID),
		"stream_offset": int(ev.StreamOffset),
	}
}
