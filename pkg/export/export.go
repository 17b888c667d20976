package export

import (
	"context"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/prequel-dev/prequel-frozen/pkg/journal"
	"github.com/prequel-dev/prequel-frozen/pkg/storage"

	"github.com/rs/zerolog/log"
)

type OptT func(*optT)

type optT struct {
	workers   int
	outPrefix string
	filter    FilterFuncT
	console   io.Writer
}

func parseOpts(opts []OptT) optT {
	o := optT{
		workers:   4,
		outPrefix: "decoded/",
	}

	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithWorkers sets how many journals decode in parallel. Decoders are
// independent; there is no ordering guarantee between journals.
func WithWorkers(n int) OptT {
	return func(o *optT) {
		if n > 0 {
			o.workers = n
		}
	}
}

func WithOutputPrefix(prefix string) OptT {
	return func(o *optT) {
		o.outPrefix = prefix
	}
}

// WithFilter installs an event predicate; events failing it are not
// exported.
func WithFilter(filterF FilterFuncT) OptT {
	return func(o *optT) {
		o.filter = filterF
	}
}

// WithConsole emits JSONL to wtr instead of creating output blobs.
func WithConsole(wtr io.Writer) OptT {
	return func(o *optT) {
		o.console = wtr
	}
}

// JournalResultT records the outcome for one journal.
type JournalResultT struct {
	Name   string
	Events int
	Status string
	Offset int64
}

// SummaryT aggregates one export run.
type SummaryT struct {
	Journals int
	Failed   int
	Events   int
	Duration time.Duration
}

func (s SummaryT) EventsPerSec() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Events) / s.Duration.Seconds()
}

// ExporterT drives decoding of every journal under a source prefix
// into per-journal JSONL blobs on the destination store.
type ExporterT struct {
	src  storage.StoreI
	dst  storage.StoreI
	opts optT
}

func NewExporter(src, dst storage.StoreI, opts ...OptT) *ExporterT {
	return &ExporterT{
		src:  src,
		dst:  dst,
		opts: parseOpts(opts),
	}
}

// Run enumerates journal blobs under prefix and decodes each one. A
// corrupted journal never aborts the batch: its remainder is
// discarded, events decoded before the failure are kept, and the
// failure is logged. The returned error covers enumeration only.
func (e *ExporterT) Run(ctx context.Context, prefix string) (SummaryT, error) {
	start := time.Now()

	blobs, err := e.src.List(ctx, prefix)
	if err != nil {
		return SummaryT{}, err
	}

	var journals []storage.BlobInfoT
	for _, blob := range blobs {
		if storage.IsJournal(blob.Name) {
			journals = append(journals, blob)
		}
	}

	log.Info().
		Str("source", e.src.String()).
		Str("prefix", prefix).
		Int("journals", len(journals)).
		Msg("Begin export")

	var (
		results = make([]JournalResultT, len(journals))
		jobs    = make(chan int)
		wg      sync.WaitGroup
	)

	for i := 0; i < e.opts.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = e.processJournal(ctx, journals[idx])
			}
		}()
	}

FEED:
	for i := range journals {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break FEED
		}
	}
	close(jobs)
	wg.Wait()

	summary := SummaryT{Duration: time.Since(start)}
	for _, res := range results {
		if res.Name == "" {
			continue // never scheduled; canceled before dispatch
		}

		summary.Journals++
		summary.Events += res.Events
		if res.Status != "ok" {
			summary.Failed++
		}

		log.Info().
			Str("journal", res.Name).
			Int("events", res.Events).
			Str("status", res.Status).
			Msg("Journal done")
	}

	log.Info().
		Int("journals", summary.Journals).
		Int("failed", summary.Failed).
		Int("events", summary.Events).
		Dur("duration", summary.Duration).
		Float64("events_per_sec", summary.EventsPerSec()).
		Msg("Export done")

	return summary, nil
}

func (e *ExporterT) processJournal(ctx context.Context, blob storage.BlobInfoT) (res JournalResultT) {
	res.Name = blob.Name

	rdr, err := e.src.Open(ctx, blob.Name)
	if err != nil {
		log.Error().Err(err).Str("journal", blob.Name).Msg("Fail open journal")
		res.Status = "open_error"
		return
	}
	defer rdr.Close()

	sink, err := e.newSink(ctx, blob.Name)
	if err != nil {
		log.Error().Err(err).Str("journal", blob.Name).Msg("Fail create sink")
		res.Status = "sink_error"
		return
	}

	dec, err := journal.NewDecoder(rdr)
	if err != nil {
		sink.Close()
		res.Status = journal.Status(err)
		return
	}
	defer dec.Close()

LOOP:
	for {
		// Cooperative cancellation between events; mid-journal stop
		// is clean, no partial event is emitted.
		if ctx.Err() != nil {
			res.Status = "canceled"
			break
		}

		ev, err := dec.Next()
		switch err {
		case nil:
		case io.EOF:
			res.Status = "ok"
			break LOOP
		default:
			res.Status = journal.Status(err)
			res.Offset = dec.Pos()
			log.Warn().Err(err).
				Str("journal", blob.Name).
				Int64("offset", dec.Pos()).
				Msg("Abandon journal remainder")
			break LOOP
		}

		if e.opts.filter != nil && !e.opts.filter(ev) {
			continue
		}

		if err := sink.Write(ev); err != nil {
			log.Error().Err(err).Str("journal", blob.Name).Msg("Fail sink write")
			res.Status = "sink_error"
			break
		}
		res.Events++
	}

	// Close flushes; events decoded before any failure are retained.
	if err := sink.Close(); err != nil {
		log.Error().Err(err).Str("journal", blob.Name).Msg("Fail sink close")
		if res.Status == "ok" {
			res.Status = "sink_error"
		}
	}

	return
}

func (e *ExporterT) newSink(ctx context.Context, name string) (SinkI, error) {
	if e.opts.console != nil {
		return NewJsonlSink(NopWriteCloser(e.opts.console)), nil
	}

	wtr, err := e.dst.Create(ctx, outputName(e.opts.outPrefix, name))
	if err != nil {
		return nil, err
	}
	return NewJsonlSink(wtr), nil
}

// outputName derives the JSONL blob name from the journal path. The
// frozen bucket directory sits two levels above the journal payload
// (<bucket>/rawdata/journal.zst), and one JSONL blob is written per
// journal.
func outputName(prefix, name string) string {
	base := path.Base(path.Dir(path.Dir(name)))
	if base == "." || base == "/" {
		base = strings.TrimSuffix(path.Base(name), ".zst")
	}
	return prefix + base + ".jsonl"
}
