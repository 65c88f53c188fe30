package dashboard

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"perfdash/internal/domain/actions"
	"perfdash/internal/domain/dataset"
	"perfdash/internal/domain/evaluation"
	"perfdash/internal/platform/metrics"
)

type Options struct {
	CacheSize int
	Normalize evaluation.Options
	Actions   *actions.Service
	Metrics   *metrics.Collector
}

// Service runs the load and normalize pipeline and keeps the most recently used
// datasets in memory.
type Service struct {
	opts Options
	now  func() time.Time

	mu      sync.Mutex
	order   *list.List
	entries map[string]*list.Element
}

func New(opts Options) *Service {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 16
	}
	return &Service{
		opts:    opts,
		now:     time.Now,
		order:   list.New(),
		entries: map[string]*list.Element{},
	}
}

func (s *Service) Rules() evaluation.Rules {
	if s.opts.Normalize.Rules.CategoryAliases == nil {
		return evaluation.DefaultRules()
	}
	return s.opts.Normalize.Rules
}

func (s *Service) Actions() *actions.Service {
	return s.opts.Actions
}

// Load normalizes an uploaded file. cached is true when identical bytes were
// already loaded; the earlier result is returned unchanged.
func (s *Service) Load(ctx context.Context, name string, data []byte) (ds *Dataset, cached bool, err error) {
	if len(data) == 0 {
		return nil, false, ErrEmptyFile
	}
	sum := sha256.Sum256(data)
	id := hex.EncodeToString(sum[:])

	if existing, ok := s.lookup(id); ok {
		s.opts.Metrics.DatasetCacheHit()
		return existing, true, nil
	}

	raw, err := dataset.LoadNamed(name, data)
	if err != nil {
		s.opts.Metrics.DatasetLoadFailed()
		slog.Warn("dataset load failed", "name", name, "err", err)
		return nil, false, err
	}
	table, err := evaluation.Normalize(raw, s.opts.Normalize)
	if err != nil {
		s.opts.Metrics.DatasetLoadFailed()
		slog.Warn("dataset normalize failed", "name", name, "err", err)
		return nil, false, err
	}

	ds = &Dataset{
		ID:       id,
		Name:     strings.TrimSpace(name),
		Encoding: raw.Encoding,
		Size:     len(data),
		LoadedAt: s.now().UTC(),
		Table:    table,
	}
	if raw.Delimiter != 0 {
		ds.Delimiter = string(raw.Delimiter)
	}
	s.store(ds)

	report := table.Report
	s.opts.Metrics.DatasetLoaded(report.Rows, report.CoercionFailures())
	slog.Info("dataset loaded",
		"id", id[:12],
		"name", ds.Name,
		"encoding", ds.Encoding,
		"rows", report.Rows,
		"scoreColumn", table.Resolution.Score.Column,
		"categoryColumn", table.Resolution.Category.Column,
		"scoreMissing", report.ScoreMissing,
		"scoreInvalid", report.ScoreInvalid,
		"categoryUnrecognized", report.CategoryUnrecognized,
		"competencyInvalid", report.CompetencyInvalid,
	)
	return ds, false, nil
}

// Get returns a cached dataset with stored follow-up actions applied to a copy
// of its table.
func (s *Service) Get(ctx context.Context, id string) (*Dataset, error) {
	ds, ok := s.lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	if s.opts.Actions == nil {
		return ds, nil
	}
	table, err := s.opts.Actions.Apply(ctx, ds.ID, ds.Table)
	if err != nil {
		return nil, err
	}
	out := *ds
	out.Table = table
	return &out, nil
}

// List returns cached datasets, newest first.
func (s *Service) List() []Info {
	s.mu.Lock()
	out := make([]Info, 0, len(s.entries))
	for el := s.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*Dataset).Info())
	}
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].LoadedAt.After(out[j].LoadedAt) })
	return out
}

func (s *Service) Forget(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.entries[id]
	if !ok {
		return false
	}
	s.order.Remove(el)
	delete(s.entries, id)
	return true
}

func (s *Service) lookup(id string) (*Dataset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	s.order.MoveToFront(el)
	return el.Value.(*Dataset), true
}

func (s *Service) store(ds *Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.entries[ds.ID]; ok {
		s.order.MoveToFront(el)
		return
	}
	s.entries[ds.ID] = s.order.PushFront(ds)
	for s.order.Len() > s.opts.CacheSize {
		oldest := s.order.Back()
		evicted := oldest.Value.(*Dataset)
		s.order.Remove(oldest)
		delete(s.entries, evicted.ID)
		slog.Info("dataset evicted", "id", evicted.ID[:12], "name", evicted.Name)
	}
}
