// Package kcf provides the application-level service that turns KCF records
// into graph DTOs. It sits between the CLI, HTTP and worker interfaces and the
// domain parser, and adds caching, batching, metrics and logging.
package kcf

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/kcfgraph/internal/config"
	domainKCF "github.com/turtacn/kcfgraph/internal/domain/kcf"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/kcfgraph/pkg/errors"
	moltypes "github.com/turtacn/kcfgraph/pkg/types/molecule"
)

const (
	graphCacheName = "graph"
	// cacheKeyVersion changes whenever the DTO layout changes.
	cacheKeyVersion = "v1"
)

// Service defines the interface for KCF application operations.
type Service interface {
	Parse(ctx context.Context, input ParseInput) (*ParseResult, error)
	ParseObject(ctx context.Context, key string) (*ParseResult, error)
	ParseBatch(ctx context.Context, inputs []ParseInput) (*BatchResult, error)
	ParseDirectory(ctx context.Context, dir string) (*BatchResult, error)
}

// GraphCache stores parsed graphs by content key. A miss is (nil, false, nil).
type GraphCache interface {
	Get(ctx context.Context, key string) (*moltypes.GraphDTO, bool, error)
	Put(ctx context.Context, key string, dto *moltypes.GraphDTO) error
}

// RecordSource fetches raw records by object key.
type RecordSource interface {
	GetRecord(ctx context.Context, key string) ([]byte, error)
}

// ParseInput is one record to parse.
type ParseInput struct {
	// Name identifies the record in results and logs (file name, object
	// key, message key).
	Name string
	Text string
	// Source is the metrics label; see prometheus.Source*.
	Source string
}

// ParseResult is the outcome of a successful parse.
type ParseResult struct {
	Name     string             `json:"name,omitempty"`
	Key      string             `json:"key"`
	Graph    *moltypes.GraphDTO `json:"graph"`
	Cached   bool               `json:"cached"`
	Duration time.Duration      `json:"duration_ns"`
}

// BatchItem is the per-record outcome of a batch. Exactly one of Result and
// Err is set, unless the batch was aborted before the item ran.
type BatchItem struct {
	Index  int          `json:"index"`
	Name   string       `json:"name,omitempty"`
	Result *ParseResult `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
	Code   string       `json:"code,omitempty"`
	Err    error        `json:"-"`
}

// BatchResult keeps items in input order.
type BatchResult struct {
	BatchID   string        `json:"batch_id"`
	Items     []BatchItem   `json:"items"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration_ns"`
}

// Option configures the service.
type Option func(*serviceImpl)

// WithGraphCache enables the content-addressed graph cache.
func WithGraphCache(c GraphCache) Option {
	return func(s *serviceImpl) { s.cache = c }
}

// WithRecordSource enables ParseObject.
func WithRecordSource(src RecordSource) Option {
	return func(s *serviceImpl) { s.records = src }
}

func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(s *serviceImpl) { s.metrics = m }
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	parser   *domainKCF.Parser
	parseCfg config.ParserConfig
	batchCfg config.BatchConfig
	cache    GraphCache
	records  RecordSource
	metrics  *prometheus.AppMetrics
	logger   logging.Logger
}

// NewService creates a new KCF application service.
func NewService(parserCfg config.ParserConfig, batchCfg config.BatchConfig, logger logging.Logger, opts ...Option) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	var popts []domainKCF.Option
	if parserCfg.NoStereo {
		popts = append(popts, domainKCF.WithoutStereo())
	}
	if parserCfg.NoImplicitHydrogens {
		popts = append(popts, domainKCF.WithoutImplicitHydrogens())
	}
	if batchCfg.Concurrency <= 0 {
		batchCfg.Concurrency = config.DefaultBatchConcurrency
	}
	if batchCfg.FilePattern == "" {
		batchCfg.FilePattern = config.DefaultBatchFilePattern
	}

	s := &serviceImpl{
		parser:   domainKCF.NewParser(popts...),
		parseCfg: parserCfg,
		batchCfg: batchCfg,
		logger:   logger.Named("kcf.service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CacheKey returns the graph cache key for text parsed with cfg. Parser
// flags are part of the key because they change the resulting graph.
func CacheKey(text string, cfg config.ParserConfig) string {
	sum := sha256.Sum256([]byte(text))
	var b strings.Builder
	b.WriteString(cacheKeyVersion)
	b.WriteByte(':')
	if cfg.NoStereo {
		b.WriteString("ns")
	}
	if cfg.NoImplicitHydrogens {
		b.WriteString("nh")
	}
	b.WriteByte(':')
	b.WriteString(hex.EncodeToString(sum[:]))
	return b.String()
}

func (s *serviceImpl) Parse(ctx context.Context, input ParseInput) (*ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	source := input.Source
	if source == "" {
		source = prometheus.SourceFile
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, errors.New(errors.ErrCodeKCFEmptyRecord, "empty KCF record").WithDetail(input.Name)
	}
	if limit := s.parseCfg.MaxRecordBytes; limit > 0 && int64(len(input.Text)) > limit {
		return nil, errors.New(errors.ErrCodeValidation, "record too large").
			WithDetailf("%d > %d bytes", len(input.Text), limit)
	}

	start := time.Now()
	key := CacheKey(input.Text, s.parseCfg)

	if dto, ok := s.lookup(ctx, key); ok {
		return &ParseResult{Name: input.Name, Key: key, Graph: dto, Cached: true, Duration: time.Since(start)}, nil
	}

	rec, err := s.parser.ParseRecord(input.Text)
	elapsed := time.Since(start)
	if err != nil {
		status := prometheus.StatusError
		if errors.IsFormatViolation(err) {
			status = prometheus.StatusViolation
		}
		if s.metrics != nil {
			s.metrics.RecordParse(source, status, elapsed, 0, 0)
		}
		s.logger.Debug("KCF record rejected",
			logging.String("name", input.Name),
			logging.String("code", string(errors.GetCode(err))),
			logging.Err(err))
		return nil, err
	}

	dto := moltypes.FromGraph(rec.Graph, rec.Entry)
	if s.metrics != nil {
		s.metrics.RecordParse(source, prometheus.StatusOK, elapsed, dto.NumAtoms, dto.NumRings)
	}
	s.store(ctx, key, dto)

	s.logger.Debug("KCF record parsed",
		logging.String("name", input.Name),
		logging.String("entry", rec.Entry),
		logging.Int("atoms", dto.NumAtoms),
		logging.Int("bonds", dto.NumBonds),
		logging.Duration("elapsed", elapsed))

	return &ParseResult{Name: input.Name, Key: key, Graph: dto, Duration: elapsed}, nil
}

// lookup treats cache failures as misses.
func (s *serviceImpl) lookup(ctx context.Context, key string) (*moltypes.GraphDTO, bool) {
	if s.cache == nil {
		return nil, false
	}
	dto, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordCacheError(graphCacheName, "get")
		}
		s.logger.Warn("graph cache get failed", logging.String("key", key), logging.Err(err))
		return nil, false
	}
	if s.metrics != nil {
		s.metrics.RecordCacheAccess(graphCacheName, ok)
	}
	return dto, ok
}

func (s *serviceImpl) store(ctx context.Context, key string, dto *moltypes.GraphDTO) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, key, dto); err != nil {
		if s.metrics != nil {
			s.metrics.RecordCacheError(graphCacheName, "put")
		}
		s.logger.Warn("graph cache put failed", logging.String("key", key), logging.Err(err))
	}
}

func (s *serviceImpl) ParseObject(ctx context.Context, key string) (*ParseResult, error) {
	if s.records == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "record object store not configured")
	}
	if key == "" {
		return nil, errors.InvalidParam("object key is required")
	}
	data, err := s.records.GetRecord(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.Parse(ctx, ParseInput{Name: key, Text: string(data), Source: prometheus.SourceObject})
}

// ParseBatch parses inputs concurrently. Unless FailFast is set, a failing
// record is reported in its item and the rest of the batch carries on; with
// FailFast the first failure cancels the records not yet started and is
// returned wrapped in a KCF_003 error along with the partial result.
func (s *serviceImpl) ParseBatch(ctx context.Context, inputs []ParseInput) (*BatchResult, error) {
	batchID := uuid.New().String()
	start := time.Now()
	result := &BatchResult{BatchID: batchID, Items: make([]BatchItem, len(inputs))}
	if len(inputs) == 0 {
		return result, nil
	}

	log := s.logger.With(logging.String("batch_id", batchID))
	log.Info("KCF batch started",
		logging.Int("records", len(inputs)),
		logging.Int("concurrency", s.batchCfg.Concurrency),
		logging.Bool("fail_fast", s.batchCfg.FailFast))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchCfg.Concurrency)
	for i := range inputs {
		i := i
		result.Items[i] = BatchItem{Index: i, Name: inputs[i].Name}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res, err := s.Parse(gctx, inputs[i])
			item := &result.Items[i]
			if err != nil {
				item.Err = err
				item.Error = err.Error()
				item.Code = string(errors.GetCode(err))
				if s.batchCfg.FailFast {
					return errors.Wrap(err, errors.ErrCodeKCFBatchFailed, "batch aborted").
						WithDetailf("record %d (%s)", i, inputs[i].Name)
				}
				return nil
			}
			item.Result = res
			return nil
		})
	}
	waitErr := g.Wait()

	for _, item := range result.Items {
		switch {
		case item.Result != nil:
			result.Succeeded++
		case item.Err != nil:
			result.Failed++
		default:
			result.Skipped++
		}
	}
	result.Duration = time.Since(start)

	status := prometheus.StatusOK
	if result.Failed > 0 {
		status = prometheus.StatusViolation
	}
	if waitErr != nil || ctx.Err() != nil {
		status = prometheus.StatusError
	}
	if s.metrics != nil {
		s.metrics.RecordBatch(status, result.Duration)
	}
	log.Info("KCF batch finished",
		logging.Int("succeeded", result.Succeeded),
		logging.Int("failed", result.Failed),
		logging.Int("skipped", result.Skipped),
		logging.Duration("elapsed", result.Duration))

	if waitErr != nil {
		return result, waitErr
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// ParseDirectory parses every file in dir matching the batch file pattern.
// Multi-record files are split on "///" and their records are named
// "<file>#<n>".
func (s *serviceImpl) ParseDirectory(ctx context.Context, dir string) (*BatchResult, error) {
	inputs, err := s.collect(dir)
	if err != nil {
		return nil, err
	}
	return s.ParseBatch(ctx, inputs)
}

func (s *serviceImpl) collect(dir string) ([]ParseInput, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("directory not found").WithDetail(dir)
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "stat directory").WithDetail(dir)
	}
	if !info.IsDir() {
		return nil, errors.InvalidParam("not a directory").WithDetail(dir)
	}

	paths, err := filepath.Glob(filepath.Join(dir, s.batchCfg.FilePattern))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid file pattern").WithDetail(s.batchCfg.FilePattern)
	}
	sort.Strings(paths)

	var inputs []ParseInput
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "open record file").WithDetail(p)
		}
		records, err := domainKCF.SplitRecords(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		name := filepath.Base(p)
		for n, text := range records {
			in := ParseInput{Name: name, Text: text, Source: prometheus.SourceFile}
			if len(records) > 1 {
				in.Name = name + "#" + strconv.Itoa(n+1)
			}
			inputs = append(inputs, in)
		}
	}
	s.logger.Debug("collected records", logging.String("dir", dir), logging.Int("files", len(paths)), logging.Int("records", len(inputs)))
	return inputs, nil
}

//Personal.AI order the ending
