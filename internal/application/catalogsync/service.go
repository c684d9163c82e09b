package catalogsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mld/backend/internal/domain/catalog"
	"github.com/mld/backend/internal/domain/shared"
	"github.com/mld/backend/internal/infrastructure/specfeed"
)

// DefaultManufacturers is the allow-listed set of manufacturer feed codes
var DefaultManufacturers = []string{
	"TMF", "VHOOD", "BEST", "LNX", "FULGORM", "PERLI", "WOLF", "AMN",
	"AVA", "BEKO", "BER", "BLU", "BOSCH", "DAC", "CA_ELECTROLUX", "FPK",
	"FRIG", "GAG", "GE", "HAR", "JEN", "KTA", "LG", "LBR",
	"MAR", "MAY", "MIE", "MONOGRAM", "SAMSUNG", "SKS", "SMEG", "SUBZ",
	"SUM", "THE", "ULN", "VIK", "WHIRL", "ALFCO", "AGA", "ASK",
	"AZUR", "BGRL", "BLOMB", "BROILKING", "HZK", "ILVE", "CAFEA", "CAVAVIN",
	"COYOTE", "DAN", "DLTHT", "DCS", "ELICA", "FMGC", "GLADIATOR", "HES",
	"SCO", "KMZ", "LYNX", "ZEP", "TWINEGL", "VER", "SHP", "CA_FPK",
	"CA_TH", "CA_CAFEA", "CA_BER", "CA_LG",
}

// FeedClient downloads and parses one manufacturer's spec feed
type FeedClient interface {
	FetchFeed(ctx context.Context, manufacturerCode string) (*specfeed.Feed, error)
}

// IngestResult summarizes one feed ingest run
type IngestResult struct {
	Total    int `json:"total"`
	Upserted int `json:"upserted"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// CodeFailure records one manufacturer whose feed could not be ingested
type CodeFailure struct {
	Man   string `json:"man"`
	Error string `json:"error"`
}

// IngestSummary is the outcome of an all-manufacturers run. One code's
// failure never stops the loop.
type IngestSummary struct {
	Attempted int           `json:"attempted"`
	Successes []string      `json:"successes"`
	Failures  []CodeFailure `json:"failures"`
}

// IngestService normalizes manufacturer spec feeds into catalog products.
// Entries are processed independently; a bad entry is logged and skipped.
type IngestService struct {
	products      catalog.ProductRepository
	feed          FeedClient
	engine        *catalog.Engine
	logger        *zap.Logger
	manufacturers []string
	pause         time.Duration
}

// NewIngestService creates a new IngestService. pause is the delay between
// manufacturer downloads in an all-codes run; zero disables it.
func NewIngestService(
	products catalog.ProductRepository,
	feed FeedClient,
	engine *catalog.Engine,
	logger *zap.Logger,
	pause time.Duration,
) *IngestService {
	return &IngestService{
		products:      products,
		feed:          feed,
		engine:        engine,
		logger:        logger,
		manufacturers: DefaultManufacturers,
		pause:         pause,
	}
}

// IsAllowedManufacturer reports whether a code is in the feed allow list
func (s *IngestService) IsAllowedManufacturer(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, man := range s.manufacturers {
		if man == code {
			return true
		}
	}
	return false
}

// IngestXML parses a spec feed document and upserts every usable entry
func (s *IngestService) IngestXML(ctx context.Context, data []byte) (*IngestResult, error) {
	feed, err := specfeed.Parse(data)
	if err != nil {
		return nil, err
	}
	return s.IngestFeed(ctx, feed)
}

// IngestFeed runs the normalization pipeline over a parsed feed
func (s *IngestService) IngestFeed(ctx context.Context, feed *specfeed.Feed) (*IngestResult, error) {
	result := &IngestResult{Total: len(feed.Specs)}
	s.logger.Info("ingesting product specs", zap.Int("count", result.Total))

	for i := range feed.Specs {
		switch err := s.ingestSpec(ctx, &feed.Specs[i]); {
		case err == nil:
			result.Upserted++
		case errors.Is(err, errNoIdentifier):
			result.Skipped++
		default:
			result.Failed++
			s.logger.Error("failed to ingest product spec",
				zap.Int("index", i),
				zap.Error(err))
		}
	}

	s.logger.Info("feed ingest finished",
		zap.Int("upserted", result.Upserted),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	return result, nil
}

var errNoIdentifier = shared.NewDomainError("INVALID_INPUT", "spec entry has no usable model or slug")

// encodeStoredData marshals the data blob without escaping the HTML the
// markup translation just produced
func encodeStoredData(stored StoredData) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(stored); err != nil {
		return nil, err
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}

func (s *IngestService) ingestSpec(ctx context.Context, spec *specfeed.ProductSpec) error {
	body := spec.Body()
	c := body.Classification

	major := c.MajorClassDesc.Trimmed()
	minor := c.MinorClassDesc.Trimmed()
	brand := c.BrandName.Trimmed()

	typ, category := catalog.Classify(catalog.ClassifyInput{
		Major:            major,
		Minor:            minor,
		MajorCode:        c.MajorClassCode.Trimmed(),
		MinorDescription: minor,
		ShortDescription: body.MarketingCopy.ShortDescription.Trimmed(),
	})

	model, ok := catalog.DeriveModel(c.ManufacturerPN.Trimmed(), c.PN.Trimmed())
	if !ok {
		s.logger.Warn("skipping spec entry without model identifier",
			zap.String("brand", brand),
			zap.String("major", major),
			zap.String("minor", minor))
		return errNoIdentifier
	}
	slug := catalog.BuildSlug(brand, major, minor, model)
	if slug == "" {
		s.logger.Warn("skipping spec entry without usable slug",
			zap.String("model", model))
		return errNoIdentifier
	}

	stored := BuildStoredData(body)
	data, err := encodeStoredData(stored)
	if err != nil {
		return fmt.Errorf("marshal product data for %s: %w", model, err)
	}

	facets := s.engine.Extract(BuildProductView(body, typ))

	product, err := catalog.NewProduct(model, catalog.Derived{
		Slug:     slug,
		Brand:    brand,
		Major:    major,
		Minor:    minor,
		Type:     typ,
		Category: category,
		Facets:   facets,
		Data:     string(data),
	})
	if err != nil {
		return err
	}

	if err := s.products.Upsert(ctx, product); err != nil {
		return fmt.Errorf("upsert product %s: %w", model, err)
	}
	s.logger.Debug("upserted product",
		zap.String("model", model),
		zap.String("slug", slug),
		zap.String("type", typ))
	return nil
}

// FetchAndIngest downloads and ingests one manufacturer's feed
func (s *IngestService) FetchAndIngest(ctx context.Context, manufacturerCode string) (*IngestResult, error) {
	code := strings.ToUpper(strings.TrimSpace(manufacturerCode))
	if !s.IsAllowedManufacturer(code) {
		return nil, fmt.Errorf("%w: unknown manufacturer code %q", shared.ErrInvalidInput, manufacturerCode)
	}

	s.logger.Info("fetching manufacturer feed", zap.String("man", code))
	feed, err := s.feed.FetchFeed(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.IngestFeed(ctx, feed)
}

// IngestAll walks the manufacturer allow list, ingesting each feed in turn
// and collecting a per-code outcome summary
func (s *IngestService) IngestAll(ctx context.Context) (*IngestSummary, error) {
	summary := &IngestSummary{
		Attempted: len(s.manufacturers),
		Successes: make([]string, 0, len(s.manufacturers)),
	}

	for i, code := range s.manufacturers {
		if i > 0 && s.pause > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(s.pause):
			}
		}

		if _, err := s.FetchAndIngest(ctx, code); err != nil {
			s.logger.Error("manufacturer feed ingest failed",
				zap.String("man", code),
				zap.Error(err))
			summary.Failures = append(summary.Failures, CodeFailure{Man: code, Error: err.Error()})
			continue
		}
		summary.Successes = append(summary.Successes, code)
	}
	return summary, nil
}
