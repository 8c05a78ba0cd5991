package reporting

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/secinto/hrms_backend/internal/models"
	"github.com/secinto/hrms_backend/internal/services"
)

// AssignmentReader is the read model the projector consumes
type AssignmentReader interface {
	ListForReport(ctx context.Context, filter services.ReportFilter) ([]models.AssignmentView, error)
}

// Projector generates reports from the assignment read model
type Projector struct {
	reader AssignmentReader
	cache  ReportCache
	logger *zap.Logger
	now    func() time.Time
}

// NewProjector creates a projector, a nil cache disables caching
func NewProjector(reader AssignmentReader, cache ReportCache, logger *zap.Logger) *Projector {
	if cache == nil {
		cache = NewNoopReportCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{
		reader: reader,
		cache:  cache,
		logger: logger.Named("reporting"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Generate builds the report for req, serving it from cache when possible
// #IMPLEMENTATION_DECISION: Cache failures are logged and the report is computed anyway
func (p *Projector) Generate(ctx context.Context, req Request) (*Report, error) {
	if req.Range == "" {
		req.Range = RangeLast30Days
	}
	if !req.Range.IsValid() {
		verr := models.NewValidationError()
		verr.Add("range", fmt.Sprintf("unknown range %q", req.Range))
		return nil, verr
	}
	if req.TopN <= 0 {
		req.TopN = DefaultTopN
	}

	key := cacheKey(req)
	cached, err := p.cache.Get(ctx, key)
	if err != nil {
		p.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	now := p.now()
	views, err := p.reader.ListForReport(ctx, services.ReportFilter{
		QuestionnaireID: req.QuestionnaireID,
		AssignedFrom:    req.Range.Since(now),
	})
	if err != nil {
		return nil, err
	}

	report := Build(views, req, now)
	if err := p.cache.Set(ctx, key, report); err != nil {
		p.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}

	p.logger.Debug("report generated",
		zap.String("range", string(req.Range)),
		zap.String("questionnaire_id", req.QuestionnaireID),
		zap.Int("assignments", len(views)),
	)
	return report, nil
}

func cacheKey(req Request) string {
	qid := req.QuestionnaireID
	if qid == "" {
		qid = "all"
	}
	return fmt.Sprintf("%s:%s:%d", qid, req.Range, req.TopN)
}
