package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/antifraud/msgrisk/internal/domain/model"
	"github.com/antifraud/msgrisk/internal/domain/port"
	"github.com/antifraud/msgrisk/internal/domain/valueobject"
	pgutil "github.com/antifraud/msgrisk/pkg/postgres"
)

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	pgutil.Querier
	pgutil.TxBeginner
}

// AssessmentRepository implements port.AssessmentRepository using PostgreSQL.
type AssessmentRepository struct {
	db DB
}

// NewAssessmentRepository creates a new PostgreSQL-backed assessment repository.
func NewAssessmentRepository(db DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

const assessmentColumns = `
	id, tenant_id, text_hash, text, channel, sender,
	prediction, probability, risk_level,
	keyword_risk, link_risk, urgency_index, semantic_anomaly,
	version, assessed_at, created_at, updated_at`

// Save persists an assessment with its keywords and ranked predictions in
// one transaction.
func (r *AssessmentRepository) Save(ctx context.Context, a *model.MessageAssessment) error {
	if !a.IsScored() {
		return fmt.Errorf("assessment %s has not been scored", a.ID())
	}

	return pgutil.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		res := a.Result()
		top := res.Classification.Top()

		_, err := tx.Exec(ctx, `
			INSERT INTO message_assessments (`+assessmentColumns+`, risk_rank)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
			ON CONFLICT (id) DO UPDATE SET
				prediction = EXCLUDED.prediction,
				probability = EXCLUDED.probability,
				risk_level = EXCLUDED.risk_level,
				risk_rank = EXCLUDED.risk_rank,
				keyword_risk = EXCLUDED.keyword_risk,
				link_risk = EXCLUDED.link_risk,
				urgency_index = EXCLUDED.urgency_index,
				semantic_anomaly = EXCLUDED.semantic_anomaly,
				version = EXCLUDED.version,
				assessed_at = EXCLUDED.assessed_at,
				updated_at = EXCLUDED.updated_at`,
			a.ID(), a.TenantID(), a.TextHash(), a.Text(), a.Channel(), a.Sender(),
			top.Category.String(), top.Probability, res.RiskLevel.String(),
			res.Features.KeywordRisk, res.Features.LinkRisk, res.Features.UrgencyIndex, res.Features.SemanticAnomaly,
			a.Version(), a.AssessedAt(), a.CreatedAt(), a.UpdatedAt(),
			res.RiskLevel.Rank(),
		)
		if err != nil {
			return fmt.Errorf("save assessment: %w", err)
		}

		batch := &pgx.Batch{}
		batch.Queue(`DELETE FROM assessment_keywords WHERE assessment_id = $1`, a.ID())
		batch.Queue(`DELETE FROM assessment_predictions WHERE assessment_id = $1`, a.ID())
		for i, kw := range res.Keywords {
			batch.Queue(`INSERT INTO assessment_keywords (assessment_id, position, keyword) VALUES ($1, $2, $3)`,
				a.ID(), i, kw)
		}
		for i, p := range res.Classification.Predictions() {
			batch.Queue(`INSERT INTO assessment_predictions (assessment_id, rank, category, probability) VALUES ($1, $2, $3, $4)`,
				a.ID(), i, p.Category.String(), p.Probability)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("save assessment details: %w", err)
		}
		return nil
	})
}

// FindByID retrieves an assessment within a tenant.
func (r *AssessmentRepository) FindByID(ctx context.Context, tenantID string, id uuid.UUID) (*model.MessageAssessment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+assessmentColumns+` FROM message_assessments WHERE tenant_id = $1 AND id = $2`,
		tenantID, id)

	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("assessment %s: %w", id, port.ErrAssessmentNotFound)
	}
	if err != nil {
		return nil, err
	}

	assessments, err := r.attachDetails(ctx, []*record{rec})
	if err != nil {
		return nil, err
	}
	return assessments[0], nil
}

// ListByTenant returns a page of the tenant's assessments, newest first,
// and the total number matching the filter.
func (r *AssessmentRepository) ListByTenant(ctx context.Context, tenantID string, filter port.ListFilter) ([]*model.MessageAssessment, int, error) {
	minRank := filter.MinRiskLevel.Rank()

	var total int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM message_assessments
		WHERE tenant_id = $1 AND risk_rank >= $2`,
		tenantID, minRank,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count assessments: %w", err)
	}
	if total == 0 || filter.Offset >= total {
		return []*model.MessageAssessment{}, total, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+assessmentColumns+`
		FROM message_assessments
		WHERE tenant_id = $1 AND risk_rank >= $2
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4`,
		tenantID, minRank, filter.Limit, filter.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	var recs []*record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate assessments: %w", err)
	}
	if len(recs) == 0 {
		return []*model.MessageAssessment{}, total, nil
	}

	assessments, err := r.attachDetails(ctx, recs)
	if err != nil {
		return nil, 0, err
	}
	return assessments, total, nil
}

type record struct {
	assessedAt      time.Time
	createdAt       time.Time
	updatedAt       time.Time
	tenantID        string
	textHash        string
	text            string
	channel         string
	sender          string
	prediction      string
	riskLevel       string
	probability     float64
	semanticAnomaly float64
	keywordRisk     int
	linkRisk        int
	urgencyIndex    int
	version         int
	id              uuid.UUID
}

func scanRecord(row pgx.Row) (*record, error) {
	var rec record
	dest := []any{
		&rec.id, &rec.tenantID, &rec.textHash, &rec.text, &rec.channel, &rec.sender,
		&rec.prediction, &rec.probability, &rec.riskLevel,
		&rec.keywordRisk, &rec.linkRisk, &rec.urgencyIndex, &rec.semanticAnomaly,
		&rec.version, &rec.assessedAt, &rec.createdAt, &rec.updatedAt,
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan assessment: %w", err)
	}
	return &rec, nil
}

// attachDetails loads keywords and predictions for recs and rebuilds the aggregates.
func (r *AssessmentRepository) attachDetails(ctx context.Context, recs []*record) ([]*model.MessageAssessment, error) {
	ids := make([]uuid.UUID, len(recs))
	for i, rec := range recs {
		ids[i] = rec.id
	}

	keywords := make(map[uuid.UUID][]string, len(recs))
	rows, err := r.db.Query(ctx,
		`SELECT assessment_id, keyword FROM assessment_keywords WHERE assessment_id = ANY($1) ORDER BY assessment_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("query keywords: %w", err)
	}
	for rows.Next() {
		var (
			id uuid.UUID
			kw string
		)
		if err := rows.Scan(&id, &kw); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		keywords[id] = append(keywords[id], kw)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keywords: %w", err)
	}

	predictions := make(map[uuid.UUID][]valueobject.Prediction, len(recs))
	rows, err = r.db.Query(ctx,
		`SELECT assessment_id, category, probability FROM assessment_predictions WHERE assessment_id = ANY($1) ORDER BY assessment_id, rank`, ids)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	for rows.Next() {
		var (
			id       uuid.UUID
			category string
			prob     float64
		)
		if err := rows.Scan(&id, &category, &prob); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		cat, err := valueobject.FraudCategoryFromString(category)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("assessment %s: %w", id, err)
		}
		predictions[id] = append(predictions[id], valueobject.Prediction{Category: cat, Probability: prob})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate predictions: %w", err)
	}

	out := make([]*model.MessageAssessment, 0, len(recs))
	for _, rec := range recs {
		a, err := rec.toModel(keywords[rec.id], predictions[rec.id])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (rec *record) toModel(keywords []string, preds []valueobject.Prediction) (*model.MessageAssessment, error) {
	level, err := valueobject.RiskLevelFromString(rec.riskLevel)
	if err != nil {
		return nil, fmt.Errorf("assessment %s: %w", rec.id, err)
	}
	if len(preds) == 0 {
		cat, err := valueobject.FraudCategoryFromString(rec.prediction)
		if err != nil {
			return nil, fmt.Errorf("assessment %s: %w", rec.id, err)
		}
		preds = []valueobject.Prediction{{Category: cat, Probability: rec.probability}}
	}

	result := model.MessageRiskResult{
		Classification: valueobject.ReconstructClassificationResult(preds),
		RiskLevel:      level,
		Keywords:       keywords,
		Features: valueobject.RiskFeatureSet{
			KeywordRisk:     rec.keywordRisk,
			LinkRisk:        rec.linkRisk,
			UrgencyIndex:    rec.urgencyIndex,
			SemanticAnomaly: rec.semanticAnomaly,
		},
	}
	return model.Reconstruct(rec.id, rec.tenantID, rec.text, rec.textHash, rec.channel, rec.sender,
		result, rec.assessedAt, rec.version, rec.createdAt, rec.updatedAt), nil
}
