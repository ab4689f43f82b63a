package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"examsathi/internal/models"
)

type AskLogRepo struct {
	pool *pgxpool.Pool
}

func NewAskLogRepo(pool *pgxpool.Pool) *AskLogRepo {
	return &AskLogRepo{pool: pool}
}

// Record appends one /ask outcome to the audit log.
func (r *AskLogRepo) Record(ctx context.Context, l *models.AskLog) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}

	query := `INSERT INTO ask_log (id, request_id, question, answer, error_message, model, latency_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		l.ID, l.RequestID, l.Question, l.Answer, l.ErrorMessage, l.Model, l.LatencyMS,
	).Scan(&l.CreatedAt)
}
