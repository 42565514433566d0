package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/homeolab/homeoagent/internal/model"
)

type EmbeddingCacheRepo struct {
	db *sql.DB
}

func NewEmbeddingCacheRepo(db *sql.DB) *EmbeddingCacheRepo {
	return &EmbeddingCacheRepo{db: db}
}

func (r *EmbeddingCacheRepo) Get(ctx context.Context, modelName, taskType, contentHash string) ([]float32, bool, error) {
	const query = `
		SELECT embedding
		FROM embedding_cache
		WHERE model_name = ? AND task_type = ? AND content_hash = ?
	`
	row := r.db.QueryRowContext(ctx, query, modelName, taskType, contentHash)
	var encoded string
	if err := row.Scan(&encoded); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	var embedding []float32
	if err := json.Unmarshal([]byte(encoded), &embedding); err != nil {
		return nil, false, err
	}
	return embedding, true, nil
}

func (r *EmbeddingCacheRepo) Save(ctx context.Context, item *model.EmbeddingCache) error {
	encoded, err := json.Marshal(item.Embedding)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO embedding_cache (model_name, task_type, content_hash, embedding, ctime)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (model_name, task_type, content_hash) DO UPDATE SET
			embedding = excluded.embedding,
			ctime = excluded.ctime
	`
	_, err = r.db.ExecContext(ctx, query,
		item.ModelName,
		item.TaskType,
		item.ContentHash,
		string(encoded),
		item.Ctime,
	)
	return err
}

func (r *EmbeddingCacheRepo) DeleteBefore(ctx context.Context, cutoff int64) (int64, error) {
	const query = `DELETE FROM embedding_cache WHERE ctime < ?`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
