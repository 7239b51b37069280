package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"video-subtitle-translator/internal/domain"
	"video-subtitle-translator/internal/domain/model"
	"video-subtitle-translator/internal/domain/ports/repository"
)

var _ repository.TaskRepository = (*PostgresTaskRepo)(nil)

type PostgresTaskRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresTaskRepo(pool *pgxpool.Pool) *PostgresTaskRepo {
	return &PostgresTaskRepo{pool: pool}
}

const taskColumns = `
  id, user_id, status, video_file_path, audio_file_path, srt_file_path,
  translated_srt_file_path, burned_video_file_path, summary, error_message,
  source_language, language_confidence, created_at, updated_at`

func (r *PostgresTaskRepo) Save(ctx context.Context, qx any, t *model.Task) error {
	const q = `
INSERT INTO tasks (
  id, user_id, status, video_file_path, audio_file_path, srt_file_path,
  translated_srt_file_path, burned_video_file_path, summary, error_message,
  source_language, language_confidence, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
) ON CONFLICT (id) DO UPDATE SET
  status=$3, video_file_path=$4, audio_file_path=$5, srt_file_path=$6,
  translated_srt_file_path=$7, burned_video_file_path=$8, summary=$9,
  error_message=$10, source_language=$11, language_confidence=$12, updated_at=$14;
`
	ex, err := pickExec(r.pool, qx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q,
		t.ID, t.UserID, string(t.Status), t.VideoFilePath, t.AudioFilePath, t.SrtFilePath,
		t.TranslatedSrtFilePath, t.BurnedVideoFilePath, t.Summary, t.ErrorMessage,
		t.SourceLanguage, t.LanguageConfidence, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *PostgresTaskRepo) FindByID(ctx context.Context, qx any, id string) (*model.Task, error) {
	ex, err := pickExec(r.pool, qx)
	if err != nil {
		return nil, err
	}
	row := ex.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=$1;`, id)
	return scanTask(row)
}

func (r *PostgresTaskRepo) FindByUserID(ctx context.Context, qx any, userID string) ([]*model.Task, error) {
	ex, err := pickExec(r.pool, qx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id=$1 ORDER BY created_at DESC;`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var t model.Task
	var status string
	if err := row.Scan(&t.ID, &t.UserID, &status, &t.VideoFilePath, &t.AudioFilePath,
		&t.SrtFilePath, &t.TranslatedSrtFilePath, &t.BurnedVideoFilePath, &t.Summary,
		&t.ErrorMessage, &t.SourceLanguage, &t.LanguageConfidence, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	t.Status = model.TaskStatus(status)
	return &t, nil
}
