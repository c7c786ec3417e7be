package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/stockledger/internal/domain"
)

// SettingsRepository implements usecase.SettingsRepository.
type SettingsRepository struct {
	q Querier
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(q Querier) *SettingsRepository {
	return &SettingsRepository{q: q}
}

// Get reads one setting. An absent row or an empty value reports ok=false.
func (r *SettingsRepository) Get(ctx context.Context, key domain.SettingKey) (string, bool, error) {
	var value string
	err := r.q.QueryRow(ctx, `SELECT value FROM account_settings WHERE key = $1`, string(key)).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, value != "", nil
}

// GetAll reads every stored setting.
func (r *SettingsRepository) GetAll(ctx context.Context) (map[domain.SettingKey]string, error) {
	rows, err := r.q.Query(ctx, `SELECT key, value FROM account_settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.SettingKey]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[domain.SettingKey(key)] = value
	}
	return out, rows.Err()
}

// Set upserts a setting. An empty value clears it.
func (r *SettingsRepository) Set(ctx context.Context, key domain.SettingKey, value string, updatedAt time.Time) error {
	if value == "" {
		_, err := r.q.Exec(ctx, `DELETE FROM account_settings WHERE key = $1`, string(key))
		return err
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO account_settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		string(key), value, updatedAt,
	)
	return err
}
