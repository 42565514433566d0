package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/homeolab/homeoagent/internal/model"
	appErr "github.com/homeolab/homeoagent/internal/pkg/errors"
)

type IntakeRepo struct {
	db *sql.DB
}

func NewIntakeRepo(db *sql.DB) *IntakeRepo {
	return &IntakeRepo{db: db}
}

func (r *IntakeRepo) Save(ctx context.Context, intake *model.PatientIntake) error {
	payload, err := json.Marshal(intake)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO patient_intake (id, full_name, payload, summary, ctime)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		intake.ID,
		intake.FullName,
		string(payload),
		intake.Summary,
		intake.Ctime,
	)
	return err
}

func (r *IntakeRepo) Get(ctx context.Context, id string) (*model.PatientIntake, error) {
	const query = `SELECT payload, summary FROM patient_intake WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	var payload, summary string
	if err := row.Scan(&payload, &summary); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	intake := &model.PatientIntake{}
	if err := json.Unmarshal([]byte(payload), intake); err != nil {
		return nil, err
	}
	intake.Summary = summary
	return intake, nil
}

func (r *IntakeRepo) List(ctx context.Context, limit int) ([]*model.PatientIntake, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const query = `SELECT payload, summary FROM patient_intake ORDER BY ctime DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []*model.PatientIntake
	for rows.Next() {
		var payload, summary string
		if err := rows.Scan(&payload, &summary); err != nil {
			return nil, err
		}
		intake := &model.PatientIntake{}
		if err := json.Unmarshal([]byte(payload), intake); err != nil {
			return nil, err
		}
		intake.Summary = summary
		result = append(result, intake)
	}
	return result, rows.Err()
}
