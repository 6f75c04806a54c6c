package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/postpilot/postpilot/internal/models"
)

type ProfileRepository interface {
	Create(ctx context.Context, p *models.BusinessProfile) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.BusinessProfile, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.BusinessProfile, error)
}

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, p *models.BusinessProfile) (int64, error) {
	query := `
		INSERT INTO business_profiles (user_id, name, description, branding_style)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, p.UserID, p.Name, p.Description, p.BrandingStyle).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *profileRepository) GetByID(ctx context.Context, id int64) (*models.BusinessProfile, error) {
	query := `SELECT id, user_id, name, description, branding_style, created_at, updated_at
		FROM business_profiles WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var p models.BusinessProfile
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.BrandingStyle, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &p, nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.BusinessProfile, error) {
	query := `SELECT id, user_id, name, description, branding_style, created_at, updated_at
		FROM business_profiles WHERE user_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var profiles []*models.BusinessProfile
	for rows.Next() {
		var p models.BusinessProfile
		err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.BrandingStyle, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		profiles = append(profiles, &p)
	}
	return profiles, nil
}
