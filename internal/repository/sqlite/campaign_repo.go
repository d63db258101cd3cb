package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"campaignhub/internal/domain"
	"campaignhub/internal/repository"
)

const campaignColumns = `id, name, type, shop, account, created_by, budget, start_date, end_date, target_audience,
	description, enabled, status, creative_mode, selected_accounts_json, selected_creatives_json,
	excluded_creatives_json, metrics_json, created_at, updated_at`

// CampaignRepo implements repository.CampaignRepository
type CampaignRepo struct {
	db *DB
}

func NewCampaignRepo(db *DB) repository.CampaignRepository {
	return &CampaignRepo{db: db}
}

type campaignJSON struct {
	accounts, selected, excluded, metrics string
}

func encodeCampaign(c *domain.Campaign) (campaignJSON, error) {
	var out campaignJSON
	var err error
	if out.accounts, err = encodeJSON(c.SelectedAccounts); err != nil {
		return out, fmt.Errorf("failed to encode campaign accounts: %w", err)
	}
	if out.selected, err = encodeJSON(c.SelectedCreatives); err != nil {
		return out, fmt.Errorf("failed to encode campaign creatives: %w", err)
	}
	if out.excluded, err = encodeJSON(c.ExcludedCreatives); err != nil {
		return out, fmt.Errorf("failed to encode campaign exclusions: %w", err)
	}
	if out.metrics, err = encodeJSON(c.Metrics); err != nil {
		return out, fmt.Errorf("failed to encode campaign metrics: %w", err)
	}
	return out, nil
}

func (r *CampaignRepo) Create(ctx context.Context, c *domain.Campaign) error {
	stamp(&c.Meta)
	cols, err := encodeCampaign(c)
	if err != nil {
		return err
	}

	query := `INSERT INTO campaigns (` + campaignColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Type, c.Shop, c.Account, c.CreatedBy, c.Budget, c.StartDate, c.EndDate,
		c.TargetAudience, c.Description, c.Enabled, c.Status, c.CreativeMode,
		cols.accounts, cols.selected, cols.excluded, cols.metrics, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

func (r *CampaignRepo) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = ?`
	c, err := scanCampaign(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return c, nil
}

func (r *CampaignRepo) Update(ctx context.Context, c *domain.Campaign) error {
	touch(&c.Meta)
	cols, err := encodeCampaign(c)
	if err != nil {
		return err
	}

	query := `
		UPDATE campaigns SET name = ?, type = ?, shop = ?, account = ?, created_by = ?, budget = ?,
			start_date = ?, end_date = ?, target_audience = ?, description = ?, enabled = ?, status = ?,
			creative_mode = ?, selected_accounts_json = ?, selected_creatives_json = ?,
			excluded_creatives_json = ?, metrics_json = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = r.db.ExecContext(ctx, query,
		c.Name, c.Type, c.Shop, c.Account, c.CreatedBy, c.Budget, c.StartDate, c.EndDate,
		c.TargetAudience, c.Description, c.Enabled, c.Status, c.CreativeMode,
		cols.accounts, cols.selected, cols.excluded, cols.metrics, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
	}
	return nil
}

func (r *CampaignRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	return nil
}

// List returns the newest campaigns first
func (r *CampaignRepo) List(ctx context.Context) ([]domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns ORDER BY created_at DESC, rowid DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []domain.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

func scanCampaign(row rowScanner) (*domain.Campaign, error) {
	c := &domain.Campaign{}
	var cols campaignJSON
	err := row.Scan(&c.ID, &c.Name, &c.Type, &c.Shop, &c.Account, &c.CreatedBy, &c.Budget,
		&c.StartDate, &c.EndDate, &c.TargetAudience, &c.Description, &c.Enabled, &c.Status,
		&c.CreativeMode, &cols.accounts, &cols.selected, &cols.excluded, &cols.metrics,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if c.SelectedAccounts, err = decodeIDs(cols.accounts); err != nil {
		return nil, fmt.Errorf("failed to decode campaign accounts: %w", err)
	}
	if c.SelectedCreatives, err = decodeIDs(cols.selected); err != nil {
		return nil, fmt.Errorf("failed to decode campaign creatives: %w", err)
	}
	if c.ExcludedCreatives, err = decodeIDs(cols.excluded); err != nil {
		return nil, fmt.Errorf("failed to decode campaign exclusions: %w", err)
	}
	if cols.metrics != "" {
		if err := json.Unmarshal([]byte(cols.metrics), &c.Metrics); err != nil {
			return nil, fmt.Errorf("failed to decode campaign metrics: %w", err)
		}
	}
	return c, nil
}
