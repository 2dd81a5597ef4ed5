package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/socialboost/panel/internal/models"
)

// ListPlatforms returns the full catalog keyed by platform id.
func (q *Queries) ListPlatforms(ctx context.Context) (map[string]models.Platform, error) {
	const query = `
SELECT p.id, p.name, p.placeholder, s.id, s.name, s.price_per_1000_micros, s.min_quantity, s.max_quantity
FROM platforms p
JOIN services s ON s.platform_id = p.id
ORDER BY p.position ASC, s.position ASC;
`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list platforms: %w", err)
	}
	defer rows.Close()

	platforms := make(map[string]models.Platform)
	for rows.Next() {
		var (
			pID, pName, placeholder string
			svc                     models.Service
		)
		if err := rows.Scan(&pID, &pName, &placeholder, &svc.ID, &svc.Name, &svc.PricePer1000, &svc.MinQuantity, &svc.MaxQuantity); err != nil {
			return nil, fmt.Errorf("scan platform service: %w", err)
		}
		p, ok := platforms[pID]
		if !ok {
			p = models.Platform{
				ID:          pID,
				Name:        pName,
				Placeholder: placeholder,
				Services:    make(map[string]models.Service),
			}
		}
		p.Services[svc.ID] = svc
		platforms[pID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate platforms: %w", err)
	}
	return platforms, nil
}

func (q *Queries) GetPlatform(ctx context.Context, platformID string) (*models.Platform, error) {
	platforms, err := q.ListPlatforms(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := platforms[platformID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (q *Queries) GetService(ctx context.Context, platformID, serviceID string) (*models.Service, error) {
	const query = `
SELECT id, name, price_per_1000_micros, min_quantity, max_quantity
FROM services
WHERE platform_id = ? AND id = ?;
`
	var svc models.Service
	err := q.db.QueryRowContext(ctx, query, platformID, serviceID).
		Scan(&svc.ID, &svc.Name, &svc.PricePer1000, &svc.MinQuantity, &svc.MaxQuantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	return &svc, nil
}

// UpdateServicePrice overwrites the per-1000 price of a single service.
func (q *Queries) UpdateServicePrice(ctx context.Context, platformID, serviceID string, priceMicros int64) error {
	const query = `UPDATE services SET price_per_1000_micros = ? WHERE platform_id = ? AND id = ?`
	res, err := q.db.ExecContext(ctx, query, priceMicros, platformID, serviceID)
	if err != nil {
		return fmt.Errorf("update service price: %w", err)
	}
	return requireRow(res, models.ErrNotFound)
}
