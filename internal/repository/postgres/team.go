package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"majaz-portal/internal/domain"
)

func (c *Client) ListTeamMembers(ctx context.Context, role domain.Role) ([]domain.TeamMember, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rows, err := c.pool.Query(ctx, queryListTeamMembers, string(role))
	if err != nil {
		c.logger.Error("failed to list team members", zap.String("role", string(role)), zap.Error(err))
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer rows.Close()

	members := make([]domain.TeamMember, 0)
	for rows.Next() {
		var (
			m       domain.TeamMember
			rawRole string
		)

		err = rows.Scan(&m.ID, &m.Name, &m.NameAr, &rawRole, &m.Bio, &m.BioAr, &m.Rating, &m.InspectionCount,
			&m.Email, &m.Phone, &m.WhatsApp, &m.PhotoURL, &m.Languages, &m.SortOrder)
		if err != nil {
			c.logger.Error("failed to scan team member", zap.Error(err))
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		m.Role = domain.Role(rawRole)

		members = append(members, m)
	}
	err = rows.Err()
	if err != nil {
		c.logger.Error("rows error", zap.Error(err))
		return nil, fmt.Errorf("rows error: %w", err)
	}

	c.logger.Debug("listed team members", zap.String("role", string(role)), zap.Int("count", len(members)))
	return members, nil
}
