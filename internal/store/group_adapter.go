package store

import (
	"context"

	"gaps/internal/groups"
)

func toDomainGroup(g Group) groups.Group {
	return groups.Group{
		ID:          g.ID,
		Email:       g.Email,
		Name:        g.Name,
		Description: g.Description,
		Category:    g.Category,
	}
}

// LoadGroup 实现 groups.GroupStore。
func (s *Store) LoadGroup(ctx context.Context, id int64) (groups.Group, error) {
	g, err := s.GetGroupByID(ctx, id)
	if err != nil {
		return groups.Group{}, err
	}
	return toDomainGroup(g), nil
}

// InsertGroup 实现 groups.GroupStore，返回新记录 id。
func (s *Store) InsertGroup(ctx context.Context, g groups.Group) (int64, error) {
	return s.CreateGroup(ctx, g.Email, g.Name, g.Description, g.Category)
}
