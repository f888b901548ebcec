package mapper

import (
	"sort"

	"noet-be/internal/entity"
	"noet-be/internal/model"

	"github.com/google/uuid"
)

type CollectionMapper struct{}

func NewCollectionMapper() *CollectionMapper {
	return &CollectionMapper{}
}

func (m *CollectionMapper) ToModel(c *entity.Collection) *model.Collection {
	if c == nil {
		return nil
	}

	sortOrder := c.SortOrder
	var parentId *string
	if c.ParentId != nil {
		p := c.ParentId.String()
		parentId = &p
	}

	return &model.Collection{
		Id:        c.Id.String(),
		Name:      c.Name,
		Color:     c.Color,
		SortOrder: &sortOrder,
		ParentId:  parentId,
		Created:   c.CreatedAt,
		Updated:   c.UpdatedAt,
	}
}

func (m *CollectionMapper) ToModels(items []*entity.Collection) []*model.Collection {
	models := make([]*model.Collection, len(items))
	for i, c := range items {
		models[i] = m.ToModel(c)
	}
	return models
}

// ToEntities returns the records in display order. Records with an
// unparsable id are dropped. Records without a sortOrder are placed after the
// ordered ones by creation time, and every entity is then given its index as
// sortOrder so duplicates inherited from disk disappear on the next write.
func (m *CollectionMapper) ToEntities(userId string, kind entity.CollectionKind, models []*model.Collection) []*entity.Collection {
	type ranked struct {
		entity  *entity.Collection
		ordered bool
		order   int
	}

	rows := make([]ranked, 0, len(models))
	for _, c := range models {
		if c == nil {
			continue
		}
		id, err := uuid.Parse(c.Id)
		if err != nil {
			continue
		}

		var parentId *uuid.UUID
		if kind.Nestable() && c.ParentId != nil {
			if p, err := uuid.Parse(*c.ParentId); err == nil {
				parentId = &p
			}
		}

		row := ranked{entity: &entity.Collection{
			Id:        id,
			UserId:    userId,
			Kind:      kind,
			Name:      c.Name,
			Color:     c.Color,
			ParentId:  parentId,
			CreatedAt: c.Created,
			UpdatedAt: c.Updated,
		}}
		if c.SortOrder != nil {
			row.ordered = true
			row.order = *c.SortOrder
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ordered != b.ordered {
			return a.ordered
		}
		if a.ordered && a.order != b.order {
			return a.order < b.order
		}
		return a.entity.CreatedAt.Before(b.entity.CreatedAt)
	})

	result := make([]*entity.Collection, len(rows))
	for i, row := range rows {
		row.entity.SortOrder = i
		result[i] = row.entity
	}
	return result
}
