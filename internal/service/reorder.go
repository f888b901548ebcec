package service

import (
	"noet-be/internal/entity"
	"noet-be/internal/pkg/apperror"

	"github.com/google/uuid"
)

const (
	PositionBefore = "before"
	PositionAfter  = "after"
)

// Resequence assigns every item its index as sortOrder.
func Resequence(items []*entity.Collection) {
	for i, item := range items {
		item.SortOrder = i
	}
}

func indexOf(items []*entity.Collection, id uuid.UUID) int {
	for i, item := range items {
		if item.Id == id {
			return i
		}
	}
	return -1
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Reorder moves source directly before or after target and renumbers the
// whole list, so sortOrders stay unique and gap free however often items
// move. items must already be in display order. Source and target must be
// siblings. Equal ids are a no-op, even when the id is unknown.
func Reorder(items []*entity.Collection, sourceId, targetId uuid.UUID, position string) ([]*entity.Collection, error) {
	if position != PositionBefore && position != PositionAfter {
		return nil, apperror.Validation("position must be %q or %q", PositionBefore, PositionAfter)
	}

	result := make([]*entity.Collection, 0, len(items))
	result = append(result, items...)
	if sourceId == targetId {
		Resequence(result)
		return result, nil
	}

	src := indexOf(result, sourceId)
	if src < 0 {
		return nil, apperror.NotFound("source %s not found", sourceId)
	}
	dst := indexOf(result, targetId)
	if dst < 0 {
		return nil, apperror.NotFound("target %s not found", targetId)
	}

	source := result[src]
	if !sameParent(source.ParentId, result[dst].ParentId) {
		return nil, apperror.Validation("source and target must share a parent; use move to change parents")
	}

	result = append(result[:src], result[src+1:]...)
	dst = indexOf(result, targetId)
	if position == PositionAfter {
		dst++
	}

	result = append(result, nil)
	copy(result[dst+1:], result[dst:])
	result[dst] = source

	Resequence(result)
	return result, nil
}

// descendsFrom reports whether candidate is id itself or sits below it.
func descendsFrom(items []*entity.Collection, candidate, id uuid.UUID) bool {
	parents := make(map[uuid.UUID]*uuid.UUID, len(items))
	for _, item := range items {
		parents[item.Id] = item.ParentId
	}

	seen := make(map[uuid.UUID]bool)
	for cur := &candidate; cur != nil; cur = parents[*cur] {
		if *cur == id {
			return true
		}
		if seen[*cur] {
			// corrupt data with a loop; treat as related
			return true
		}
		seen[*cur] = true
	}
	return false
}
