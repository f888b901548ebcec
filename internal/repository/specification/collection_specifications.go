package specification

import "noet-be/internal/entity"

// References matches notes pointing at the given tag, notebook or folder.
type References struct {
	Collection *entity.Collection
}

func (s References) IsSatisfiedBy(note *entity.Note) bool {
	id := s.Collection.Id.String()
	switch s.Collection.Kind {
	case entity.KindTag:
		return ByTag{TagID: id, Name: s.Collection.Name}.IsSatisfiedBy(note)
	case entity.KindNotebook:
		return ByNotebookID{NotebookID: id}.IsSatisfiedBy(note)
	case entity.KindFolder:
		return ByFolderID{FolderID: id}.IsSatisfiedBy(note)
	}
	return false
}
