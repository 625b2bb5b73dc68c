package store

import (
	"time"

	"github.com/lovedhomes/lovedhomes/internal/docstore"
	"github.com/lovedhomes/lovedhomes/internal/model"
	"github.com/lovedhomes/lovedhomes/internal/oid"
)

const itemCollection = "checklistitem"

// ItemStore manages a property's checklist tree: parent-scoped listing,
// creation, partial updates, and cascade deletion of whole subtrees.
type ItemStore struct {
	ds *docstore.Store
}

func NewItemStore(ds *docstore.Store) *ItemStore {
	return &ItemStore{ds: ds}
}

// ListByParent returns the direct children of parentID within a property,
// ordered by title ascending. A nil parentID selects root-level items.
// The property itself is not required to exist; listing under a deleted
// property returns an empty slice.
func (s *ItemStore) ListByParent(propertyID oid.ID, parentID *oid.ID) ([]model.ChecklistItem, error) {
	filter := docstore.Filter{"property_id": propertyID.Hex()}
	if parentID != nil {
		filter["parent_id"] = parentID.Hex()
	} else {
		filter["parent_id"] = nil
	}

	docs, err := s.ds.Find(itemCollection, filter, "title")
	if err != nil {
		return nil, err
	}

	items := make([]model.ChecklistItem, 0, len(docs))
	for _, doc := range docs {
		var item model.ChecklistItem
		if err := decode(doc, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Create persists a new item under the given property and parent. The parent
// is not checked for existence; callers own the forest invariant.
func (s *ItemStore) Create(propertyID oid.ID, title string, isFolder bool, parentID *oid.ID) (*model.ChecklistItem, error) {
	now := time.Now().UTC()
	item := model.ChecklistItem{
		PropertyID: propertyID.Hex(),
		Title:      title,
		IsFolder:   isFolder,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if parentID != nil {
		hex := parentID.Hex()
		item.ParentID = &hex
	}

	doc, err := encode(item)
	if err != nil {
		return nil, err
	}
	id, err := s.ds.Insert(itemCollection, doc)
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// GetByID returns the item, or nil if it does not exist.
func (s *ItemStore) GetByID(id string) (*model.ChecklistItem, error) {
	doc, err := s.ds.FindOne(itemCollection, docstore.Filter{"_id": id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	var item model.ChecklistItem
	if err := decode(doc, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Update applies the present fields of upd and bumps updated_at. It returns
// ErrNoFields when upd carries nothing, and nil when no item matched.
func (s *ItemStore) Update(id oid.ID, upd model.ChecklistItemUpdate) (*model.ChecklistItem, error) {
	set := docstore.Doc{}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.IsFolder != nil {
		set["is_folder"] = *upd.IsFolder
	}
	if len(set) == 0 {
		return nil, ErrNoFields
	}
	set["updated_at"] = time.Now().UTC()

	matched, err := s.ds.UpdateOne(itemCollection, docstore.Filter{"_id": id.Hex()}, set)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, nil
	}
	return s.GetByID(id.Hex())
}

// Delete removes the item and its entire descendant subtree. The subtree is
// expanded breadth-first from the target, then deleted in reverse discovery
// order so every descendant is gone before its ancestor. Revisiting an id
// means the stored parent graph has a cycle; the walk aborts with ErrCycle
// before deleting anything. A store error mid-deletion aborts the walk and
// leaves the remaining ancestors in place.
func (s *ItemStore) Delete(id oid.ID) error {
	target := id.Hex()
	visited := map[string]bool{target: true}
	order := []string{target}

	for i := 0; i < len(order); i++ {
		children, err := s.ds.Find(itemCollection, docstore.Filter{"parent_id": order[i]}, "")
		if err != nil {
			return err
		}
		for _, child := range children {
			childID, _ := child["id"].(string)
			if visited[childID] {
				return ErrCycle
			}
			visited[childID] = true
			order = append(order, childID)
		}
	}

	for i := len(order) - 1; i >= 0; i-- {
		if err := s.ds.DeleteOne(itemCollection, docstore.Filter{"_id": order[i]}); err != nil {
			return err
		}
	}
	return nil
}

// DeleteByProperty bulk-deletes every item belonging to the property,
// regardless of tree position, and returns how many were removed. This is
// the flat cascade used when the property itself goes away.
func (s *ItemStore) DeleteByProperty(propertyID oid.ID) (int64, error) {
	return s.ds.DeleteMany(itemCollection, docstore.Filter{"property_id": propertyID.Hex()})
}

// CountByProperty returns the number of items belonging to the property.
func (s *ItemStore) CountByProperty(propertyID oid.ID) (int64, error) {
	return s.ds.Count(itemCollection, docstore.Filter{"property_id": propertyID.Hex()})
}
