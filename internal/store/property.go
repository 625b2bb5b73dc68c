package store

import (
	"time"

	"github.com/lovedhomes/lovedhomes/internal/docstore"
	"github.com/lovedhomes/lovedhomes/internal/model"
	"github.com/lovedhomes/lovedhomes/internal/oid"
)

const propertyCollection = "property"

// PropertyStore manages property records. Deleting a property purges its
// checklist items through the item store.
type PropertyStore struct {
	ds    *docstore.Store
	items *ItemStore
}

func NewPropertyStore(ds *docstore.Store, items *ItemStore) *PropertyStore {
	return &PropertyStore{ds: ds, items: items}
}

// List returns all properties in store-native order.
func (s *PropertyStore) List() ([]model.Property, error) {
	docs, err := s.ds.Find(propertyCollection, docstore.Filter{}, "")
	if err != nil {
		return nil, err
	}

	props := make([]model.Property, 0, len(docs))
	for _, doc := range docs {
		var p model.Property
		if err := decode(doc, &p); err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, nil
}

// Create persists a new property and returns it with its generated id.
func (s *PropertyStore) Create(name string, photoURL *string) (*model.Property, error) {
	now := time.Now().UTC()
	prop := model.Property{
		Name:      name,
		PhotoURL:  photoURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	doc, err := encode(prop)
	if err != nil {
		return nil, err
	}
	id, err := s.ds.Insert(propertyCollection, doc)
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// GetByID returns the property, or nil if it does not exist.
func (s *PropertyStore) GetByID(id string) (*model.Property, error) {
	doc, err := s.ds.FindOne(propertyCollection, docstore.Filter{"_id": id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	var p model.Property
	if err := decode(doc, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update applies the present fields of upd and bumps updated_at. It returns
// ErrNoFields when upd carries nothing, and nil when no property matched.
func (s *PropertyStore) Update(id oid.ID, upd model.PropertyUpdate) (*model.Property, error) {
	set := docstore.Doc{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.PhotoURL != nil {
		set["photo_url"] = *upd.PhotoURL
	}
	if len(set) == 0 {
		return nil, ErrNoFields
	}
	set["updated_at"] = time.Now().UTC()

	matched, err := s.ds.UpdateOne(propertyCollection, docstore.Filter{"_id": id.Hex()}, set)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, nil
	}
	return s.GetByID(id.Hex())
}

// Delete removes the property record, then bulk-deletes every checklist
// item under it. The whole subtree is going away, so this takes the flat
// path instead of the per-node cascade. Deleting an absent property is
// not an error.
func (s *PropertyStore) Delete(id oid.ID) error {
	if err := s.ds.DeleteOne(propertyCollection, docstore.Filter{"_id": id.Hex()}); err != nil {
		return err
	}
	_, err := s.items.DeleteByProperty(id)
	return err
}
