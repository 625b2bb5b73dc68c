package store

import (
	"errors"
	"testing"
	"time"

	"github.com/lovedhomes/lovedhomes/internal/docstore"
	"github.com/lovedhomes/lovedhomes/internal/model"
	"github.com/lovedhomes/lovedhomes/internal/oid"
)

func setupStores(t *testing.T) (*docstore.Store, *PropertyStore, *ItemStore) {
	t.Helper()
	ds, err := docstore.Open(":memory:")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { ds.Close() })
	items := NewItemStore(ds)
	return ds, NewPropertyStore(ds, items), items
}

func mustID(t *testing.T, s string) oid.ID {
	t.Helper()
	id, err := oid.Parse(s)
	if err != nil {
		t.Fatalf("parse id %q: %v", s, err)
	}
	return id
}

func createProperty(t *testing.T, ps *PropertyStore) oid.ID {
	t.Helper()
	prop, err := ps.Create("Test Home", nil)
	if err != nil {
		t.Fatalf("create property: %v", err)
	}
	return mustID(t, prop.ID)
}

func TestItemCreateAndList(t *testing.T) {
	_, ps, is := setupStores(t)
	propID := createProperty(t, ps)

	item, err := is.Create(propID, "Kitchen", true, nil)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if !oid.IsValid(item.ID) {
		t.Errorf("item id %q is not a valid id", item.ID)
	}
	if item.PropertyID != propID.Hex() {
		t.Errorf("property_id = %q, want %q", item.PropertyID, propID.Hex())
	}
	if item.ParentID != nil {
		t.Errorf("parent_id = %v, want nil", item.ParentID)
	}
	if !item.IsFolder {
		t.Error("expected folder")
	}
	if item.CreatedAt.IsZero() || item.UpdatedAt.IsZero() {
		t.Error("timestamps not stamped")
	}

	roots, err := is.ListByParent(propID, nil)
	if err != nil {
		t.Fatalf("list roots: %v", err)
	}
	if len(roots) != 1 {
		t.Fatalf("roots = %d, want 1", len(roots))
	}
	if roots[0].ID != item.ID {
		t.Errorf("listed id = %q, want %q", roots[0].ID, item.ID)
	}
}

func TestItemListScopes(t *testing.T) {
	_, ps, is := setupStores(t)
	propID := createProperty(t, ps)

	folder, err := is.Create(propID, "Garage", true, nil)
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}
	folderID := mustID(t, folder.ID)

	// children created out of order to exercise title sorting
	for _, title := range []string{"B", "A", "C"} {
		if _, err := is.Create(propID, title, false, &folderID); err != nil {
			t.Fatalf("create child %s: %v", title, err)
		}
	}

	roots, err := is.ListByParent(propID, nil)
	if err != nil {
		t.Fatalf("list roots: %v", err)
	}
	if len(roots) != 1 || roots[0].Title != "Garage" {
		t.Fatalf("roots = %v, want just the folder", roots)
	}

	children, err := is.ListByParent(propID, &folderID)
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if len(children) != 3 {
		t.Fatalf("children = %d, want 3", len(children))
	}
	want := []string{"A", "B", "C"}
	for i, c := range children {
		if c.Title != want[i] {
			t.Errorf("children[%d].Title = %q, want %q", i, c.Title, want[i])
		}
		if c.ParentID == nil || *c.ParentID != folder.ID {
			t.Errorf("children[%d].ParentID = %v, want %q", i, c.ParentID, folder.ID)
		}
	}
}

func TestItemListUnknownPropertyIsEmpty(t *testing.T) {
	_, _, is := setupStores(t)

	items, err := is.ListByParent(oid.New(), nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %d, want 0", len(items))
	}
}

func TestItemCreateDanglingParentAccepted(t *testing.T) {
	_, ps, is := setupStores(t)
	propID := createProperty(t, ps)

	ghost := oid.New()
	item, err := is.Create(propID, "Orphan", false, &ghost)
	if err != nil {
		t.Fatalf("create with dangling parent: %v", err)
	}
	if item.ParentID == nil || *item.ParentID != ghost.Hex() {
		t.Errorf("parent_id = %v, want %q", item.ParentID, ghost.Hex())
	}
}

func TestItemUpdate(t *testing.T) {
	_, ps, is := setupStores(t)
	propID := createProperty(t, ps)

	item, err := is.Create(propID, "Old title", false, nil)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	title := "New title"
	folder := true
	updated, err := is.Update(mustID(t, item.ID), model.ChecklistItemUpdate{Title: &title, IsFolder: &folder})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if updated.Title != "New title" {
		t.Errorf("title = %q, want %q", updated.Title, "New title")
	}
	if !updated.IsFolder {
		t.Error("expected folder after update")
	}
	if !updated.UpdatedAt.After(item.UpdatedAt) {
		t.Errorf("updated_at %v not after %v", updated.UpdatedAt, item.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(item.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", item.CreatedAt, updated.CreatedAt)
	}
	// property and parent are immutable through updates
	if updated.PropertyID != item.PropertyID {
		t.Errorf("property_id changed: %v -> %v", item.PropertyID, updated.PropertyID)
	}
}

func TestItemUpdateNoFields(t *testing.T) {
	_, ps, is := setupStores(t)
	propID := createProperty(t, ps)

	item, err := is.Create(propID, "Untouched", false, nil)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	_, err = is.Update(mustID(t, item.ID), model.ChecklistItemUpdate{})
	if !errors.Is(err, ErrNoFields) {
		t.Fatalf("err = %v, want ErrNoFields", err)
	}

	got, err := is.GetByID(item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if !got.UpdatedAt.Equal(item.UpdatedAt) {
		t.Errorf("no-op update moved updated_at: %v -> %v", item.UpdatedAt, got.UpdatedAt)
	}
}

func TestItemUpdateNotFound(t *testing.T) {
	_, _, is := setupStores(t)

	title := "x"
	got, err := is.Update(oid.New(), model.ChecklistItemUpdate{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil for missing item", got)
	}
}

func TestItemDeleteLeaf(t *testing.T) {
	_, ps, is := setupStores(t)
	propID := createProperty(t, ps)

	folder, _ := is.Create(propID, "Folder", true, nil)
	folderID := mustID(t, folder.ID)
	leaf, _ := is.Create(propID, "Leaf", false, &folderID)

	if err := is.Delete(mustID(t, leaf.ID)); err != nil {
		t.Fatalf("delete leaf: %v", err)
	}

	got, _ := is.GetByID(leaf.ID)
	if got != nil {
		t.Error("leaf still present")
	}
	got, _ = is.GetByID(folder.ID)
	if got == nil {
		t.Error("parent folder was deleted with the leaf")
	}
}

func TestItemDeleteCascadesSubtree(t *testing.T) {
	_, ps, is := setupStores(t)
	propID := createProperty(t, ps)

	a, _ := is.Create(propID, "A", true, nil)
	aID := mustID(t, a.ID)
	b, _ := is.Create(propID, "B", true, &aID)
	bID := mustID(t, b.ID)
	c, _ := is.Create(propID, "C", false, &bID)
	sibling, _ := is.Create(propID, "Sibling", false, nil)

	if err := is.Delete(aID); err != nil {
		t.Fatalf("delete subtree: %v", err)
	}

	for _, id := range []string{a.ID, b.ID, c.ID} {
		got, err := is.GetByID(id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if got != nil {
			t.Errorf("item %q survived cascade", got.Title)
		}
	}

	got, _ := is.GetByID(sibling.ID)
	if got == nil {
		t.Error("unrelated sibling was deleted")
	}

	count, err := is.CountByProperty(propID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestItemDeleteCycleDefense(t *testing.T) {
	ds, ps, is := setupStores(t)
	propID := createProperty(t, ps)

	a, _ := is.Create(propID, "A", true, nil)
	aID := mustID(t, a.ID)
	b, _ := is.Create(propID, "B", true, &aID)

	// corrupt the parent graph: A's parent becomes B
	matched, err := ds.UpdateOne("checklistitem", docstore.Filter{"_id": a.ID}, docstore.Doc{"parent_id": b.ID})
	if err != nil || !matched {
		t.Fatalf("corrupt parent graph: matched=%v err=%v", matched, err)
	}

	if err := is.Delete(aID); !errors.Is(err, ErrCycle) {
		t.Fatalf("err = %v, want ErrCycle", err)
	}

	// the walk aborted before deleting anything
	if got, _ := is.GetByID(a.ID); got == nil {
		t.Error("A deleted despite cycle abort")
	}
	if got, _ := is.GetByID(b.ID); got == nil {
		t.Error("B deleted despite cycle abort")
	}
}

func TestItemDeleteByProperty(t *testing.T) {
	_, ps, is := setupStores(t)
	propID := createProperty(t, ps)
	otherID := createProperty(t, ps)

	root, _ := is.Create(propID, "Root", true, nil)
	rootID := mustID(t, root.ID)
	is.Create(propID, "Child", false, &rootID)
	is.Create(otherID, "Elsewhere", false, nil)

	count, err := is.DeleteByProperty(propID)
	if err != nil {
		t.Fatalf("delete by property: %v", err)
	}
	if count != 2 {
		t.Errorf("deleted = %d, want 2", count)
	}

	left, _ := is.CountByProperty(otherID)
	if left != 1 {
		t.Errorf("other property count = %d, want 1", left)
	}
}
