package modules

import (
	"errors"
	"testing"

	"github.com/opdeck/opdeck/internal/models"
)

// fakeIndexer records calls and can be told to fail.
type fakeIndexer struct {
	upserts []string
	deletes []string
	fail    bool
}

func (f *fakeIndexer) UpsertNote(n models.Note) error {
	if f.fail {
		return errors.New("index unavailable")
	}
	f.upserts = append(f.upserts, n.ID)
	return nil
}

func (f *fakeIndexer) DeleteNote(id string) error {
	if f.fail {
		return errors.New("index unavailable")
	}
	f.deletes = append(f.deletes, id)
	return nil
}

func TestNoteCreateAndUpdateTouchIndex(t *testing.T) {
	_, r := testRegistry(t)
	idx := &fakeIndexer{}
	r.Notes.SetIndexer(idx)

	note, err := r.Notes.Create("Ideas", "# Ideas\nSome content", []string{"Work"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if note.LastModified.IsZero() {
		t.Error("last-modified not stamped")
	}
	if len(idx.upserts) != 1 || idx.upserts[0] != note.ID {
		t.Errorf("index upserts = %v", idx.upserts)
	}

	before, _ := r.Notes.Get(note.ID)
	if err := r.Notes.Update(note.ID, "Ideas v2", "updated body", nil); err != nil {
		t.Fatalf("Update: %v", err)
	}
	after, _ := r.Notes.Get(note.ID)
	if after.Title != "Ideas v2" || after.Content != "updated body" {
		t.Errorf("note after update = %+v", after)
	}
	if got, want := after.Tags, before.Tags; len(got) != len(want) {
		t.Error("nil tags on update must keep existing tags")
	}
	if !after.LastModified.After(before.LastModified) && !after.LastModified.Equal(before.LastModified) {
		t.Error("last-modified went backwards")
	}
	if len(idx.upserts) != 2 {
		t.Errorf("index upserts after update = %v", idx.upserts)
	}
}

func TestNoteUpdateMissingIDDoesNotIndex(t *testing.T) {
	_, r := testRegistry(t)
	idx := &fakeIndexer{}
	r.Notes.SetIndexer(idx)

	if err := r.Notes.Update("missing", "t", "c", nil); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(idx.upserts) != 0 {
		t.Errorf("index touched for missing note: %v", idx.upserts)
	}
}

func TestNoteSetLinksAllowsDanglingTargets(t *testing.T) {
	_, r := testRegistry(t)
	note, _ := r.Notes.Create("linker", "body", nil)

	if err := r.Notes.SetLinks(note.ID, []string{"no-such-note"}); err != nil {
		t.Fatalf("SetLinks: %v", err)
	}
	got, _ := r.Notes.Get(note.ID)
	if len(got.LinkedIDs) != 1 || got.LinkedIDs[0] != "no-such-note" {
		t.Errorf("linked ids = %v", got.LinkedIDs)
	}
}

func TestNoteRemoveDropsFromIndex(t *testing.T) {
	_, r := testRegistry(t)
	idx := &fakeIndexer{}
	r.Notes.SetIndexer(idx)
	note, _ := r.Notes.Create("doomed", "body", nil)

	if err := r.Notes.Remove(note.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(idx.deletes) != 1 || idx.deletes[0] != note.ID {
		t.Errorf("index deletes = %v", idx.deletes)
	}
}

func TestNoteIndexFailureDoesNotBlockMutation(t *testing.T) {
	_, r := testRegistry(t)
	r.Notes.SetIndexer(&fakeIndexer{fail: true})

	note, err := r.Notes.Create("survives", "body", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, ok := r.Notes.Get(note.ID); !ok {
		t.Error("note lost when index failed")
	}
	if err := r.Notes.Remove(note.ID); err != nil {
		t.Errorf("Remove with failing index: %v", err)
	}
}
