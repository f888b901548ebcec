package service

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"noet-be/internal/dto"
	"noet-be/internal/pkg/apperror"
	"noet-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateThenShow(t *testing.T) {
	f := newFixture(t)

	created, err := f.notes.Create(f.ctx, f.userId, &dto.CreateNoteRequest{Title: "T", Content: "<p>x</p>"})
	require.NoError(t, err)
	assert.Equal(t, "T", created.Title)
	assert.Equal(t, 1, created.Version)
	assert.False(t, created.Deleted)
	assert.Nil(t, created.DeletedAt)

	id := uuid.MustParse(created.Id)
	shown, err := f.notes.Show(f.ctx, f.userId, id)
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", shown.Content)
	assert.Equal(t, 1, shown.Version)

	untitled, err := f.notes.Create(f.ctx, f.userId, &dto.CreateNoteRequest{Title: "   "})
	require.NoError(t, err)
	assert.Equal(t, "Untitled Note", untitled.Title)
	assert.Equal(t, []string{}, untitled.Tags)

	assert.Equal(t, []string{events.NoteCreated, events.NoteCreated}, f.publisher.types())
}

func TestShowMissingNote(t *testing.T) {
	f := newFixture(t)
	_, err := f.notes.Show(f.ctx, f.userId, uuid.New())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestUpdateBumpsVersionAndMerges(t *testing.T) {
	f := newFixture(t)
	created, err := f.notes.Create(f.ctx, f.userId, &dto.CreateNoteRequest{Title: "T", Content: "body", Tags: []string{"a"}})
	require.NoError(t, err)
	id := uuid.MustParse(created.Id)

	first, err := f.notes.Update(f.ctx, f.userId, id, &dto.UpdateNoteRequest{
		Metadata: map[string]json.RawMessage{"starred": rawJSON(t, true), "version": rawJSON(t, 40)},
	})
	require.NoError(t, err)
	assert.True(t, first.Starred)
	assert.Equal(t, 2, first.Version)
	assert.Equal(t, "body", first.Content)
	assert.Equal(t, []string{"a"}, first.Tags)
	assert.Equal(t, "T", first.Title)

	second, err := f.notes.Update(f.ctx, f.userId, id, &dto.UpdateNoteRequest{Content: strPtr("new")})
	require.NoError(t, err)
	assert.Equal(t, 3, second.Version)
	assert.True(t, second.Starred)
	assert.False(t, second.Updated.Before(first.Updated))

	shown, err := f.notes.Show(f.ctx, f.userId, id)
	require.NoError(t, err)
	assert.Equal(t, "new", shown.Content)
	assert.Equal(t, 3, shown.Version)
}

func TestUpdateRejectsStaleVersion(t *testing.T) {
	f := newFixture(t)
	created, err := f.notes.Create(f.ctx, f.userId, &dto.CreateNoteRequest{Title: "T"})
	require.NoError(t, err)
	id := uuid.MustParse(created.Id)

	_, err = f.notes.Update(f.ctx, f.userId, id, &dto.UpdateNoteRequest{Content: strPtr("a"), Version: intPtr(1)})
	require.NoError(t, err)

	_, err = f.notes.Update(f.ctx, f.userId, id, &dto.UpdateNoteRequest{Content: strPtr("b"), Version: intPtr(1)})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	shown, err := f.notes.Show(f.ctx, f.userId, id)
	require.NoError(t, err)
	assert.Equal(t, "a", shown.Content)
}

func TestUpdateRejectsBadMetadata(t *testing.T) {
	f := newFixture(t)
	created, err := f.notes.Create(f.ctx, f.userId, &dto.CreateNoteRequest{Title: "T"})
	require.NoError(t, err)

	_, err = f.notes.Update(f.ctx, f.userId, uuid.MustParse(created.Id), &dto.UpdateNoteRequest{
		Metadata: map[string]json.RawMessage{"tags": json.RawMessage(`"not-a-list"`)},
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestConcurrentUpdatesAreNotLost(t *testing.T) {
	f := newFixture(t)
	created, err := f.notes.Create(f.ctx, f.userId, &dto.CreateNoteRequest{Title: "T"})
	require.NoError(t, err)
	id := uuid.MustParse(created.Id)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.notes.Update(f.ctx, f.userId, id, &dto.UpdateNoteRequest{Content: strPtr("x")})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	shown, err := f.notes.Show(f.ctx, f.userId, id)
	require.NoError(t, err)
	assert.Equal(t, 1+writers, shown.Version)
}

func TestTrashLifecycle(t *testing.T) {
	f := newFixture(t)
	created, err := f.notes.Create(f.ctx, f.userId, &dto.CreateNoteRequest{Title: "T"})
	require.NoError(t, err)
	id := uuid.MustParse(created.Id)

	trashed, err := f.notes.Delete(f.ctx, f.userId, id)
	require.NoError(t, err)
	assert.True(t, trashed.Deleted)
	require.NotNil(t, trashed.DeletedAt)
	firstDeletedAt := *trashed.DeletedAt

	again, err := f.notes.Delete(f.ctx, f.userId, id)
	require.NoError(t, err)
	assert.True(t, again.DeletedAt.Equal(firstDeletedAt), "repeated trash keeps the first deletedAt")
	assert.Greater(t, again.Version, trashed.Version)

	active, err := f.notes.List(f.ctx, f.userId, dto.ListNotesQuery{})
	require.NoError(t, err)
	assert.Empty(t, active)

	trash, err := f.notes.List(f.ctx, f.userId, dto.ListNotesQuery{Deleted: boolPtr(true)})
	require.NoError(t, err)
	require.Len(t, trash, 1)

	restored, err := f.notes.Restore(f.ctx, f.userId, id)
	require.NoError(t, err)
	assert.False(t, restored.Deleted)
	assert.Nil(t, restored.DeletedAt)

	noop, err := f.notes.Restore(f.ctx, f.userId, id)
	require.NoError(t, err)
	assert.Equal(t, restored.Version+1, noop.Version)

	require.NoError(t, f.notes.Purge(f.ctx, f.userId, id))
	_, err = f.notes.Show(f.ctx, f.userId, id)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.True(t, apperror.Is(f.notes.Purge(f.ctx, f.userId, id), apperror.KindNotFound))

	for _, q := range []dto.ListNotesQuery{{}, {Deleted: boolPtr(true)}} {
		list, err := f.notes.List(f.ctx, f.userId, q)
		require.NoError(t, err)
		assert.Empty(t, list)
	}
}

func TestMetadataPatchKeepsDeletedAtPaired(t *testing.T) {
	f := newFixture(t)
	created, err := f.notes.Create(f.ctx, f.userId, &dto.CreateNoteRequest{Title: "T"})
	require.NoError(t, err)
	id := uuid.MustParse(created.Id)

	res, err := f.notes.Update(f.ctx, f.userId, id, &dto.UpdateNoteRequest{
		Metadata: map[string]json.RawMessage{"deleted": rawJSON(t, true)},
	})
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.NotNil(t, res.DeletedAt)

	res, err = f.notes.Update(f.ctx, f.userId, id, &dto.UpdateNoteRequest{
		Metadata: map[string]json.RawMessage{"deleted": rawJSON(t, false)},
	})
	require.NoError(t, err)
	assert.False(t, res.Deleted)
	assert.Nil(t, res.DeletedAt)
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	mk := func(req dto.CreateNoteRequest) string {
		res, err := f.notes.Create(f.ctx, f.userId, &req)
		require.NoError(t, err)
		return res.Id
	}

	starred := mk(dto.CreateNoteRequest{Title: "Starred shopping", Starred: true})
	archived := mk(dto.CreateNoteRequest{Title: "Old", Archived: true, Content: "ancient history"})
	both := mk(dto.CreateNoteRequest{Title: "Both", Starred: true, Archived: true, Tags: []string{"Work"}})
	plain := mk(dto.CreateNoteRequest{Title: "Plain", Notebook: strPtr("nb-1")})

	ids := func(q dto.ListNotesQuery) []string {
		list, err := f.notes.List(f.ctx, f.userId, q)
		require.NoError(t, err)
		out := make([]string, len(list))
		for i, n := range list {
			out[i] = n.Id
		}
		return out
	}

	assert.ElementsMatch(t, []string{starred, both}, ids(dto.ListNotesQuery{Starred: boolPtr(true)}))
	assert.ElementsMatch(t, []string{archived, plain}, ids(dto.ListNotesQuery{Starred: boolPtr(false)}))
	assert.ElementsMatch(t, []string{both}, ids(dto.ListNotesQuery{Starred: boolPtr(true), Archived: boolPtr(true)}))
	assert.ElementsMatch(t, []string{both}, ids(dto.ListNotesQuery{Archived: boolPtr(true), Starred: boolPtr(true)}))
	assert.ElementsMatch(t, []string{archived}, ids(dto.ListNotesQuery{Search: "HISTORY"}))
	assert.ElementsMatch(t, []string{both}, ids(dto.ListNotesQuery{Search: "work"}))
	assert.ElementsMatch(t, []string{plain}, ids(dto.ListNotesQuery{Notebook: "nb-1"}))
	assert.ElementsMatch(t, []string{both}, ids(dto.ListNotesQuery{Tag: "Work"}))

	future := time.Now().Add(time.Hour)
	assert.Empty(t, ids(dto.ListNotesQuery{Since: &future}))
	past := time.Now().Add(-time.Hour)
	assert.Len(t, ids(dto.ListNotesQuery{Since: &past}), 4)
}

func TestListByTagIdMatchesTagName(t *testing.T) {
	f := newFixture(t)
	tags := f.collection("ignore")
	tag, err := tags.Create(f.ctx, f.userId, "tags", &dto.CreateCollectionRequest{Name: "urgent"})
	require.NoError(t, err)

	byId, err := f.notes.Create(f.ctx, f.userId, &dto.CreateNoteRequest{Title: "a", Tags: []string{tag.Id}})
	require.NoError(t, err)
	byName, err := f.notes.Create(f.ctx, f.userId, &dto.CreateNoteRequest{Title: "b", Tags: []string{"urgent"}})
	require.NoError(t, err)
	_, err = f.notes.Create(f.ctx, f.userId, &dto.CreateNoteRequest{Title: "c"})
	require.NoError(t, err)

	list, err := f.notes.List(f.ctx, f.userId, dto.ListNotesQuery{Tag: tag.Id})
	require.NoError(t, err)
	got := []string{}
	for _, n := range list {
		got = append(got, n.Id)
	}
	assert.ElementsMatch(t, []string{byId.Id, byName.Id}, got)
}

func TestListSearchFilters(t *testing.T) {
	f := newFixture(t)
	collections := f.collection("ignore")
	work, err := collections.Create(f.ctx, f.userId, "notebooks", &dto.CreateCollectionRequest{Name: "Work"})
	require.NoError(t, err)
	urgent, err := collections.Create(f.ctx, f.userId, "tags", &dto.CreateCollectionRequest{Name: "urgent"})
	require.NoError(t, err)

	mk := func(req dto.CreateNoteRequest) string {
		res, err := f.notes.Create(f.ctx, f.userId, &req)
		require.NoError(t, err)
		return res.Id
	}
	plan := mk(dto.CreateNoteRequest{Title: "Q3 plan", Content: "budget", Notebook: strPtr(work.Id), Tags: []string{urgent.Id}})
	budget := mk(dto.CreateNoteRequest{Title: "Groceries", Content: "budget", Tags: []string{"urgent"}})
	mk(dto.CreateNoteRequest{Title: "Plan B", Content: "nothing"})

	ids := func(search string) []string {
		list, err := f.notes.List(f.ctx, f.userId, dto.ListNotesQuery{Search: search})
		require.NoError(t, err)
		out := []string{}
		for _, n := range list {
			out = append(out, n.Id)
		}
		return out
	}

	assert.ElementsMatch(t, []string{plan}, ids("/nb:work budget"))
	assert.ElementsMatch(t, []string{plan, budget}, ids("/tag:URGENT"))
	assert.ElementsMatch(t, []string{budget}, ids("/title:groc"))
	assert.Empty(t, ids("/nb:Nowhere"))
	assert.Len(t, ids("   "), 3)
}

func TestListSearchKeepsInnerWhitespace(t *testing.T) {
	f := newFixture(t)
	spaced, err := f.notes.Create(f.ctx, f.userId, &dto.CreateNoteRequest{Title: "t", Content: "a  b"})
	require.NoError(t, err)
	single, err := f.notes.Create(f.ctx, f.userId, &dto.CreateNoteRequest{Title: "u", Content: "a b"})
	require.NoError(t, err)

	list, err := f.notes.List(f.ctx, f.userId, dto.ListNotesQuery{Search: "a  b"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, spaced.Id, list[0].Id)

	list, err = f.notes.List(f.ctx, f.userId, dto.ListNotesQuery{Search: " a b "})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, single.Id, list[0].Id)
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	created, err := f.notes.Create(f.ctx, f.userId, &dto.CreateNoteRequest{Title: "My Note!", Content: "# Hi"})
	require.NoError(t, err)
	id := uuid.MustParse(created.Id)

	md, err := f.notes.Export(f.ctx, f.userId, id, "markdown")
	require.NoError(t, err)
	assert.Equal(t, "My_Note_.md", md.Filename)
	assert.True(t, strings.HasPrefix(string(md.Body), "---\n"))
	assert.Contains(t, string(md.Body), "My Note!")
	assert.True(t, strings.HasSuffix(string(md.Body), "# Hi"))

	html, err := f.notes.Export(f.ctx, f.userId, id, "html")
	require.NoError(t, err)
	assert.Contains(t, html.ContentType, "text/html")
	assert.Contains(t, string(html.Body), "<h1>Hi</h1>")

	_, err = f.notes.Export(f.ctx, f.userId, id, "pdf")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestStoragePathSwitchIsolatesNotes(t *testing.T) {
	f := newFixture(t)
	_, err := f.notes.Create(f.ctx, f.userId, &dto.CreateNoteRequest{Title: "old root"})
	require.NoError(t, err)

	f.factory.SetBasePath(t.TempDir())
	list, err := f.notes.List(f.ctx, f.userId, dto.ListNotesQuery{})
	require.NoError(t, err)
	assert.Empty(t, list)
}
