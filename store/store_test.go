package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nalgeon/be"

	"github.com/spachava753/contactbridge/contactkey"
	"github.com/spachava753/contactbridge/contacts"
	"github.com/spachava753/contactbridge/datecomp"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts db.sqlite")
	s, err := Open(path, Options{})
	be.Err(t, err, nil)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func save(t *testing.T, s *Store, c contacts.Contact) contactkey.Keys {
	t.Helper()
	keys, err := s.Save(context.Background(), c)
	be.Err(t, err, nil)
	return keys
}

func list(t *testing.T, s *Store, mode contactkey.Mode, q Query, limit, offset int) []contacts.Contact {
	t.Helper()
	rows, err := s.QueryContacts(context.Background(), mode, q)
	be.Err(t, err, nil)
	out, err := contacts.Aggregate(rows, mode, limit, offset)
	be.Err(t, err, nil)
	return out
}

func find(t *testing.T, s *Store, keys contactkey.Keys) []contacts.Contact {
	t.Helper()
	rows, err := s.FindContactByID(context.Background(), keys)
	be.Err(t, err, nil)
	out, err := contacts.Aggregate(rows, keys.Mode(), 10, 0)
	be.Err(t, err, nil)
	return out
}

func names(cs []contacts.Contact) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.DisplayName)
	}
	return out
}

func TestSaveNewContact(t *testing.T) {
	s, _ := openTestStore(t)

	keys := save(t, s, contacts.Contact{
		Mode:       contactkey.ModeUnified,
		GivenName:  "Ada",
		FamilyName: "Lovelace",
		Phones: []contacts.Item{
			{Label: "mobile", Value: "555-0001"},
			{Label: "Lab", Value: "555-0002"},
			{Label: "home", Value: ""},
		},
		Emails: []contacts.Item{{Label: "work", Value: "ada@example.com"}},
		Dates:  []contacts.DateItem{{Label: "birthday", Date: datecomp.Parse("1815-12-10")}},
	})
	be.Equal(t, keys.Mode(), contactkey.ModeUnified)
	be.True(t, keys.LookupKey() != "")
	be.Equal(t, keys.UnifiedContactID(), int64(1))

	got := find(t, s, keys)
	be.Equal(t, len(got), 1)

	want := contacts.Contact{
		Mode:             contactkey.ModeUnified,
		Identifier:       "1",
		UnifiedContactID: 1,
		SingleContactID:  1,
		LookupKey:        keys.LookupKey(),
		LinkedContactIDs: []string{"1"},
		DisplayName:      "Ada Lovelace",
		GivenName:        "Ada",
		FamilyName:       "Lovelace",
		Phones: []contacts.Item{
			{Label: "mobile", Value: "555-0001"},
			{Label: "lab", Value: "555-0002"},
		},
		Emails: []contacts.Item{{Label: "work", Value: "ada@example.com"}},
		Dates:  []contacts.DateItem{{Label: "birthday", Date: datecomp.Parse("1815-12-10")}},
	}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Fatalf("saved contact mismatch (-want +got):\n%s", diff)
	}
}

func TestSavePartialDates(t *testing.T) {
	s, _ := openTestStore(t)
	in, err := contacts.FromMap(contactkey.ModeUnified, map[string]any{
		"displayName": "Grace Hopper",
		"dates": []any{
			map[string]any{"label": "birthday", "date": map[string]any{"month": 6}},
			map[string]any{"label": "anniversary", "date": map[string]any{"year": 2020, "day": 15}},
			map[string]any{"label": "Name Day", "date": "1906-12-09"},
		},
	})
	be.Err(t, err, nil)
	keys := save(t, s, in)

	got := find(t, s, keys)
	be.Equal(t, len(got), 1)
	be.Equal(t, contacts.ToMap(got[0])["dates"], []map[string]any{
		{"label": "birthday", "date": map[string]int{"month": 6}},
		{"label": "anniversary", "date": map[string]int{"year": 2020, "day": 15}},
		{"label": "name day", "date": map[string]int{"year": 1906, "month": 12, "day": 9}},
	})
}

func TestSaveReplacesRows(t *testing.T) {
	s, _ := openTestStore(t)
	keys := save(t, s, contacts.Contact{
		Mode:      contactkey.ModeUnified,
		GivenName: "Grace",
		Phones:    []contacts.Item{{Label: "work", Value: "555-0100"}},
	})

	c := find(t, s, keys)[0]
	c.FamilyName = "Hopper"
	c.DisplayName = ""
	c.Phones = []contacts.Item{{Label: "home", Value: "555-0200"}}
	updated := save(t, s, c)
	be.Equal(t, updated.LookupKey(), keys.LookupKey())

	got := find(t, s, updated)[0]
	be.Equal(t, got.DisplayName, "Grace Hopper")
	be.Equal(t, got.FamilyName, "Hopper")
	be.Equal(t, got.Phones, []contacts.Item{{Label: "home", Value: "555-0200"}})
	be.Equal(t, len(list(t, s, contactkey.ModeUnified, Query{}, 10, 0)), 1)
}

func TestSaveUnknownContact(t *testing.T) {
	s, _ := openTestStore(t)
	_, err := s.Save(context.Background(), contacts.Contact{
		Mode:            contactkey.ModeSingle,
		Identifier:      "42",
		SingleContactID: 42,
		GivenName:       "Nobody",
	})
	be.Equal(t, contacts.Code(err), contacts.ErrorCodeNotFound)
}

func TestQueryContactsSearchAndSort(t *testing.T) {
	s, _ := openTestStore(t)
	for _, name := range []string{"Bob", "alice", "Albert", "100% Real"} {
		save(t, s, contacts.Contact{Mode: contactkey.ModeUnified, DisplayName: name})
	}

	got := list(t, s, contactkey.ModeUnified, Query{}, 10, 0)
	be.Equal(t, names(got), []string{"Bob", "alice", "Albert", "100% Real"})

	got = list(t, s, contactkey.ModeUnified, Query{Sort: Sort{By: SortByDisplayName}}, 10, 0)
	be.Equal(t, names(got), []string{"100% Real", "Albert", "alice", "Bob"})

	got = list(t, s, contactkey.ModeUnified, Query{Sort: Sort{By: SortByDisplayName, Order: SortOrderDesc}}, 2, 1)
	be.Equal(t, names(got), []string{"alice", "Albert"})

	got = list(t, s, contactkey.ModeUnified, Query{Search: "Al"}, 10, 0)
	be.Equal(t, names(got), []string{"alice", "Albert"})

	got = list(t, s, contactkey.ModeUnified, Query{Search: "100%"}, 10, 0)
	be.Equal(t, names(got), []string{"100% Real"})

	_, err := s.QueryContacts(context.Background(), contactkey.ModeUnified, Query{Sort: Sort{By: "age"}})
	be.Equal(t, contacts.Code(err), contacts.ErrorCodeValidation)
	_, err = s.QueryContacts(context.Background(), contactkey.ModeUnified, Query{Sort: Sort{Order: "sideways"}})
	be.Equal(t, contacts.Code(err), contacts.ErrorCodeValidation)
}

func TestCount(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	n, err := s.Count(ctx, contactkey.ModeUnified, "")
	be.Err(t, err, nil)
	be.Equal(t, n, 0)

	for _, name := range []string{"Ann", "Andy", "Zed"} {
		save(t, s, contacts.Contact{
			Mode:        contactkey.ModeUnified,
			DisplayName: name,
			Phones:      []contacts.Item{{Label: "home", Value: "555"}},
		})
	}
	n, err = s.Count(ctx, contactkey.ModeUnified, "")
	be.Err(t, err, nil)
	be.Equal(t, n, 3)

	n, err = s.Count(ctx, contactkey.ModeSingle, "An")
	be.Err(t, err, nil)
	be.Equal(t, n, 2)
}

// insertLinked writes two raw records that belong to one aggregated contact.
func insertLinked(t *testing.T, s *Store) {
	t.Helper()
	_, err := s.db.Exec(`
INSERT INTO data (raw_contact_id, contact_id, lookup, display_name, mimetype, is_primary, data1, data2, data3)
VALUES
	(8, 5, 'lk5', 'Ada Lovelace', 'vnd.android.cursor.item/name', 0, 'Ada Lovelace', 'Augusta', 'King'),
	(8, 5, 'lk5', 'Ada Lovelace', 'vnd.android.cursor.item/email_v2', 0, 'ada@work.example', 2, NULL),
	(7, 5, 'lk5', 'Ada Lovelace', 'vnd.android.cursor.item/name', 1, 'Ada Lovelace', 'Ada', 'Lovelace'),
	(7, 5, 'lk5', 'Ada Lovelace', 'vnd.android.cursor.item/phone_v2', 1, '555-0001', 0, 'Lab')`)
	be.Err(t, err, nil)
}

func TestUnifiedAndSingleModes(t *testing.T) {
	s, _ := openTestStore(t)
	insertLinked(t, s)

	unified := list(t, s, contactkey.ModeUnified, Query{}, 10, 0)
	be.Equal(t, len(unified), 1)
	be.Equal(t, unified[0].Identifier, "5")
	be.Equal(t, unified[0].GivenName, "Ada")
	be.Equal(t, unified[0].SingleContactID, int64(7))
	be.Equal(t, unified[0].LinkedContactIDs, []string{"7", "8"})
	be.Equal(t, unified[0].Phones, []contacts.Item{{Label: "lab", Value: "555-0001"}})
	be.Equal(t, unified[0].Emails, []contacts.Item{{Label: "work", Value: "ada@work.example"}})

	single := list(t, s, contactkey.ModeSingle, Query{}, 10, 0)
	be.Equal(t, len(single), 2)
	be.Equal(t, single[0].Identifier, "7")
	be.Equal(t, single[1].Identifier, "8")
	be.Equal(t, single[1].GivenName, "Augusta")
	be.Equal(t, len(single[1].Phones), 0)

	keys, err := contactkey.Of(contactkey.ModeSingle, 8)
	be.Err(t, err, nil)
	found := find(t, s, keys)
	be.Equal(t, len(found), 1)
	be.Equal(t, found[0].FamilyName, "King")

	keys, err = contactkey.Of(contactkey.ModeUnified, contactkey.Bundle{LookupKey: "lk5"})
	be.Err(t, err, nil)
	found = find(t, s, keys)
	be.Equal(t, len(found), 1)
	be.Equal(t, found[0].UnifiedContactID, int64(5))
}

func TestPaginationOverSQLRows(t *testing.T) {
	s, _ := openTestStore(t)
	for _, name := range []string{"A", "B", "C", "D"} {
		save(t, s, contacts.Contact{
			Mode:        contactkey.ModeUnified,
			DisplayName: name,
			Phones:      []contacts.Item{{Label: "home", Value: "1"}, {Label: "work", Value: "2"}},
		})
	}

	got := list(t, s, contactkey.ModeUnified, Query{}, 2, 1)
	be.Equal(t, names(got), []string{"B", "C"})
	be.Equal(t, len(got[0].Phones), 2)

	got = list(t, s, contactkey.ModeUnified, Query{}, 5, 3)
	be.Equal(t, names(got), []string{"D"})

	got = list(t, s, contactkey.ModeUnified, Query{}, 5, 4)
	be.Equal(t, len(got), 0)
}

func TestRowsClosedByCaller(t *testing.T) {
	s, _ := openTestStore(t)
	save(t, s, contacts.Contact{Mode: contactkey.ModeUnified, DisplayName: "A"})

	rows, err := s.QueryContacts(context.Background(), contactkey.ModeUnified, Query{})
	be.Err(t, err, nil)
	be.True(t, rows.Next())
	be.Err(t, rows.Close(), nil)
	be.True(t, !rows.Next())
	be.Err(t, rows.Err(), nil)
	be.Err(t, rows.Close(), nil)
}

func TestAvatar(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	thumb := []byte{0x89, 'P', 'N', 'G', 1}
	full := []byte{0x89, 'P', 'N', 'G', 2}

	keys := save(t, s, contacts.Contact{Mode: contactkey.ModeSingle, DisplayName: "Pic", Avatar: thumb})

	photo, err := s.Avatar(ctx, keys, false)
	be.Err(t, err, nil)
	be.Equal(t, photo, thumb)

	photo, err = s.Avatar(ctx, keys, true)
	be.Err(t, err, nil)
	be.Equal(t, photo, thumb)

	be.Err(t, s.SetDisplayPhoto(ctx, keys, full), nil)
	photo, err = s.Avatar(ctx, keys, true)
	be.Err(t, err, nil)
	be.Equal(t, photo, full)

	photo, err = s.Avatar(ctx, keys, false)
	be.Err(t, err, nil)
	be.Equal(t, photo, thumb)

	unified, err := contactkey.Of(contactkey.ModeUnified, contactkey.Bundle{UnifiedContactID: keys.SingleContactID()})
	be.Err(t, err, nil)
	photo, err = s.Avatar(ctx, unified, true)
	be.Err(t, err, nil)
	be.Equal(t, photo, full)

	bare := save(t, s, contacts.Contact{Mode: contactkey.ModeSingle, DisplayName: "NoPic"})
	photo, err = s.Avatar(ctx, bare, true)
	be.Err(t, err, nil)
	be.True(t, photo == nil)
}

func TestAvatarInvalidKeys(t *testing.T) {
	s, _ := openTestStore(t)
	keys, err := contactkey.Of(contactkey.ModeUnified, "not-a-lookup")
	be.Err(t, err, nil)

	_, err = s.Avatar(context.Background(), keys, false)
	be.Err(t, err, contactkey.ErrInvalidKeys)
}

func TestDelete(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	insertLinked(t, s)
	keep := save(t, s, contacts.Contact{Mode: contactkey.ModeUnified, DisplayName: "Keep"})

	keys, err := contactkey.Of(contactkey.ModeSingle, 8)
	be.Err(t, err, nil)
	be.Err(t, s.Delete(ctx, keys), nil)
	be.Equal(t, len(list(t, s, contactkey.ModeSingle, Query{}, 10, 0)), 2)

	keys, err = contactkey.Of(contactkey.ModeUnified, contactkey.Bundle{LookupKey: "lk5"})
	be.Err(t, err, nil)
	be.Err(t, s.Delete(ctx, keys), nil)
	be.Equal(t, names(list(t, s, contactkey.ModeUnified, Query{}, 10, 0)), []string{"Keep"})

	err = s.Delete(ctx, keys)
	be.Equal(t, contacts.Code(err), contacts.ErrorCodeNotFound)
	be.Equal(t, len(find(t, s, keep)), 1)
}

func TestReadOnly(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.db"), Options{ReadOnly: true})
	be.Err(t, err, "connecting")

	s, path := openTestStore(t)
	save(t, s, contacts.Contact{Mode: contactkey.ModeUnified, DisplayName: "A"})

	ro, err := Open(path, Options{ReadOnly: true})
	be.Err(t, err, nil)
	defer ro.Close()

	n, err := ro.Count(context.Background(), contactkey.ModeUnified, "")
	be.Err(t, err, nil)
	be.Equal(t, n, 1)

	_, err = ro.Save(context.Background(), contacts.Contact{Mode: contactkey.ModeUnified, DisplayName: "B"})
	be.Err(t, err, "read-only")
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open(" ", Options{})
	be.Err(t, err, "empty")
}
