package contactkey

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"
)

func TestOfUnifiedPrefersLookupKey(t *testing.T) {
	k, err := Of(ModeUnified, Bundle{UnifiedContactID: 42, LookupKey: "0r7-2C", Identifier: "7"})
	be.Err(t, err, nil)
	be.Equal(t, k.Mode(), ModeUnified)
	be.Equal(t, k.Identifier(), "0r7-2C")
	be.Equal(t, k.UnifiedContactID(), int64(42))

	pred, params := k.Query()
	be.Equal(t, pred, "lookup = ?")
	be.Equal(t, params, []any{"0r7-2C"})
}

func TestOfUnifiedFallsBackToIDs(t *testing.T) {
	k, err := Of(ModeUnified, Bundle{UnifiedContactID: 42, Identifier: "7"})
	be.Err(t, err, nil)
	be.Equal(t, k.Identifier(), "42")

	k, err = Of(ModeUnified, int64(9))
	be.Err(t, err, nil)
	be.Equal(t, k.Identifier(), "9")
	pred, params := k.Query()
	be.Equal(t, pred, "contact_id = ?")
	be.Equal(t, params, []any{int64(9)})

	k, err = Of(ModeUnified, "not-a-number")
	be.Err(t, err, nil)
	be.Equal(t, k.Identifier(), "not-a-number")
	_, err = k.CheckValid()
	be.True(t, errors.Is(err, ErrInvalidKeys))
}

func TestOfSingle(t *testing.T) {
	k, err := Of(ModeSingle, 15)
	be.Err(t, err, nil)
	be.Equal(t, k.SingleContactID(), int64(15))
	pred, params := k.Query()
	be.Equal(t, pred, "raw_contact_id = ?")
	be.Equal(t, params, []any{int64(15)})

	// the lookup key never addresses a raw record
	k, err = Of(ModeSingle, Bundle{SingleContactID: 3, LookupKey: "abc", UnifiedContactID: 8})
	be.Err(t, err, nil)
	be.Equal(t, k.Identifier(), "3")
	be.Equal(t, k.LookupKey(), "")

	_, err = Of(ModeSingle, Bundle{LookupKey: "abc", UnifiedContactID: 8})
	be.True(t, errors.Is(err, ErrInvalidIdentifier))

	_, err = Of(ModeSingle, "abc")
	be.True(t, errors.Is(err, ErrInvalidIdentifier))
}

func TestOfTransferMap(t *testing.T) {
	k, err := Of(ModeUnified, map[string]any{
		"identifier":       "12",
		"unifiedContactId": "12",
		"singleContactId":  "30",
		"otherKeys":        map[string]any{"lookupKey": "lk"},
	})
	be.Err(t, err, nil)
	be.Equal(t, k.LookupKey(), "lk")
	be.Equal(t, k.UnifiedContactID(), int64(12))

	k, err = Of(ModeSingle, map[string]any{"singleContactId": float64(30)})
	be.Err(t, err, nil)
	be.Equal(t, k.Identifier(), "30")
}

func TestOfRejectsUnusableInput(t *testing.T) {
	for _, v := range []any{nil, "", "   ", Bundle{}, map[string]any{}, 1.5, []string{"1"}} {
		_, err := Of(ModeUnified, v)
		be.True(t, errors.Is(err, ErrInvalidIdentifier))
	}
	_, err := Of(Mode("merged"), 1)
	be.True(t, errors.Is(err, ErrInvalidIdentifier))
}

func TestCheckValid(t *testing.T) {
	k, err := Of(ModeUnified, Bundle{LookupKey: "lk"})
	be.Err(t, err, nil)
	_, err = k.CheckValid()
	be.Err(t, err, nil)

	_, err = Keys{}.CheckValid()
	be.True(t, errors.Is(err, ErrInvalidKeys))

	_, err = Keys{mode: ModeSingle, identifier: "x"}.CheckValid()
	be.True(t, errors.Is(err, ErrInvalidKeys))
}

func TestURIs(t *testing.T) {
	k, _ := Of(ModeUnified, Bundle{LookupKey: "a b", UnifiedContactID: 5})
	be.Equal(t, k.ContentURI(), "content://com.android.contacts/contacts/lookup/a%20b/5")
	be.Equal(t, k.PhotoURI(), "content://com.android.contacts/contacts/lookup/a%20b/5/photo")

	k, _ = Of(ModeUnified, 5)
	be.Equal(t, k.ContentURI(), "content://com.android.contacts/contacts/5")

	k, _ = Of(ModeSingle, 6)
	be.Equal(t, k.ContentURI(), "content://com.android.contacts/raw_contacts/6")
	be.Equal(t, k.PhotoURI(), "content://com.android.contacts/raw_contacts/6/display_photo")
	be.Equal(t, k.String(), "single:6")
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	be.Err(t, err, nil)
	be.Equal(t, m, ModeUnified)

	m, err = ParseMode(" SINGLE ")
	be.Err(t, err, nil)
	be.Equal(t, m, ModeSingle)
	be.Equal(t, m.GroupingColumn(), ColumnRawContactID)
	be.Equal(t, ModeUnified.GroupingColumn(), ColumnContactID)

	_, err = ParseMode("raw")
	be.True(t, err != nil)
}
