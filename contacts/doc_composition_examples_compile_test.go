package contacts_test

import (
	"context"

	"github.com/spachava753/contactbridge/contactkey"
	"github.com/spachava753/contactbridge/contacts"
	"github.com/spachava753/contactbridge/store"
)

func composeListPage(ctx context.Context, st *store.Store) ([]map[string]any, error) {
	rows, err := st.QueryContacts(ctx, contactkey.ModeUnified, store.Query{
		Search: "Pri",
		Sort:   store.Sort{By: store.SortByDisplayName, Order: store.SortOrderAsc},
	})
	if err != nil {
		return nil, err
	}
	page, err := contacts.Aggregate(rows, contactkey.ModeUnified, 50, 100)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(page))
	for _, c := range page {
		out = append(out, contacts.ToMap(c))
	}
	return out, nil
}

func composeAddWorkEmail(ctx context.Context, st *store.Store, identifier string) error {
	keys, err := contactkey.Of(contactkey.ModeSingle, identifier)
	if err != nil {
		return err
	}
	rows, err := st.FindContactByID(ctx, keys)
	if err != nil {
		return err
	}
	found, err := contacts.Aggregate(rows, keys.Mode(), 1, 0)
	if err != nil || len(found) == 0 {
		return err
	}

	c := found[0]
	c.Emails = append(c.Emails, contacts.Item{Label: "work", Value: "priya@acme.example"})
	_, err = st.Save(ctx, c)
	return err
}

func composeImportTransferMap(ctx context.Context, st *store.Store, m map[string]any) (contactkey.Keys, error) {
	c, err := contacts.FromMap(contactkey.ModeUnified, m)
	if err != nil {
		return contactkey.Keys{}, err
	}
	keys, err := st.Save(ctx, c)
	if contacts.Code(err) == contacts.ErrorCodeNotFound {
		// The map addressed a contact that has since been deleted; store it anew.
		c.Identifier, c.UnifiedContactID, c.SingleContactID, c.LookupKey = "", 0, 0, ""
		return st.Save(ctx, c)
	}
	return keys, err
}
