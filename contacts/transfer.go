package contacts

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/spachava753/contactbridge/contactkey"
	"github.com/spachava753/contactbridge/datecomp"
	"github.com/spachava753/contactbridge/label"
)

// ToMap returns the transfer representation of c. Empty strings, zero ids,
// and a missing avatar are left out. The phones, emails, dates, and
// linkedContactIds lists are always present.
func ToMap(c Contact) map[string]any {
	m := map[string]any{}
	putString(m, "identifier", c.Identifier)
	putString(m, "mode", string(c.Mode))
	putString(m, "displayName", c.DisplayName)
	putString(m, "givenName", c.GivenName)
	putString(m, "middleName", c.MiddleName)
	putString(m, "familyName", c.FamilyName)
	putString(m, "prefix", c.Prefix)
	putString(m, "suffix", c.Suffix)
	if len(c.Avatar) > 0 {
		m["avatar"] = c.Avatar
	}
	m["phones"] = ItemsToMaps(c.Phones)
	m["emails"] = ItemsToMaps(c.Emails)
	m["dates"] = datesToMaps(c.Dates)
	if c.UnifiedContactID > 0 {
		m["unifiedContactId"] = strconv.FormatInt(c.UnifiedContactID, 10)
	}
	if c.SingleContactID > 0 {
		m["singleContactId"] = strconv.FormatInt(c.SingleContactID, 10)
	}
	if c.LookupKey != "" {
		m["otherKeys"] = map[string]any{"lookupKey": c.LookupKey}
	}
	linked := make([]string, 0, len(c.LinkedContactIDs))
	m["linkedContactIds"] = append(linked, c.LinkedContactIDs...)
	return m
}

// ItemsToMaps returns items as a list of {label, value} maps.
func ItemsToMaps(items []Item) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, map[string]any{"label": item.Label, "value": item.Value})
	}
	return out
}

func datesToMaps(dates []DateItem) []map[string]any {
	out := make([]map[string]any, 0, len(dates))
	for _, d := range dates {
		out = append(out, map[string]any{"label": d.Label, "date": d.Date.ToMap()})
	}
	return out
}

// FromMap decodes a transfer map. Fields of the wrong type produce an *Error
// with ErrorCodeMalformedInput. Items and dates without a value are skipped.
// A map without identity fields decodes to a contact that is not yet stored.
func FromMap(mode contactkey.Mode, m map[string]any) (Contact, error) {
	if !mode.Valid() {
		return Contact{}, &Error{Code: ErrorCodeValidation, Message: "unknown mode " + strconv.Quote(string(mode))}
	}
	d := decoder{m: m}
	c := Contact{
		Mode:        mode,
		Identifier:  d.id("identifier"),
		DisplayName: d.string("displayName"),
		GivenName:   d.string("givenName"),
		MiddleName:  d.string("middleName"),
		FamilyName:  d.string("familyName"),
		Prefix:      d.string("prefix"),
		Suffix:      d.string("suffix"),
		Avatar:      d.bytes("avatar"),
		Phones:      d.items("phones"),
		Emails:      d.items("emails"),
		Dates:       d.dates("dates"),
	}
	c.LinkedContactIDs = d.strings("linkedContactIds")
	c.UnifiedContactID = d.int64("unifiedContactId")
	c.SingleContactID = d.int64("singleContactId")
	c.LookupKey = d.string("lookupKey")
	if other := d.object("otherKeys"); other != nil && c.LookupKey == "" {
		od := decoder{m: other, prefix: "otherKeys."}
		c.LookupKey = od.string("lookupKey")
		if od.err != nil && d.err == nil {
			d.err = od.err
		}
	}
	if d.err != nil {
		return Contact{}, d.err
	}
	return c, nil
}

// decoder reads typed fields and keeps the first type error.
type decoder struct {
	m      map[string]any
	prefix string
	err    error
}

func (d *decoder) fail(key string, want string, got any) {
	if d.err != nil {
		return
	}
	d.err = &Error{
		Code:    ErrorCodeMalformedInput,
		Message: fmt.Sprintf("field %s%s: expected %s, got %T", d.prefix, key, want, got),
	}
}

func (d *decoder) string(key string) string {
	switch v := d.m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		d.fail(key, "string", v)
		return ""
	}
}

func (d *decoder) id(key string) string {
	switch v := d.m[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		d.fail(key, "integer id", v)
	default:
		d.fail(key, "string or integer id", v)
	}
	return ""
}

func (d *decoder) int64(key string) int64 {
	s := d.id(key)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		d.fail(key, "integer id", d.m[key])
		return 0
	}
	return n
}

func (d *decoder) bytes(key string) []byte {
	switch v := d.m[key].(type) {
	case nil:
		return nil
	case []byte:
		return v
	case string:
		// JSON carries binary data as base64.
		b, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			d.fail(key, "base64 data", v)
			return nil
		}
		return b
	default:
		d.fail(key, "bytes", v)
		return nil
	}
}

func (d *decoder) object(key string) map[string]any {
	switch v := d.m[key].(type) {
	case nil:
		return nil
	case map[string]any:
		return v
	default:
		d.fail(key, "object", v)
		return nil
	}
}

func (d *decoder) list(key string) []map[string]any {
	switch v := d.m[key].(type) {
	case nil:
		return nil
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, elem := range v {
			obj, ok := elem.(map[string]any)
			if !ok {
				d.fail(key, "list of objects", elem)
				return nil
			}
			out = append(out, obj)
		}
		return out
	default:
		d.fail(key, "list of objects", v)
		return nil
	}
}

func (d *decoder) strings(key string) []string {
	out := []string{}
	switch v := d.m[key].(type) {
	case nil:
	case []string:
		out = append(out, v...)
	case []any:
		for _, elem := range v {
			s, ok := elem.(string)
			if !ok {
				d.fail(key, "list of strings", elem)
				return []string{}
			}
			out = append(out, s)
		}
	default:
		d.fail(key, "list of strings", v)
	}
	return out
}

func (d *decoder) items(key string) []Item {
	out := []Item{}
	for i, obj := range d.list(key) {
		id := decoder{m: obj, prefix: fmt.Sprintf("%s%s[%d].", d.prefix, key, i)}
		value := id.string("value")
		lbl := id.string("label")
		if id.err != nil {
			if d.err == nil {
				d.err = id.err
			}
			continue
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		if strings.TrimSpace(lbl) == "" {
			lbl = label.Other
		}
		out = append(out, Item{Label: lbl, Value: value})
	}
	return out
}

func (d *decoder) dates(key string) []DateItem {
	out := []DateItem{}
	for i, obj := range d.list(key) {
		dd := decoder{m: obj, prefix: fmt.Sprintf("%s%s[%d].", d.prefix, key, i)}
		lbl := dd.string("label")
		if dd.err != nil {
			if d.err == nil {
				d.err = dd.err
			}
			continue
		}
		date := datecomp.Decode(obj["date"])
		if date.IsZero() {
			continue
		}
		if strings.TrimSpace(lbl) == "" {
			lbl = label.Other
		}
		out = append(out, DateItem{Label: lbl, Date: date})
	}
	return out
}

func putString(m map[string]any, key string, value string) {
	if value != "" {
		m[key] = value
	}
}
