// Package contactkey resolves contact identifiers under the two addressing
// modes of the platform store.
//
// A unified contact is the union of all raw records the platform has linked
// together; it is best addressed by its lookup key, which survives
// re-aggregation, and otherwise by its numeric contact id. A single contact is
// one raw record addressed by its raw contact id.
//
// Keys are mode-locked: a Keys value built for one mode never reinterprets its
// identifier under the other mode.
package contactkey

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var (
	// ErrInvalidIdentifier is returned when no usable identifier exists for
	// the requested mode.
	ErrInvalidIdentifier = errors.New("contactkey: invalid identifier")
	// ErrInvalidKeys is returned by CheckValid for keys that cannot address a
	// contact.
	ErrInvalidKeys = errors.New("contactkey: invalid keys")
)

// Mode selects how contacts are addressed.
type Mode string

const (
	// ModeUnified addresses aggregated contacts.
	ModeUnified Mode = "unified"
	// ModeSingle addresses individual raw contact records.
	ModeSingle Mode = "single"
)

// Column names shared with the platform data view.
const (
	ColumnContactID    = "contact_id"
	ColumnRawContactID = "raw_contact_id"
	ColumnLookupKey    = "lookup"
)

const authority = "content://com.android.contacts"

type modeInfo struct {
	groupColumn string
	contentPath string
	photoPath   string
}

var modes = map[Mode]modeInfo{
	ModeUnified: {groupColumn: ColumnContactID, contentPath: "contacts", photoPath: "photo"},
	ModeSingle:  {groupColumn: ColumnRawContactID, contentPath: "raw_contacts", photoPath: "display_photo"},
}

// ParseMode parses a mode name. An empty name selects ModeUnified.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeUnified):
		return ModeUnified, nil
	case string(ModeSingle):
		return ModeSingle, nil
	default:
		return "", fmt.Errorf("contactkey: unknown mode %q", s)
	}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	_, ok := modes[m]
	return ok
}

// GroupingColumn returns the column whose value identifies which logical
// contact a data row belongs to.
func (m Mode) GroupingColumn() string {
	return modes[m].groupColumn
}

// Bundle carries the identity fields a contact may expose.
type Bundle struct {
	UnifiedContactID int64
	SingleContactID  int64
	LookupKey        string
	Identifier       string
}

// Keys is a validated, mode-locked contact address.
type Keys struct {
	mode       Mode
	identifier string
	unifiedID  int64
	singleID   int64
	lookupKey  string
}

// Of builds Keys for mode from value. Value is either a plain identifier
// (string, int, or int64), a Bundle, or a transfer map with any of the keys
// unifiedContactId, singleContactId, lookupKey, identifier, and
// otherKeys.lookupKey.
func Of(mode Mode, value any) (Keys, error) {
	if !mode.Valid() {
		return Keys{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidIdentifier, mode)
	}
	switch v := value.(type) {
	case Bundle:
		return fromBundle(mode, v)
	case *Bundle:
		if v == nil {
			return Keys{}, fmt.Errorf("%w: nil bundle", ErrInvalidIdentifier)
		}
		return fromBundle(mode, *v)
	case map[string]any:
		return fromBundle(mode, bundleFromMap(v))
	default:
		id, ok := identifierString(value)
		if !ok {
			return Keys{}, fmt.Errorf("%w: unsupported value %T", ErrInvalidIdentifier, value)
		}
		return fromBundle(mode, Bundle{Identifier: id})
	}
}

func fromBundle(mode Mode, b Bundle) (Keys, error) {
	k := Keys{mode: mode}
	bare := strings.TrimSpace(b.Identifier)
	bareID, bareNumeric := parseID(bare)

	switch mode {
	case ModeUnified:
		k.lookupKey = strings.TrimSpace(b.LookupKey)
		k.unifiedID = b.UnifiedContactID
		if k.unifiedID <= 0 && bareNumeric {
			k.unifiedID = bareID
		}
		switch {
		case k.lookupKey != "":
			k.identifier = k.lookupKey
		case k.unifiedID > 0:
			k.identifier = strconv.FormatInt(k.unifiedID, 10)
		case bare != "":
			k.identifier = bare
		default:
			return Keys{}, fmt.Errorf("%w: unified mode needs a lookup key, contact id, or identifier", ErrInvalidIdentifier)
		}
	case ModeSingle:
		k.singleID = b.SingleContactID
		if k.singleID <= 0 && bareNumeric {
			k.singleID = bareID
		}
		if k.singleID <= 0 {
			return Keys{}, fmt.Errorf("%w: single mode needs a numeric raw contact id", ErrInvalidIdentifier)
		}
		k.identifier = strconv.FormatInt(k.singleID, 10)
	}
	return k, nil
}

// Mode returns the addressing mode.
func (k Keys) Mode() Mode { return k.mode }

// Identifier returns the mode's native identifier.
func (k Keys) Identifier() string { return k.identifier }

// LookupKey returns the lookup key, if known.
func (k Keys) LookupKey() string { return k.lookupKey }

// UnifiedContactID returns the aggregated contact id, or 0.
func (k Keys) UnifiedContactID() int64 { return k.unifiedID }

// SingleContactID returns the raw contact id, or 0.
func (k Keys) SingleContactID() int64 { return k.singleID }

// Query returns a predicate template with exactly one placeholder and its
// parameter.
func (k Keys) Query() (string, []any) {
	switch k.mode {
	case ModeUnified:
		if k.lookupKey != "" {
			return ColumnLookupKey + " = ?", []any{k.lookupKey}
		}
		return ColumnContactID + " = ?", []any{k.unifiedID}
	case ModeSingle:
		return ColumnRawContactID + " = ?", []any{k.singleID}
	}
	return "0 = ?", []any{1}
}

// CheckValid returns k when it can address a contact, ErrInvalidKeys
// otherwise. It is used before any write or photo operation.
func (k Keys) CheckValid() (Keys, error) {
	if strings.TrimSpace(k.identifier) == "" {
		return Keys{}, fmt.Errorf("%w: empty identifier", ErrInvalidKeys)
	}
	switch k.mode {
	case ModeUnified:
		if k.lookupKey == "" && k.unifiedID <= 0 {
			return Keys{}, fmt.Errorf("%w: unified key %q has neither lookup key nor contact id", ErrInvalidKeys, k.identifier)
		}
	case ModeSingle:
		if k.singleID <= 0 {
			return Keys{}, fmt.Errorf("%w: single key %q has no raw contact id", ErrInvalidKeys, k.identifier)
		}
	default:
		return Keys{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidKeys, k.mode)
	}
	return k, nil
}

// ContentURI returns the content address of the contact.
func (k Keys) ContentURI() string {
	info := modes[k.mode]
	if k.mode == ModeUnified && k.lookupKey != "" {
		uri := authority + "/contacts/lookup/" + url.PathEscape(k.lookupKey)
		if k.unifiedID > 0 {
			uri += "/" + strconv.FormatInt(k.unifiedID, 10)
		}
		return uri
	}
	return authority + "/" + info.contentPath + "/" + url.PathEscape(k.identifier)
}

// PhotoURI returns the photo resource address of the contact.
func (k Keys) PhotoURI() string {
	return k.ContentURI() + "/" + modes[k.mode].photoPath
}

// String implements fmt.Stringer.
func (k Keys) String() string {
	return string(k.mode) + ":" + k.identifier
}

func bundleFromMap(m map[string]any) Bundle {
	var b Bundle
	if id, ok := identifierString(m["identifier"]); ok {
		b.Identifier = id
	}
	if s, ok := identifierString(m["unifiedContactId"]); ok {
		b.UnifiedContactID, _ = parseID(s)
	}
	if s, ok := identifierString(m["singleContactId"]); ok {
		b.SingleContactID, _ = parseID(s)
	}
	if s, ok := m["lookupKey"].(string); ok {
		b.LookupKey = s
	}
	if other, ok := m["otherKeys"].(map[string]any); ok && b.LookupKey == "" {
		if s, ok := other["lookupKey"].(string); ok {
			b.LookupKey = s
		}
	}
	return b
}

func identifierString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, strings.TrimSpace(t) != ""
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		if t != float64(int64(t)) {
			return "", false
		}
		return strconv.FormatInt(int64(t), 10), true
	default:
		return "", false
	}
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
