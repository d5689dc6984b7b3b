// Package label converts between platform type codes with free-text labels and
// the normalized lowercase labels used by the contact model.
//
// The platform stores the label of a phone number, email address, or event as
// a closed enumeration of integer codes plus an escape hatch: when the code is
// the kind's custom sentinel, the free-text label column carries the label.
//
// Decode and Encode never fail. Unknown codes degrade to the free-text label or
// Other, and unknown labels are written as custom free text.
package label

import "strings"

// Other is the label used when neither a known code nor free text is available.
const Other = "other"

// Kind identifies a multi-valued field kind with its own code table.
type Kind int

const (
	// Phone is the phone number kind.
	Phone Kind = iota + 1
	// Email is the email address kind.
	Email
	// Event is the dated event kind (birthday, anniversary).
	Event
)

// Phone type codes.
const (
	PhoneTypeCustom      = 0
	PhoneTypeHome        = 1
	PhoneTypeMobile      = 2
	PhoneTypeWork        = 3
	PhoneTypeFaxWork     = 4
	PhoneTypeFaxHome     = 5
	PhoneTypePager       = 6
	PhoneTypeCompanyMain = 10
	PhoneTypeMain        = 12
)

// Email type codes.
const (
	EmailTypeCustom = 0
	EmailTypeHome   = 1
	EmailTypeWork   = 2
	EmailTypeMobile = 4
)

// Event type codes.
const (
	EventTypeCustom      = 0
	EventTypeAnniversary = 1
	EventTypeOther       = 2
	EventTypeBirthday    = 3
)

type entry struct {
	code  int
	label string
}

type table struct {
	name    string
	custom  int
	entries []entry
}

var tables = map[Kind]table{
	Phone: {
		name:   "phone",
		custom: PhoneTypeCustom,
		entries: []entry{
			{PhoneTypeHome, "home"},
			{PhoneTypeWork, "work"},
			{PhoneTypeMobile, "mobile"},
			{PhoneTypeFaxWork, "fax work"},
			{PhoneTypeFaxHome, "fax home"},
			{PhoneTypeMain, "main"},
			{PhoneTypeCompanyMain, "company"},
			{PhoneTypePager, "pager"},
		},
	},
	Email: {
		name:   "email",
		custom: EmailTypeCustom,
		entries: []entry{
			{EmailTypeHome, "home"},
			{EmailTypeWork, "work"},
			{EmailTypeMobile, "mobile"},
		},
	},
	Event: {
		name:   "event",
		custom: EventTypeCustom,
		entries: []entry{
			{EventTypeAnniversary, "anniversary"},
			{EventTypeOther, "other"},
			{EventTypeBirthday, "birthday"},
		},
	},
}

// String returns the kind name.
func (k Kind) String() string {
	if t, ok := tables[k]; ok {
		return t.name
	}
	return "unknown"
}

// CustomCode returns the sentinel code meaning "use the free-text label".
func (k Kind) CustomCode() int {
	return tables[k].custom
}

// Labels returns the enumerated labels of the kind in table order.
func (k Kind) Labels() []string {
	t := tables[k]
	labels := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		labels = append(labels, e.label)
	}
	return labels
}

// Encoded is the column pair written back to the platform store. Label is only
// set when Type is the kind's custom sentinel.
type Encoded struct {
	Type  int
	Label string
}

// Decode returns the normalized label for a type code and free-text label.
func Decode(kind Kind, code int, freeText string) string {
	t := tables[kind]
	if code != t.custom {
		for _, e := range t.entries {
			if e.code == code {
				return e.label
			}
		}
	}
	if text := strings.TrimSpace(freeText); text != "" {
		return strings.ToLower(text)
	}
	return Other
}

// Encode returns the column pair for a label. The second result is false when
// label is blank, in which case nothing should be written.
func Encode(kind Kind, label string) (Encoded, bool) {
	if strings.TrimSpace(label) == "" {
		return Encoded{}, false
	}
	t := tables[kind]
	normalized := strings.ToLower(strings.TrimSpace(label))
	for _, e := range t.entries {
		if e.label == normalized {
			return Encoded{Type: e.code}, true
		}
	}
	return Encoded{Type: t.custom, Label: label}, true
}
