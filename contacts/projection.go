package contacts

import "github.com/spachava753/contactbridge/contactkey"

// Data view columns.
const (
	ColumnID           = "_id"
	ColumnContactID    = contactkey.ColumnContactID
	ColumnRawContactID = contactkey.ColumnRawContactID
	ColumnLookupKey    = contactkey.ColumnLookupKey
	ColumnDisplayName  = "display_name"
	ColumnMimeType     = "mimetype"
	ColumnIsPrimary    = "is_primary"
	ColumnData1        = "data1"
	ColumnData2        = "data2"
	ColumnData3        = "data3"
	ColumnData4        = "data4"
	ColumnData5        = "data5"
	ColumnData6        = "data6"
	ColumnData15       = "data15"
)

// Mime types of data rows.
const (
	MimeTypeName  = "vnd.android.cursor.item/name"
	MimeTypePhone = "vnd.android.cursor.item/phone_v2"
	MimeTypeEmail = "vnd.android.cursor.item/email_v2"
	MimeTypeEvent = "vnd.android.cursor.item/contact_event"
	MimeTypePhoto = "vnd.android.cursor.item/photo"
)

// Structured name columns.
const (
	ColumnNameDisplay = ColumnData1
	ColumnGivenName   = ColumnData2
	ColumnFamilyName  = ColumnData3
	ColumnPrefix      = ColumnData4
	ColumnMiddleName  = ColumnData5
	ColumnSuffix      = ColumnData6
)

// Phone, email, and event columns share the value/type/label layout.
const (
	ColumnPhoneNumber  = ColumnData1
	ColumnPhoneType    = ColumnData2
	ColumnPhoneLabel   = ColumnData3
	ColumnEmailAddress = ColumnData1
	ColumnEmailType    = ColumnData2
	ColumnEmailLabel   = ColumnData3
	ColumnEventDate    = ColumnData1
	ColumnEventType    = ColumnData2
	ColumnEventLabel   = ColumnData3
	ColumnEventYear    = ColumnData4
	ColumnEventMonth   = ColumnData5
	ColumnEventDay     = ColumnData6
	ColumnPhotoData    = ColumnData15
)

// DataMimeTypes are the row kinds Aggregate consumes.
var DataMimeTypes = []string{MimeTypeName, MimeTypePhone, MimeTypeEmail, MimeTypeEvent}
