// Package contactbridge is a lightweight index for the subpackages in this
// module.
//
// This root package is documentation-only. Import specific subpackages to use
// concrete helpers.
//
// Available subpackages:
//   - github.com/spachava753/contactbridge/contacts
//     Aggregation of contact data rows into contacts, and the transfer map form.
//   - github.com/spachava753/contactbridge/contactkey
//     Unified and single contact addressing, query predicates, content URIs.
//   - github.com/spachava753/contactbridge/label
//     Platform type codes and free-text labels to lowercase labels and back.
//   - github.com/spachava753/contactbridge/datecomp
//     Partial dates (year, month, day) parsed from loosely formatted strings.
//   - github.com/spachava753/contactbridge/store
//     Sqlite contact store holding the platform data rows.
//   - github.com/spachava753/contactbridge/bridge
//     Named method calls over the store, including a JSON line server.
//   - github.com/spachava753/contactbridge/config
//     YAML configuration with environment overrides.
//   - github.com/spachava753/contactbridge/logging
//     Zap logger construction and value redaction.
//
// Discovery workflow for agents:
//   - Run: go doc github.com/spachava753/contactbridge
//   - Then drill in with:
//     go doc github.com/spachava753/contactbridge/contacts
//     go doc github.com/spachava753/contactbridge/store
//     go doc github.com/spachava753/contactbridge/bridge
package contactbridge
