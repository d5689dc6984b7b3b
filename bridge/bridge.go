// Package bridge exposes contact operations as named method calls with
// transfer-map arguments and results, the shape used across a process or
// language boundary.
//
// Methods:
//
//   - getContacts: {mode, query, sortBy, sortOrder, limit, offset, withAvatars, highRes} -> []map
//   - getContact: {mode, identifier | keys..., withAvatars, highRes} -> map
//   - getTotalContacts: {mode, query} -> int
//   - saveContact: {mode, contact} -> map
//   - deleteContact: {mode, identifier | keys...} -> true
//   - getContactImage: {mode, identifier | keys..., highRes} -> []byte or nil
//   - parseDate: {value} -> {year, month, day}
//
// Every argument is optional unless the method needs it to address a contact.
// Errors are *contacts.Error values, or errors contacts.Code can classify.
package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spachava753/contactbridge/contactkey"
	"github.com/spachava753/contactbridge/contacts"
	"github.com/spachava753/contactbridge/datecomp"
	"github.com/spachava753/contactbridge/logging"
	"github.com/spachava753/contactbridge/store"
)

// Method names.
const (
	MethodGetContacts      = "getContacts"
	MethodGetContact       = "getContact"
	MethodGetTotalContacts = "getTotalContacts"
	MethodSaveContact      = "saveContact"
	MethodDeleteContact    = "deleteContact"
	MethodGetContactImage  = "getContactImage"
	MethodParseDate        = "parseDate"
)

const avatarConcurrency = 4

// Backend is the contact store the bridge reads and writes.
type Backend interface {
	QueryContacts(ctx context.Context, mode contactkey.Mode, q store.Query) (contacts.Rows, error)
	FindContactByID(ctx context.Context, keys contactkey.Keys) (contacts.Rows, error)
	Count(ctx context.Context, mode contactkey.Mode, search string) (int, error)
	Avatar(ctx context.Context, keys contactkey.Keys, highRes bool) ([]byte, error)
	Save(ctx context.Context, c contacts.Contact) (contactkey.Keys, error)
	Delete(ctx context.Context, keys contactkey.Keys) error
}

// Options configures a Bridge.
type Options struct {
	// Mode is used when a call carries no mode argument.
	Mode contactkey.Mode
	// PageLimit is used when getContacts carries no limit argument.
	PageLimit int
	// WithAvatars and HighRes are the defaults for the matching arguments.
	WithAvatars bool
	HighRes     bool
	Logger      *zap.Logger
}

// Call is one method invocation.
type Call struct {
	Method string
	Args   map[string]any
}

// Bridge dispatches calls to a Backend.
type Bridge struct {
	backend Backend
	opts    Options
	log     *zap.Logger
}

// New returns a Bridge over backend.
func New(backend Backend, opts Options) *Bridge {
	if !opts.Mode.Valid() {
		opts.Mode = contactkey.ModeUnified
	}
	if opts.PageLimit < 1 {
		opts.PageLimit = 50
	}
	return &Bridge{
		backend: backend,
		opts:    opts,
		log:     logging.OrNop(opts.Logger).With(zap.String("component", "bridge")),
	}
}

// Handle runs call and returns its transfer result.
func (b *Bridge) Handle(ctx context.Context, call Call) (any, error) {
	log := b.log.With(zap.String("call_id", uuid.NewString()), zap.String("method", call.Method))
	start := time.Now()
	log.Debug("call started")

	result, err := b.dispatch(ctx, call)
	if err != nil {
		log.Warn("call failed",
			zap.String("code", string(contacts.Code(err))),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}
	log.Debug("call finished", zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (b *Bridge) dispatch(ctx context.Context, call Call) (any, error) {
	a := args{m: call.Args}
	switch call.Method {
	case MethodGetContacts:
		return b.getContacts(ctx, a)
	case MethodGetContact:
		return b.getContact(ctx, a)
	case MethodGetTotalContacts:
		return b.getTotalContacts(ctx, a)
	case MethodSaveContact:
		return b.saveContact(ctx, a)
	case MethodDeleteContact:
		return b.deleteContact(ctx, a)
	case MethodGetContactImage:
		return b.getContactImage(ctx, a)
	case MethodParseDate:
		return parseDate(a)
	default:
		return nil, &contacts.Error{Code: contacts.ErrorCodeUnsupported, Message: fmt.Sprintf("unknown method %q", call.Method)}
	}
}

func (b *Bridge) getContacts(ctx context.Context, a args) (any, error) {
	mode, err := b.mode(a)
	if err != nil {
		return nil, err
	}
	q := store.Query{
		Search: a.string("query"),
		Sort: store.Sort{
			By:    store.SortField(a.string("sortBy")),
			Order: store.SortOrder(a.string("sortOrder")),
		},
	}
	limit := a.int("limit", b.opts.PageLimit)
	offset := a.int("offset", 0)
	withAvatars := a.bool("withAvatars", b.opts.WithAvatars)
	highRes := a.bool("highRes", b.opts.HighRes)
	if err := a.err; err != nil {
		return nil, err
	}

	rows, err := b.backend.QueryContacts(ctx, mode, q)
	if err != nil {
		return nil, err
	}
	list, err := contacts.Aggregate(rows, mode, limit, offset)
	if err != nil {
		return nil, err
	}
	if withAvatars {
		if err := b.attachAvatars(ctx, list, highRes); err != nil {
			return nil, err
		}
	}
	out := make([]map[string]any, 0, len(list))
	for _, c := range list {
		out = append(out, contacts.ToMap(c))
	}
	return out, nil
}

func (b *Bridge) getContact(ctx context.Context, a args) (any, error) {
	keys, err := b.keys(a)
	if err != nil {
		return nil, err
	}
	withAvatars := a.bool("withAvatars", b.opts.WithAvatars)
	highRes := a.bool("highRes", b.opts.HighRes)
	if a.err != nil {
		return nil, a.err
	}
	c, err := b.find(ctx, keys)
	if err != nil {
		return nil, err
	}
	if withAvatars {
		b.attachAvatar(ctx, &c, highRes)
	}
	return contacts.ToMap(c), nil
}

func (b *Bridge) getTotalContacts(ctx context.Context, a args) (any, error) {
	mode, err := b.mode(a)
	if err != nil {
		return nil, err
	}
	search := a.string("query")
	if a.err != nil {
		return nil, a.err
	}
	return b.backend.Count(ctx, mode, search)
}

func (b *Bridge) saveContact(ctx context.Context, a args) (any, error) {
	mode, err := b.mode(a)
	if err != nil {
		return nil, err
	}
	m := a.object("contact")
	if a.err != nil {
		return nil, a.err
	}
	if m == nil {
		return nil, &contacts.Error{Code: contacts.ErrorCodeValidation, Message: "missing contact argument"}
	}
	c, err := contacts.FromMap(mode, m)
	if err != nil {
		return nil, err
	}
	keys, err := b.backend.Save(ctx, c)
	if err != nil {
		return nil, err
	}
	saved, err := b.find(ctx, keys)
	if err != nil {
		return nil, err
	}
	saved.Avatar = c.Avatar
	return contacts.ToMap(saved), nil
}

func (b *Bridge) deleteContact(ctx context.Context, a args) (any, error) {
	keys, err := b.keys(a)
	if err != nil {
		return nil, err
	}
	if err := b.backend.Delete(ctx, keys); err != nil {
		return nil, err
	}
	return true, nil
}

func (b *Bridge) getContactImage(ctx context.Context, a args) (any, error) {
	keys, err := b.keys(a)
	if err != nil {
		return nil, err
	}
	highRes := a.bool("highRes", b.opts.HighRes)
	if a.err != nil {
		return nil, a.err
	}
	photo, err := b.backend.Avatar(ctx, keys, highRes)
	if err != nil {
		return nil, err
	}
	if len(photo) == 0 {
		return nil, nil
	}
	return photo, nil
}

func parseDate(a args) (any, error) {
	value, ok := a.m["value"]
	if !ok || value == nil {
		return nil, &contacts.Error{Code: contacts.ErrorCodeValidation, Message: "missing value argument"}
	}
	return datecomp.Decode(value).ToMap(), nil
}

func (b *Bridge) find(ctx context.Context, keys contactkey.Keys) (contacts.Contact, error) {
	rows, err := b.backend.FindContactByID(ctx, keys)
	if err != nil {
		return contacts.Contact{}, err
	}
	list, err := contacts.Aggregate(rows, keys.Mode(), 1, 0)
	if err != nil {
		return contacts.Contact{}, err
	}
	if len(list) == 0 {
		return contacts.Contact{}, &contacts.Error{Code: contacts.ErrorCodeNotFound, Message: "no contact for " + keys.String()}
	}
	return list[0], nil
}

// attachAvatars loads the photos of a page of contacts, a few at a time.
func (b *Bridge) attachAvatars(ctx context.Context, list []contacts.Contact, highRes bool) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(avatarConcurrency)
	for i := range list {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b.attachAvatar(gctx, &list[i], highRes)
			return nil
		})
	}
	return g.Wait()
}

// attachAvatar loads the contact photo. A failed load leaves the contact
// without one.
func (b *Bridge) attachAvatar(ctx context.Context, c *contacts.Contact, highRes bool) {
	keys, err := c.Keys()
	if err != nil {
		return
	}
	photo, err := b.backend.Avatar(ctx, keys, highRes)
	if err != nil {
		b.log.Warn("loading avatar failed", zap.String("keys", keys.String()), zap.Error(err))
		return
	}
	c.Avatar = photo
}

func (b *Bridge) mode(a args) (contactkey.Mode, error) {
	raw := a.string("mode")
	if a.err != nil {
		return "", a.err
	}
	if raw == "" {
		return b.opts.Mode, nil
	}
	mode, err := contactkey.ParseMode(raw)
	if err != nil {
		return "", &contacts.Error{Code: contacts.ErrorCodeValidation, Message: fmt.Sprintf("unknown mode %q", raw), Err: err}
	}
	return mode, nil
}

// keys resolves the addressed contact from a nested contact map or from the
// call arguments themselves.
func (b *Bridge) keys(a args) (contactkey.Keys, error) {
	mode, err := b.mode(a)
	if err != nil {
		return contactkey.Keys{}, err
	}
	var value any = a.m
	if nested := a.object("contact"); nested != nil {
		value = nested
	}
	if a.err != nil {
		return contactkey.Keys{}, a.err
	}
	keys, err := contactkey.Of(mode, value)
	if err != nil {
		return contactkey.Keys{}, err
	}
	return keys.CheckValid()
}
