package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Fixed record keys shared by every view.
const (
	TokenKey    = "fabfab_token"
	UserKey     = "fabfab_user"
	ServicesKey = "fabfab_services"
)

// Context is one browser's session record. It is created per request and
// passed explicitly to the views that read or write it.
type Context struct {
	store Store
	id    string
}

func NewContext(store Store, id string) *Context {
	return &Context{store: store, id: id}
}

func (c *Context) ID() string { return c.id }

// Load returns the stored token and the raw user record. Missing keys come
// back empty.
func (c *Context) Load(ctx context.Context) (string, json.RawMessage, error) {
	token, _, err := c.store.Get(ctx, c.id, TokenKey)
	if err != nil {
		return "", nil, fmt.Errorf("load token: %w", err)
	}
	user, ok, err := c.store.Get(ctx, c.id, UserKey)
	if err != nil {
		return "", nil, fmt.Errorf("load user: %w", err)
	}
	if !ok {
		return token, nil, nil
	}
	return token, json.RawMessage(user), nil
}

// Save overwrites both keys. A nil user is stored as JSON null.
func (c *Context) Save(ctx context.Context, token string, user json.RawMessage) error {
	if err := c.store.Set(ctx, c.id, TokenKey, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	value := "null"
	if len(user) > 0 {
		value = string(user)
	}
	if err := c.store.Set(ctx, c.id, UserKey, value); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Clear removes everything held for this session.
func (c *Context) Clear(ctx context.Context) error {
	return c.store.Delete(ctx, c.id)
}

type Profile struct {
	Name  string
	Phone string
	Email string
}

// Profile decodes the contact fields of the stored user record. A missing or
// unreadable record yields an empty profile.
func (c *Context) Profile(ctx context.Context) Profile {
	_, user, err := c.Load(ctx)
	if err != nil || len(user) == 0 {
		return Profile{}
	}
	return ProfileFromUser(user)
}

// ProfileFromUser tolerates non-string fields, which are ignored.
func ProfileFromUser(user json.RawMessage) Profile {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(user, &fields); err != nil {
		return Profile{}
	}
	return Profile{
		Name:  stringField(fields, "name"),
		Phone: stringField(fields, "phone"),
		Email: stringField(fields, "email"),
	}
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// LoadJSON decodes the value at key into v. It reports false when the key is
// absent.
func (c *Context) LoadJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := c.store.Get(ctx, c.id, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *Context) SaveJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.store.Set(ctx, c.id, key, string(b))
}
