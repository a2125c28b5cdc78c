// Package render turns a status into the payload pushed to live channels and
// cached for feed readers.
package render

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/Luismorlan/feedcast/model"
	"github.com/pkg/errors"
)

// Renderer renders a status payload. Dispatch calls it once per status.
type Renderer interface {
	Render(status *model.Status) ([]byte, error)
}

type accountPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Acct     string `json:"acct"`
}

type tagPayload struct {
	Name string `json:"name"`
}

type mentionPayload struct {
	ID string `json:"id"`
}

type statusPayload struct {
	ID                 string           `json:"id"`
	CreatedAt          time.Time        `json:"created_at"`
	EditedAt           *time.Time       `json:"edited_at"`
	Account            accountPayload   `json:"account"`
	Visibility         string           `json:"visibility"`
	Searchability      string           `json:"searchability"`
	SpoilerText        string           `json:"spoiler_text"`
	Content            string           `json:"content"`
	InReplyToID        *string          `json:"in_reply_to_id"`
	InReplyToAccountID *string          `json:"in_reply_to_account_id"`
	ReblogOfID         *string          `json:"reblog_of_id"`
	WithMedia          bool             `json:"with_media"`
	Tags               []tagPayload     `json:"tags"`
	Mentions           []mentionPayload `json:"mentions"`
}

// JSONRenderer renders the REST-style JSON representation. Ids are strings so
// that clients without 64-bit integers read them intact.
type JSONRenderer struct {
	LocalDomain string
}

func NewJSONRenderer(localDomain string) *JSONRenderer {
	return &JSONRenderer{LocalDomain: localDomain}
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}

func optionalID(id *int64) *string {
	if id == nil {
		return nil
	}
	s := idString(*id)
	return &s
}

func (r *JSONRenderer) Render(status *model.Status) ([]byte, error) {
	if status.Visibility == nil {
		return nil, errors.Errorf("status %d has no visibility", status.ID)
	}
	acct := status.Account.Username
	if !status.Account.IsLocal() {
		acct += "@" + status.Account.DomainOr(r.LocalDomain)
	}

	p := statusPayload{
		ID:        idString(status.ID),
		CreatedAt: status.CreatedAt.UTC(),
		EditedAt:  status.EditedAt,
		Account: accountPayload{
			ID:       idString(status.AccountID),
			Username: status.Account.Username,
			Acct:     acct,
		},
		Visibility:         status.Visibility.String(),
		Searchability:      status.EffectiveSearchability().String(),
		SpoilerText:        status.SpoilerText,
		Content:            status.Text,
		InReplyToID:        optionalID(status.InReplyToID),
		InReplyToAccountID: optionalID(status.InReplyToAccountID),
		ReblogOfID:         optionalID(status.ReblogOfID),
		WithMedia:          status.WithMedia,
		Tags:               []tagPayload{},
		Mentions:           []mentionPayload{},
	}
	for _, name := range status.TagNames() {
		p.Tags = append(p.Tags, tagPayload{Name: name})
	}
	for _, m := range status.Mentions {
		p.Mentions = append(p.Mentions, mentionPayload{ID: idString(m.AccountID)})
	}

	b, err := json.Marshal(p)
	return b, errors.Wrapf(err, "render status %d", status.ID)
}
