package antenna

import (
	"time"

	"github.com/Luismorlan/feedcast/model"
	"github.com/lib/pq"
)

const localDomain = "local.example"

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func visPtr(v model.Visibility) *model.Visibility { return &v }

func activeOwner(id int64) *model.Account {
	last := now.Add(-time.Hour)
	return &model.Account{ID: id, LastActiveAt: &last}
}

func keywordAntenna(owner int64, keywords ...string) *model.Antenna {
	return &model.Antenna{
		ID:          100 + owner,
		AccountID:   owner,
		Available:   true,
		Keywords:    pq.StringArray(keywords),
		AnyKeywords: false,
		AnyDomains:  true,
		AnyAccounts: true,
		AnyTags:     true,
	}
}

func localStatus(text string) *model.Status {
	return &model.Status{
		ID:         1,
		AccountID:  1,
		Account:    model.Account{ID: 1},
		Visibility: visPtr(model.VisibilityPublic),
		Text:       text,
	}
}
