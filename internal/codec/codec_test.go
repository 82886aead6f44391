package codec_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videosplus/storefront/internal/codec"
	"videosplus/storefront/internal/domain"
)

func fullDocument() *domain.Document {
	cfg := domain.DefaultSiteConfig(domain.WasabiConfig{
		AccessKey: "AK",
		SecretKey: "SK",
		Region:    "us-east-1",
		Bucket:    "media",
		Endpoint:  "https://s3.wasabisys.com",
	})
	cfg.Crypto = []string{"btc:bc1qexample", "eth:0xexample"}
	cfg.EmailSecure = true

	return &domain.Document{
		Videos: []domain.Video{
			{ID: "v1", Title: "A", Description: "d", Price: 9.99, IsActive: true, Views: 3, CreatedAt: "2024-01-01T00:00:00.000Z"},
			{ID: "v2", Title: "B", Description: "e", Price: 0, Duration: "12:00", VideoFileID: "videos/1.mp4", ThumbnailFileID: "thumbnails/1.jpg", ProductLink: "https://example.com/p", CreatedAt: "2024-01-02T00:00:00.000Z"},
		},
		Users: []domain.User{
			{ID: "u1", Email: "a@example.com", Name: "A", Password: "hash", Role: domain.RoleAdmin, CreatedAt: "2024-01-01T00:00:00.000Z"},
		},
		Sessions: []domain.Session{
			{ID: "s1", Token: "tok", UserID: "u1", IsActive: true, CreatedAt: "2024-01-01T00:00:00.000Z", ExpiresAt: "2024-01-02T00:00:00.000Z"},
		},
		SiteConfig: &cfg,
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		doc  *domain.Document
	}{
		{name: "empty collections", doc: domain.NewDocument()},
		{name: "seeded defaults", doc: domain.Defaults{Admin: &domain.User{ID: "admin-001", Email: "admin@example.com"}}.NewDocument("2024-01-01T00:00:00.000Z")},
		{name: "full document", doc: fullDocument()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := codec.Encode(tt.doc)
			require.NoError(t, err)

			decoded, err := codec.Decode(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.doc, decoded)
		})
	}
}

func TestRoundTripPreservesOrder(t *testing.T) {
	doc := domain.NewDocument()
	for _, id := range []string{"c", "a", "b"} {
		doc.Videos = append(doc.Videos, domain.Video{ID: id})
	}

	raw, err := codec.Encode(doc)
	require.NoError(t, err)
	decoded, err := codec.Decode(raw)
	require.NoError(t, err)

	ids := make([]string, 0, len(decoded.Videos))
	for _, v := range decoded.Videos {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestEncodeWritesArraysForNilCollections(t *testing.T) {
	raw, err := codec.Encode(&domain.Document{})
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	assert.Equal(t, []any{}, generic["videos"])
	assert.Equal(t, []any{}, generic["users"])
	assert.Equal(t, []any{}, generic["sessions"])
}

func TestEncodeDoesNotMutateInput(t *testing.T) {
	cfg := domain.SiteConfig{SiteName: "x"}
	doc := &domain.Document{SiteConfig: &cfg}

	_, err := codec.Encode(doc)
	require.NoError(t, err)
	assert.Nil(t, doc.Videos)
	assert.Nil(t, cfg.Crypto)
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: "   "},
		{name: "not json", raw: "videos: []"},
		{name: "array at top level", raw: `[{"id":"v1"}]`},
		{name: "null", raw: "null"},
		{name: "string", raw: `"doc"`},
		{name: "truncated", raw: `{"videos": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := codec.Decode([]byte(tt.raw))
			assert.Nil(t, doc)

			var malformed *codec.MalformedDocumentError
			require.ErrorAs(t, err, &malformed)
			assert.NotEmpty(t, malformed.Reason)
		})
	}
}

func TestDecodeFillsMissingCollections(t *testing.T) {
	doc, err := codec.Decode([]byte(`{"videos": [{"id": "v1", "title": "A"}]}`))
	require.NoError(t, err)

	assert.Len(t, doc.Videos, 1)
	assert.NotNil(t, doc.Users)
	assert.NotNil(t, doc.Sessions)
	assert.Nil(t, doc.SiteConfig)
}

func TestDecodeKeepsDocumentOnTypeMismatch(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantVideos   []string
		wantSiteName string
		wantField    string
	}{
		{
			name:         "numeric duration",
			raw:          `{"videos":[{"id":"v1","title":"A","duration":125,"views":42}],"siteConfig":{"siteName":"Mine"}}`,
			wantVideos:   []string{"v1"},
			wantSiteName: "Mine",
		},
		{
			name:         "string where a number belongs",
			raw:          `{"videos":[{"id":"v1","views":"42"},{"id":"v2"}],"siteConfig":{"siteName":"Mine"}}`,
			wantVideos:   []string{"v1", "v2"},
			wantSiteName: "Mine",
			wantField:    "videos.views",
		},
		{
			name:         "collection of the wrong kind",
			raw:          `{"videos":"nope","siteConfig":{"siteName":"Mine"}}`,
			wantVideos:   []string{},
			wantSiteName: "Mine",
			wantField:    "videos",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, warnings, err := codec.DecodeWithWarnings([]byte(tt.raw))
			require.NoError(t, err)

			ids := []string{}
			for _, v := range doc.Videos {
				ids = append(ids, v.ID)
			}
			assert.Equal(t, tt.wantVideos, ids)
			require.NotNil(t, doc.SiteConfig)
			assert.Equal(t, tt.wantSiteName, doc.SiteConfig.SiteName)

			if tt.wantField == "" {
				assert.Empty(t, warnings)
				return
			}
			require.NotEmpty(t, warnings)
			assert.Equal(t, tt.wantField, warnings[0].Field)
		})
	}
}

func TestDecodeNumericDuration(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.Duration
	}{
		{name: "string", raw: `"12:30"`, want: "12:30"},
		{name: "integer", raw: `125`, want: "125"},
		{name: "fraction", raw: `90.5`, want: "90.5"},
		{name: "null", raw: `null`, want: ""},
		{name: "bool", raw: `true`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := codec.Decode([]byte(`{"videos":[{"id":"v1","duration":` + tt.raw + `}]}`))
			require.NoError(t, err)
			require.Len(t, doc.Videos, 1)
			assert.Equal(t, tt.want, doc.Videos[0].Duration)
		})
	}

	doc, err := codec.Decode([]byte(`{"videos":[{"id":"v1","duration":125}]}`))
	require.NoError(t, err)
	raw, err := codec.Encode(doc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"duration": "125"`, "rewritten as the string form")
}

func TestDecodeReportsUnknownField(t *testing.T) {
	doc, warnings, err := codec.DecodeWithWarnings([]byte(`{"videos":[{"id":"v1","legacyRating":5}]}`))
	require.NoError(t, err)
	require.Len(t, doc.Videos, 1)

	require.Len(t, warnings, 1)
	assert.Equal(t, "legacyRating", warnings[0].Field)
	assert.Contains(t, warnings[0].Message, "dropped")

	_, warnings, err = codec.DecodeWithWarnings([]byte(`{"videos":[{"id":"v1"}],"users":[],"sessions":[],"siteConfig":null}`))
	require.NoError(t, err)
	assert.Empty(t, warnings)
}
