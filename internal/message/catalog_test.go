package message

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/item-validation/internal/validation"
)

func newTestCatalog(t *testing.T, defaultLocale string) *Catalog {
	t.Helper()
	catalog, err := NewDefault(defaultLocale)
	require.NoError(t, err)
	return catalog
}

func TestCatalog_LookupUsesFirstMatchingCode(t *testing.T) {
	t.Parallel()

	catalog := newTestCatalog(t, "ko")

	tests := []struct {
		name   string
		codes  []string
		args   []any
		locale string
		want   string
	}{
		{
			name:   "most specific code wins",
			codes:  validation.ResolveFieldCodes("required", "item", "itemName", "string"),
			locale: "ko",
			want:   "상품 이름은 필수입니다.",
		},
		{
			name:   "falls through to generic code",
			codes:  validation.ResolveFieldCodes("required", "item", "price", "int"),
			locale: "ko",
			want:   "필수 값 입니다.",
		},
		{
			name:   "arguments are formatted as numbers",
			codes:  validation.ResolveFieldCodes("range", "item", "price", "int"),
			args:   []any{1000, 1000000},
			locale: "en",
			want:   "Price must be between 1,000 and 1,000,000.",
		},
		{
			name:   "object codes",
			codes:  validation.ResolveObjectCodes("totalPriceMin", "item"),
			args:   []any{10000, 1000},
			locale: "ko",
			want:   "가격 * 수량의 합은 10,000원 이상이어야 합니다. 현재 값 = 1,000",
		},
		{
			name:   "resolvable arguments are localized",
			codes:  validation.ResolveFieldCodes("typeMismatch", "item", "price", "int"),
			args:   []any{validation.Resolvable{Codes: []string{"item.price", "price"}, Default: "price"}},
			locale: "en",
			want:   "Price: please enter a number.",
		},
		{
			name:   "unknown locale falls back to default",
			codes:  []string{"required"},
			locale: "fr",
			want:   "필수 값 입니다.",
		},
		{
			name:   "regional tag maps to base language",
			codes:  []string{"required"},
			locale: "en-US",
			want:   "This value is required.",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := catalog.Lookup(tc.codes, tc.args, tc.locale)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCatalog_LookupMissingArgumentsArePadded(t *testing.T) {
	t.Parallel()

	catalog := newTestCatalog(t, "en")
	got, err := catalog.Lookup([]string{"range"}, []any{5}, "en")
	require.NoError(t, err)
	assert.Equal(t, "Must be between 5 and .", got)
}

func TestCatalog_LookupNoMessage(t *testing.T) {
	t.Parallel()

	catalog := newTestCatalog(t, "en")
	_, err := catalog.Lookup([]string{"unknown.item", "unknown"}, nil, "en")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoMessage))
}

func TestCatalog_MessageFallbacks(t *testing.T) {
	t.Parallel()

	catalog := newTestCatalog(t, "en")
	set := validation.NewFailureSet(struct{}{}, "item")
	set.AddObjectFailure([]string{"nothing.here"}, nil, "literal fallback")
	set.AddObjectFailure([]string{"nothing.here", "still.nothing"}, nil, "")
	set.Reject("totalPriceMin", []any{10000, 500}, "ignored")

	failures := set.ObjectFailures()
	assert.Equal(t, "literal fallback", catalog.Message(failures[0], "en"))
	assert.Equal(t, "still.nothing", catalog.Message(failures[1], "en"))
	assert.Equal(t, "Price * quantity must be at least 10,000. Current value = 500", catalog.Message(failures[2], "en"))
	assert.Empty(t, catalog.Message(nil, "en"))
}

func TestCatalog_Text(t *testing.T) {
	t.Parallel()

	catalog := newTestCatalog(t, "ko")
	assert.Equal(t, "상품 목록", catalog.Text("page.items", "ko"))
	assert.Equal(t, "Items", catalog.Text("page.items", "en"))
	assert.Equal(t, "missing.code", catalog.Text("missing.code", "en"))
	assert.Equal(t, "Must be at most 9,999.", catalog.Text("max", "en", 9999))
}

func TestCatalog_Negotiate(t *testing.T) {
	t.Parallel()

	catalog := newTestCatalog(t, "ko")
	assert.Equal(t, "en", catalog.Negotiate("fr-CH, en-US;q=0.8, ko;q=0.5"))
	assert.Equal(t, "ko", catalog.Negotiate("ko-KR"))
	assert.Equal(t, "ko", catalog.Negotiate(""))
	assert.Equal(t, "ko", catalog.Negotiate("de"))
	assert.Equal(t, "ko", catalog.DefaultLocale())
}

func TestNew_RejectsUnsupportedLocale(t *testing.T) {
	t.Parallel()

	_, err := New("fr")
	assert.ErrorIs(t, err, ErrUnsupportedLocale)

	_, err = New("en", Bundle{Locale: "de", Messages: map[string]string{"a": "b"}})
	assert.ErrorIs(t, err, ErrUnsupportedLocale)
}

func TestNew_LaterBundlesOverride(t *testing.T) {
	t.Parallel()

	bundles, err := DefaultBundles()
	require.NoError(t, err)
	override := Bundle{Locale: "en", Messages: map[string]string{"required": "Please fill in this field."}}

	catalog, err := New("en", append(bundles, override)...)
	require.NoError(t, err)

	got, err := catalog.Lookup([]string{"required"}, nil, "en")
	require.NoError(t, err)
	assert.Equal(t, "Please fill in this field.", got)
}

func TestParseBundle(t *testing.T) {
	t.Parallel()

	t.Run("valid bundle", func(t *testing.T) {
		t.Parallel()
		bundle, err := ParseBundle([]byte("locale: en\nmessages:\n  max: 'at most {0}'\n"))
		require.NoError(t, err)
		assert.Equal(t, "en", bundle.Locale)
		assert.Equal(t, "at most {0}", bundle.Messages["max"])
	})

	t.Run("missing locale", func(t *testing.T) {
		t.Parallel()
		_, err := ParseBundle([]byte("messages:\n  max: x\n"))
		assert.ErrorIs(t, err, ErrMissingLocale)
	})

	t.Run("placeholders out of order", func(t *testing.T) {
		t.Parallel()
		_, err := ParseBundle([]byte("locale: en\nmessages:\n  range: '{1} to {0}'\n"))
		assert.ErrorIs(t, err, ErrPlaceholderOrder)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()
		_, err := ParseBundle([]byte("locale: [en"))
		assert.Error(t, err)
	})
}

func TestLoadBundles(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"b/errors.ko.yaml": {Data: []byte("locale: ko\nmessages:\n  required: 필수\n")},
		"b/errors.en.yaml": {Data: []byte("locale: en\nmessages:\n  required: required\n")},
		"b/readme.txt":     {Data: []byte("ignored")},
	}

	bundles, err := LoadBundles(fsys, "b/*.yaml")
	require.NoError(t, err)
	require.Len(t, bundles, 2)
	assert.Equal(t, "en", bundles[0].Locale)
	assert.Equal(t, "ko", bundles[1].Locale)
}

func TestLoadBundleFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "override.yaml")
	require.NoError(t, os.WriteFile(path, []byte("locale: ko\nmessages:\n  required: 입력해주세요.\n"), 0o600))

	bundle, err := LoadBundleFile(path)
	require.NoError(t, err)
	assert.Equal(t, "입력해주세요.", bundle.Messages["required"])

	_, err = LoadBundleFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
