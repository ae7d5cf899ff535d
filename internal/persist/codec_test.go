package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtodo/internal/service"
)

func TestEncodeListsKeepsOrder(t *testing.T) {
	lists := []service.NamedList{
		{Name: "Personal", Items: []service.Item{{Text: "buy milk"}}},
		{Name: "Work", Items: nil},
		{Name: "Alpha", Items: []service.Item{{Text: "ship", Done: true}}},
	}

	body, err := EncodeLists(lists)
	require.NoError(t, err)
	assert.Equal(t,
		`{"Personal":[{"text":"buy milk","done":false}],"Work":[],"Alpha":[{"text":"ship","done":true}]}`,
		string(body))
}

func TestDecodeListsRoundTrip(t *testing.T) {
	lists := []service.NamedList{
		{Name: "Zeta", Items: []service.Item{{Text: "a"}, {Text: "b", Done: true}}},
		{Name: "Personal", Items: []service.Item{}},
	}
	body, err := EncodeLists(lists)
	require.NoError(t, err)

	got, err := DecodeLists(body)
	require.NoError(t, err)
	assert.Equal(t, lists, got)
}

func TestDecodeListsLegacyShape(t *testing.T) {
	got, err := DecodeLists([]byte(`{"Personal":[{"task":"buy milk","completed":true},{"task":"eggs","completed":false}]}`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []service.Item{{Text: "buy milk", Done: true}, {Text: "eggs"}}, got[0].Items)
}

func TestDecodeListsDuplicateKey(t *testing.T) {
	got, err := DecodeLists([]byte(`{"A":[{"text":"1"}],"B":[],"A":[{"text":"2"}]}`))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, []service.Item{{Text: "2"}}, got[0].Items)
}

func TestDecodeListsRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		``,
		`[]`,
		`{"A":{}}`,
		`{"A":[]} {}`,
		`{"A":[`,
	} {
		_, err := DecodeLists([]byte(in))
		assert.Error(t, err, "input %q", in)
	}
}
