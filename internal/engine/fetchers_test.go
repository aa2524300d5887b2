package engine

import (
	"context"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/nactl/internal/client"
	"github.com/dm/nactl/internal/model"
)

// threePages serves jobs as page A ("" cursor) -> B -> C -> end.
func threePages(failOn string, failKind client.ErrorKind, failTimes int) (func(context.Context, int, string) (client.Page[client.Job], error), *[]string) {
	pages := map[string]client.Page[client.Job]{
		"":  {Items: []client.Job{{ID: 1, Command: "a1"}, {ID: 2, Command: "a2"}}, Next: "B"},
		"B": {Items: []client.Job{{ID: 3, Command: "b1"}}, Next: "C"},
		"C": {Items: []client.Job{{ID: 4, Command: "c1"}, {ID: 5, Command: "c2"}}},
	}
	var requested []string
	failed := 0
	return func(_ context.Context, _ int, cursor string) (client.Page[client.Job], error) {
		requested = append(requested, cursor)
		if cursor == failOn && failed < failTimes {
			failed++
			return client.Page[client.Job]{}, apiErr(failKind)
		}
		return pages[cursor], nil
	}, &requested
}

func jobIDs(jobs []client.Job) []int {
	ids := make([]int, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	return ids
}

func TestJobs_ConcatenatesPagesInOrder(t *testing.T) {
	jobsFn, requested := threePages("", 0, 0)
	api := &MockAPI{JobsFn: jobsFn}
	g, _ := testGovernor(GovernorConfig{})

	jobs, err := NewFetchers(api, g).Jobs(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, jobIDs(jobs))
	assert.Equal(t, []string{"", "B", "C"}, *requested)
}

func TestJobs_PageFailureDiscardsEarlierPages(t *testing.T) {
	jobsFn, requested := threePages("B", client.KindNotFound, 100)
	api := &MockAPI{JobsFn: jobsFn}
	g, _ := testGovernor(GovernorConfig{})

	jobs, err := NewFetchers(api, g).Jobs(context.Background(), 7)
	require.Error(t, err)
	assert.Nil(t, jobs)
	assert.Equal(t, client.KindNotFound, client.KindOf(err))
	assert.Equal(t, []string{"", "B"}, *requested, "page C must not be requested")
}

func TestJobs_ThrottledPageIsRetried(t *testing.T) {
	jobsFn, requested := threePages("B", client.KindRateLimited, 2)
	api := &MockAPI{JobsFn: jobsFn}
	g, delays := testGovernor(GovernorConfig{MaxRetries: 3})

	jobs, err := NewFetchers(api, g).Jobs(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, jobIDs(jobs))
	assert.Equal(t, []string{"", "B", "B", "B", "C"}, *requested)
	assert.Len(t, delays(), 2)
}

func TestCollectPages_RepeatedCursor(t *testing.T) {
	g, _ := testGovernor(GovernorConfig{})
	calls := 0
	_, err := CollectPages(context.Background(), g, model.Request{Kind: model.KindImages},
		func(_ context.Context, cursor string) (client.Page[client.Image], error) {
			calls++
			return client.Page[client.Image]{Items: []client.Image{{ID: calls}}, Next: "loop"}, nil
		})
	require.Error(t, err)
	assert.Equal(t, client.KindDecode, client.KindOf(err))
	assert.Equal(t, 2, calls)
}

func TestCollectPages_EmptyCollectionIsNotNil(t *testing.T) {
	g, _ := testGovernor(GovernorConfig{})
	items, err := CollectPages(context.Background(), g, model.Request{Kind: model.KindZones},
		func(context.Context, string) (client.Page[client.Zone], error) {
			return client.Page[client.Zone]{}, nil
		})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestAddresses_IPv4ThenIPv6(t *testing.T) {
	api := &MockAPI{
		IPv4Fn: func(context.Context, int) ([]client.IPAddress, error) {
			return []client.IPAddress{{IP: "192.0.2.1"}, {IP: "192.0.2.2"}}, nil
		},
		IPv6Fn: func(context.Context, int) ([]client.IPAddress, error) {
			return []client.IPAddress{{IP: "2001:db8::1"}}, nil
		},
	}
	g, _ := testGovernor(GovernorConfig{})

	addrs, err := NewFetchers(api, g).Addresses(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, addrs, 3)
	assert.Equal(t, "ipv4", addrs[0].Family)
	assert.Equal(t, "192.0.2.2", addrs[1].IP)
	assert.Equal(t, "ipv6", addrs[2].Family)
	assert.Equal(t, "2001:db8::1", addrs[2].IP)
}

func TestAddresses_IPv6FailureFailsFetch(t *testing.T) {
	api := &MockAPI{
		IPv6Fn: func(context.Context, int) ([]client.IPAddress, error) {
			return nil, apiErr(client.KindUnauthorized)
		},
	}
	g, _ := testGovernor(GovernorConfig{})

	addrs, err := NewFetchers(api, g).Addresses(context.Background(), 1)
	require.Error(t, err)
	assert.Nil(t, addrs)
	assert.Equal(t, 1, api.Calls("GetIPv6"))
}

func TestCollectPages_ConcatenationProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("collected items equal the concatenation of all pages", prop.ForAll(
		func(pages [][]int) bool {
			g, _ := testGovernor(GovernorConfig{})
			items, err := CollectPages(context.Background(), g, model.Request{Kind: model.KindInvoices},
				func(_ context.Context, cursor string) (client.Page[int], error) {
					i := 0
					if cursor != "" {
						i, _ = strconv.Atoi(cursor)
					}
					if i >= len(pages) {
						return client.Page[int]{}, nil
					}
					next := ""
					if i+1 < len(pages) {
						next = strconv.Itoa(i + 1)
					}
					return client.Page[int]{Items: pages[i], Next: next}, nil
				})
			if err != nil {
				return false
			}
			want := []int{}
			for _, p := range pages {
				want = append(want, p...)
			}
			if len(items) != len(want) {
				return false
			}
			for i := range want {
				if items[i] != want[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.SliceOf(gen.Int())),
	))

	properties.TestingRun(t)
}
