package consistency

import (
	"context"
	"net"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decoyforge/internal/store"
)

func TestResolveIsIdempotentPerSlot(t *testing.T) {
	c := Open("decoy-1")

	first, err := c.Resolve(SlotPrimaryUsername)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// Intervening resolutions of other slots must not disturb it.
	_, err = c.Resolve(SlotHostname)
	require.NoError(t, err)
	_, err = c.Resolve(SlotProjectName)
	require.NoError(t, err)

	second, err := c.Resolve(SlotPrimaryUsername)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveConcurrentCallersAgree(t *testing.T) {
	c := Open("decoy-1")

	const n = 32
	values := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Resolve(SlotHostname)
			if err != nil {
				t.Error(err)
				return
			}
			values[i] = v
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Equal(t, values[0], values[i])
	}
}

func TestEmailDerivedFromUsernameAndDomain(t *testing.T) {
	c := Open("decoy-1")

	email, err := c.Resolve(SlotPrimaryEmail)
	require.NoError(t, err)

	user, err := c.Resolve(SlotPrimaryUsername)
	require.NoError(t, err)
	domain, err := c.Resolve(SlotOrganizationDomain)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(email, "@"+domain))
	assert.Equal(t, strings.ReplaceAll(user, "_", "."), strings.SplitN(email, "@", 2)[0])
}

func TestInternalIPRangeIsPrivateCIDR(t *testing.T) {
	for i := 0; i < 50; i++ {
		c := Open("decoy-1")
		v, err := c.Resolve(SlotInternalIPRange)
		require.NoError(t, err)

		ip, _, err := net.ParseCIDR(v)
		require.NoError(t, err, "not a CIDR: %q", v)
		assert.True(t, ip.IsPrivate(), "not a private range: %q", v)
	}
}

func TestUnknownSlotGetsGenericValue(t *testing.T) {
	c := Open("decoy-1")
	v, err := c.Resolve("favorite_editor")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[a-z]+-[a-z]+$`), v)

	again, err := c.Resolve("favorite_editor")
	require.NoError(t, err)
	assert.Equal(t, v, again)
}

func TestCloseSnapshotsAndPersists(t *testing.T) {
	s, err := store.Open(":memory:", 0)
	require.NoError(t, err)
	defer s.Close()

	c := Open("decoy-9")
	user, err := c.Resolve(SlotPrimaryUsername)
	require.NoError(t, err)
	c.RecordToken("tok-a")
	c.RecordToken("tok-b")

	ctx := context.Background()
	require.NoError(t, c.Close(ctx, s))
	require.NoError(t, c.Close(ctx, s)) // idempotent

	jc, err := s.LoadJobContext(ctx, c.JobID)
	require.NoError(t, err)
	assert.Equal(t, "decoy-9", jc.DecoyID)
	assert.Equal(t, user, jc.Slots[SlotPrimaryUsername])
	assert.Equal(t, []string{"tok-a", "tok-b"}, jc.TokenIDs)

	// Resolved slots stay readable after close; new slots do not.
	v, err := c.Resolve(SlotPrimaryUsername)
	require.NoError(t, err)
	assert.Equal(t, user, v)
	_, err = c.Resolve(SlotHostname)
	assert.Error(t, err)
}

func TestSlotsReturnsCopy(t *testing.T) {
	c := Open("decoy-1")
	_, err := c.Resolve(SlotProjectName)
	require.NoError(t, err)

	snap := c.Slots()
	snap[SlotProjectName] = "tampered"

	if diff := cmp.Diff(snap, c.Slots()); diff == "" {
		t.Fatal("Slots returned a live reference to internal state")
	}
}

func TestResolveOrderIndependenceProperty(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 50

	slots := []string{
		SlotPrimaryUsername, SlotHostname, SlotOrganizationDomain,
		SlotInternalIPRange, SlotProjectName, SlotPrimaryEmail,
	}

	properties := gopter.NewProperties(params)
	properties.Property("resolve order never changes a slot's value", prop.ForAll(
		func(order []int) bool {
			c := Open("decoy-prop")
			firstSeen := make(map[string]string)
			for _, idx := range order {
				slot := slots[idx%len(slots)]
				v, err := c.Resolve(slot)
				if err != nil {
					return false
				}
				if prev, ok := firstSeen[slot]; ok && prev != v {
					return false
				}
				firstSeen[slot] = v
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, len(slots)-1)),
	))
	properties.TestingRun(t)
}
