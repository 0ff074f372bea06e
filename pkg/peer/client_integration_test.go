package peer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/debox-network/ipfs-webdav/pkg/tutil"
	"github.com/hashicorp/go-uuid"
	"github.com/stretchr/testify/require"
)

// TestClientAgainstNode runs the Store contract against a real node. It is
// skipped unless IPFSDAV_TEST=integration.
func TestClientAgainstNode(t *testing.T) {
	if !tutil.IsIntegrationTest() {
		t.Skip("set IPFSDAV_TEST=integration to run against an IPFS node")
	}

	id, err := uuid.GenerateUUID()
	require.NoError(t, err)

	ctx := context.Background()
	c := NewClient(ClientOpts{APIURL: tutil.IPFSAPIURL(), Timeout: 10 * time.Second})
	root := "/ipfsdav-test-" + id
	t.Cleanup(func() { _ = c.Remove(context.Background(), root) })

	_, err = c.MakeDirectory(ctx, root)
	require.NoErrorf(t, err, "mkdir %s failed: %s", root, err)

	f := root + "/f.txt"
	require.NoError(t, c.Write(ctx, f, 0, true, []byte("hello node")))
	require.NoError(t, c.Flush(ctx, f))

	entry, err := c.Stat(ctx, f)
	require.NoError(t, err)
	require.Equal(t, int64(10), entry.Size)

	data, err := c.Read(ctx, f, 6, 4)
	require.NoError(t, err)
	require.Equal(t, "node", string(data))

	require.NoError(t, c.Copy(ctx, f, root+"/g.txt"))
	require.NoError(t, c.Move(ctx, root+"/g.txt", root+"/h.txt"))

	entries, err := c.List(ctx, root)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	_, err = c.Stat(ctx, root+"/g.txt")
	require.Truef(t, errors.Is(err, ErrNotFound), "expected ErrNotFound, got %v", err)
}
