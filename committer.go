package avlkv

import (
	"fmt"

	"github.com/jaiminpan/avlkv/db"
	"github.com/jaiminpan/avlkv/tree"
)

// levelCommitter is the default Committer: it writes every node's
// encoding into a backing-store batch and prunes every child at depth
// keepDepth or deeper (root at depth 0) back to a Reference link, so
// the top keepDepth levels stay resident and the subtrees below are
// freed once durable.
type levelCommitter struct {
	batch     db.Batch
	keepDepth int
}

func newLevelCommitter(batch db.Batch, keepDepth int) *levelCommitter {
	return &levelCommitter{batch: batch, keepDepth: keepDepth}
}

func (c *levelCommitter) Write(node *tree.Node) error {
	encoded, err := node.Encode()
	if err != nil {
		return fmt.Errorf("avlkv: encoding node %x: %w", node.Key(), err)
	}
	return c.batch.Put(node.Key(), encoded)
}

func (c *levelCommitter) Prune(link *tree.Link, depth int) bool {
	return depth >= c.keepDepth
}
