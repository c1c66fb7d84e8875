package idgen

import "github.com/bwmarrin/snowflake"

// Node wraps a snowflake node behind the application's IDGenerator port:
// process-wide-unique, roughly time-ordered 64-bit ids.
type Node struct {
	node *snowflake.Node
}

func New(machineID int64) (*Node, error) {
	n, err := snowflake.NewNode(machineID)
	if err != nil {
		return nil, err
	}
	return &Node{node: n}, nil
}

func (n *Node) NextID() int64 {
	return n.node.Generate().Int64()
}
