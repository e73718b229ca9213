package rpc

import (
	l2sync "github.com/0xPolygon/cdk-l2node/sync"
)

var (
	_ L2NodeClientInterface = (*Client)(nil)
	_ l2sync.L2BlockSource  = (*Client)(nil)
)

// Client calls the l2node endpoints of a remote node. It is also the block
// source of the world state when the settled blocks are served by another node.
type Client struct {
	url string
}

func NewClient(url string) *Client {
	return &Client{url: url}
}
