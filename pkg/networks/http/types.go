package http

import (
	"time"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
)

// ListNetworksResponse represents the response for listing networks
type ListNetworksResponse struct {
	Networks []NetworkResponse `json:"networks"`
	Total    int               `json:"total"`
}

// NodeResponse is one node of a network with its host ports
type NodeResponse struct {
	Name        string            `json:"name"`
	Kind        types.NodeKind    `json:"kind"`
	Running     bool              `json:"running"`
	ContainerID string            `json:"containerId,omitempty"`
	Ports       *types.PortConfig `json:"ports,omitempty"`
}

// NetworkResponse represents a network in HTTP responses
type NetworkResponse struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Status       string         `json:"status"`
	AliasPrefix  string         `json:"aliasPrefix"`
	LndImage     string         `json:"lndImage"`
	BitcoinImage string         `json:"bitcoinImage"`
	Nodes        []NodeResponse `json:"nodes"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// CreateNetworkRequest represents the request to create a network
type CreateNetworkRequest struct {
	Name           string `json:"name" validate:"required,max=63"`
	LightningNodes int    `json:"lightningNodes" validate:"min=0,max=20"`
	AliasPrefix    string `json:"aliasPrefix,omitempty"`
	LndImage       string `json:"lndImage,omitempty"`
	BitcoinImage   string `json:"bitcoinImage,omitempty"`
}

// AddNodeRequest adds a Lightning node to a network
type AddNodeRequest struct {
	Implementation string `json:"implementation" validate:"omitempty,oneof=lnd LND"`
}

// MineBlocksRequest mines blocks on the network's bitcoin node
type MineBlocksRequest struct {
	Blocks int `json:"blocks" validate:"required,min=1,max=1000"`
}

// MineBlocksResponse lists the mined block hashes
type MineBlocksResponse struct {
	Hashes []string `json:"hashes"`
}

// FundWalletRequest sends coins from the bitcoin node to a Lightning wallet
type FundWalletRequest struct {
	Node string `json:"node" validate:"required"`
	// Amount is in BTC
	Amount   float64 `json:"amount" validate:"gt=0"`
	AutoMine bool    `json:"autoMine"`
}

// OpenChannelRequest opens a channel between two Lightning nodes
type OpenChannelRequest struct {
	From     string `json:"from" validate:"required"`
	To       string `json:"to" validate:"required,nefield=From"`
	Capacity int64  `json:"capacity" validate:"gt=0"`
	// PushAmount is optional; zero is a valid push
	PushAmount *int64 `json:"pushAmount,omitempty" validate:"omitempty,min=0"`
}

// CloseChannelRequest closes a channel owned by a node
type CloseChannelRequest struct {
	Node         string `json:"node" validate:"required"`
	ChannelPoint string `json:"channelPoint" validate:"required"`
	Force        bool   `json:"force"`
}

// SendPaymentRequest pays an invoice created on the receiving node
type SendPaymentRequest struct {
	From   string `json:"from" validate:"required"`
	To     string `json:"to" validate:"required,nefield=From"`
	Amount int64  `json:"amount" validate:"gt=0"`
	Memo   string `json:"memo,omitempty"`
}

// TxResponse carries a transaction id or a payment hash
type TxResponse struct {
	TxID        string `json:"txid,omitempty"`
	PaymentHash string `json:"paymentHash,omitempty"`
}

// SyncResponse counts the nodes a sync touched
type SyncResponse struct {
	Count int `json:"count"`
}

// LogsResponse holds a node's container output
type LogsResponse struct {
	Node string `json:"node"`
	Logs string `json:"logs"`
}

// AutoMineRequest enables periodic mining
type AutoMineRequest struct {
	Schedule string `json:"schedule,omitempty"`
	Blocks   int    `json:"blocks" validate:"omitempty,min=1,max=100"`
}

// VersionsResponse lists known node images
type VersionsResponse struct {
	Bitcoind []string `json:"bitcoind"`
	LND      []string `json:"lnd"`
}

func mapNetworkToResponse(n *types.Network) NetworkResponse {
	nodes := make([]NodeResponse, 0, len(n.Nodes))
	for _, node := range n.Nodes {
		resp := NodeResponse{
			Name:        node.Name,
			Kind:        node.Kind,
			Running:     node.Running(),
			ContainerID: node.ContainerID,
		}
		if pc, ok := n.Ports[node.ID]; ok {
			pc := pc
			resp.Ports = &pc
		}
		nodes = append(nodes, resp)
	}
	return NetworkResponse{
		ID:           n.ID.String(),
		Name:         n.Name,
		Status:       string(n.Status),
		AliasPrefix:  n.AliasPrefix,
		LndImage:     n.LndImage,
		BitcoinImage: n.BitcoinImage,
		Nodes:        nodes,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
	}
}
