package service

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/bitcoind"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/lnd"
	nodetypes "github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/types"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/utils"
)

func (s *NetworkService) findNode(n *types.Network, name string) (*types.Node, error) {
	node, ok := n.FindNode(name)
	if !ok {
		return nil, errors.NewNotFoundError("node not found", map[string]interface{}{"network": n.Name, "node": name})
	}
	return node, nil
}

func (s *NetworkService) lightningNode(n *types.Network, name string) (*types.Node, error) {
	node, err := s.findNode(n, name)
	if err != nil {
		return nil, err
	}
	if node.Kind != types.NodeKindLND {
		return nil, errors.NewValidationError("not a Lightning node", map[string]interface{}{"network": n.Name, "node": name})
	}
	return node, nil
}

func (s *NetworkService) bitcoinClient(n *types.Network) (*bitcoind.Client, error) {
	btc := n.BitcoinNode()
	if btc == nil {
		return nil, errors.NewDomainConfigError("network has no bitcoin node", map[string]interface{}{"network": n.Name})
	}
	return bitcoind.NewClient(s.rt, *btc)
}

func (s *NetworkService) mine(ctx context.Context, client *bitcoind.Client, blocks int) ([]string, error) {
	addr, err := client.GetNewAddress(ctx)
	if err != nil {
		return nil, err
	}
	return client.MineBlocks(ctx, blocks, addr)
}

// MineBlocks mines blocks on the network's bitcoind to a fresh wallet address
// and returns their hashes.
func (s *NetworkService) MineBlocks(ctx context.Context, name string, blocks int) ([]string, error) {
	start := time.Now()
	hashes, err := call(ctx, s, func(ctx context.Context) ([]string, error) {
		if blocks <= 0 {
			return nil, errors.NewValidationError("block count must be positive", map[string]interface{}{"blocks": blocks})
		}
		n, err := s.lookup(name)
		if err != nil {
			return nil, err
		}
		client, err := s.bitcoinClient(n)
		if err != nil {
			return nil, err
		}
		return s.mine(ctx, client, blocks)
	})
	s.record("mine_blocks", name, types.BitcoinNodeName, start, err, map[string]interface{}{"blocks": blocks})
	return hashes, err
}

// FundWallet sends amount from the bitcoind wallet to a fresh address of a
// Lightning node. With autoMine the transaction is confirmed and the call
// waits until the node has seen the new tip.
func (s *NetworkService) FundWallet(ctx context.Context, name, nodeName string, amount btcutil.Amount, autoMine bool) (string, error) {
	start := time.Now()
	txid, err := call(ctx, s, func(ctx context.Context) (string, error) {
		if amount <= 0 {
			return "", errors.NewValidationError("amount must be positive", map[string]interface{}{"amount": amount.String()})
		}
		n, err := s.lookup(name)
		if err != nil {
			return "", err
		}
		node, err := s.lightningNode(n, nodeName)
		if err != nil {
			return "", err
		}
		btcClient, err := s.bitcoinClient(n)
		if err != nil {
			return "", err
		}
		lnClient, err := lnd.NewClient(s.rt, *node)
		if err != nil {
			return "", err
		}

		balance, err := btcClient.GetBalance(ctx)
		if err != nil {
			return "", err
		}
		if balance < amount {
			return "", errors.NewDomainConfigError(
				fmt.Sprintf("Insufficient balance in Bitcoin node. Have: %s BTC, Need: %s BTC. Try mining blocks first.",
					bitcoind.FormatBTC(balance), bitcoind.FormatBTC(amount)),
				map[string]interface{}{"network": name, "balance": balance.ToBTC(), "amount": amount.ToBTC()},
			)
		}

		addr, err := lnClient.NewAddress(ctx)
		if err != nil {
			return "", err
		}
		txid, err := btcClient.SendToAddress(ctx, addr, amount)
		if err != nil {
			return "", err
		}
		s.logger.Info("Funded Lightning wallet", "network", name, "node", nodeName, "amount", amount.String(), "txid", txid)

		if !autoMine {
			return txid, nil
		}
		if _, err := s.mine(ctx, btcClient, FundWalletBlocks); err != nil {
			return "", err
		}
		chain, err := btcClient.GetBlockchainInfo(ctx)
		if err != nil {
			return "", err
		}
		tip := int64(chain.Blocks)
		err = utils.WaitFor(ctx, s.cfg.Poll, "lightning node chain sync", func(ctx context.Context) error {
			info, err := lnClient.GetInfo(ctx)
			if err != nil {
				return err
			}
			if info.BlockHeight < tip {
				return fmt.Errorf("block height %d behind tip %d", info.BlockHeight, tip)
			}
			return nil
		})
		if err != nil {
			return "", err
		}
		return txid, nil
	})
	s.record("fund_wallet", name, nodeName, start, err, map[string]interface{}{
		"amount":   amount.ToBTC(),
		"autoMine": autoMine,
	})
	return txid, err
}

// OpenChannel connects from to the peer and opens a channel of capacity sats,
// optionally pushing some of it to the peer. It returns the funding txid.
func (s *NetworkService) OpenChannel(ctx context.Context, name, from, to string, capacity int64, push *int64) (string, error) {
	start := time.Now()
	txid, err := call(ctx, s, func(ctx context.Context) (string, error) {
		if from == to {
			return "", errors.NewValidationError("cannot open a channel to the same node", map[string]interface{}{"node": from})
		}
		if capacity <= 0 {
			return "", errors.NewValidationError("channel capacity must be positive", map[string]interface{}{"capacity": capacity})
		}
		var pushAmt btcutil.Amount
		if push != nil {
			if *push < 0 || *push >= capacity {
				return "", errors.NewValidationError("push amount must be between 0 and the capacity", map[string]interface{}{"push": *push})
			}
			pushAmt = btcutil.Amount(*push)
		}

		n, err := s.lookup(name)
		if err != nil {
			return "", err
		}
		fromNode, err := s.lightningNode(n, from)
		if err != nil {
			return "", err
		}
		toNode, err := s.lightningNode(n, to)
		if err != nil {
			return "", err
		}
		fromClient, err := lnd.NewClient(s.rt, *fromNode)
		if err != nil {
			return "", err
		}
		toClient, err := lnd.NewClient(s.rt, *toNode)
		if err != nil {
			return "", err
		}

		pubkey, err := toClient.Pubkey(ctx)
		if err != nil {
			return "", err
		}
		if err := fromClient.Connect(ctx, pubkey, s.drivers[types.NodeKindLND].PeerHost(*toNode)); err != nil {
			return "", err
		}
		return fromClient.OpenChannel(ctx, pubkey, btcutil.Amount(capacity), pushAmt)
	})
	details := map[string]interface{}{"to": to, "capacity": capacity}
	if push != nil {
		details["push"] = *push
	}
	s.record("open_channel", name, from, start, err, details)
	return txid, err
}

// CloseChannel closes a channel of a Lightning node and returns the closing
// txid.
func (s *NetworkService) CloseChannel(ctx context.Context, name, nodeName, channelPoint string, force bool) (string, error) {
	start := time.Now()
	txid, err := call(ctx, s, func(ctx context.Context) (string, error) {
		n, err := s.lookup(name)
		if err != nil {
			return "", err
		}
		node, err := s.lightningNode(n, nodeName)
		if err != nil {
			return "", err
		}
		client, err := lnd.NewClient(s.rt, *node)
		if err != nil {
			return "", err
		}
		return client.CloseChannel(ctx, channelPoint, force)
	})
	s.record("close_channel", name, nodeName, start, err, map[string]interface{}{
		"channelPoint": channelPoint,
		"force":        force,
	})
	return txid, err
}

// SendPayment creates an invoice on node to and pays it from node from. It
// returns the payment hash.
func (s *NetworkService) SendPayment(ctx context.Context, name, from, to string, amountSats int64, memo string) (string, error) {
	start := time.Now()
	hash, err := call(ctx, s, func(ctx context.Context) (string, error) {
		if amountSats <= 0 {
			return "", errors.NewValidationError("payment amount must be positive", map[string]interface{}{"amount": amountSats})
		}
		n, err := s.lookup(name)
		if err != nil {
			return "", err
		}
		fromNode, err := s.lightningNode(n, from)
		if err != nil {
			return "", err
		}
		toNode, err := s.lightningNode(n, to)
		if err != nil {
			return "", err
		}
		fromClient, err := lnd.NewClient(s.rt, *fromNode)
		if err != nil {
			return "", err
		}
		toClient, err := lnd.NewClient(s.rt, *toNode)
		if err != nil {
			return "", err
		}

		invoice, err := toClient.AddInvoice(ctx, btcutil.Amount(amountSats), memo)
		if err != nil {
			return "", err
		}
		return fromClient.PayInvoice(ctx, invoice.PaymentRequest)
	})
	s.record("send_payment", name, from, start, err, map[string]interface{}{"to": to, "amount": amountSats})
	return hash, err
}

// SyncGraph connects every pair of Lightning nodes. Connection failures are
// logged and skipped. It returns how many nodes took part, or 0 when there
// are fewer than two.
func (s *NetworkService) SyncGraph(ctx context.Context, name string) (int, error) {
	start := time.Now()
	count, err := call(ctx, s, func(ctx context.Context) (int, error) {
		n, err := s.lookup(name)
		if err != nil {
			return 0, err
		}
		nodes := n.LightningNodes()
		if len(nodes) < 2 {
			return 0, nil
		}

		clients := make([]*lnd.Client, len(nodes))
		pubkeys := make([]string, len(nodes))
		for i, node := range nodes {
			client, err := lnd.NewClient(s.rt, *node)
			if err != nil {
				return 0, err
			}
			pubkey, err := client.Pubkey(ctx)
			if err != nil {
				return 0, err
			}
			clients[i], pubkeys[i] = client, pubkey
		}

		peerHost := s.drivers[types.NodeKindLND].PeerHost
		for i := range nodes {
			for j := i + 1; j < len(nodes); j++ {
				if err := clients[i].Connect(ctx, pubkeys[j], peerHost(*nodes[j])); err != nil {
					s.logger.Warn("Failed to connect peers", "network", name, "from", nodes[i].Name, "to", nodes[j].Name, "error", err)
				}
			}
		}
		return len(nodes), nil
	})
	s.record("sync_graph", name, "", start, err, map[string]interface{}{"nodes": count})
	return count, err
}

// SyncChain reports how many running Lightning nodes are synced to the chain
// right now. Nodes that are not running or do not answer are skipped.
func (s *NetworkService) SyncChain(ctx context.Context, name string) (int, error) {
	start := time.Now()
	synced, err := call(ctx, s, func(ctx context.Context) (int, error) {
		n, err := s.lookup(name)
		if err != nil {
			return 0, err
		}
		synced := 0
		for _, node := range n.LightningNodes() {
			if !node.Running() {
				continue
			}
			client, err := lnd.NewClient(s.rt, *node)
			if err != nil {
				return 0, err
			}
			info, err := client.GetInfo(ctx)
			if err != nil {
				s.logger.Warn("Failed to read sync state", "network", name, "node", node.Name, "error", err)
				continue
			}
			if info.SyncedToChain {
				synced++
			}
		}
		return synced, nil
	})
	s.record("sync_chain", name, "", start, err, map[string]interface{}{"synced": synced})
	return synced, err
}

// NodeInfo returns a snapshot of one node
func (s *NetworkService) NodeInfo(ctx context.Context, name, nodeName string) (*nodetypes.NodeInfo, error) {
	return call(ctx, s, func(ctx context.Context) (*nodetypes.NodeInfo, error) {
		n, err := s.lookup(name)
		if err != nil {
			return nil, err
		}
		node, err := s.findNode(n, nodeName)
		if err != nil {
			return nil, err
		}
		driver, err := s.driver(node.Kind)
		if err != nil {
			return nil, err
		}
		return driver.Info(ctx, s.rt, *node)
	})
}

// PingNode checks that a running node answers RPC. It is not journaled.
func (s *NetworkService) PingNode(ctx context.Context, name, nodeName string) error {
	return s.submit(ctx, func(ctx context.Context) error {
		n, err := s.lookup(name)
		if err != nil {
			return err
		}
		node, err := s.findNode(n, nodeName)
		if err != nil {
			return err
		}
		if !node.Running() {
			return errors.NewDomainConfigError("node not running", map[string]interface{}{"network": name, "node": nodeName})
		}
		driver, err := s.driver(node.Kind)
		if err != nil {
			return err
		}
		return driver.Ping(ctx, s.rt, node.ContainerID)
	})
}

// ListChannels returns the open channels of a Lightning node
func (s *NetworkService) ListChannels(ctx context.Context, name, nodeName string) ([]nodetypes.ChannelInfo, error) {
	return call(ctx, s, func(ctx context.Context) ([]nodetypes.ChannelInfo, error) {
		n, err := s.lookup(name)
		if err != nil {
			return nil, err
		}
		node, err := s.lightningNode(n, nodeName)
		if err != nil {
			return nil, err
		}
		client, err := lnd.NewClient(s.rt, *node)
		if err != nil {
			return nil, err
		}
		return client.ListChannels(ctx)
	})
}

// NodeLogs returns the last tail lines of a node's container output. A tail
// of zero or less returns everything.
func (s *NetworkService) NodeLogs(ctx context.Context, name, nodeName string, tail int) (string, error) {
	return call(ctx, s, func(ctx context.Context) (string, error) {
		n, err := s.lookup(name)
		if err != nil {
			return "", err
		}
		node, err := s.findNode(n, nodeName)
		if err != nil {
			return "", err
		}
		if !node.Running() {
			return "", errors.NewDomainConfigError("node not running", map[string]interface{}{"network": name, "node": nodeName})
		}
		return s.rt.ContainerLogs(ctx, node.ContainerID, tail)
	})
}
