package bitcoind

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/docker"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
	nettypes "github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
)

// RPC credentials baked into every bitcoind container
const (
	RPCUser     = "polaruser"
	RPCPassword = "polarpass"
)

// DefaultWallet is created right after the node starts
const DefaultWallet = "default"

// NetworkInfo is the part of getnetworkinfo we read. Recent Core versions
// report warnings as a list, which btcjson does not model.
type NetworkInfo struct {
	Version         int32  `json:"version"`
	Subversion      string `json:"subversion"`
	ProtocolVersion int32  `json:"protocolversion"`
	Connections     int32  `json:"connections"`
}

// Client runs bitcoin-cli inside a running bitcoind container
type Client struct {
	rt          docker.Runtime
	containerID string
}

// NewClient fails with DOMAIN_CONFIG_ERROR when the node has no container.
func NewClient(rt docker.Runtime, node nettypes.Node) (*Client, error) {
	if !node.Running() {
		return nil, errors.NewDomainConfigError("bitcoin node not running", map[string]interface{}{
			"node": node.Name,
		})
	}
	return &Client{rt: rt, containerID: node.ContainerID}, nil
}

// NewClientForContainer targets a container directly
func NewClientForContainer(rt docker.Runtime, containerID string) *Client {
	return &Client{rt: rt, containerID: containerID}
}

// CLIPrefix is prepended to every bitcoin-cli invocation
func CLIPrefix() []string {
	return []string{
		"bitcoin-cli",
		"-regtest",
		"-rpcuser=" + RPCUser,
		"-rpcpassword=" + RPCPassword,
	}
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	cmd := append(CLIPrefix(), args...)
	out, err := c.rt.Exec(ctx, c.containerID, cmd)
	if err != nil {
		return "", mapWalletError(err)
	}
	return strings.TrimSpace(out), nil
}

// mapWalletError turns a missing wallet into an actionable config error
func mapWalletError(err error) error {
	if strings.Contains(err.Error(), "No wallet is loaded") {
		return &errors.AppError{
			Type:    errors.DomainConfigError,
			Message: "No wallet loaded. Try restarting the network.",
			Err:     err,
		}
	}
	return err
}

func parseError(what, output string, err error) error {
	return &errors.AppError{
		Type:    errors.DomainConfigError,
		Message: fmt.Sprintf("failed to parse %s", what),
		Details: map[string]interface{}{"output": output},
		Err:     err,
	}
}

// Ping succeeds once the RPC server answers
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.GetBlockchainInfo(ctx)
	return err
}

func (c *Client) CreateWallet(ctx context.Context, name string) error {
	_, err := c.run(ctx, "createwallet", name)
	return err
}

func (c *Client) GetBalance(ctx context.Context) (btcutil.Amount, error) {
	out, err := c.run(ctx, "getbalance")
	if err != nil {
		return 0, err
	}
	btc, err := strconv.ParseFloat(out, 64)
	if err != nil {
		return 0, parseError("balance", out, err)
	}
	amt, err := btcutil.NewAmount(btc)
	if err != nil {
		return 0, parseError("balance", out, err)
	}
	return amt, nil
}

func (c *Client) GetNewAddress(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "getnewaddress")
	if err != nil {
		return "", err
	}
	if _, err := btcutil.DecodeAddress(out, &chaincfg.RegressionNetParams); err != nil {
		return "", parseError("address", out, err)
	}
	return out, nil
}

// SendToAddress pays amount to addr from the node wallet and returns the txid
func (c *Client) SendToAddress(ctx context.Context, addr string, amount btcutil.Amount) (string, error) {
	if _, err := btcutil.DecodeAddress(addr, &chaincfg.RegressionNetParams); err != nil {
		return "", errors.NewValidationError("invalid regtest address", map[string]interface{}{
			"address": addr,
		})
	}
	out, err := c.run(ctx, "sendtoaddress", addr, FormatBTC(amount))
	if err != nil {
		return "", err
	}
	if _, err := chainhash.NewHashFromStr(out); err != nil {
		return "", parseError("txid", out, err)
	}
	return out, nil
}

// MineBlocks mines n blocks to addr, or to a fresh wallet address when addr
// is empty, and returns the block hashes.
func (c *Client) MineBlocks(ctx context.Context, n int, addr string) ([]string, error) {
	if n <= 0 {
		return nil, errors.NewValidationError("block count must be positive", map[string]interface{}{
			"blocks": n,
		})
	}
	if addr == "" {
		var err error
		if addr, err = c.GetNewAddress(ctx); err != nil {
			return nil, err
		}
	}

	out, err := c.run(ctx, "generatetoaddress", strconv.Itoa(n), addr)
	if err != nil {
		return nil, err
	}
	var hashes []string
	if err := json.Unmarshal([]byte(out), &hashes); err != nil {
		return nil, parseError("block hashes", out, err)
	}
	for _, h := range hashes {
		if _, err := chainhash.NewHashFromStr(h); err != nil {
			return nil, parseError("block hashes", out, err)
		}
	}
	return hashes, nil
}

func (c *Client) GetBlockchainInfo(ctx context.Context) (*btcjson.GetBlockChainInfoResult, error) {
	out, err := c.run(ctx, "getblockchaininfo")
	if err != nil {
		return nil, err
	}
	var info btcjson.GetBlockChainInfoResult
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		return nil, parseError("blockchain info", out, err)
	}
	return &info, nil
}

func (c *Client) GetNetworkInfo(ctx context.Context) (*NetworkInfo, error) {
	out, err := c.run(ctx, "getnetworkinfo")
	if err != nil {
		return nil, err
	}
	var info NetworkInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		return nil, parseError("network info", out, err)
	}
	return &info, nil
}

// FormatBTC renders an amount the way bitcoin-cli expects it
func FormatBTC(a btcutil.Amount) string {
	return strconv.FormatFloat(a.ToBTC(), 'f', 8, 64)
}
