package lnd

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/docker"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
	nettypes "github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/types"
)

const (
	tlsCertPath  = "/home/lnd/.lnd/tls.cert"
	macaroonPath = "/home/lnd/.lnd/data/chain/bitcoin/regtest/admin.macaroon"
)

// GetInfoResponse is the subset of `lncli getinfo` we read
type GetInfoResponse struct {
	IdentityPubkey     string `json:"identity_pubkey"`
	Alias              string `json:"alias"`
	Version            string `json:"version"`
	NumPendingChannels int    `json:"num_pending_channels"`
	NumActiveChannels  int    `json:"num_active_channels"`
	NumPeers           int    `json:"num_peers"`
	BlockHeight        int64  `json:"block_height"`
	BlockHash          string `json:"block_hash"`
	SyncedToChain      bool   `json:"synced_to_chain"`
	SyncedToGraph      bool   `json:"synced_to_graph"`
}

// lncli prints int64 amounts as JSON strings
type walletBalanceResponse struct {
	TotalBalance       string `json:"total_balance"`
	ConfirmedBalance   string `json:"confirmed_balance"`
	UnconfirmedBalance string `json:"unconfirmed_balance"`
}

type channelBalanceResponse struct {
	Balance string `json:"balance"`
}

type channel struct {
	Active        bool   `json:"active"`
	RemotePubkey  string `json:"remote_pubkey"`
	ChannelPoint  string `json:"channel_point"`
	Capacity      string `json:"capacity"`
	LocalBalance  string `json:"local_balance"`
	RemoteBalance string `json:"remote_balance"`
}

type listChannelsResponse struct {
	Channels []channel `json:"channels"`
}

// Invoice is a freshly created payment request
type Invoice struct {
	PaymentRequest string `json:"payment_request"`
	RHash          string `json:"r_hash"`
}

type paymentResponse struct {
	PaymentHash   string `json:"payment_hash"`
	Status        string `json:"status"`
	FailureReason string `json:"failure_reason"`
}

// Client runs lncli inside a running LND container
type Client struct {
	rt          docker.Runtime
	containerID string
}

// NewClient fails with DOMAIN_CONFIG_ERROR when the node has no container.
func NewClient(rt docker.Runtime, node nettypes.Node) (*Client, error) {
	if !node.Running() {
		return nil, errors.NewDomainConfigError("LND node not running", map[string]interface{}{
			"node": node.Name,
		})
	}
	return &Client{rt: rt, containerID: node.ContainerID}, nil
}

// NewClientForContainer targets a container directly
func NewClientForContainer(rt docker.Runtime, containerID string) *Client {
	return &Client{rt: rt, containerID: containerID}
}

// CLIPrefix is prepended to every lncli invocation
func CLIPrefix() []string {
	return []string{
		"lncli",
		"--network=regtest",
		"--tlscertpath=" + tlsCertPath,
		"--macaroonpath=" + macaroonPath,
	}
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	return c.rt.Exec(ctx, c.containerID, append(CLIPrefix(), args...))
}

func (c *Client) runJSON(ctx context.Context, what string, out interface{}, args ...string) error {
	raw, err := c.run(ctx, args...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return parseError(what, raw, err)
	}
	return nil
}

func parseError(what, output string, err error) error {
	return &errors.AppError{
		Type:    errors.DomainConfigError,
		Message: "failed to parse " + what,
		Details: map[string]interface{}{"output": output},
		Err:     err,
	}
}

func parseSats(what, s string) (btcutil.Amount, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, parseError(what, s, err)
	}
	return btcutil.Amount(v), nil
}

// ValidatePubkey checks a hex-encoded compressed secp256k1 key
func ValidatePubkey(pubkey string) error {
	raw, err := hex.DecodeString(pubkey)
	if err == nil {
		_, err = btcec.ParsePubKey(raw)
	}
	if err != nil {
		return errors.NewValidationError("invalid node pubkey", map[string]interface{}{
			"pubkey": pubkey,
			"error":  err.Error(),
		})
	}
	return nil
}

func (c *Client) GetInfo(ctx context.Context) (*GetInfoResponse, error) {
	var info GetInfoResponse
	if err := c.runJSON(ctx, "getinfo", &info, "getinfo"); err != nil {
		return nil, err
	}
	return &info, nil
}

// Ping succeeds once the RPC server answers
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.GetInfo(ctx)
	return err
}

// Pubkey returns the node's identity key
func (c *Client) Pubkey(ctx context.Context) (string, error) {
	info, err := c.GetInfo(ctx)
	if err != nil {
		return "", err
	}
	if err := ValidatePubkey(info.IdentityPubkey); err != nil {
		return "", parseError("identity pubkey", info.IdentityPubkey, err)
	}
	return info.IdentityPubkey, nil
}

// WalletBalance returns the confirmed on-chain balance
func (c *Client) WalletBalance(ctx context.Context) (btcutil.Amount, error) {
	var resp walletBalanceResponse
	if err := c.runJSON(ctx, "wallet balance", &resp, "walletbalance"); err != nil {
		return 0, err
	}
	return parseSats("wallet balance", resp.ConfirmedBalance)
}

// ChannelBalance returns the local balance across open channels
func (c *Client) ChannelBalance(ctx context.Context) (btcutil.Amount, error) {
	var resp channelBalanceResponse
	if err := c.runJSON(ctx, "channel balance", &resp, "channelbalance"); err != nil {
		return 0, err
	}
	return parseSats("channel balance", resp.Balance)
}

// NewAddress returns a fresh p2wkh address from the node wallet
func (c *Client) NewAddress(ctx context.Context) (string, error) {
	var resp struct {
		Address string `json:"address"`
	}
	if err := c.runJSON(ctx, "address", &resp, "newaddress", "p2wkh"); err != nil {
		return "", err
	}
	if _, err := btcutil.DecodeAddress(resp.Address, &chaincfg.RegressionNetParams); err != nil {
		return "", parseError("address", resp.Address, err)
	}
	return resp.Address, nil
}

// Connect opens a peer connection to pubkey@host. An existing connection is
// not an error.
func (c *Client) Connect(ctx context.Context, pubkey, host string) error {
	_, err := c.run(ctx, "connect", pubkey+"@"+host)
	if err != nil && strings.Contains(err.Error(), "already connected") {
		return nil
	}
	return err
}

// OpenChannel funds a channel to pubkey and returns the funding txid
func (c *Client) OpenChannel(ctx context.Context, pubkey string, capacity, push btcutil.Amount) (string, error) {
	args := []string{
		"openchannel",
		"--node_key", pubkey,
		"--local_amt", strconv.FormatInt(int64(capacity), 10),
	}
	if push > 0 {
		args = append(args, "--push_amt", strconv.FormatInt(int64(push), 10))
	}

	var resp struct {
		FundingTxid string `json:"funding_txid"`
	}
	if err := c.runJSON(ctx, "channel open response", &resp, args...); err != nil {
		return "", err
	}
	if _, err := chainhash.NewHashFromStr(resp.FundingTxid); err != nil {
		return "", parseError("funding txid", resp.FundingTxid, err)
	}
	return resp.FundingTxid, nil
}

// CloseChannel closes the channel at "txid:index" and returns the closing
// txid.
func (c *Client) CloseChannel(ctx context.Context, channelPoint string, force bool) (string, error) {
	txid, index, err := SplitChannelPoint(channelPoint)
	if err != nil {
		return "", err
	}
	args := []string{
		"closechannel",
		"--funding_txid", txid,
		"--output_index", strconv.FormatUint(uint64(index), 10),
	}
	if force {
		args = append(args, "--force")
	}

	var resp struct {
		ClosingTxid string `json:"closing_txid"`
	}
	if err := c.runJSON(ctx, "channel close response", &resp, args...); err != nil {
		return "", err
	}
	if _, err := chainhash.NewHashFromStr(resp.ClosingTxid); err != nil {
		return "", parseError("closing txid", resp.ClosingTxid, err)
	}
	return resp.ClosingTxid, nil
}

// AddInvoice creates an invoice for amount sats
func (c *Client) AddInvoice(ctx context.Context, amount btcutil.Amount, memo string) (*Invoice, error) {
	args := []string{"addinvoice", "--json", "--amt", strconv.FormatInt(int64(amount), 10)}
	if memo != "" {
		args = append(args, "--memo", memo)
	}
	var inv Invoice
	if err := c.runJSON(ctx, "invoice", &inv, args...); err != nil {
		return nil, err
	}
	if inv.PaymentRequest == "" {
		return nil, parseError("invoice", inv.RHash, fmt.Errorf("no payment_request in response"))
	}
	return &inv, nil
}

// PayInvoice pays a payment request and returns the payment hash
func (c *Client) PayInvoice(ctx context.Context, paymentRequest string) (string, error) {
	var resp paymentResponse
	if err := c.runJSON(ctx, "payment response", &resp, "payinvoice", "--json", "--force", paymentRequest); err != nil {
		return "", err
	}
	if resp.Status == "FAILED" {
		return "", errors.NewDomainConfigError("payment failed", map[string]interface{}{
			"paymentHash": resp.PaymentHash,
			"reason":      resp.FailureReason,
		})
	}
	if resp.PaymentHash == "" {
		return "", parseError("payment response", resp.Status, fmt.Errorf("no payment_hash in response"))
	}
	return resp.PaymentHash, nil
}

func (c *Client) ListChannels(ctx context.Context) ([]types.ChannelInfo, error) {
	var resp listChannelsResponse
	if err := c.runJSON(ctx, "channels", &resp, "listchannels"); err != nil {
		return nil, err
	}
	out := make([]types.ChannelInfo, 0, len(resp.Channels))
	for _, ch := range resp.Channels {
		capacity, err := parseSats("channel capacity", ch.Capacity)
		if err != nil {
			return nil, err
		}
		local, err := parseSats("channel local balance", ch.LocalBalance)
		if err != nil {
			return nil, err
		}
		remote, err := parseSats("channel remote balance", ch.RemoteBalance)
		if err != nil {
			return nil, err
		}
		out = append(out, types.ChannelInfo{
			ChannelPoint:  ch.ChannelPoint,
			RemotePubkey:  ch.RemotePubkey,
			Capacity:      capacity,
			LocalBalance:  local,
			RemoteBalance: remote,
			Active:        ch.Active,
		})
	}
	return out, nil
}

// SplitChannelPoint parses "txid:index"
func SplitChannelPoint(channelPoint string) (string, uint32, error) {
	txid, idx, ok := strings.Cut(channelPoint, ":")
	invalid := func(err error) error {
		details := map[string]interface{}{"channelPoint": channelPoint}
		if err != nil {
			details["error"] = err.Error()
		}
		return errors.NewValidationError("invalid channel point, expected <txid>:<index>", details)
	}
	if !ok {
		return "", 0, invalid(nil)
	}
	if _, err := chainhash.NewHashFromStr(txid); err != nil {
		return "", 0, invalid(err)
	}
	index, err := strconv.ParseUint(idx, 10, 32)
	if err != nil {
		return "", 0, invalid(err)
	}
	return txid, uint32(index), nil
}
