package dockertest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

const (
	genesisHash   = "0f9188f13cb7b2c71f2a335e3a4fc328bf5beb436012afca590b1a11466e2206"
	blockSubsidy  = 50 * btcutil.SatoshiPerBitcoin
	channelConfs  = 3
	bitcoindOwner = ""
)

type pendingTx struct {
	owner  string
	amount btcutil.Amount
}

type lightningNode struct {
	name     string
	alias    string
	pubkey   string
	wallet   btcutil.Amount
	height   int64
	peers    map[string]bool
	rpcCalls int
}

type channel struct {
	txid         string
	opener, peer *lightningNode
	capacity     btcutil.Amount
	openerBal    btcutil.Amount
	peerBal      btcutil.Amount
	openedAt     int64
}

func (c *channel) active(height int64) bool {
	return height >= c.openedAt+channelConfs
}

type invoice struct {
	owner  *lightningNode
	amount btcutil.Amount
	hash   string
	paid   bool
}

// Chain simulates one bitcoind and its LND nodes closely enough for the
// orchestration workflows: balances, block height, peers, channels, invoices.
type Chain struct {
	mu sync.Mutex

	// WarmupCalls is how many RPC calls a freshly booted daemon rejects
	// before it answers.
	WarmupCalls int
	// SyncStep is how many blocks an LND node catches up per getinfo call.
	// Zero means it is always at the tip.
	SyncStep int64

	bitcoind     string
	btcCalls     int
	height       int64
	tip          string
	walletLoaded bool
	balance      btcutil.Amount
	addrOwner    map[string]string
	mempool      []pendingTx
	nodes        map[string]*lightningNode
	channels     []*channel
	invoices     map[string]*invoice
	seq          int
}

// NewChain returns a chain at the genesis block
func NewChain() *Chain {
	return &Chain{
		tip:       genesisHash,
		addrOwner: map[string]string{},
		nodes:     map[string]*lightningNode{},
		invoices:  map[string]*invoice{},
	}
}

// Height returns the current block height
func (c *Chain) Height() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

// Balance returns the bitcoind wallet balance
func (c *Chain) Balance() btcutil.Amount {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balance
}

// SetBalance overrides the bitcoind wallet balance
func (c *Chain) SetBalance(a btcutil.Amount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balance = a
}

// WalletBalance returns the confirmed on-chain balance of an LND container
func (c *Chain) WalletBalance(container string) btcutil.Amount {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.nodes[container]; ok {
		return n.wallet
	}
	return 0
}

// MempoolSize returns the number of unconfirmed transactions
func (c *Chain) MempoolSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mempool)
}

// Peers returns the pubkeys an LND container is connected to
func (c *Chain) Peers(container string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	if n, ok := c.nodes[container]; ok {
		for pk := range n.peers {
			out = append(out, pk)
		}
	}
	return out
}

func (c *Chain) nextHash(kind string) string {
	c.seq++
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s-%d", kind, c.seq)))
	return hex.EncodeToString(sum[:])
}

func (c *Chain) newAddress(owner string) string {
	c.seq++
	sum := sha256.Sum256([]byte(fmt.Sprintf("addr-%d", c.seq)))
	addr, err := btcutil.NewAddressWitnessPubKeyHash(sum[:20], &chaincfg.RegressionNetParams)
	if err != nil {
		panic(err)
	}
	encoded := addr.EncodeAddress()
	c.addrOwner[encoded] = owner
	return encoded
}

func (c *Chain) boot(container string, cmd []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(cmd) == 0 {
		return
	}
	switch cmd[0] {
	case "bitcoind":
		if c.bitcoind != container {
			c.bitcoind = container
			c.btcCalls = 0
		}
	case "lnd":
		if _, ok := c.nodes[container]; ok {
			return
		}
		priv, err := btcec.NewPrivateKey()
		if err != nil {
			panic(err)
		}
		alias := container
		for _, arg := range cmd {
			if strings.HasPrefix(arg, "--alias=") {
				alias = strings.TrimPrefix(arg, "--alias=")
			}
		}
		c.nodes[container] = &lightningNode{
			name:   container,
			alias:  alias,
			pubkey: hex.EncodeToString(priv.PubKey().SerializeCompressed()),
			height: c.height,
			peers:  map[string]bool{},
		}
		if c.SyncStep > 0 {
			c.nodes[container].height = 0
		}
	}
}

// shutdown drops a removed container's state. Containers carry no volumes,
// so a recreated node starts from scratch.
func (c *Chain) shutdown(container string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if container == c.bitcoind {
		c.bitcoind = ""
		c.height = 0
		c.tip = genesisHash
		c.walletLoaded = false
		c.balance = 0
		c.mempool = nil
		return
	}
	n, ok := c.nodes[container]
	if !ok {
		return
	}
	delete(c.nodes, container)
	for _, other := range c.nodes {
		delete(other.peers, n.pubkey)
	}
	kept := c.channels[:0]
	for _, ch := range c.channels {
		if ch.opener != n && ch.peer != n {
			kept = append(kept, ch)
		}
	}
	c.channels = kept
}

func (c *Chain) exec(container string, cmd []string) (string, string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(cmd) == 0 {
		return "", "empty command", 127
	}
	switch cmd[0] {
	case "bitcoin-cli":
		if container != c.bitcoind {
			return "", "error: Could not connect to the server 127.0.0.1:18443", 1
		}
		c.btcCalls++
		if c.btcCalls <= c.WarmupCalls {
			return "", "error code: -28\nerror message:\nLoading block index…", 28
		}
		return c.bitcoinCLI(stripFlags(cmd[1:], "-"))
	case "lncli":
		n, ok := c.nodes[container]
		if !ok {
			return "", "[lncli] rpc error: code = Unavailable desc = connection refused", 1
		}
		n.rpcCalls++
		if n.rpcCalls <= c.WarmupCalls {
			return "", "[lncli] rpc error: code = Unknown desc = the RPC server is in the process of starting up", 1
		}
		return c.lncli(n, stripFlags(cmd[1:], "--"))
	}
	return "", fmt.Sprintf("exec: %q: executable file not found in $PATH", cmd[0]), 127
}

// stripFlags drops the leading global flags before the subcommand
func stripFlags(args []string, prefix string) []string {
	for i, a := range args {
		if !strings.HasPrefix(a, prefix) {
			return args[i:]
		}
	}
	return nil
}

func rpcError(code int, msg string) (string, string, int) {
	return "", fmt.Sprintf("error code: %d\nerror message:\n%s", code, msg), 1
}

func lnError(msg string) (string, string, int) {
	return "", "[lncli] rpc error: code = Unknown desc = " + msg, 1
}

func toJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		panic(err)
	}
	return string(b) + "\n"
}

func sats(a btcutil.Amount) string {
	return strconv.FormatInt(int64(a), 10)
}

func (c *Chain) bitcoinCLI(args []string) (string, string, int) {
	if len(args) == 0 {
		return "", "error: too few parameters", 1
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "getblockchaininfo":
		return toJSON(map[string]interface{}{
			"chain":                "regtest",
			"blocks":               c.height,
			"headers":              c.height,
			"bestblockhash":        c.tip,
			"difficulty":           4.656542373906925e-10,
			"initialblockdownload": c.height == 0,
			"warnings":             []string{},
		}), "", 0
	case "getnetworkinfo":
		return toJSON(map[string]interface{}{
			"version":         280000,
			"subversion":      "/Satoshi:28.0.0/",
			"protocolversion": 70016,
			"connections":     0,
			"warnings":        []string{},
		}), "", 0
	case "createwallet":
		if c.walletLoaded {
			return rpcError(-4, "Wallet file verification failed. Database already exists.")
		}
		c.walletLoaded = true
		return toJSON(map[string]string{"name": "default"}), "", 0
	case "generatetoaddress":
		if len(rest) < 2 {
			return "", "error: too few parameters", 1
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			return rpcError(-1, "JSON value is not an integer as expected")
		}
		owner, known := c.addrOwner[rest[1]]
		hashes := make([]string, 0, n)
		for i := 0; i < n; i++ {
			c.height++
			c.tip = c.nextHash("block")
			hashes = append(hashes, c.tip)
			if known {
				c.credit(owner, blockSubsidy)
			}
			for _, tx := range c.mempool {
				c.credit(tx.owner, tx.amount)
			}
			c.mempool = nil
		}
		return toJSON(hashes), "", 0
	}

	if !c.walletLoaded {
		return rpcError(-18, "No wallet is loaded. Load a wallet using loadwallet or create a new one with createwallet.")
	}
	switch sub {
	case "getnewaddress":
		return c.newAddress(bitcoindOwner) + "\n", "", 0
	case "getbalance":
		return strconv.FormatFloat(c.balance.ToBTC(), 'f', 8, 64) + "\n", "", 0
	case "sendtoaddress":
		if len(rest) < 2 {
			return "", "error: too few parameters", 1
		}
		owner, known := c.addrOwner[rest[0]]
		if _, err := btcutil.DecodeAddress(rest[0], &chaincfg.RegressionNetParams); err != nil {
			return rpcError(-5, "Invalid address")
		}
		btc, err := strconv.ParseFloat(rest[1], 64)
		if err != nil {
			return rpcError(-3, "Invalid amount")
		}
		amount, err := btcutil.NewAmount(btc)
		if err != nil || amount <= 0 {
			return rpcError(-3, "Invalid amount")
		}
		if amount > c.balance {
			return rpcError(-6, "Insufficient funds")
		}
		c.balance -= amount
		if known {
			c.mempool = append(c.mempool, pendingTx{owner: owner, amount: amount})
		}
		return c.nextHash("tx") + "\n", "", 0
	}
	return rpcError(-32601, "Method not found")
}

func (c *Chain) credit(owner string, amount btcutil.Amount) {
	if owner == bitcoindOwner {
		c.balance += amount
		return
	}
	if n, ok := c.nodes[owner]; ok {
		n.wallet += amount
	}
}

func (c *Chain) nodeByPubkey(pubkey string) *lightningNode {
	for _, n := range c.nodes {
		if n.pubkey == pubkey {
			return n
		}
	}
	return nil
}

func flagValue(args []string, name string) string {
	for i, a := range args {
		if a == name && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(a, name+"=") {
			return strings.TrimPrefix(a, name+"=")
		}
	}
	return ""
}

func hasFlag(args []string, name string) bool {
	for _, a := range args {
		if a == name {
			return true
		}
	}
	return false
}

func (c *Chain) lncli(n *lightningNode, args []string) (string, string, int) {
	if len(args) == 0 {
		return "", "lncli: no command given", 1
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "getinfo":
		if c.SyncStep == 0 {
			n.height = c.height
		} else if n.height < c.height {
			n.height += c.SyncStep
			if n.height > c.height {
				n.height = c.height
			}
		}
		active, pending := 0, 0
		for _, ch := range c.channelsOf(n) {
			if ch.active(c.height) {
				active++
			} else {
				pending++
			}
		}
		return toJSON(map[string]interface{}{
			"version":              "0.18.5-beta commit=v0.18.5-beta",
			"identity_pubkey":      n.pubkey,
			"alias":                n.alias,
			"num_pending_channels": pending,
			"num_active_channels":  active,
			"num_peers":            len(n.peers),
			"block_height":         n.height,
			"block_hash":           c.tip,
			"synced_to_chain":      n.height == c.height,
			"synced_to_graph":      true,
		}), "", 0
	case "walletbalance":
		return toJSON(map[string]string{
			"total_balance":       sats(n.wallet),
			"confirmed_balance":   sats(n.wallet),
			"unconfirmed_balance": "0",
		}), "", 0
	case "channelbalance":
		var local btcutil.Amount
		for _, ch := range c.channelsOf(n) {
			if ch.active(c.height) {
				local += ch.balanceOf(n)
			}
		}
		return toJSON(map[string]string{"balance": sats(local)}), "", 0
	case "newaddress":
		return toJSON(map[string]string{"address": c.newAddress(n.name)}), "", 0
	case "connect":
		if len(rest) == 0 {
			return "", "[lncli] target address expected in format: pubkey@host:port", 1
		}
		pubkey, _, _ := strings.Cut(rest[0], "@")
		if pubkey == n.pubkey {
			return lnError("cannot make connection to self")
		}
		target := c.nodeByPubkey(pubkey)
		if target == nil {
			return lnError("dial tcp: lookup failed: no such host")
		}
		if n.peers[pubkey] {
			return lnError("already connected to peer: " + rest[0])
		}
		n.peers[pubkey] = true
		target.peers[n.pubkey] = true
		return "{\n\n}\n", "", 0
	case "openchannel":
		pubkey := flagValue(rest, "--node_key")
		local, err := strconv.ParseInt(flagValue(rest, "--local_amt"), 10, 64)
		if err != nil {
			return "", "[lncli] invalid local_amt", 1
		}
		var push int64
		if v := flagValue(rest, "--push_amt"); v != "" {
			if push, err = strconv.ParseInt(v, 10, 64); err != nil {
				return "", "[lncli] invalid push_amt", 1
			}
		}
		peer := c.nodeByPubkey(pubkey)
		if peer == nil || !n.peers[pubkey] {
			return lnError(fmt.Sprintf("peer %s is not online", pubkey))
		}
		if push > local {
			return lnError("amount pushed to remote peer for initial state must be below the local funding amount")
		}
		if btcutil.Amount(local) > n.wallet {
			return lnError(fmt.Sprintf("not enough witness outputs to create funding transaction, need %v only have %v available",
				btcutil.Amount(local), n.wallet))
		}
		n.wallet -= btcutil.Amount(local)
		ch := &channel{
			txid:      c.nextHash("funding"),
			opener:    n,
			peer:      peer,
			capacity:  btcutil.Amount(local),
			openerBal: btcutil.Amount(local - push),
			peerBal:   btcutil.Amount(push),
			openedAt:  c.height,
		}
		c.channels = append(c.channels, ch)
		return toJSON(map[string]string{"funding_txid": ch.txid}), "", 0
	case "closechannel":
		txid := flagValue(rest, "--funding_txid")
		for i, ch := range c.channels {
			if ch.txid != txid || (ch.opener != n && ch.peer != n) {
				continue
			}
			c.channels = append(c.channels[:i], c.channels[i+1:]...)
			ch.opener.wallet += ch.openerBal
			ch.peer.wallet += ch.peerBal
			return toJSON(map[string]string{"closing_txid": c.nextHash("closing")}), "", 0
		}
		return lnError("unable to find channel")
	case "listchannels":
		out := []map[string]interface{}{}
		for _, ch := range c.channelsOf(n) {
			if !ch.active(c.height) {
				continue
			}
			remote := ch.peer
			if remote == n {
				remote = ch.opener
			}
			out = append(out, map[string]interface{}{
				"active":         true,
				"remote_pubkey":  remote.pubkey,
				"channel_point":  ch.txid + ":0",
				"capacity":       sats(ch.capacity),
				"local_balance":  sats(ch.balanceOf(n)),
				"remote_balance": sats(ch.balanceOf(remote)),
			})
		}
		return toJSON(map[string]interface{}{"channels": out}), "", 0
	case "addinvoice":
		amt, err := strconv.ParseInt(flagValue(rest, "--amt"), 10, 64)
		if err != nil {
			return "", "[lncli] invalid amt", 1
		}
		hash := c.nextHash("preimage")
		req := fmt.Sprintf("lnbcrt%dn1p%s", amt*10, c.nextHash("invoice")[:48])
		c.invoices[req] = &invoice{owner: n, amount: btcutil.Amount(amt), hash: hash}
		return toJSON(map[string]string{
			"r_hash":          hash,
			"payment_request": req,
			"add_index":       strconv.Itoa(len(c.invoices)),
		}), "", 0
	case "payinvoice":
		if len(rest) == 0 {
			return "", "[lncli] pay_req argument missing", 1
		}
		req := rest[len(rest)-1]
		inv, ok := c.invoices[req]
		if !ok {
			return lnError("invalid payment request")
		}
		if inv.paid {
			return lnError("invoice is already paid")
		}
		for _, ch := range c.channelsOf(n) {
			if !ch.active(c.height) || ch.balanceOf(n) < inv.amount {
				continue
			}
			if ch.opener != inv.owner && ch.peer != inv.owner {
				continue
			}
			ch.move(n, inv.amount)
			inv.paid = true
			return toJSON(map[string]string{
				"payment_hash":   inv.hash,
				"value_sat":      sats(inv.amount),
				"status":         "SUCCEEDED",
				"failure_reason": "FAILURE_REASON_NONE",
			}), "", 0
		}
		return toJSON(map[string]string{
			"payment_hash":   inv.hash,
			"value_sat":      sats(inv.amount),
			"status":         "FAILED",
			"failure_reason": "FAILURE_REASON_NO_ROUTE",
		}), "", 0
	}
	return "", fmt.Sprintf("No help topic for '%s'", sub), 1
}

func (c *Chain) channelsOf(n *lightningNode) []*channel {
	var out []*channel
	for _, ch := range c.channels {
		if ch.opener == n || ch.peer == n {
			out = append(out, ch)
		}
	}
	return out
}

func (ch *channel) balanceOf(n *lightningNode) btcutil.Amount {
	if ch.opener == n {
		return ch.openerBal
	}
	return ch.peerBal
}

// move transfers amount from payer to the other side of the channel
func (ch *channel) move(payer *lightningNode, amount btcutil.Amount) {
	if ch.opener == payer {
		ch.openerBal -= amount
		ch.peerBal += amount
		return
	}
	ch.peerBal -= amount
	ch.openerBal += amount
}
