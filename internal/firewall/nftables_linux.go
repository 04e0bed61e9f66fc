//go:build linux

package firewall

import (
	"context"
	"fmt"

	"github.com/google/nftables"
	"github.com/google/nftables/binaryutil"
	"github.com/google/nftables/expr"
	"golang.org/x/sys/unix"

	"github.com/NineO1/solo-public-lobby/internal/diag"
)

const (
	nftTableName = "sololobby"
	nftChainName = "game-block"
)

// NftablesBackend manages the rule as a dedicated nftables table holding
// one outbound UDP drop rule per game port. The table maps to the rule's
// lifecycle: missing table means absent, empty chain means disabled.
type NftablesBackend struct {
	log *diag.Logger
}

func NewNftablesBackend(log *diag.Logger) *NftablesBackend {
	return &NftablesBackend{log: log}
}

func (b *NftablesBackend) Name() string { return "nftables" }

func (b *NftablesBackend) findTable(conn *nftables.Conn) (*nftables.Table, error) {
	tables, err := conn.ListTables()
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	for _, t := range tables {
		if t.Name == nftTableName && t.Family == nftables.TableFamilyINet {
			return t, nil
		}
	}
	return nil, nil
}

func (b *NftablesBackend) findChain(conn *nftables.Conn, table *nftables.Table) (*nftables.Chain, error) {
	chains, err := conn.ListChainsOfTableFamily(nftables.TableFamilyINet)
	if err != nil {
		return nil, fmt.Errorf("failed to list chains: %w", err)
	}
	for _, c := range chains {
		if c.Table.Name == table.Name && c.Name == nftChainName {
			return c, nil
		}
	}
	return nil, nil
}

// portBlockExprs builds the expression list for one port: match UDP,
// compare the transport-header destination port, drop.
func portBlockExprs(port uint16) []expr.Any {
	return []expr.Any{
		&expr.Meta{Key: expr.MetaKeyL4PROTO, Register: 1},
		&expr.Cmp{
			Op:       expr.CmpOpEq,
			Register: 1,
			Data:     []byte{byte(unix.IPPROTO_UDP)},
		},
		&expr.Payload{
			DestRegister: 1,
			Base:         expr.PayloadBaseTransportHeader,
			Offset:       2, // destination port
			Len:          2,
		},
		&expr.Cmp{
			Op:       expr.CmpOpEq,
			Register: 1,
			Data:     binaryutil.BigEndian.PutUint16(port),
		},
		&expr.Verdict{Kind: expr.VerdictDrop},
	}
}

func (b *NftablesBackend) addPortRules(conn *nftables.Conn, chain *nftables.Chain, rule Rule) {
	for _, port := range rule.Ports {
		conn.AddRule(&nftables.Rule{
			Table: chain.Table,
			Chain: chain,
			Exprs: portBlockExprs(port),
		})
	}
}

func (b *NftablesBackend) Create(ctx context.Context, rule Rule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := nftables.New()
	if err != nil {
		return fmt.Errorf("failed to open nftables connection: %w", err)
	}

	table := conn.AddTable(&nftables.Table{
		Name:   nftTableName,
		Family: nftables.TableFamilyINet,
	})
	chain := conn.AddChain(&nftables.Chain{
		Name:     nftChainName,
		Table:    table,
		Type:     nftables.ChainTypeFilter,
		Hooknum:  nftables.ChainHookOutput,
		Priority: nftables.ChainPriorityFilter,
	})
	conn.FlushChain(chain)
	b.addPortRules(conn, chain, rule)
	return conn.Flush()
}

func (b *NftablesBackend) Enable(ctx context.Context, rule Rule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := nftables.New()
	if err != nil {
		return fmt.Errorf("failed to open nftables connection: %w", err)
	}
	table, err := b.findTable(conn)
	if err != nil {
		return err
	}
	if table == nil {
		return fmt.Errorf("%w: '%s'", ErrRuleNotFound, rule.Name)
	}
	chain, err := b.findChain(conn, table)
	if err != nil {
		return err
	}
	if chain == nil {
		return fmt.Errorf("%w: '%s'", ErrRuleNotFound, rule.Name)
	}
	conn.FlushChain(chain)
	b.addPortRules(conn, chain, rule)
	return conn.Flush()
}

func (b *NftablesBackend) Disable(ctx context.Context, rule Rule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := nftables.New()
	if err != nil {
		return fmt.Errorf("failed to open nftables connection: %w", err)
	}
	table, err := b.findTable(conn)
	if err != nil {
		return err
	}
	if table == nil {
		return fmt.Errorf("%w: '%s'", ErrRuleNotFound, rule.Name)
	}
	chain, err := b.findChain(conn, table)
	if err != nil {
		return err
	}
	if chain == nil {
		return nil
	}
	conn.FlushChain(chain)
	return conn.Flush()
}

func (b *NftablesBackend) Delete(ctx context.Context, rule Rule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := nftables.New()
	if err != nil {
		return fmt.Errorf("failed to open nftables connection: %w", err)
	}
	table, err := b.findTable(conn)
	if err != nil {
		return err
	}
	if table == nil {
		return nil
	}
	conn.DelTable(table)
	return conn.Flush()
}

func (b *NftablesBackend) Status(ctx context.Context, rule Rule) (RuleState, string, error) {
	if err := ctx.Err(); err != nil {
		return StateUnknown, "", err
	}
	conn, err := nftables.New()
	if err != nil {
		return StateUnknown, "", fmt.Errorf("failed to open nftables connection: %w", err)
	}
	table, err := b.findTable(conn)
	if err != nil {
		return StateUnknown, "", err
	}
	if table == nil {
		return StateAbsent, fmt.Sprintf("No nftables table '%s'.", nftTableName), nil
	}
	chain, err := b.findChain(conn, table)
	if err != nil {
		return StateUnknown, "", err
	}
	if chain == nil {
		return StateDisabled, fmt.Sprintf("Table '%s' present, chain '%s' missing.", nftTableName, nftChainName), nil
	}
	rules, err := conn.GetRules(table, chain)
	if err != nil {
		return StateUnknown, "", fmt.Errorf("failed to list rules: %w", err)
	}
	detail := fmt.Sprintf("Rule Name: %s\nTable: inet %s\nChain: %s (output)\nPorts: %s\nDrop rules: %d",
		rule.Name, nftTableName, nftChainName, rule.PortsString(), len(rules))
	if len(rules) == 0 {
		return StateDisabled, detail + "\nEnabled: No", nil
	}
	return StateEnabled, detail + "\nEnabled: Yes", nil
}

// NewBackend returns the platform firewall backend.
func NewBackend(log *diag.Logger) (Backend, error) {
	return NewNftablesBackend(log), nil
}
