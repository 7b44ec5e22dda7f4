package accounts

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arung-agamani/yuuka/internal/model"
)

// Chart is a YAML chart of accounts: groups plus the aliases that map to them.
type Chart struct {
	Groups []ChartGroup `yaml:"groups"`
}

// ChartGroup is one group entry in a Chart.
type ChartGroup struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Description string   `yaml:"description,omitempty"`
	Aliases     []string `yaml:"aliases,omitempty"`
}

// ApplyResult counts what ApplyChart changed.
type ApplyResult struct {
	GroupsCreated int
	GroupsExisted int
	AliasesAdded  int
}

// ReadChart parses a chart from YAML.
func ReadChart(r io.Reader) (*Chart, error) {
	var c Chart
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing chart: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadChart reads a chart YAML file from disk.
func LoadChart(path string) (*Chart, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart: %w", err)
	}
	defer f.Close()
	return ReadChart(f)
}

// WriteChart writes c as YAML.
func WriteChart(w io.Writer, c *Chart) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("writing chart: %w", err)
	}
	return enc.Close()
}

// Validate checks that every group has a name and a valid type, and that no
// group name repeats.
func (c *Chart) Validate() error {
	seen := make(map[string]bool, len(c.Groups))
	for i, g := range c.Groups {
		name := model.NormalizeName(g.Name)
		if name == "" {
			return fmt.Errorf("%w: chart group %d", model.ErrEmptyName, i+1)
		}
		if _, err := model.ParseAccountType(g.Type); err != nil {
			return fmt.Errorf("chart group %q: %w", g.Name, err)
		}
		if seen[name] {
			return fmt.Errorf("%w: %q appears twice in chart", model.ErrDuplicateGroup, g.Name)
		}
		seen[name] = true
	}
	return nil
}

// ApplyChart creates missing groups and binds their aliases for owner in one
// transaction. Existing groups are kept as they are; an alias bound to a
// different group aborts the whole apply.
func (d *Directory) ApplyChart(ctx context.Context, c *Chart, owner string) (ApplyResult, error) {
	var res ApplyResult
	if owner == "" {
		return res, model.ErrMissingOwner
	}
	if err := c.Validate(); err != nil {
		return res, err
	}

	err := d.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, cg := range c.Groups {
			typ, _ := model.ParseAccountType(cg.Type)
			g, err := groupByName(ctx, tx, cg.Name, owner)
			if err != nil {
				return err
			}
			if g == nil {
				g, err = d.createGroupTx(ctx, tx, CreateGroupParams{
					Name:        strings.TrimSpace(cg.Name),
					Owner:       owner,
					Type:        typ,
					Description: cg.Description,
				})
				if err != nil {
					return err
				}
				res.GroupsCreated++
			} else {
				res.GroupsExisted++
			}

			aliases := append([]string{g.Name}, cg.Aliases...)
			for _, a := range aliases {
				a = model.NormalizeName(a)
				if a == "" {
					continue
				}
				existing, err := d.ResolveTx(ctx, tx, a, owner)
				if err != nil {
					return err
				}
				if existing != nil && existing.ID == g.ID {
					continue
				}
				if _, err := d.bindAliasTx(ctx, tx, a, g.ID, owner); err != nil {
					return fmt.Errorf("chart group %q: %w", g.Name, err)
				}
				res.AliasesAdded++
			}
		}
		return nil
	})
	if err != nil {
		return ApplyResult{}, err
	}

	d.log.Info().
		Str("owner", owner).
		Int("groups_created", res.GroupsCreated).
		Int("aliases_added", res.AliasesAdded).
		Msg("applied chart")
	return res, nil
}

// ExportChart renders the owner's groups and aliases as a Chart. The alias
// equal to a group's own lower-cased name is implied and omitted.
func (d *Directory) ExportChart(ctx context.Context, owner string) (*Chart, error) {
	groups, err := d.ListGroups(ctx, owner)
	if err != nil {
		return nil, err
	}
	aliases, err := d.ListAliases(ctx, owner)
	if err != nil {
		return nil, err
	}
	byGroup := make(map[int64][]string)
	for _, a := range aliases {
		byGroup[a.GroupID] = append(byGroup[a.GroupID], a.Alias)
	}

	c := &Chart{}
	for _, g := range groups {
		cg := ChartGroup{Name: g.Name, Type: string(g.Type), Description: g.Description}
		for _, a := range byGroup[g.ID] {
			if a != model.NormalizeName(g.Name) {
				cg.Aliases = append(cg.Aliases, a)
			}
		}
		c.Groups = append(c.Groups, cg)
	}
	return c, nil
}
