// Package chart loads a chart of accounts from YAML and seeds it through the
// account service.
package chart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/SscSPs/spice_ledger/internal/apperrors"
	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/spice_ledger/internal/core/ports/services"
	"github.com/SscSPs/spice_ledger/internal/dto"
	"gopkg.in/yaml.v3"
)

// SeedUserID is recorded as the creator of seeded accounts.
const SeedUserID = "system"

// AccountSpec is one account as written in the chart file.
type AccountSpec struct {
	Code               string                `yaml:"code"`
	Name               string                `yaml:"name"`
	Type               domain.AccountType    `yaml:"type"`
	Currency           string                `yaml:"currency"`
	ReportCategory     domain.ReportCategory `yaml:"reportCategory"`
	AllowDirectPosting *bool                 `yaml:"allowDirectPosting"`
	Parent             string                `yaml:"parent"`
	Description        string                `yaml:"description"`
}

// Chart is an ordered list of accounts; parents come before their children.
type Chart struct {
	Accounts []AccountSpec `yaml:"accounts"`
}

// Load reads and parses a chart file.
func Load(path string) (*Chart, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chart %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a chart and checks codes are unique and parents are declared first
// with the same account type.
func Parse(r io.Reader) (*Chart, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Chart
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode chart: %w", err)
	}

	types := make(map[string]domain.AccountType, len(c.Accounts))
	for i, a := range c.Accounts {
		a.Code = strings.TrimSpace(a.Code)
		c.Accounts[i].Code = a.Code
		if a.Code == "" {
			return nil, fmt.Errorf("chart entry %d has no code", i+1)
		}
		if _, dup := types[a.Code]; dup {
			return nil, fmt.Errorf("chart code %s appears twice", a.Code)
		}
		if !a.Type.Valid() {
			return nil, fmt.Errorf("chart code %s has unknown type %q", a.Code, a.Type)
		}
		if a.Parent != "" {
			pt, ok := types[a.Parent]
			if !ok {
				return nil, fmt.Errorf("chart code %s references parent %s before it is declared", a.Code, a.Parent)
			}
			if pt != a.Type {
				return nil, fmt.Errorf("chart code %s is %s but parent %s is %s", a.Code, a.Type, a.Parent, pt)
			}
		}
		types[a.Code] = a.Type
	}
	return &c, nil
}

// Seed creates every account whose code does not exist yet. It returns how many
// accounts were created. Running it twice creates nothing the second time.
func Seed(ctx context.Context, logger *slog.Logger, accounts portssvc.AccountSvcFacade, c *Chart, baseCurrency string) (int, error) {
	created := 0
	ids := make(map[string]string, len(c.Accounts))

	for _, a := range c.Accounts {
		existing, err := accounts.GetAccountByCode(ctx, a.Code)
		if err == nil {
			ids[a.Code] = existing.AccountID
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return created, fmt.Errorf("failed to look up chart code %s: %w", a.Code, err)
		}

		currency := a.Currency
		if currency == "" {
			currency = baseCurrency
		}
		req := dto.CreateAccountRequest{
			Code:               a.Code,
			Name:               a.Name,
			AccountType:        a.Type,
			CurrencyCode:       currency,
			ReportCategory:     a.ReportCategory,
			AllowDirectPosting: a.AllowDirectPosting,
			Description:        a.Description,
		}
		if a.Parent != "" {
			parentID, ok := ids[a.Parent]
			if !ok {
				return created, fmt.Errorf("chart code %s: parent %s was not seeded", a.Code, a.Parent)
			}
			req.ParentAccountID = &parentID
		}

		acc, err := accounts.CreateAccount(ctx, req, SeedUserID)
		if err != nil {
			return created, fmt.Errorf("failed to seed chart code %s: %w", a.Code, err)
		}
		ids[a.Code] = acc.AccountID
		created++
	}

	logger.InfoContext(ctx, "Chart of accounts seeded", "created", created, "total", len(c.Accounts))
	return created, nil
}
