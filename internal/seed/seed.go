// Package seed provides the fixed startup data: the catalog, the menu
// templates, and the business topology. The default EcoMarket dataset is
// embedded; a file on disk can override it.
package seed

import (
	_ "embed"
	"encoding/json"
	"os"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/ecomarket/ecopos/internal/domain/catalog"
	"github.com/ecomarket/ecopos/internal/domain/franchise"
	"github.com/ecomarket/ecopos/internal/domain/menu"
)

//go:embed seed.json
var defaultSeed []byte

type itemJSON struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type menuJSON struct {
	Name      string   `json:"name"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Items     []string `json:"items"`
}

type franchiseJSON struct {
	Address string   `json:"address"`
	Menus   []string `json:"menus"`
	IsMall  bool     `json:"is_mall"`
}

type seedJSON struct {
	Business   string          `json:"business"`
	Catalog    []itemJSON      `json:"catalog"`
	Menus      []menuJSON      `json:"menus"`
	Franchises []franchiseJSON `json:"franchises"`
}

// Load builds the business topology from the embedded EcoMarket dataset.
func Load() (*franchise.Business, error) {
	return build(defaultSeed)
}

// LoadFile builds the topology from a seed file on disk.
func LoadFile(path string) (*franchise.Business, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read seed file")
	}
	return build(data)
}

func build(data []byte) (*franchise.Business, error) {
	var s seedJSON
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "parse seed data")
	}

	prices := make(map[string]decimal.Decimal, len(s.Catalog))
	for _, item := range s.Catalog {
		prices[item.Name] = item.Price
	}
	cat, err := catalog.New(prices)
	if err != nil {
		return nil, errors.Wrap(err, "build catalog")
	}

	templates := make(map[string]*menu.Menu, len(s.Menus))
	for _, mj := range s.Menus {
		items, err := cat.Select(mj.Items...)
		if err != nil {
			return nil, errors.Wrapf(err, "menu %q", mj.Name)
		}
		m, err := menu.New(mj.Name, items, mj.StartTime, mj.EndTime)
		if err != nil {
			return nil, errors.Wrapf(err, "menu %q", mj.Name)
		}
		templates[mj.Name] = m
	}

	franchises := make([]*franchise.Franchise, 0, len(s.Franchises))
	for _, fj := range s.Franchises {
		menus := make([]*menu.Menu, 0, len(fj.Menus))
		for _, name := range fj.Menus {
			t, ok := templates[name]
			if !ok {
				return nil, errors.Wrapf(menu.ErrNotFound, "franchise %q references menu %q", fj.Address, name)
			}
			menus = append(menus, t)
		}
		franchises = append(franchises, franchise.New(fj.Address, menus, fj.IsMall))
	}

	return franchise.NewBusiness(s.Business, franchises...), nil
}
