// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/locale"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/model"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/util"
)

// SeedData is the YAML document loaded by the seed command.
type SeedData struct {
	Content    []SeedContent  `yaml:"content"`
	Categories []SeedCategory `yaml:"categories"`
}

// SeedContent is one content group with its per-locale values.
type SeedContent struct {
	Page    string            `yaml:"page"`
	Section string            `yaml:"section"`
	Key     string            `yaml:"key"`
	Values  map[string]string `yaml:"values"`
}

// SeedCategory is one category with its per-locale name and description.
// An omitted slug is derived from the source-locale name.
type SeedCategory struct {
	Slug        string            `yaml:"slug"`
	Position    int               `yaml:"position"`
	Name        map[string]string `yaml:"name"`
	Description map[string]string `yaml:"description"`
}

// SeedResult counts what a seed run inserted.
type SeedResult struct {
	ContentInserted    int `json:"content_inserted"`
	ContentExisting    int `json:"content_existing"`
	CategoriesInserted int `json:"categories_inserted"`
	CategoriesExisting int `json:"categories_existing"`
}

// ParseSeed decodes a seed document, rejecting unknown fields.
func ParseSeed(r io.Reader) (*SeedData, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var data SeedData
	if err := dec.Decode(&data); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding seed: %w", err)
	}
	return &data, nil
}

// LoadSeedFile reads and decodes a seed file.
func LoadSeedFile(path string) (*SeedData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seed file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseSeed(f)
}

// Validate checks every locale in the document against reg.
func (d *SeedData) Validate(reg *locale.Registry) error {
	for _, c := range d.Content {
		if c.Page == "" || c.Section == "" || c.Key == "" {
			return fmt.Errorf("content entry %s/%s/%s: page, section and key are required", c.Page, c.Section, c.Key)
		}
		for code := range c.Values {
			if !reg.Has(code) {
				return fmt.Errorf("content %s/%s/%s: %w: %s", c.Page, c.Section, c.Key, locale.ErrUnknownLocale, code)
			}
		}
	}
	for i, c := range d.Categories {
		rec := c.record(reg)
		if !util.IsValidSlug(rec.Slug) {
			return fmt.Errorf("category #%d: invalid slug %q", i+1, rec.Slug)
		}
		if err := rec.Validate(reg); err != nil {
			return err
		}
	}
	return nil
}

func (c SeedCategory) record(reg *locale.Registry) model.CategoryRecord {
	slug := c.Slug
	if slug == "" {
		slug = util.Slugify(c.Name[reg.Source()])
	}
	rec := model.NewCategoryRecord(reg, slug, c.Position)
	for code, v := range c.Name {
		rec.Names[code] = model.StringPtr(v)
	}
	for code, v := range c.Description {
		rec.Descriptions[code] = model.StringPtr(v)
	}
	return rec
}

// Seed inserts the document's rows without touching existing ones, so it can
// be re-run safely.
func (s *Store) Seed(ctx context.Context, data *SeedData, reg *locale.Registry, logger *slog.Logger) (*SeedResult, error) {
	if err := data.Validate(reg); err != nil {
		return nil, err
	}

	var res SeedResult
	for _, c := range data.Content {
		// registry order keeps inserts deterministic
		for _, code := range reg.Locales() {
			v, ok := c.Values[code]
			if !ok {
				continue
			}
			inserted, err := s.InsertContentEntryIfAbsent(ctx, model.ContentEntry{
				Page: c.Page, Section: c.Section, Key: c.Key, Locale: code, Value: v,
			})
			if err != nil {
				return &res, err
			}
			if inserted {
				res.ContentInserted++
			} else {
				res.ContentExisting++
			}
		}
	}

	for _, c := range data.Categories {
		inserted, err := s.InsertCategoryIfAbsent(ctx, c.record(reg))
		if err != nil {
			return &res, err
		}
		if inserted {
			res.CategoriesInserted++
		} else {
			res.CategoriesExisting++
		}
	}

	logger.Info("seed complete",
		"content_inserted", res.ContentInserted,
		"content_existing", res.ContentExisting,
		"categories_inserted", res.CategoriesInserted,
		"categories_existing", res.CategoriesExisting)
	return &res, nil
}
